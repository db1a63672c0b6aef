/*
scheduler.go - Background statement precomputation

PURPOSE:
  Periodically recomputes the current calendar month's charge statements
  for every active shift and caches the result on the handler, so the
  back office can read /api/charge-runs/latest without waiting for a
  full run.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each tick runs an ALL_ACTIVE_SHIFTS charge run for the current month
  - The latest result replaces the previous one; there is no history

CONFIGURATION:
  - Interval: How often to recompute (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewStatementScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: LatestChargeRun endpoint
  - fleet/chargerun.go: ChargeRun
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cabfleet/billing-engine/billing"
)

// StatementScheduler precomputes the current month's statements.
type StatementScheduler struct {
	Handler  *Handler
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewStatementScheduler creates a new scheduler.
func NewStatementScheduler(handler *Handler) *StatementScheduler {
	return &StatementScheduler{
		Handler:  handler,
		Interval: 1 * time.Hour,
		Enabled:  true,
		stop:     make(chan struct{}),
	}
}

// Start begins the scheduler.
func (ss *StatementScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.Interval)
	ss.wg.Add(1)

	go ss.run()

	log.Printf("[Scheduler] Started with interval: %v", ss.Interval)
}

// Stop stops the scheduler.
func (ss *StatementScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ss *StatementScheduler) run() {
	defer ss.wg.Done()

	// Run immediately on start
	ss.compute()

	for {
		select {
		case <-ss.ticker.C:
			ss.compute()
		case <-ss.stop:
			return
		}
	}
}

func (ss *StatementScheduler) compute() {
	ctx := context.Background()
	today := billing.Today()

	start := billing.StartOfMonth(today)
	end := start.AddMonths(1).AddDays(-1)

	result, err := ss.Handler.Runs.Run(ctx, billing.ScopeForActiveShifts(), today, start, end)
	if err != nil {
		log.Printf("[Scheduler] Charge run failed: %v", err)
		return
	}

	ss.Handler.storeLatestRun(result)
	log.Printf("[Scheduler] Precomputed %d statements for %s..%s, total %s",
		len(result.Statements), start, end, result.GrandTotal.String())
}

// RunNow triggers an immediate recompute (for testing/admin).
func (ss *StatementScheduler) RunNow() {
	ss.compute()
}
