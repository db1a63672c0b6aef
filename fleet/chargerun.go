/*
chargerun.go - Bulk charge calculation across a resolved scope

PURPOSE:
  The consumer path of the billing engine: resolve an application scope as
  of a date, then compute a charge statement for every resolved shift or
  cab over a period. Person members (owner/driver scopes) carry no
  attribute assignments, so they resolve but produce no statements.

  A run is a pure read: each subject's calculation touches only that
  subject's history, so nothing here holds shared mutable state. Any
  calculator error aborts the whole run; there is no partial result.
*/
package fleet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cabfleet/billing-engine/billing"
)

// ChargeRun resolves a scope and calculates charges for its members.
type ChargeRun struct {
	Resolver   *billing.ScopeResolver
	Calculator *billing.ChargeCalculator
}

func NewChargeRun(resolver *billing.ScopeResolver, calculator *billing.ChargeCalculator) *ChargeRun {
	return &ChargeRun{Resolver: resolver, Calculator: calculator}
}

// ChargeRunResult is the outcome of one run.
type ChargeRunResult struct {
	Scope       billing.ApplicationScope
	AsOf        billing.Date
	PeriodStart billing.Date
	PeriodEnd   billing.Date

	Statements []billing.ChargeStatement
	Persons    []billing.PersonID // resolved members with no charge path
	GrandTotal decimal.Decimal
}

// Run expands the scope as of asOf and calculates charges for every shift
// or cab member over [periodStart, periodEnd]. The first error aborts the
// run; callers never see a half-applied scope.
func (r *ChargeRun) Run(ctx context.Context, scope billing.ApplicationScope, asOf, periodStart, periodEnd billing.Date) (*ChargeRunResult, error) {
	members, err := r.Resolver.Resolve(ctx, scope, asOf)
	if err != nil {
		return nil, err
	}

	result := &ChargeRunResult{
		Scope:       scope,
		AsOf:        asOf,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		GrandTotal:  decimal.Zero,
	}

	for _, member := range members {
		subject, ok := member.Subject()
		if !ok {
			result.Persons = append(result.Persons, billing.PersonID(member.ID))
			continue
		}
		statement, err := r.Calculator.Calculate(ctx, subject, periodStart, periodEnd)
		if err != nil {
			return nil, err
		}
		result.Statements = append(result.Statements, *statement)
		result.GrandTotal = result.GrandTotal.Add(statement.Total)
	}

	return result, nil
}
