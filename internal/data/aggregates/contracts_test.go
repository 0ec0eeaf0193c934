package aggregates

import (
	"testing"

	domainagg "github.com/yungbote/lendtrack-backend/internal/domain/aggregates"
)

var (
	_ domainagg.Aggregate = (*LoanAggregate)(nil)
	_ domainagg.Aggregate = (*ContributionAggregate)(nil)
	_ domainagg.Aggregate = (*GroupAggregate)(nil)
)

func TestAggregateContracts(t *testing.T) {
	aggs := []domainagg.Aggregate{
		NewLoanAggregate(BaseDeps{}, nil, nil, nil),
		NewContributionAggregate(BaseDeps{}, nil, nil),
		NewGroupAggregate(BaseDeps{}, nil, nil),
	}
	seen := map[string]bool{}
	for _, a := range aggs {
		c := a.Contract()
		if c.Name == "" {
			t.Fatalf("aggregate %T has an unnamed contract", a)
		}
		if seen[c.Name] {
			t.Fatalf("duplicate contract name %q", c.Name)
		}
		seen[c.Name] = true
		if !c.RequiresAggregateOwnedTx() {
			t.Fatalf("%s must own its write transactions", c.Name)
		}
	}
}
