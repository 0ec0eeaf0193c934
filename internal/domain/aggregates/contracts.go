package aggregates

// WriteTxOwnership defines who owns write transaction boundaries.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate means aggregate write methods start/manage atomic DB transactions internally.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
)

// Contract describes aggregate-level policy expectations.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	Notes            string
}

// Aggregate is the common marker for all aggregate contracts.
// Implementations should return a stable contract description.
type Aggregate interface {
	Contract() Contract
}

// RequiresAggregateOwnedTx returns true when write transaction ownership is aggregate-owned.
func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

var LoanAggregateContract = Contract{
	Name:             "Loans.LoanAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	Notes:            "Owns loan status transitions and the payment ledger; every status write is a compare-and-set.",
}

var ContributionAggregateContract = Contract{
	Name:             "Groups.ContributionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	Notes:            "Owns group contribution inserts and the exactly-once PENDING to APPROVED claim.",
}

var GroupAggregateContract = Contract{
	Name:             "Groups.GroupAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	Notes:            "Owns group membership writes, admin succession, and last-member deletion.",
}
