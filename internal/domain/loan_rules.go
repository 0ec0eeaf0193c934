package domain

import "github.com/google/uuid"

// transitions is the loan status graph. LATE is produced by the due-date
// watcher, never by a caller-named transition; REJECTED and COMPLETED are
// terminal.
var transitions = map[LoanStatus][]LoanStatus{
	LoanPending:  {LoanApproved, LoanRejected},
	LoanApproved: {LoanActive, LoanCompleted, LoanLate},
	LoanActive:   {LoanCompleted, LoanLate},
	LoanLate:     {LoanActive, LoanCompleted},
}

func CanTransition(from, to LoanStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func IsTerminal(s LoanStatus) bool {
	return s == LoanRejected || s == LoanCompleted
}

// PayableStatuses are the loan states that accept a payment.
func PayableStatuses() []LoanStatus {
	return []LoanStatus{LoanApproved, LoanActive, LoanLate}
}

func IsPayable(s LoanStatus) bool {
	for _, p := range PayableStatuses() {
		if p == s {
			return true
		}
	}
	return false
}

// TotalPaid sums the loan's payment ledger.
func (l *Loan) TotalPaid() float64 {
	var total float64
	for _, p := range l.Payments {
		total += p.Amount
	}
	return total
}

// StatusAfterPayment decides where a payment lands the loan: COMPLETED once
// the ledger covers the amount, otherwise ACTIVE.
func StatusAfterPayment(totalPaid, amount float64) LoanStatus {
	if totalPaid >= amount {
		return LoanCompleted
	}
	return LoanActive
}

func CanApproveOrReject(actorID uuid.UUID, loan *Loan) bool {
	return loan != nil && actorID == loan.LenderID
}

func CanPay(actorID uuid.UUID, loan *Loan) bool {
	return loan != nil && actorID == loan.BorrowerID
}

// CanContribute requires group membership and excludes the loan's borrower:
// you cannot fund your own loan.
func CanContribute(actorID uuid.UUID, loan *Loan, members []GroupMember) bool {
	if loan == nil || actorID == loan.BorrowerID {
		return false
	}
	return IsGroupMember(members, actorID)
}

func CanViewLoan(actorID uuid.UUID, loan *Loan) bool {
	return loan != nil && (actorID == loan.LenderID || actorID == loan.BorrowerID)
}
