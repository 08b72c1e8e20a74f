package models

import "github.com/fairsplit/fairsplit/internal/money"

// Expense is one shared cost paid by a single member. Immutable once
// created; amendments are new expenses or settlements.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is the human-readable label.
	Description string

	// Amount is the full expense amount in cents. Always positive.
	Amount money.Cents

	// PaidBy is the member who fronted the money.
	PaidBy string

	// CreatedBy is the member who recorded the expense (audit only).
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseShare is the portion of one expense attributed to one member.
// At most one share exists per (expense, member); for a given expense the
// shares sum to the expense amount within one cent.
type ExpenseShare struct {
	ExpenseID string
	MemberID  string
	Amount    money.Cents
}

// ExpenseShareRow is one row of the expense/share join used by balance
// computation. The expense columns repeat for every share of the same
// expense, which is why the aggregator credits each payer once per ExpenseID.
type ExpenseShareRow struct {
	ExpenseID     string
	ExpenseAmount money.Cents
	PaidBy        string
	MemberID      string
	ShareAmount   money.Cents
}
