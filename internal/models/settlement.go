package models

import "github.com/fairsplit/fairsplit/internal/money"

// Settlement records an out-of-band payment between two members. It is a
// ledger entry, not money movement: recording one decreases the payer's debt
// and the payee's credit by the same amount.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// PayerID is the member who paid (debtor settling up).
	PayerID string

	// PayeeID is the member who received the payment. Must differ from
	// PayerID.
	PayeeID string

	// Amount is the payment amount in cents. Always positive.
	Amount money.Cents

	// Description is an optional note.
	Description string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
