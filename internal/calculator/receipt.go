package calculator

import (
	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
)

// Assignments maps a receipt item index to the member IDs it was assigned
// to. One assignee means the item is theirs alone; several means the item is
// split evenly among them.
type Assignments map[int][]string

// ConfirmedPayment declares that a member already paid their part of the
// bill directly to the bill payer, identified by display name as captured at
// the table.
type ConfirmedPayment struct {
	Name   string
	Amount money.Cents
}

// Apportionment is the synthetic expense produced from an itemized receipt:
// one total and one aggregated share per member. Empty Shares means every
// assigned item was confirmed paid out-of-band and no expense should be
// created.
type Apportionment struct {
	Total  money.Cents
	Shares map[string]money.Cents
}

// NoOp reports whether the apportionment should create no expense.
func (a Apportionment) NoOp() bool { return len(a.Shares) == 0 }

// Apportion assigns receipt items to members and aggregates them into a
// single synthetic expense.
//
// Per item, assignees outside the current member set are dropped first
// (guests never enter group debt), then assignees matching a confirmed
// payment. Whoever remains splits the item price evenly, with the integer
// remainder spread one cent at a time over the leading assignees, so every
// item's shares sum exactly to its price. An item with nobody left
// contributes nothing to shares or total.
//
// A negative item price aborts the whole apportionment; nothing is written
// from a partially valid receipt.
func Apportion(items []models.ReceiptItem, assignments Assignments, confirmed []ConfirmedPayment, members []models.Member) (Apportionment, error) {
	for _, item := range items {
		if item.Price < 0 {
			return Apportionment{}, apperr.Validationf("item %q has a negative price (%s)", item.Name, item.Price)
		}
	}

	valid := make(map[string]bool, len(members))
	nameToID := make(map[string]string, len(members))
	for _, m := range members {
		valid[m.ID] = true
		nameToID[m.Username] = m.ID
	}

	confirmedIDs := make(map[string]bool, len(confirmed))
	for _, c := range confirmed {
		if id, ok := nameToID[c.Name]; ok {
			confirmedIDs[id] = true
		}
	}

	result := Apportionment{Shares: make(map[string]money.Cents)}
	for i, item := range items {
		var remaining []string
		for _, id := range assignments[i] {
			if valid[id] && !confirmedIDs[id] {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) == 0 {
			continue
		}

		n := int64(len(remaining))
		base := money.Cents(int64(item.Price) / n)
		rem := int64(item.Price) % n
		for k, id := range remaining {
			share := base
			if int64(k) < rem {
				share++
			}
			result.Shares[id] += share
		}
		result.Total += item.Price
	}

	return result, nil
}
