// Package calculator implements the pure ledger arithmetic: expense
// splitting, balance aggregation, debt simplification, and receipt
// apportionment. It never touches storage; callers fetch facts and pass
// them in.
package calculator

import (
	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/money"
)

// SplitMode selects how an expense amount is divided among participants.
type SplitMode string

const (
	// SplitEqual divides the amount evenly among all participants.
	SplitEqual SplitMode = "equal"

	// SplitCustom uses caller-supplied per-participant amounts.
	SplitCustom SplitMode = "custom"
)

// Share is the portion of an expense attributed to one participant.
type Share struct {
	MemberID string
	Amount   money.Cents
}

// customTolerance is how far the sum of custom amounts may drift from the
// expense total, in cents.
const customTolerance = 1

// ComputeShares turns a raw expense entry into one share per participant.
//
// Equal mode distributes the integer remainder one cent at a time over the
// leading participants in caller order, so the shares always sum exactly to
// the total. Custom mode requires an entry for every participant and a sum
// within one cent of the total; entries for IDs outside the participant list
// are ignored. No partial result is ever returned.
func ComputeShares(total money.Cents, participants []string, mode SplitMode, custom map[string]money.Cents) ([]Share, error) {
	if total <= 0 {
		return nil, apperr.Validationf("expense amount must be positive")
	}
	if len(participants) == 0 {
		return nil, apperr.Validationf("expense must have at least one participant")
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p] {
			return nil, apperr.Validationf("duplicate participant %q", p)
		}
		seen[p] = true
	}

	switch mode {
	case SplitEqual:
		n := int64(len(participants))
		base := int64(total) / n
		rem := int64(total) % n
		shares := make([]Share, len(participants))
		for i, p := range participants {
			amount := base
			if int64(i) < rem {
				amount++
			}
			shares[i] = Share{MemberID: p, Amount: money.Cents(amount)}
		}
		return shares, nil

	case SplitCustom:
		shares := make([]Share, len(participants))
		var sum money.Cents
		for i, p := range participants {
			amount, ok := custom[p]
			if !ok {
				return nil, apperr.Validationf("missing custom amount for participant %q", p)
			}
			if amount < 0 {
				return nil, apperr.Validationf("custom amount for participant %q must not be negative", p)
			}
			shares[i] = Share{MemberID: p, Amount: amount}
			sum += amount
		}
		if diff := (sum - total).Abs(); diff > customTolerance {
			return nil, apperr.Validationf("custom amounts (%s) must equal the expense amount (%s)", sum, total)
		}
		return shares, nil

	default:
		return nil, apperr.Validationf("unknown split mode %q", mode)
	}
}
