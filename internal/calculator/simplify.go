package calculator

import (
	"sort"

	"github.com/fairsplit/fairsplit/internal/money"
)

// Transfer is one pairwise payment in a simplified settlement plan.
type Transfer struct {
	From   string
	To     string
	Amount money.Cents
}

// residueCents is the threshold below which remainders are treated as
// already settled. It keeps rounding residue from the apportioner out of the
// plan instead of producing noisy micro-transactions.
const residueCents = 1

type party struct {
	id     string
	amount money.Cents
}

// SimplifyDebts reduces a balance map to a minimal ordered list of transfers
// that would zero all balances. Greedy two-pointer matching: both sides are
// sorted by descending magnitude and the largest debt is repeatedly matched
// against the largest credit.
//
// Equal magnitudes are ordered by member ID ascending, making the output
// deterministic for any input map.
func SimplifyDebts(balances map[string]money.Cents) []Transfer {
	var creditors, debtors []party
	for id, bal := range balances {
		switch {
		case bal > 0:
			creditors = append(creditors, party{id: id, amount: bal})
		case bal < 0:
			debtors = append(debtors, party{id: id, amount: -bal})
		}
	}

	byMagnitude := func(ps []party) func(i, j int) bool {
		return func(i, j int) bool {
			if ps[i].amount != ps[j].amount {
				return ps[i].amount > ps[j].amount
			}
			return ps[i].id < ps[j].id
		}
	}
	sort.Slice(creditors, byMagnitude(creditors))
	sort.Slice(debtors, byMagnitude(debtors))

	var transfers []Transfer
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		amount := creditors[i].amount
		if debtors[j].amount < amount {
			amount = debtors[j].amount
		}

		if amount > residueCents {
			transfers = append(transfers, Transfer{
				From:   debtors[j].id,
				To:     creditors[i].id,
				Amount: amount,
			})
		}

		creditors[i].amount -= amount
		debtors[j].amount -= amount

		if creditors[i].amount <= residueCents {
			i++
		}
		if debtors[j].amount <= residueCents {
			j++
		}
	}

	return transfers
}
