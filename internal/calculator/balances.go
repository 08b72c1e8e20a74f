package calculator

import (
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
)

// ComputeBalances folds ledger facts into one signed net balance per member.
// Positive means the group owes the member; negative means the member owes
// the group.
//
// Only facts referencing current members are counted: share rows whose
// member left the group, expenses whose payer left, and settlements with a
// departed party on either side are all skipped. The underlying rows stay in
// the store, so re-adding the member restores their effect.
//
// shareRows is the expense/share join, which repeats the expense columns for
// every share. Each payer is credited the full expense amount exactly once
// per expense ID; without that guard the payer would be over-credited by a
// factor of the participant count.
func ComputeBalances(shareRows []models.ExpenseShareRow, settlements []models.Settlement, validMembers map[string]bool) map[string]money.Cents {
	balances := make(map[string]money.Cents)
	credited := make(map[string]bool)

	for _, row := range shareRows {
		if !validMembers[row.MemberID] {
			continue
		}
		if validMembers[row.PaidBy] && !credited[row.ExpenseID] {
			balances[row.PaidBy] += row.ExpenseAmount
			credited[row.ExpenseID] = true
		}
		balances[row.MemberID] -= row.ShareAmount
	}

	for _, s := range settlements {
		if !validMembers[s.PayerID] || !validMembers[s.PayeeID] {
			continue
		}
		// Settling up shrinks the payer's debt and the payee's credit.
		balances[s.PayerID] += s.Amount
		balances[s.PayeeID] -= s.Amount
	}

	return balances
}
