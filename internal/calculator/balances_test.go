package calculator

import (
	"reflect"
	"testing"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
)

func memberSet(ids ...string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// dinnerRows is the expense/share join for a 30.00 dinner paid by a, split
// equally among a, b, c. The expense columns repeat per share, exactly as a
// SQL join produces them.
func dinnerRows() []models.ExpenseShareRow {
	return []models.ExpenseShareRow{
		{ExpenseID: "e1", ExpenseAmount: 3000, PaidBy: "a", MemberID: "a", ShareAmount: 1000},
		{ExpenseID: "e1", ExpenseAmount: 3000, PaidBy: "a", MemberID: "b", ShareAmount: 1000},
		{ExpenseID: "e1", ExpenseAmount: 3000, PaidBy: "a", MemberID: "c", ShareAmount: 1000},
	}
}

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name        string
		rows        []models.ExpenseShareRow
		settlements []models.Settlement
		valid       map[string]bool
		want        map[string]money.Cents
	}{
		{
			name:  "dinner split three ways",
			rows:  dinnerRows(),
			valid: memberSet("a", "b", "c"),
			want:  map[string]money.Cents{"a": 2000, "b": -1000, "c": -1000},
		},
		{
			name: "payer credited once despite join duplication",
			rows: dinnerRows(),
			// The join yields one row per share; the payer must not be
			// credited 3x30.00.
			valid: memberSet("a", "b", "c"),
			want:  map[string]money.Cents{"a": 2000, "b": -1000, "c": -1000},
		},
		{
			name: "removed member excluded",
			rows: dinnerRows(),
			// c left the group: their share row is ignored, the rest stand.
			valid: memberSet("a", "b"),
			want:  map[string]money.Cents{"a": 2000, "b": -1000},
		},
		{
			name:  "removed payer excluded entirely",
			rows:  dinnerRows(),
			valid: memberSet("b", "c"),
			want:  map[string]money.Cents{"b": -1000, "c": -1000},
		},
		{
			name: "settlement shifts balances",
			rows: dinnerRows(),
			settlements: []models.Settlement{
				{GroupID: "g", PayerID: "b", PayeeID: "a", Amount: 1000},
			},
			valid: memberSet("a", "b", "c"),
			want:  map[string]money.Cents{"a": 1000, "b": 0, "c": -1000},
		},
		{
			name: "settlement with departed payee ignored",
			rows: nil,
			settlements: []models.Settlement{
				{GroupID: "g", PayerID: "a", PayeeID: "gone", Amount: 500},
			},
			valid: memberSet("a"),
			want:  map[string]money.Cents{},
		},
		{
			name:  "no activity yields empty map",
			valid: memberSet("a", "b"),
			want:  map[string]money.Cents{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.rows, tt.settlements, tt.valid)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ComputeBalances() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeBalancesConservation(t *testing.T) {
	// Conservation: any sequence of expenses and settlements among current
	// members nets to zero.
	rows := []models.ExpenseShareRow{
		{ExpenseID: "e1", ExpenseAmount: 3000, PaidBy: "a", MemberID: "a", ShareAmount: 1000},
		{ExpenseID: "e1", ExpenseAmount: 3000, PaidBy: "a", MemberID: "b", ShareAmount: 1000},
		{ExpenseID: "e1", ExpenseAmount: 3000, PaidBy: "a", MemberID: "c", ShareAmount: 1000},
		{ExpenseID: "e2", ExpenseAmount: 4550, PaidBy: "b", MemberID: "a", ShareAmount: 2275},
		{ExpenseID: "e2", ExpenseAmount: 4550, PaidBy: "b", MemberID: "b", ShareAmount: 2275},
		{ExpenseID: "e3", ExpenseAmount: 999, PaidBy: "c", MemberID: "b", ShareAmount: 999},
	}
	settlements := []models.Settlement{
		{PayerID: "b", PayeeID: "a", Amount: 1500},
		{PayerID: "c", PayeeID: "b", Amount: 250},
	}
	valid := memberSet("a", "b", "c")

	balances := ComputeBalances(rows, settlements, valid)
	var sum money.Cents
	for _, b := range balances {
		sum += b
	}
	if sum != 0 {
		t.Errorf("balances sum to %d, want 0 (balances: %v)", sum, balances)
	}
}

func TestComputeBalancesIdempotent(t *testing.T) {
	rows := dinnerRows()
	settlements := []models.Settlement{{PayerID: "b", PayeeID: "a", Amount: 500}}
	valid := memberSet("a", "b", "c")

	first := ComputeBalances(rows, settlements, valid)
	second := ComputeBalances(rows, settlements, valid)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("recomputation differs: %v vs %v", first, second)
	}
}

func TestComputeBalancesRestoreOnRejoin(t *testing.T) {
	// Membership filtering leaves the rows untouched; re-adding the member
	// restores their effect.
	rows := dinnerRows()

	without := ComputeBalances(rows, nil, memberSet("a", "b"))
	if _, ok := without["c"]; ok {
		t.Fatal("departed member c should not appear in balances")
	}

	restored := ComputeBalances(rows, nil, memberSet("a", "b", "c"))
	if restored["c"] != -1000 {
		t.Errorf("after rejoin c = %d, want -1000", restored["c"])
	}
}
