package calculator

import (
	"reflect"
	"testing"

	"github.com/fairsplit/fairsplit/internal/money"
)

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name     string
		balances map[string]money.Cents
		want     []Transfer
	}{
		{
			name:     "dinner scenario",
			balances: map[string]money.Cents{"a": 2000, "b": -1000, "c": -1000},
			want: []Transfer{
				{From: "b", To: "a", Amount: 1000},
				{From: "c", To: "a", Amount: 1000},
			},
		},
		{
			name:     "after partial settlement",
			balances: map[string]money.Cents{"a": 500, "b": 500, "c": -1000},
			want: []Transfer{
				{From: "c", To: "a", Amount: 500},
				{From: "c", To: "b", Amount: 500},
			},
		},
		{
			name:     "single pair",
			balances: map[string]money.Cents{"a": 4200, "b": -4200},
			want:     []Transfer{{From: "b", To: "a", Amount: 4200}},
		},
		{
			name:     "sub-cent residue dropped",
			balances: map[string]money.Cents{"a": 1, "b": -1},
			want:     nil,
		},
		{
			name:     "all settled",
			balances: map[string]money.Cents{"a": 0, "b": 0},
			want:     nil,
		},
		{
			name:     "empty input",
			balances: map[string]money.Cents{},
			want:     nil,
		},
		{
			name:     "largest matched first",
			balances: map[string]money.Cents{"a": 7000, "b": 3000, "c": -6000, "d": -4000},
			want: []Transfer{
				{From: "c", To: "a", Amount: 6000},
				{From: "d", To: "a", Amount: 1000},
				{From: "d", To: "b", Amount: 3000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifyDebts(tt.balances)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SimplifyDebts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimplifyDebtsDeterministicTieBreak(t *testing.T) {
	// Equal magnitudes order by member ID ascending, so repeated runs over
	// the same map agree even though map iteration does not.
	balances := map[string]money.Cents{"zoe": 1000, "amy": 1000, "bob": -1000, "cal": -1000}
	want := []Transfer{
		{From: "bob", To: "amy", Amount: 1000},
		{From: "cal", To: "zoe", Amount: 1000},
	}
	for i := 0; i < 20; i++ {
		if got := SimplifyDebts(balances); !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: SimplifyDebts() = %v, want %v", i, got, want)
		}
	}
}

func TestSimplifyDebtsReplayZeroes(t *testing.T) {
	// Replaying the emitted transfers drives every balance within a cent of
	// zero.
	cases := []map[string]money.Cents{
		{"a": 2000, "b": -1000, "c": -1000},
		{"a": 12345, "b": -300, "c": -12045},
		{"a": 667, "b": -333, "c": -333, "d": -1},
		{"a": 9999, "b": 1, "c": -5000, "d": -5000},
	}
	for _, balances := range cases {
		remaining := make(map[string]money.Cents, len(balances))
		for id, b := range balances {
			remaining[id] = b
		}

		transfers := SimplifyDebts(balances)
		for _, tr := range transfers {
			remaining[tr.From] += tr.Amount
			remaining[tr.To] -= tr.Amount
		}
		for id, b := range remaining {
			if b.Abs() > residueCents {
				t.Errorf("balances %v: %s left at %d after replay", balances, id, b)
			}
		}

		creditors, debtors := 0, 0
		for _, b := range balances {
			if b > 0 {
				creditors++
			} else if b < 0 {
				debtors++
			}
		}
		if max := creditors + debtors - 1; len(transfers) > max {
			t.Errorf("balances %v: %d transfers exceeds bound %d", balances, len(transfers), max)
		}
	}
}
