package calculator

import (
	"testing"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
)

func tableMembers() []models.Member {
	return []models.Member{
		{ID: "a", Username: "alice"},
		{ID: "b", Username: "bob"},
		{ID: "c", Username: "carol"},
	}
}

func TestApportion(t *testing.T) {
	tests := []struct {
		name        string
		items       []models.ReceiptItem
		assignments Assignments
		confirmed   []ConfirmedPayment
		wantErr     bool
		wantTotal   money.Cents
		wantShares  map[string]money.Cents
	}{
		{
			name: "single and split items aggregate per member",
			items: []models.ReceiptItem{
				{Name: "Pizza", Price: 2000},
				{Name: "Beer", Price: 600},
			},
			assignments: Assignments{0: {"b", "c"}, 1: {"b"}},
			wantTotal:   2600,
			wantShares:  map[string]money.Cents{"b": 1600, "c": 1000},
		},
		{
			name: "confirmed payment strips assignee and recomputes",
			// Bob already paid his half to the bill payer: Carol owes the
			// whole pizza.
			items:       []models.ReceiptItem{{Name: "Pizza", Price: 2000}},
			assignments: Assignments{0: {"b", "c"}},
			confirmed:   []ConfirmedPayment{{Name: "bob", Amount: 1000}},
			wantTotal:   2000,
			wantShares:  map[string]money.Cents{"c": 2000},
		},
		{
			name:        "guests never enter group debt",
			items:       []models.ReceiptItem{{Name: "Wine", Price: 1500}},
			assignments: Assignments{0: {"a", "guest-1", "guest-2"}},
			wantTotal:   1500,
			wantShares:  map[string]money.Cents{"a": 1500},
		},
		{
			name:        "item assigned only to guests contributes nothing",
			items:       []models.ReceiptItem{{Name: "Soda", Price: 300}},
			assignments: Assignments{0: {"guest-1"}},
			wantTotal:   0,
			wantShares:  map[string]money.Cents{},
		},
		{
			name:        "unassigned item contributes nothing",
			items:       []models.ReceiptItem{{Name: "Bread", Price: 250}},
			assignments: Assignments{},
			wantTotal:   0,
			wantShares:  map[string]money.Cents{},
		},
		{
			name:        "all confirmed is a no-op, not an error",
			items:       []models.ReceiptItem{{Name: "Pizza", Price: 2000}},
			assignments: Assignments{0: {"b"}},
			confirmed:   []ConfirmedPayment{{Name: "bob", Amount: 2000}},
			wantTotal:   0,
			wantShares:  map[string]money.Cents{},
		},
		{
			name:        "uneven split spreads the remainder over leading assignees",
			items:       []models.ReceiptItem{{Name: "Tapas", Price: 1000}},
			assignments: Assignments{0: {"a", "b", "c"}},
			wantTotal:   1000,
			wantShares:  map[string]money.Cents{"a": 334, "b": 333, "c": 333},
		},
		{
			name:        "negative price aborts everything",
			items:       []models.ReceiptItem{{Name: "Pizza", Price: 2000}, {Name: "Refund", Price: -100}},
			assignments: Assignments{0: {"a"}},
			wantErr:     true,
		},
		{
			name:        "confirmed name without a matching member is ignored",
			items:       []models.ReceiptItem{{Name: "Pizza", Price: 2000}},
			assignments: Assignments{0: {"b"}},
			confirmed:   []ConfirmedPayment{{Name: "nobody", Amount: 2000}},
			wantTotal:   2000,
			wantShares:  map[string]money.Cents{"b": 2000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apportion(tt.items, tt.assignments, tt.confirmed, tableMembers())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Apportion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperr.IsValidation(err) {
					t.Errorf("error %v is not a ValidationError", err)
				}
				return
			}
			if got.Total != tt.wantTotal {
				t.Errorf("total = %d, want %d", got.Total, tt.wantTotal)
			}
			if len(got.Shares) != len(tt.wantShares) {
				t.Fatalf("shares = %v, want %v", got.Shares, tt.wantShares)
			}
			for id, want := range tt.wantShares {
				if got.Shares[id] != want {
					t.Errorf("share[%s] = %d, want %d", id, got.Shares[id], want)
				}
			}
			if (len(got.Shares) == 0) != got.NoOp() {
				t.Errorf("NoOp() = %v inconsistent with shares %v", got.NoOp(), got.Shares)
			}
		})
	}
}
