package calculator

import (
	"testing"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/money"
)

func TestComputeShares(t *testing.T) {
	tests := []struct {
		name         string
		total        money.Cents
		participants []string
		mode         SplitMode
		custom       map[string]money.Cents
		wantErr      bool
		validateFunc func(t *testing.T, shares []Share)
	}{
		{
			name:         "equal split three ways",
			total:        3000,
			participants: []string{"a", "b", "c"},
			mode:         SplitEqual,
			validateFunc: func(t *testing.T, shares []Share) {
				for _, s := range shares {
					if s.Amount != 1000 {
						t.Errorf("%s share = %d, want 1000", s.MemberID, s.Amount)
					}
				}
			},
		},
		{
			name:         "equal split with remainder sums exactly",
			total:        1000,
			participants: []string{"a", "b", "c"},
			mode:         SplitEqual,
			validateFunc: func(t *testing.T, shares []Share) {
				var sum money.Cents
				for _, s := range shares {
					sum += s.Amount
				}
				if sum != 1000 {
					t.Errorf("shares sum = %d, want 1000", sum)
				}
				// Leading participants absorb the extra cents.
				if shares[0].Amount != 334 || shares[1].Amount != 333 || shares[2].Amount != 333 {
					t.Errorf("shares = %v, want [334 333 333]", shares)
				}
			},
		},
		{
			name:         "custom split valid",
			total:        5000,
			participants: []string{"a", "b"},
			mode:         SplitCustom,
			custom:       map[string]money.Cents{"a": 2000, "b": 3000},
			validateFunc: func(t *testing.T, shares []Share) {
				if shares[0].Amount != 2000 || shares[1].Amount != 3000 {
					t.Errorf("shares = %v, want a:2000 b:3000", shares)
				}
			},
		},
		{
			name:         "custom split total mismatch",
			total:        5000,
			participants: []string{"a", "b"},
			mode:         SplitCustom,
			custom:       map[string]money.Cents{"a": 2000, "b": 2000},
			wantErr:      true,
		},
		{
			name:         "custom split within one cent passes",
			total:        5000,
			participants: []string{"a", "b"},
			mode:         SplitCustom,
			custom:       map[string]money.Cents{"a": 2500, "b": 2499},
		},
		{
			name:         "custom split missing participant",
			total:        5000,
			participants: []string{"a", "b"},
			mode:         SplitCustom,
			custom:       map[string]money.Cents{"a": 5000},
			wantErr:      true,
		},
		{
			name:         "custom split ignores extra entries",
			total:        5000,
			participants: []string{"a", "b"},
			mode:         SplitCustom,
			custom:       map[string]money.Cents{"a": 2000, "b": 3000, "ghost": 9999},
		},
		{
			name:         "duplicate participant rejected",
			total:        1000,
			participants: []string{"a", "a"},
			mode:         SplitEqual,
			wantErr:      true,
		},
		{
			name:         "zero amount rejected",
			total:        0,
			participants: []string{"a"},
			mode:         SplitEqual,
			wantErr:      true,
		},
		{
			name:         "no participants rejected",
			total:        1000,
			participants: nil,
			mode:         SplitEqual,
			wantErr:      true,
		},
		{
			name:         "unknown mode rejected",
			total:        1000,
			participants: []string{"a"},
			mode:         SplitMode("percentage"),
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := ComputeShares(tt.total, tt.participants, tt.mode, tt.custom)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ComputeShares() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperr.IsValidation(err) {
					t.Errorf("error %v is not a ValidationError", err)
				}
				return
			}
			if len(shares) != len(tt.participants) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.participants))
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestComputeSharesCompleteness(t *testing.T) {
	// Split completeness: shares always sum to the amount within a cent,
	// exactly for equal mode.
	totals := []money.Cents{1, 99, 100, 101, 1000, 2999, 100000}
	participants := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, total := range totals {
		for n := 1; n <= len(participants); n++ {
			shares, err := ComputeShares(total, participants[:n], SplitEqual, nil)
			if err != nil {
				t.Fatalf("ComputeShares(%d, %d participants) failed: %v", total, n, err)
			}
			var sum money.Cents
			for _, s := range shares {
				sum += s.Amount
			}
			if sum != total {
				t.Errorf("total=%d n=%d: shares sum to %d", total, n, sum)
			}
		}
	}
}
