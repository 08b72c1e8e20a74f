package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "fairsplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateUser(t *testing.T, store *SQLiteStore, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return u
}

func mustCreateGroup(t *testing.T, store *SQLiteStore, creator *models.User, code string) *models.Group {
	t.Helper()
	g := &models.Group{Name: "Trip", CreatedBy: creator.ID, InviteCode: code}
	if err := store.CreateGroup(context.Background(), g); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return g
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser generates ID and timestamp", func(t *testing.T) {
		u := mustCreateUser(t, store, "alice")
		if u.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if u.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetUserByEmail round-trips", func(t *testing.T) {
		u := mustCreateUser(t, store, "bob")
		got, err := store.GetUserByEmail(ctx, "bob@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != u.ID || got.Username != "bob" {
			t.Errorf("got user %+v, want ID=%s username=bob", got, u.ID)
		}
	})

	t.Run("missing user maps to ErrNotFound", func(t *testing.T) {
		_, err := store.GetUser(ctx, "nonexistent-id")
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateUserProfile persists bank details", func(t *testing.T) {
		u := mustCreateUser(t, store, "carol")
		err := store.UpdateUserProfile(ctx, u.ID, "Carol Rossi", "DE89370400440532013000", "COBADEFFXXX")
		if err != nil {
			t.Fatalf("UpdateUserProfile failed: %v", err)
		}
		got, err := store.GetUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.FullName != "Carol Rossi" || got.IBAN != "DE89370400440532013000" || got.BIC != "COBADEFFXXX" {
			t.Errorf("profile not persisted: %+v", got)
		}
	})

	t.Run("reset token lifecycle", func(t *testing.T) {
		u := mustCreateUser(t, store, "dave")
		tok := &models.PasswordResetToken{
			Token:     "tok-1",
			UserID:    u.ID,
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		}
		if err := store.CreateResetToken(ctx, tok); err != nil {
			t.Fatalf("CreateResetToken failed: %v", err)
		}

		got, err := store.GetResetToken(ctx, "tok-1")
		if err != nil {
			t.Fatalf("GetResetToken failed: %v", err)
		}
		if got.Used {
			t.Error("fresh token reported as used")
		}

		if err := store.ConsumeResetToken(ctx, "tok-1"); err != nil {
			t.Fatalf("ConsumeResetToken failed: %v", err)
		}
		if err := store.ConsumeResetToken(ctx, "tok-1"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("second consume should be ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteExpiredResetTokens only removes expired", func(t *testing.T) {
		u := mustCreateUser(t, store, "erin")
		now := time.Now().Unix()
		store.CreateResetToken(ctx, &models.PasswordResetToken{Token: "old", UserID: u.ID, ExpiresAt: now - 10})
		store.CreateResetToken(ctx, &models.PasswordResetToken{Token: "new", UserID: u.ID, ExpiresAt: now + 1000})

		n, err := store.DeleteExpiredResetTokens(ctx, now)
		if err != nil {
			t.Fatalf("DeleteExpiredResetTokens failed: %v", err)
		}
		if n != 1 {
			t.Errorf("deleted %d tokens, want 1", n)
		}
		if _, err := store.GetResetToken(ctx, "new"); err != nil {
			t.Errorf("live token was deleted: %v", err)
		}
	})
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup enrolls the creator", func(t *testing.T) {
		alice := mustCreateUser(t, store, "alice")
		g := mustCreateGroup(t, store, alice, "TRIPAAAA")

		members, err := store.ListMembers(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(members) != 1 || members[0].ID != alice.ID {
			t.Errorf("members = %+v, want just the creator", members)
		}
	})

	t.Run("invite code lookup", func(t *testing.T) {
		bob := mustCreateUser(t, store, "bob")
		g := mustCreateGroup(t, store, bob, "HOUSEBBB")

		got, err := store.GetGroupByInviteCode(ctx, "HOUSEBBB")
		if err != nil {
			t.Fatalf("GetGroupByInviteCode failed: %v", err)
		}
		if got.ID != g.ID {
			t.Errorf("got group %s, want %s", got.ID, g.ID)
		}

		if _, err := store.GetGroupByInviteCode(ctx, "NOPE0000"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("unknown code should be ErrNotFound, got %v", err)
		}
	})

	t.Run("membership add, check, remove", func(t *testing.T) {
		carol := mustCreateUser(t, store, "carol")
		dave := mustCreateUser(t, store, "dave")
		g := mustCreateGroup(t, store, carol, "FLATCCCC")

		if err := store.AddMember(ctx, g.ID, dave.ID); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		ok, err := store.IsMember(ctx, g.ID, dave.ID)
		if err != nil || !ok {
			t.Fatalf("IsMember = %v, %v; want true", ok, err)
		}

		if err := store.RemoveMember(ctx, g.ID, dave.ID); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		ok, _ = store.IsMember(ctx, g.ID, dave.ID)
		if ok {
			t.Error("removed member still reported as member")
		}
		if err := store.RemoveMember(ctx, g.ID, dave.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("removing a non-member should be ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroups reflects current membership only", func(t *testing.T) {
		erin := mustCreateUser(t, store, "erin")
		frank := mustCreateUser(t, store, "frank")
		g1 := mustCreateGroup(t, store, erin, "SKIDDDDD")
		mustCreateGroup(t, store, frank, "BBQEEEEE")

		groups, err := store.ListGroups(ctx, erin.ID)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != g1.ID {
			t.Errorf("groups = %+v, want only %s", groups, g1.ID)
		}
	})
}

func TestLedger(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice")
	bob := mustCreateUser(t, store, "bob")
	g := mustCreateGroup(t, store, alice, "DINNER01")
	if err := store.AddMember(ctx, g.ID, bob.ID); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	t.Run("CreateExpense persists shares atomically", func(t *testing.T) {
		e := &models.Expense{
			GroupID:     g.ID,
			Description: "Dinner",
			Amount:      3000,
			PaidBy:      alice.ID,
			CreatedBy:   alice.ID,
		}
		shares := []models.ExpenseShare{
			{MemberID: alice.ID, Amount: 1500},
			{MemberID: bob.ID, Amount: 1500},
		}
		if err := store.CreateExpense(ctx, e, shares); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if e.ID == "" {
			t.Error("Expected expense ID to be generated")
		}

		got, gotShares, err := store.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Amount != 3000 || got.PaidBy != alice.ID {
			t.Errorf("expense = %+v", got)
		}
		if len(gotShares) != 2 {
			t.Fatalf("got %d shares, want 2", len(gotShares))
		}
	})

	t.Run("ListExpenseShareRows joins expense columns onto every share", func(t *testing.T) {
		rows, err := store.ListExpenseShareRows(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListExpenseShareRows failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("got %d rows, want 2", len(rows))
		}
		for _, r := range rows {
			if r.ExpenseAmount != 3000 || r.PaidBy != alice.ID {
				t.Errorf("row = %+v, want expense columns repeated", r)
			}
		}
	})

	t.Run("duplicate share member is rejected and nothing is written", func(t *testing.T) {
		before, _ := store.ListExpenses(ctx, g.ID)

		e := &models.Expense{GroupID: g.ID, Description: "Bad", Amount: 1000, PaidBy: alice.ID, CreatedBy: alice.ID}
		err := store.CreateExpense(ctx, e, []models.ExpenseShare{
			{MemberID: bob.ID, Amount: 500},
			{MemberID: bob.ID, Amount: 500},
		})
		if err == nil {
			t.Fatal("expected primary key violation, got nil")
		}

		after, _ := store.ListExpenses(ctx, g.ID)
		if len(after) != len(before) {
			t.Errorf("partial expense visible after failed write: %d -> %d", len(before), len(after))
		}
	})

	t.Run("settlements round-trip", func(t *testing.T) {
		st := &models.Settlement{
			GroupID: g.ID,
			PayerID: bob.ID,
			PayeeID: alice.ID,
			Amount:  1500,
		}
		if err := store.CreateSettlement(ctx, st); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		list, err := store.ListSettlements(ctx, g.ID)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(list) != 1 || list[0].Amount != 1500 || list[0].PayerID != bob.ID {
			t.Errorf("settlements = %+v", list)
		}
	})
}

func TestPendingReceipts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice")
	g := mustCreateGroup(t, store, alice, "RCPT0001")
	now := time.Now().Unix()

	analysis := models.ReceiptAnalysis{
		StoreName: "Trattoria",
		Currency:  "EUR",
		Total:     2600,
		Items: []models.ReceiptItem{
			{Name: "Pizza", Price: 2000},
			{Name: "Beer", Price: 600},
		},
	}

	t.Run("payload round-trips through JSON", func(t *testing.T) {
		r := &models.PendingReceipt{
			GroupID:   g.ID,
			CreatedBy: alice.ID,
			Analysis:  analysis,
			ExpiresAt: now + 1800,
		}
		if err := store.CreatePendingReceipt(ctx, r); err != nil {
			t.Fatalf("CreatePendingReceipt failed: %v", err)
		}
		if r.Token == "" {
			t.Error("Expected token to be generated")
		}

		got, err := store.GetPendingReceipt(ctx, r.Token, now)
		if err != nil {
			t.Fatalf("GetPendingReceipt failed: %v", err)
		}
		if got.Analysis.StoreName != "Trattoria" || len(got.Analysis.Items) != 2 {
			t.Errorf("analysis did not round-trip: %+v", got.Analysis)
		}
		if got.Analysis.Items[0].Price != 2000 {
			t.Errorf("item price = %d, want 2000", got.Analysis.Items[0].Price)
		}
	})

	t.Run("expired receipt reads as not found", func(t *testing.T) {
		r := &models.PendingReceipt{
			GroupID:   g.ID,
			CreatedBy: alice.ID,
			Analysis:  analysis,
			ExpiresAt: now - 1,
		}
		if err := store.CreatePendingReceipt(ctx, r); err != nil {
			t.Fatalf("CreatePendingReceipt failed: %v", err)
		}
		if _, err := store.GetPendingReceipt(ctx, r.Token, now); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound for expired receipt, got %v", err)
		}

		n, err := store.DeleteExpiredPendingReceipts(ctx, now)
		if err != nil {
			t.Fatalf("DeleteExpiredPendingReceipts failed: %v", err)
		}
		if n != 1 {
			t.Errorf("deleted %d receipts, want 1", n)
		}
	})

	t.Run("consumed receipt is gone", func(t *testing.T) {
		r := &models.PendingReceipt{
			GroupID:   g.ID,
			CreatedBy: alice.ID,
			Analysis:  analysis,
			ExpiresAt: now + 1800,
		}
		if err := store.CreatePendingReceipt(ctx, r); err != nil {
			t.Fatalf("CreatePendingReceipt failed: %v", err)
		}
		if err := store.DeletePendingReceipt(ctx, r.Token); err != nil {
			t.Fatalf("DeletePendingReceipt failed: %v", err)
		}
		if _, err := store.GetPendingReceipt(ctx, r.Token, now); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})
}
