package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/events"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// LedgerService owns the expense and settlement ledger of a group and the
// balance views derived from it.
type LedgerService struct {
	store  storage.Store
	events events.Publisher
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, publisher events.Publisher) *LedgerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &LedgerService{store: store, events: publisher}
}

// ExpenseInput is a raw expense entry before validation and splitting.
type ExpenseInput struct {
	GroupID      string
	Description  string
	Amount       money.Cents
	PaidBy       string
	Participants []string
	SplitMode    calculator.SplitMode
	CustomSplits map[string]money.Cents
}

// CreateExpense validates, splits, and records one expense. The expense and
// all its shares land in one atomic write; a validation failure writes
// nothing.
func (s *LedgerService) CreateExpense(ctx context.Context, actorID string, in ExpenseInput) (*models.Expense, error) {
	if err := s.requireMember(ctx, in.GroupID, actorID); err != nil {
		return nil, err
	}

	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, apperr.Validationf("expense description is required")
	}
	if in.PaidBy == "" {
		return nil, apperr.Validationf("expense payer is required")
	}

	members, err := s.store.ListMembers(ctx, in.GroupID)
	if err != nil {
		return nil, apperr.Storef("list members", err)
	}
	valid := make(map[string]bool, len(members))
	for _, m := range members {
		valid[m.ID] = true
	}

	if !valid[in.PaidBy] {
		return nil, apperr.Validationf("payer %q is not a member of the group", in.PaidBy)
	}
	for _, p := range in.Participants {
		if !valid[p] {
			return nil, apperr.Validationf("participant %q is not a member of the group", p)
		}
	}

	shares, err := calculator.ComputeShares(in.Amount, in.Participants, in.SplitMode, in.CustomSplits)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     in.GroupID,
		Description: in.Description,
		Amount:      in.Amount,
		PaidBy:      in.PaidBy,
		CreatedBy:   actorID,
	}
	rows := make([]models.ExpenseShare, len(shares))
	for i, sh := range shares {
		rows[i] = models.ExpenseShare{MemberID: sh.MemberID, Amount: sh.Amount}
	}
	if err := s.store.CreateExpense(ctx, expense, rows); err != nil {
		slog.Error("CreateExpense failed", "group_id", in.GroupID, "error", err)
		return nil, apperr.Storef("create expense", err)
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", in.GroupID,
		"amount", expense.Amount,
		"participants", len(shares),
	)
	s.publish(ctx, events.Event{
		Type:        events.TypeExpenseCreated,
		GroupID:     in.GroupID,
		ActorID:     actorID,
		SubjectID:   expense.ID,
		Description: expense.Description,
		Amount:      expense.Amount,
	})
	return expense, nil
}

// CreateSettlement records an out-of-band payment between two members.
func (s *LedgerService) CreateSettlement(ctx context.Context, actorID, groupID, payerID, payeeID string, amount money.Cents, description string) (*models.Settlement, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperr.Validationf("settlement amount must be positive")
	}
	if payerID == payeeID {
		return nil, apperr.Validationf("payer and payee must differ")
	}
	for _, id := range []string{payerID, payeeID} {
		ok, err := s.store.IsMember(ctx, groupID, id)
		if err != nil {
			return nil, apperr.Storef("check membership", err)
		}
		if !ok {
			return nil, apperr.Validationf("user %q is not a member of the group", id)
		}
	}

	settlement := &models.Settlement{
		GroupID:     groupID,
		PayerID:     payerID,
		PayeeID:     payeeID,
		Amount:      amount,
		Description: strings.TrimSpace(description),
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("CreateSettlement failed", "group_id", groupID, "error", err)
		return nil, apperr.Storef("create settlement", err)
	}

	slog.Info("Settlement created",
		"settlement_id", settlement.ID,
		"group_id", groupID,
		"amount", settlement.Amount,
	)
	s.publish(ctx, events.Event{
		Type:        events.TypeSettlementCreated,
		GroupID:     groupID,
		ActorID:     actorID,
		SubjectID:   settlement.ID,
		Description: settlement.Description,
		Amount:      settlement.Amount,
	})
	return settlement, nil
}

// ListExpenses retrieves the expense history of a group, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, actorID, groupID string) ([]models.Expense, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, groupID)
}

// ListSettlements retrieves the settlement history of a group, newest first.
func (s *LedgerService) ListSettlements(ctx context.Context, actorID, groupID string) ([]models.Settlement, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListSettlements(ctx, groupID)
}

// Balances recomputes net balances for every current member from the full
// ledger. Nothing is cached: every call walks all facts, so balances can
// never drift from the ledger.
func (s *LedgerService) Balances(ctx context.Context, actorID, groupID string) (map[string]money.Cents, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, apperr.Storef("list members", err)
	}
	valid := make(map[string]bool, len(members))
	for _, m := range members {
		valid[m.ID] = true
	}

	rows, err := s.store.ListExpenseShareRows(ctx, groupID)
	if err != nil {
		return nil, apperr.Storef("list expense shares", err)
	}
	settlements, err := s.store.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, apperr.Storef("list settlements", err)
	}

	return calculator.ComputeBalances(rows, settlements, valid), nil
}

// SimplifiedDebts reduces the current balances to a minimal set of transfers
// that settles the whole group.
func (s *LedgerService) SimplifiedDebts(ctx context.Context, actorID, groupID string) ([]calculator.Transfer, error) {
	balances, err := s.Balances(ctx, actorID, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.SimplifyDebts(balances), nil
}

func (s *LedgerService) requireMember(ctx context.Context, groupID, actorID string) error {
	ok, err := s.store.IsMember(ctx, groupID, actorID)
	if err != nil {
		return apperr.Storef("check membership", err)
	}
	if !ok {
		return apperr.ErrNotMember
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, event events.Event) {
	if event.OccurredAt == 0 {
		event.OccurredAt = time.Now().Unix()
	}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		slog.Warn("event publish failed", "type", event.Type, "group_id", event.GroupID, "error", err)
	}
}
