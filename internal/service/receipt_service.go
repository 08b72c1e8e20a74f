package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/receipt"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// ReceiptService runs the two-step receipt flow: scan a photo into a pending
// analysis, then apportion the items into a regular expense. The pending
// analysis lives in the store under an opaque token until it is consumed or
// expires, so the flow survives server restarts and needs no session state.
type ReceiptService struct {
	store    storage.Store
	analyzer receipt.Analyzer
	ledger   *LedgerService
	ttl      time.Duration
}

// NewReceiptService creates a new ReceiptService. ttl bounds how long a
// scanned receipt waits for the apportion step.
func NewReceiptService(store storage.Store, analyzer receipt.Analyzer, ledger *LedgerService, ttl time.Duration) *ReceiptService {
	return &ReceiptService{store: store, analyzer: analyzer, ledger: ledger, ttl: ttl}
}

// Scan analyzes a receipt image and parks the result as a pending receipt.
// The returned token is the handle for the apportion step.
func (s *ReceiptService) Scan(ctx context.Context, actorID, groupID string, image []byte, mimeType string) (*models.PendingReceipt, error) {
	if err := s.ledger.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, apperr.Validationf("receipt image is required")
	}

	analysis, err := s.analyzer.Analyze(ctx, image, mimeType)
	if err != nil {
		return nil, err
	}
	if len(analysis.Items) == 0 {
		return nil, apperr.Validationf("no line items recognized on the receipt")
	}

	pending := &models.PendingReceipt{
		GroupID:   groupID,
		CreatedBy: actorID,
		Analysis:  *analysis,
		ExpiresAt: time.Now().Add(s.ttl).Unix(),
	}
	if err := s.store.CreatePendingReceipt(ctx, pending); err != nil {
		return nil, apperr.Storef("store pending receipt", err)
	}

	slog.Info("Receipt scanned",
		"group_id", groupID,
		"token", pending.Token,
		"items", len(analysis.Items),
		"store", analysis.StoreName,
	)
	return pending, nil
}

// Pending retrieves a scanned receipt by token, for the assignment UI.
func (s *ReceiptService) Pending(ctx context.Context, actorID, token string) (*models.PendingReceipt, error) {
	pending, err := s.store.GetPendingReceipt(ctx, token, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	if err := s.ledger.requireMember(ctx, pending.GroupID, actorID); err != nil {
		return nil, err
	}
	return pending, nil
}

// ApportionInput carries the assignment decisions for one pending receipt.
type ApportionInput struct {
	Token       string
	PaidBy      string
	Description string
	Assignments calculator.Assignments
	Confirmed   []calculator.ConfirmedPayment
}

// Apportion turns a pending receipt plus item assignments into one regular
// expense with custom splits. If every assigned item was already confirmed
// paid, no expense is created and the pending receipt is still consumed.
// Either way the token is single use.
func (s *ReceiptService) Apportion(ctx context.Context, actorID string, in ApportionInput) (*models.Expense, error) {
	pending, err := s.store.GetPendingReceipt(ctx, in.Token, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	if err := s.ledger.requireMember(ctx, pending.GroupID, actorID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, pending.GroupID)
	if err != nil {
		return nil, apperr.Storef("list members", err)
	}

	result, err := calculator.Apportion(pending.Analysis.Items, in.Assignments, in.Confirmed, members)
	if err != nil {
		return nil, err
	}

	if result.NoOp() {
		if err := s.store.DeletePendingReceipt(ctx, in.Token); err != nil {
			return nil, apperr.Storef("consume pending receipt", err)
		}
		slog.Info("Receipt fully settled at scan time, no expense created",
			"group_id", pending.GroupID,
			"token", in.Token,
		)
		return nil, nil
	}

	description := in.Description
	if description == "" {
		description = pending.Analysis.StoreName
	}
	if description == "" {
		description = "Receipt"
	}

	participants := make([]string, 0, len(result.Shares))
	for _, m := range members {
		if _, ok := result.Shares[m.ID]; ok {
			participants = append(participants, m.ID)
		}
	}

	expense, err := s.ledger.CreateExpense(ctx, actorID, ExpenseInput{
		GroupID:      pending.GroupID,
		Description:  description,
		Amount:       result.Total,
		PaidBy:       in.PaidBy,
		Participants: participants,
		SplitMode:    calculator.SplitCustom,
		CustomSplits: result.Shares,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.DeletePendingReceipt(ctx, in.Token); err != nil {
		slog.Warn("failed to consume pending receipt after expense creation",
			"token", in.Token,
			"error", err,
		)
	}
	return expense, nil
}
