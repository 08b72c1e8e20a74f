package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/models"
)

// CreatePendingReceipt stores an analyzed receipt keyed by a fresh token.
// The analysis payload is serialized as JSON.
func (s *SQLiteStore) CreatePendingReceipt(ctx context.Context, receipt *models.PendingReceipt) error {
	if receipt.Token == "" {
		receipt.Token = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	payload, err := json.Marshal(receipt.Analysis)
	if err != nil {
		return fmt.Errorf("failed to encode receipt payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO pending_receipts (token, group_id, created_by, payload, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)",
		receipt.Token, receipt.GroupID, receipt.CreatedBy, string(payload), receipt.CreatedAt, receipt.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pending receipt: %w", err)
	}
	return nil
}

// GetPendingReceipt retrieves a pending receipt by token. A receipt past its
// expiry is reported as not found even if the janitor has not removed it yet.
func (s *SQLiteStore) GetPendingReceipt(ctx context.Context, token string, now int64) (*models.PendingReceipt, error) {
	r := &models.PendingReceipt{}
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT token, group_id, created_by, payload, created_at, expires_at FROM pending_receipts WHERE token = ? AND expires_at >= ?",
		token, now,
	).Scan(&r.Token, &r.GroupID, &r.CreatedBy, &payload, &r.CreatedAt, &r.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("pending receipt")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending receipt: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &r.Analysis); err != nil {
		return nil, fmt.Errorf("failed to decode receipt payload: %w", err)
	}
	return r, nil
}

// DeletePendingReceipt removes a consumed pending receipt.
func (s *SQLiteStore) DeletePendingReceipt(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM pending_receipts WHERE token = ?", token); err != nil {
		return fmt.Errorf("failed to delete pending receipt: %w", err)
	}
	return nil
}

// DeleteExpiredPendingReceipts removes receipts past their expiry.
func (s *SQLiteStore) DeleteExpiredPendingReceipts(ctx context.Context, now int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM pending_receipts WHERE expires_at < ?", now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired pending receipts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted pending receipts: %w", err)
	}
	return n, nil
}
