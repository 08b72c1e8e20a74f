package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/models"
)

// CreateExpense persists an expense with all its shares in one transaction,
// so no reader ever sees an expense whose shares are missing.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense, shares []models.ExpenseShare) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, group_id, description, amount_cents, paid_by, created_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.PaidBy, expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, share := range shares {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, user_id, amount_cents) VALUES (?, ?, ?)",
			expense.ID, share.MemberID, share.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, []models.ExpenseShare, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, description, amount_cents, paid_by, created_by, created_at FROM expenses WHERE id = ?",
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount, &expense.PaidBy, &expense.CreatedBy, &expense.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil, apperr.NotFoundf("expense %s", expenseID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, user_id, amount_cents FROM expense_shares WHERE expense_id = ? ORDER BY user_id",
		expenseID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	var shares []models.ExpenseShare
	for rows.Next() {
		var sh models.ExpenseShare
		if err := rows.Scan(&sh.ExpenseID, &sh.MemberID, &sh.Amount); err != nil {
			return nil, nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return expense, shares, nil
}

// ListExpenses retrieves all expenses of a group, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, description, amount_cents, paid_by, created_by, created_at FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PaidBy, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// ListExpenseShareRows retrieves the expense/share join of a group in a
// stable order, one row per share.
func (s *SQLiteStore) ListExpenseShareRows(ctx context.Context, groupID string) ([]models.ExpenseShareRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.amount_cents, e.paid_by, sh.user_id, sh.amount_cents
		 FROM expenses e
		 JOIN expense_shares sh ON sh.expense_id = e.id
		 WHERE e.group_id = ?
		 ORDER BY e.created_at, e.id, sh.user_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense share rows: %w", err)
	}
	defer rows.Close()

	var result []models.ExpenseShareRow
	for rows.Next() {
		var r models.ExpenseShareRow
		if err := rows.Scan(&r.ExpenseID, &r.ExpenseAmount, &r.PaidBy, &r.MemberID, &r.ShareAmount); err != nil {
			return nil, fmt.Errorf("failed to scan expense share row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense share rows: %w", err)
	}
	return result, nil
}
