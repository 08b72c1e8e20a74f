// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/fairsplit/fairsplit/internal/models"
)

// Store defines the interface for fairsplit storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Write operations are atomic: partially applied writes are never visible.
// Lookups return apperr.ErrNotFound (wrapped) when the record does not exist.
type Store interface {
	// CreateUser persists a new account. The user.ID field will be
	// populated by the store if empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// UpdateUserProfile updates the mutable profile fields (full name and
	// bank details) of an existing user.
	UpdateUserProfile(ctx context.Context, userID, fullName, iban, bic string) error

	// UpdateUserPassword replaces the stored password hash.
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error

	// CreateResetToken persists a single-use password reset token.
	CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error

	// GetResetToken retrieves a reset token by its value, used or not.
	GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)

	// ConsumeResetToken marks a reset token as used. Returns an error if
	// the token does not exist or was already used.
	ConsumeResetToken(ctx context.Context, token string) error

	// DeleteExpiredResetTokens removes tokens past their expiry and
	// returns the number deleted.
	DeleteExpiredResetTokens(ctx context.Context, now int64) (int64, error)

	// CreateGroup persists a new group and adds the creator as its first
	// member in the same transaction.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GetGroupByInviteCode retrieves a group by its invite code.
	GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)

	// UpdateGroupInviteCode replaces a group's invite code, revoking the
	// old one.
	UpdateGroupInviteCode(ctx context.Context, groupID, code string) error

	// ListGroups retrieves all groups the user is currently a member of.
	ListGroups(ctx context.Context, userID string) ([]models.Group, error)

	// AddMember adds a user to a group. Re-adding a current member is an
	// error; rejoining after removal creates a fresh membership.
	AddMember(ctx context.Context, groupID, userID string) error

	// RemoveMember removes a user from a group. The user's ledger facts
	// are kept and resurface if the user rejoins.
	RemoveMember(ctx context.Context, groupID, userID string) error

	// ListMembers retrieves the current member snapshot of a group.
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)

	// IsMember reports whether the user is currently a member of the group.
	IsMember(ctx context.Context, groupID, userID string) (bool, error)

	// CreateExpense persists an expense together with all its shares in a
	// single transaction. The expense.ID field will be populated by the
	// store if empty.
	CreateExpense(ctx context.Context, expense *models.Expense, shares []models.ExpenseShare) error

	// GetExpense retrieves an expense by ID, including its shares.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, []models.ExpenseShare, error)

	// ListExpenses retrieves all expenses of a group, newest first.
	ListExpenses(ctx context.Context, groupID string) ([]models.Expense, error)

	// ListExpenseShareRows retrieves the expense/share join for a group,
	// one row per share, used for balance computation.
	ListExpenseShareRows(ctx context.Context, groupID string) ([]models.ExpenseShareRow, error)

	// CreateSettlement persists a settlement. The settlement.ID field will
	// be populated by the store if empty.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlements retrieves all settlements of a group, newest first.
	ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error)

	// CreatePendingReceipt stores an analyzed receipt awaiting apportioning.
	CreatePendingReceipt(ctx context.Context, receipt *models.PendingReceipt) error

	// GetPendingReceipt retrieves a pending receipt by token. Expired
	// receipts are reported as not found.
	GetPendingReceipt(ctx context.Context, token string, now int64) (*models.PendingReceipt, error)

	// DeletePendingReceipt removes a pending receipt once consumed.
	DeletePendingReceipt(ctx context.Context, token string) error

	// DeleteExpiredPendingReceipts removes receipts past their expiry and
	// returns the number deleted.
	DeleteExpiredPendingReceipts(ctx context.Context, now int64) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
