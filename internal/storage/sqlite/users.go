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

// CreateUser persists a new account to the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash, full_name, iban, bic, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, user.FullName, user.IBAN, user.BIC, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, "id", userID)
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, full_name, iban, bic, created_at FROM users WHERE "+column+" = ?",
		value,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FullName, &user.IBAN, &user.BIC, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("user %s", value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUserProfile updates the full name and bank details of a user.
func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, userID, fullName, iban, bic string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET full_name = ?, iban = ?, bic = ? WHERE id = ?",
		fullName, iban, bic, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return requireRowAffected(res, "user %s", userID)
}

// UpdateUserPassword replaces the stored password hash.
func (s *SQLiteStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE id = ?",
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRowAffected(res, "user %s", userID)
}

// CreateResetToken persists a single-use password reset token.
func (s *SQLiteStore) CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	if token.CreatedAt == 0 {
		token.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (token, user_id, expires_at, used, created_at) VALUES (?, ?, ?, 0, ?)",
		token.Token, token.UserID, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reset token: %w", err)
	}
	return nil
}

// GetResetToken retrieves a reset token by value.
func (s *SQLiteStore) GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	t := &models.PasswordResetToken{}
	err := s.db.QueryRowContext(ctx,
		"SELECT token, user_id, expires_at, used, created_at FROM password_reset_tokens WHERE token = ?",
		token,
	).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("reset token")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return t, nil
}

// ConsumeResetToken marks an unused reset token as used.
func (s *SQLiteStore) ConsumeResetToken(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used = 1 WHERE token = ? AND used = 0",
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	return requireRowAffected(res, "reset token")
}

// DeleteExpiredResetTokens removes reset tokens past their expiry.
func (s *SQLiteStore) DeleteExpiredResetTokens(ctx context.Context, now int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM password_reset_tokens WHERE expires_at < ?",
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted reset tokens: %w", err)
	}
	return n, nil
}

// requireRowAffected turns a zero-row write into a not-found error.
func requireRowAffected(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFoundf(format, args...)
	}
	return nil
}
