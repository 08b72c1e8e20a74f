package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fairsplit/fairsplit/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
	CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error
	GetResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	ConsumeResetToken(ctx context.Context, token string) error
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage  UserStorage
	resetTTL time.Duration
}

// NewPasswordAuthenticator creates a new password-based authenticator.
// resetTTL bounds how long an emailed reset token stays valid.
func NewPasswordAuthenticator(storage UserStorage, resetTTL time.Duration) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage:  storage,
		resetTTL: resetTTL,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, email, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	if existing, err := a.storage.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// StartPasswordReset issues a single-use reset token for the account behind
// the email. The caller decides what to do when no account exists; a reset
// request must not reveal whether an email is registered.
func (a *PasswordAuthenticator) StartPasswordReset(ctx context.Context, email string) (*models.User, *models.PasswordResetToken, error) {
	user, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	token := &models.PasswordResetToken{
		Token:     hex.EncodeToString(raw),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(a.resetTTL).Unix(),
	}
	if err := a.storage.CreateResetToken(ctx, token); err != nil {
		return nil, nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	return user, token, nil
}

// CompletePasswordReset validates the reset token and replaces the password.
// The token is consumed first so a failing update can be retried but a used
// token can never change a password twice.
func (a *PasswordAuthenticator) CompletePasswordReset(ctx context.Context, token, newCredential string) error {
	if err := a.ValidateCredential(newCredential); err != nil {
		return err
	}

	t, err := a.storage.GetResetToken(ctx, token)
	if err != nil {
		return ErrInvalidToken
	}
	if t.Used || t.ExpiresAt < time.Now().Unix() {
		return ErrInvalidToken
	}

	if err := a.storage.ConsumeResetToken(ctx, token); err != nil {
		return ErrInvalidToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newCredential), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := a.storage.UpdateUserPassword(ctx, t.UserID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
