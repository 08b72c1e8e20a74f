package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/auth"
	"github.com/fairsplit/fairsplit/internal/mail"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// AuthService handles registration, login, profile updates, and the email
// password-reset flow.
type AuthService struct {
	store         storage.Store
	authenticator auth.Authenticator
	resets        *auth.PasswordAuthenticator
	jwt           *auth.JWTManager
	mailer        mail.Mailer
	baseURL       string
}

// NewAuthService creates a new AuthService. baseURL is the public address
// used to build reset links in outgoing mail.
func NewAuthService(store storage.Store, pw *auth.PasswordAuthenticator, jwt *auth.JWTManager, mailer mail.Mailer, baseURL string) *AuthService {
	if mailer == nil {
		mailer = mail.NopMailer{}
	}
	return &AuthService{
		store:         store,
		authenticator: pw,
		resets:        pw,
		jwt:           jwt,
		mailer:        mailer,
		baseURL:       strings.TrimRight(baseURL, "/"),
	}
}

// Register creates a new account and returns the user with a session token.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" {
		return nil, "", apperr.Validationf("username and email are required")
	}

	user, err := s.authenticator.Register(ctx, username, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) || errors.Is(err, auth.ErrEmailExists) {
			return nil, "", apperr.Validationf("%s", err.Error())
		}
		return nil, "", err
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, strings.ToLower(strings.TrimSpace(email)), password)
	if err != nil {
		return nil, "", apperr.ErrUnauthenticated
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("User logged in", "user_id", user.ID)
	return user, token, nil
}

// Profile retrieves the actor's own account.
func (s *AuthService) Profile(ctx context.Context, actorID string) (*models.User, error) {
	return s.store.GetUser(ctx, actorID)
}

// UpdateProfile replaces the actor's full name and bank details. The IBAN
// feeds the payment QR codes other members scan to settle up.
func (s *AuthService) UpdateProfile(ctx context.Context, actorID, fullName, iban, bic string) (*models.User, error) {
	iban = strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	bic = strings.ToUpper(strings.TrimSpace(bic))
	if iban != "" && (len(iban) < 15 || len(iban) > 34) {
		return nil, apperr.Validationf("IBAN length is out of range")
	}

	if err := s.store.UpdateUserProfile(ctx, actorID, strings.TrimSpace(fullName), iban, bic); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, actorID)
}

// RequestPasswordReset emails a single-use reset link. It reports success
// for unknown addresses too, so the endpoint cannot be used to probe which
// emails are registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, token, err := s.resets.StartPasswordReset(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			slog.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token.Token)
	body := fmt.Sprintf(
		"Hi %s,\n\nsomeone asked to reset your fairsplit password. Follow this link to pick a new one:\n\n%s\n\nThe link expires soon and works once. If this wasn't you, ignore this mail.\n",
		user.Username, link,
	)
	if err := s.mailer.Send(ctx, user.Email, "Reset your fairsplit password", body); err != nil {
		slog.Error("failed to send reset mail", "user_id", user.ID, "error", err)
		return err
	}

	slog.Info("Password reset mail sent", "user_id", user.ID)
	return nil
}

// ResetPassword completes the email reset flow.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	err := s.resets.CompletePasswordReset(ctx, token, newPassword)
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrWeakPassword) {
		return apperr.Validationf("%s", err.Error())
	}
	return err
}
