package models

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the unique display name.
	Username string

	// Email is the user's email address (unique). Used for login and
	// notifications.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// FullName is the optional legal name used on SEPA payment QR codes.
	FullName string

	// IBAN and BIC are the optional bank details used to build payment
	// QR codes for settling debts toward this user.
	IBAN string
	BIC  string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// PasswordResetToken is a single-use token for the email reset flow.
type PasswordResetToken struct {
	Token     string
	UserID    string
	ExpiresAt int64
	Used      bool
	CreatedAt int64
}
