package models

// Group represents a set of members sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates").
	Name string

	// Description is optional free text.
	Description string

	// CreatedBy is the user ID of the group creator.
	CreatedBy string

	// InviteCode is the shareable join code (8 upper-case characters).
	InviteCode string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is one current member of a group, as returned by the membership
// snapshot read. JoinedAt is the membership timestamp, not account creation.
type Member struct {
	ID       string
	Username string
	Email    string
	JoinedAt int64
}
