// Package events defines the domain events published to the message broker
// and the publisher port the service layer depends on.
package events

import (
	"context"

	"github.com/fairsplit/fairsplit/internal/money"
)

// Event types carried in the routing metadata.
const (
	TypeExpenseCreated    = "expense.created"
	TypeSettlementCreated = "settlement.created"
	TypeMemberJoined      = "member.joined"
	TypeMemberLeft        = "member.left"
)

// Event is one ledger or membership change, published after the write
// committed. Consumers must tolerate duplicates.
type Event struct {
	Type        string      `json:"type"`
	GroupID     string      `json:"group_id"`
	ActorID     string      `json:"actor_id"`
	SubjectID   string      `json:"subject_id,omitempty"`
	Description string      `json:"description,omitempty"`
	Amount      money.Cents `json:"amount_cents,omitempty"`
	OccurredAt  int64       `json:"occurred_at"`
}

// Publisher broadcasts events to interested consumers. Publishing is best
// effort: a failed publish never rolls back the write it describes.
type Publisher interface {
	PublishEvent(ctx context.Context, event Event) error
}

// NopPublisher discards all events. Used in tests and when no broker is
// configured.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, Event) error { return nil }
