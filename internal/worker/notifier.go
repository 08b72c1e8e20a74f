// Package worker contains the background consumers that run outside the
// request path.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fairsplit/fairsplit/internal/events"
	"github.com/fairsplit/fairsplit/internal/mail"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// EventSource is the consuming side of the broker, implemented by the AMQP
// client.
type EventSource interface {
	ConsumeEvents(ctx context.Context, handler func(events.Event) error) error
}

// Notifier emails group members about ledger activity. It runs as its own
// process so a slow SMTP server never delays an API response.
type Notifier struct {
	store  storage.Store
	source EventSource
	mailer mail.Mailer
}

// NewNotifier creates a new Notifier.
func NewNotifier(store storage.Store, source EventSource, mailer mail.Mailer) *Notifier {
	return &Notifier{store: store, source: source, mailer: mailer}
}

// Run consumes events until ctx is cancelled. Individual mail failures
// requeue the event; everything else is logged and dropped.
func (n *Notifier) Run(ctx context.Context) error {
	return n.source.ConsumeEvents(ctx, func(event events.Event) error {
		return n.handle(ctx, event)
	})
}

func (n *Notifier) handle(ctx context.Context, event events.Event) error {
	subject, body, ok := n.render(ctx, event)
	if !ok {
		return nil
	}

	members, err := n.store.ListMembers(ctx, event.GroupID)
	if err != nil {
		// The group may be gone by the time the event arrives.
		slog.WarnContext(ctx, "skipping event for unknown group",
			"type", event.Type,
			"group_id", event.GroupID,
			"error", err)
		return nil
	}

	for _, m := range members {
		if m.ID == event.ActorID || m.Email == "" {
			continue
		}
		if err := n.mailer.Send(ctx, m.Email, subject, body); err != nil {
			return fmt.Errorf("notify %s: %w", m.ID, err)
		}
	}

	slog.InfoContext(ctx, "Notified group members",
		"type", event.Type,
		"group_id", event.GroupID,
		"recipients", len(members)-1)
	return nil
}

// render builds the notification text. Returns ok=false for event types that
// don't produce mail.
func (n *Notifier) render(ctx context.Context, event events.Event) (subject, body string, ok bool) {
	group, err := n.store.GetGroup(ctx, event.GroupID)
	groupName := event.GroupID
	if err == nil {
		groupName = group.Name
	}

	actor := event.ActorID
	if u, err := n.store.GetUser(ctx, event.ActorID); err == nil {
		actor = u.Username
	}

	switch event.Type {
	case events.TypeExpenseCreated:
		subject = fmt.Sprintf("New expense in %s", groupName)
		body = fmt.Sprintf("%s added %q (%s EUR) to %s.\n", actor, event.Description, event.Amount, groupName)
	case events.TypeSettlementCreated:
		subject = fmt.Sprintf("Settlement recorded in %s", groupName)
		body = fmt.Sprintf("%s recorded a settlement of %s EUR in %s.\n", actor, event.Amount, groupName)
	case events.TypeMemberJoined:
		subject = fmt.Sprintf("%s joined %s", actor, groupName)
		body = fmt.Sprintf("%s is now a member of %s.\n", actor, groupName)
	case events.TypeMemberLeft:
		subject = fmt.Sprintf("Membership change in %s", groupName)
		body = fmt.Sprintf("A member left %s. Their past expenses stay on the ledger.\n", groupName)
	default:
		return "", "", false
	}
	return subject, body, true
}
