package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/events"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// inviteAlphabet deliberately omits characters that read ambiguously when
// shared over chat or read aloud (0/O, 1/I/L).
const (
	inviteAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	inviteLength   = 8
)

// GroupService owns groups and memberships.
type GroupService struct {
	store  storage.Store
	events events.Publisher
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, publisher events.Publisher) *GroupService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &GroupService{store: store, events: publisher}
}

// newInviteCode generates a fresh shareable join code.
func newInviteCode() (string, error) {
	var sb strings.Builder
	for i := 0; i < inviteLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		sb.WriteByte(inviteAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// CreateGroup creates a new group with the actor as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, actorID, name, description string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("group name is required")
	}

	code, err := newInviteCode()
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   actorID,
		InviteCode:  code,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, apperr.Storef("create group", err)
	}

	slog.Info("Group created", "group_id", group.ID, "name", group.Name)
	return group, nil
}

// GetGroup retrieves a group the actor belongs to.
func (s *GroupService) GetGroup(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups retrieves all groups the actor currently belongs to.
func (s *GroupService) ListGroups(ctx context.Context, actorID string) ([]models.Group, error) {
	return s.store.ListGroups(ctx, actorID)
}

// Members retrieves the current member snapshot of a group the actor
// belongs to.
func (s *GroupService) Members(ctx context.Context, actorID, groupID string) ([]models.Member, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, groupID)
}

// RegenerateInviteCode replaces the group's invite code, invalidating the
// old one. Only the creator may rotate the code.
func (s *GroupService) RegenerateInviteCode(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != actorID {
		return nil, apperr.ErrNotMember
	}

	code, err := newInviteCode()
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateGroupInviteCode(ctx, groupID, code); err != nil {
		return nil, err
	}
	group.InviteCode = code

	slog.Info("Invite code rotated", "group_id", groupID)
	return group, nil
}

// Join adds the actor to the group behind an invite code. Rejoining after
// having left restores the actor's old ledger history, since ledger facts
// survive membership changes.
func (s *GroupService) Join(ctx context.Context, actorID, inviteCode string) (*models.Group, error) {
	group, err := s.store.GetGroupByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(inviteCode)))
	if err != nil {
		return nil, err
	}

	already, err := s.store.IsMember(ctx, group.ID, actorID)
	if err != nil {
		return nil, apperr.Storef("check membership", err)
	}
	if already {
		return nil, apperr.Validationf("already a member of %q", group.Name)
	}

	if err := s.store.AddMember(ctx, group.ID, actorID); err != nil {
		slog.Error("Join failed", "group_id", group.ID, "error", err)
		return nil, apperr.Storef("add member", err)
	}

	slog.Info("Member joined", "group_id", group.ID, "user_id", actorID)
	s.publish(ctx, events.Event{
		Type:      events.TypeMemberJoined,
		GroupID:   group.ID,
		ActorID:   actorID,
		SubjectID: actorID,
	})
	return group, nil
}

// Leave removes the actor from the group. Expenses and settlements that
// mention the actor stay in the ledger but stop counting toward balances
// until the actor rejoins.
func (s *GroupService) Leave(ctx context.Context, actorID, groupID string) error {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return err
	}
	if err := s.store.RemoveMember(ctx, groupID, actorID); err != nil {
		return apperr.Storef("remove member", err)
	}

	slog.Info("Member left", "group_id", groupID, "user_id", actorID)
	s.publish(ctx, events.Event{
		Type:      events.TypeMemberLeft,
		GroupID:   groupID,
		ActorID:   actorID,
		SubjectID: actorID,
	})
	return nil
}

// RemoveMember removes another user from the group. Only the group creator
// may remove others; anyone may remove themselves via Leave.
func (s *GroupService) RemoveMember(ctx context.Context, actorID, groupID, userID string) error {
	if err := s.requireMember(ctx, groupID, actorID); err != nil {
		return err
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if actorID != userID && group.CreatedBy != actorID {
		return apperr.ErrNotMember
	}
	if err := s.store.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}

	slog.Info("Member removed", "group_id", groupID, "user_id", userID, "actor_id", actorID)
	s.publish(ctx, events.Event{
		Type:      events.TypeMemberLeft,
		GroupID:   groupID,
		ActorID:   actorID,
		SubjectID: userID,
	})
	return nil
}

// requireMember rejects actors that are not current members. Authorization
// runs before any ledger read so outsiders learn nothing about the group.
func (s *GroupService) requireMember(ctx context.Context, groupID, actorID string) error {
	ok, err := s.store.IsMember(ctx, groupID, actorID)
	if err != nil {
		return apperr.Storef("check membership", err)
	}
	if !ok {
		return apperr.ErrNotMember
	}
	return nil
}

func (s *GroupService) publish(ctx context.Context, event events.Event) {
	if event.OccurredAt == 0 {
		event.OccurredAt = time.Now().Unix()
	}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		slog.Warn("event publish failed", "type", event.Type, "group_id", event.GroupID, "error", err)
	}
}
