package http

import (
	"net/http"

	"github.com/fairsplit/fairsplit/internal/middleware"
	"github.com/fairsplit/fairsplit/internal/models"
)

type groupPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	InviteCode  string `json:"invite_code"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
}

func toGroupPayload(g *models.Group) groupPayload {
	return groupPayload{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		InviteCode:  g.InviteCode,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
	}
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupPayload(group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]groupPayload, len(groups))
	for i := range groups {
		payload[i] = toGroupPayload(&groups[i])
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InviteCode string `json:"invite_code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.Join(r.Context(), middleware.GetUserID(r.Context()), req.InviteCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupPayload(group))
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupPayload(group))
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.groups.Members(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	type memberPayload struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		JoinedAt int64  `json:"joined_at"`
	}
	payload := make([]memberPayload, len(members))
	for i, m := range members {
		payload[i] = memberPayload{ID: m.ID, Username: m.Username, JoinedAt: m.JoinedAt}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())
	groupID := r.PathValue("groupID")
	userID := r.PathValue("userID")

	var err error
	if actorID == userID {
		err = s.groups.Leave(r.Context(), actorID, groupID)
	} else {
		err = s.groups.RemoveMember(r.Context(), actorID, groupID, userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.RegenerateInviteCode(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupPayload(group))
}
