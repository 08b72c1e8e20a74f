package http

import (
	"net/http"
	"sort"

	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/middleware"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
	"github.com/fairsplit/fairsplit/internal/service"
)

type expensePayload struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	PaidBy      string `json:"paid_by"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
}

func toExpensePayload(e *models.Expense) expensePayload {
	return expensePayload{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount.String(),
		PaidBy:      e.PaidBy,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description  string            `json:"description"`
		Amount       string            `json:"amount"`
		PaidBy       string            `json:"paid_by"`
		Participants []string          `json:"participants"`
		SplitMode    string            `json:"split_mode"`
		CustomSplits map[string]string `json:"custom_splits,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	var custom map[string]money.Cents
	if len(req.CustomSplits) > 0 {
		custom = make(map[string]money.Cents, len(req.CustomSplits))
		for id, raw := range req.CustomSplits {
			c, err := parseAmount("custom_splits."+id, raw)
			if err != nil {
				writeError(w, err)
				return
			}
			custom[id] = c
		}
	}

	mode := calculator.SplitMode(req.SplitMode)
	if mode == "" {
		mode = calculator.SplitEqual
	}

	expense, err := s.ledger.CreateExpense(r.Context(), middleware.GetUserID(r.Context()), service.ExpenseInput{
		GroupID:      r.PathValue("groupID"),
		Description:  req.Description,
		Amount:       amount,
		PaidBy:       req.PaidBy,
		Participants: req.Participants,
		SplitMode:    mode,
		CustomSplits: custom,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpensePayload(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.ListExpenses(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]expensePayload, len(expenses))
	for i := range expenses {
		payload[i] = toExpensePayload(&expenses[i])
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PayerID     string `json:"payer_id"`
		PayeeID     string `json:"payee_id"`
		Amount      string `json:"amount"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	settlement, err := s.ledger.CreateSettlement(r.Context(), middleware.GetUserID(r.Context()),
		r.PathValue("groupID"), req.PayerID, req.PayeeID, amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          settlement.ID,
		"group_id":    settlement.GroupID,
		"payer_id":    settlement.PayerID,
		"payee_id":    settlement.PayeeID,
		"amount":      settlement.Amount.String(),
		"description": settlement.Description,
		"created_at":  settlement.CreatedAt,
	})
}

func (s *Server) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := s.ledger.ListSettlements(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	type settlementPayload struct {
		ID          string `json:"id"`
		PayerID     string `json:"payer_id"`
		PayeeID     string `json:"payee_id"`
		Amount      string `json:"amount"`
		Description string `json:"description,omitempty"`
		CreatedAt   int64  `json:"created_at"`
	}
	payload := make([]settlementPayload, len(settlements))
	for i, st := range settlements {
		payload[i] = settlementPayload{
			ID:          st.ID,
			PayerID:     st.PayerID,
			PayeeID:     st.PayeeID,
			Amount:      st.Amount.String(),
			Description: st.Description,
			CreatedAt:   st.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

// balanceEntry is one member's net position. Negative amounts mean the
// member owes the group.
type balanceEntry struct {
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
	Cents  int64  `json:"amount_cents"`
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.ledger.Balances(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]balanceEntry, 0, len(balances))
	for id, amount := range balances {
		payload = append(payload, balanceEntry{UserID: id, Amount: amount.String(), Cents: int64(amount)})
	}
	sort.Slice(payload, func(i, j int) bool { return payload[i].UserID < payload[j].UserID })
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSimplifiedDebts(w http.ResponseWriter, r *http.Request) {
	transfers, err := s.ledger.SimplifiedDebts(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}

	type transferPayload struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Amount string `json:"amount"`
	}
	payload := make([]transferPayload, len(transfers))
	for i, tr := range transfers {
		payload[i] = transferPayload{From: tr.From, To: tr.To, Amount: tr.Amount.String()}
	}
	writeJSON(w, http.StatusOK, payload)
}
