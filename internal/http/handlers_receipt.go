package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/calculator"
	"github.com/fairsplit/fairsplit/internal/middleware"
	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/service"
)

// maxReceiptImageBytes bounds the multipart upload size.
const maxReceiptImageBytes = 10 << 20

type receiptPayload struct {
	Token     string               `json:"token"`
	GroupID   string               `json:"group_id"`
	StoreName string               `json:"store_name,omitempty"`
	Currency  string               `json:"currency,omitempty"`
	Total     string               `json:"total"`
	Items     []receiptItemPayload `json:"items"`
	ExpiresAt int64                `json:"expires_at"`
}

type receiptItemPayload struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func toReceiptPayload(p *models.PendingReceipt) receiptPayload {
	payload := receiptPayload{
		Token:     p.Token,
		GroupID:   p.GroupID,
		StoreName: p.Analysis.StoreName,
		Currency:  p.Analysis.Currency,
		Total:     p.Analysis.Total.String(),
		ExpiresAt: p.ExpiresAt,
	}
	for i, item := range p.Analysis.Items {
		payload.Items = append(payload.Items, receiptItemPayload{
			Index: i,
			Name:  item.Name,
			Price: item.Price.String(),
		})
	}
	return payload
}

func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptImageBytes)
	if err := r.ParseMultipartForm(maxReceiptImageBytes); err != nil {
		writeError(w, apperr.Validationf("invalid multipart upload: %s", err.Error()))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, apperr.Validationf("image file is required"))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperr.Validationf("failed to read image: %s", err.Error()))
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	pending, err := s.receipts.Scan(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("groupID"), image, mimeType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReceiptPayload(pending))
}

func (s *Server) handleGetPendingReceipt(w http.ResponseWriter, r *http.Request) {
	pending, err := s.receipts.Pending(r.Context(), middleware.GetUserID(r.Context()), r.PathValue("token"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptPayload(pending))
}

func (s *Server) handleApportionReceipt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaidBy      string              `json:"paid_by"`
		Description string              `json:"description"`
		Assignments map[string][]string `json:"assignments"`
		Confirmed   []struct {
			Name   string `json:"name"`
			Amount string `json:"amount"`
		} `json:"confirmed,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	assignments := make(calculator.Assignments, len(req.Assignments))
	for rawIndex, ids := range req.Assignments {
		index, err := strconv.Atoi(rawIndex)
		if err != nil || index < 0 {
			writeError(w, apperr.Validationf("invalid item index %q", rawIndex))
			return
		}
		assignments[index] = ids
	}

	confirmed := make([]calculator.ConfirmedPayment, 0, len(req.Confirmed))
	for _, c := range req.Confirmed {
		amount, err := parseAmount("confirmed.amount", c.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		confirmed = append(confirmed, calculator.ConfirmedPayment{Name: c.Name, Amount: amount})
	}

	expense, err := s.receipts.Apportion(r.Context(), middleware.GetUserID(r.Context()), service.ApportionInput{
		Token:       r.PathValue("token"),
		PaidBy:      req.PaidBy,
		Description: req.Description,
		Assignments: assignments,
		Confirmed:   confirmed,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if expense == nil {
		// Everything on the receipt was already paid directly.
		writeJSON(w, http.StatusOK, map[string]any{"settled": true})
		return
	}
	writeJSON(w, http.StatusCreated, toExpensePayload(expense))
}
