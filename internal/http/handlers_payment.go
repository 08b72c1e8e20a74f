package http

import (
	"fmt"
	"net/http"

	"github.com/fairsplit/fairsplit/internal/middleware"
	"github.com/fairsplit/fairsplit/internal/payment"
)

// handlePaymentQR renders an EPC QR code for paying another user. The
// recipient's bank details come from their profile; amount and an optional
// reference come from the query string.
func (s *Server) handlePaymentQR(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	amount, err := parseAmount("amount", q.Get("amount"))
	if err != nil {
		writeError(w, err)
		return
	}

	recipient, err := s.store.GetUser(r.Context(), q.Get("user_id"))
	if err != nil {
		writeError(w, err)
		return
	}

	reference := q.Get("reference")
	if reference == "" {
		reference = fmt.Sprintf("Payment from %s", middleware.GetUsername(r.Context()))
	}

	name := recipient.FullName
	if name == "" {
		name = recipient.Username
	}

	png, err := payment.QRCodePNG(payment.Request{
		Name:      name,
		IBAN:      recipient.IBAN,
		BIC:       recipient.BIC,
		Amount:    amount,
		Reference: reference,
	}, 512)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
