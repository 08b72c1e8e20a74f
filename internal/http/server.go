// Package http exposes the JSON API. All amounts cross this boundary as
// decimal strings ("12.34"); everything behind it works in integer cents.
package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairsplit/fairsplit/internal/auth"
	"github.com/fairsplit/fairsplit/internal/middleware"
	"github.com/fairsplit/fairsplit/internal/service"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// Server bundles the services behind the HTTP handlers.
type Server struct {
	store    storage.Store
	auth     *service.AuthService
	groups   *service.GroupService
	ledger   *service.LedgerService
	receipts *service.ReceiptService
	jwt      *auth.JWTManager
}

// NewServer creates a Server. receipts may be nil when no analyzer is
// configured; the receipt routes then answer 404.
func NewServer(store storage.Store, authSvc *service.AuthService, groups *service.GroupService, ledger *service.LedgerService, receipts *service.ReceiptService, jwt *auth.JWTManager) *Server {
	return &Server{
		store:    store,
		auth:     authSvc,
		groups:   groups,
		ledger:   ledger,
		receipts: receipts,
		jwt:      jwt,
	}
}

// Handler builds the full route table with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	authed := middleware.RequireAuth(s.jwt)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/password-reset", s.handlePasswordResetRequest)
	mux.HandleFunc("POST /api/v1/auth/password-reset/confirm", s.handlePasswordResetConfirm)

	mux.Handle("GET /api/v1/me", authed(http.HandlerFunc(s.handleProfile)))
	mux.Handle("PUT /api/v1/me", authed(http.HandlerFunc(s.handleUpdateProfile)))

	mux.Handle("POST /api/v1/groups", authed(http.HandlerFunc(s.handleCreateGroup)))
	mux.Handle("GET /api/v1/groups", authed(http.HandlerFunc(s.handleListGroups)))
	mux.Handle("POST /api/v1/groups/join", authed(http.HandlerFunc(s.handleJoinGroup)))
	mux.Handle("GET /api/v1/groups/{groupID}", authed(http.HandlerFunc(s.handleGetGroup)))
	mux.Handle("POST /api/v1/groups/{groupID}/invite-code", authed(http.HandlerFunc(s.handleRegenerateInviteCode)))
	mux.Handle("GET /api/v1/groups/{groupID}/members", authed(http.HandlerFunc(s.handleListMembers)))
	mux.Handle("DELETE /api/v1/groups/{groupID}/members/{userID}", authed(http.HandlerFunc(s.handleRemoveMember)))

	mux.Handle("POST /api/v1/groups/{groupID}/expenses", authed(http.HandlerFunc(s.handleCreateExpense)))
	mux.Handle("GET /api/v1/groups/{groupID}/expenses", authed(http.HandlerFunc(s.handleListExpenses)))
	mux.Handle("POST /api/v1/groups/{groupID}/settlements", authed(http.HandlerFunc(s.handleCreateSettlement)))
	mux.Handle("GET /api/v1/groups/{groupID}/settlements", authed(http.HandlerFunc(s.handleListSettlements)))
	mux.Handle("GET /api/v1/groups/{groupID}/balances", authed(http.HandlerFunc(s.handleBalances)))
	mux.Handle("GET /api/v1/groups/{groupID}/simplified-debts", authed(http.HandlerFunc(s.handleSimplifiedDebts)))

	if s.receipts != nil {
		mux.Handle("POST /api/v1/groups/{groupID}/receipts", authed(http.HandlerFunc(s.handleScanReceipt)))
		mux.Handle("GET /api/v1/receipts/{token}", authed(http.HandlerFunc(s.handleGetPendingReceipt)))
		mux.Handle("POST /api/v1/receipts/{token}/apportion", authed(http.HandlerFunc(s.handleApportionReceipt)))
	}

	mux.Handle("GET /api/v1/payment-qr", authed(http.HandlerFunc(s.handlePaymentQR)))

	var handler http.Handler = mux
	handler = middleware.Logging(handler)
	handler = middleware.Metrics(mux)(handler)
	return handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
