package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pure-golang/webcore/diagnostics"
	"github.com/pure-golang/webcore/httpserver/middleware"
	"github.com/pure-golang/webcore/logger"
	"github.com/pure-golang/webcore/mail"
	"github.com/pure-golang/webcore/users"
)

type UserLister interface {
	List(ctx context.Context) ([]users.User, error)
}

type Checker interface {
	Check(ctx context.Context) diagnostics.Result
}

// Mailer is satisfied by *notification.Dispatcher.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) bool
}

type Options struct {
	Users UserLister
	// DatabaseURI is described by /api/db-config, never echoed.
	DatabaseURI string
	LocalCheck  Checker
	Mailer      Mailer
	// ResetBaseURL is the only accepted prefix of password reset links.
	ResetBaseURL string
}

type Handler struct {
	users        UserLister
	databaseURI  string
	localCheck   Checker
	mailer       Mailer
	resetBaseURL string
}

func New(options Options) *Handler {
	return &Handler{
		users:        options.Users,
		databaseURI:  options.DatabaseURI,
		localCheck:   options.LocalCheck,
		mailer:       options.Mailer,
		resetBaseURL: options.ResetBaseURL,
	}
}

// Routes returns the API mux wrapped with monitoring and panic recovery.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/users", h.listUsers)
	mux.HandleFunc("GET /api/db-config", h.dbConfig)
	mux.HandleFunc("GET /api/db-local", h.dbLocal)
	mux.HandleFunc("POST /api/password-reset", h.passwordReset)
	return middleware.Monitoring(middleware.Recovery(mux))
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	logger.FromContextWithErrIf(ctx, err).WarnContext(ctx, "failed to write response")
}
