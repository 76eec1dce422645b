package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pure-golang/webcore/diagnostics"
	"github.com/pure-golang/webcore/logger"
	"github.com/pure-golang/webcore/mail"
	"github.com/pure-golang/webcore/notification"
	"github.com/pure-golang/webcore/users"
)

type usersResponse struct {
	Users []users.User `json:"users"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.users.List(ctx)
	if err != nil {
		logger.FromContextWithErr(ctx, err).ErrorContext(ctx, "database connection failed")
		writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{
			Error:   "Database connection failed",
			Details: err.Error(),
		})
		return
	}

	writeJSON(ctx, w, http.StatusOK, usersResponse{Users: list})
}

type dbConfigResponse struct {
	ConnectionDetails diagnostics.ConnectionDetails `json:"connectionDetails"`
}

func (h *Handler) dbConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	details, err := diagnostics.ParseConnectionDetails(h.databaseURI)
	if err != nil {
		writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{
			Error:   "Invalid database configuration",
			Details: err.Error(),
		})
		return
	}

	writeJSON(ctx, w, http.StatusOK, dbConfigResponse{ConnectionDetails: details})
}

func (h *Handler) dbLocal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res := h.localCheck.Check(ctx)
	status := http.StatusOK
	if !res.OK() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(ctx, w, status, res)
}

type passwordResetRequest struct {
	Email     string `json:"email"`
	ResetLink string `json:"resetLink"`
}

type passwordResetResponse struct {
	Sent bool `json:"sent"`
}

func (h *Handler) passwordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req passwordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid json", Details: err.Error()})
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid email", Details: err.Error()})
		return
	}
	if !underBase(req.ResetLink, h.resetBaseURL) {
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "reset link does not belong to this application"})
		return
	}

	if !h.mailer.Send(ctx, notification.PasswordResetEmail(req.ResetLink, req.Email)) {
		writeJSON(ctx, w, http.StatusBadGateway, passwordResetResponse{Sent: false})
		return
	}
	writeJSON(ctx, w, http.StatusOK, passwordResetResponse{Sent: true})
}

// underBase reports whether link points at base: same scheme and host, and a
// path equal to base's or below it. Query and fragment are free.
func underBase(link, base string) bool {
	if link == "" || base == "" {
		return false
	}
	l, err := url.Parse(link)
	if err != nil {
		return false
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return false
	}
	if l.User != nil || !strings.EqualFold(l.Scheme, b.Scheme) || !strings.EqualFold(l.Host, b.Host) {
		return false
	}

	prefix := strings.TrimSuffix(b.Path, "/")
	return l.Path == prefix || strings.HasPrefix(l.Path, prefix+"/")
}
