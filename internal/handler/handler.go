package handler

import (
	"net/http"

	"github.com/openaudit/openaudit/internal/config"
	"github.com/openaudit/openaudit/internal/middleware"
	"github.com/openaudit/openaudit/internal/service"
	"github.com/openaudit/openaudit/internal/utils"
)

type Handler struct {
	auth      service.AuthService
	documents service.DocumentService
	audits    service.AuditService
	cfg       *config.Config
}

func New(auth service.AuthService, documents service.DocumentService, audits service.AuditService, cfg *config.Config) *Handler {
	return &Handler{auth, documents, audits, cfg}
}

// successEnvelope is the payload for operations whose result is just an
// acknowledgement. Codes are part of the client contract.
type successEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Ack codes, matched by client copy. Stable once shipped.
const (
	ackSignedIn       = 0
	ackSignedUp       = 1
	ackConfirmed      = 2
	ackResent         = 3
	ackSignedOut      = 5
	ackForgot         = 6
	ackReset          = 7
	ackProfileUpdated = 9228
	ackDoNotEmail     = 7833
)

func writeAck(w http.ResponseWriter, code int, message string) {
	utils.WriteJSON(w, successEnvelope{Code: code, Message: message})
}

// actor maps the request's resolved identity (or lack of one) to a policy
// actor.
func actor(r *http.Request) service.Actor {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		return service.AnonymousActor()
	}
	return service.UserActor(user.Id)
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Path:     "/",
		Name:     h.cfg.Public.SessionCookieName,
		Value:    value,
		Domain:   h.cfg.Public.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(h.cfg.Public.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]string{"status": "ok"})
}
