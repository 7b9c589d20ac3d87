package handler

import (
	"net/http"

	"github.com/openaudit/openaudit/internal/domain"
	"github.com/openaudit/openaudit/internal/utils"
)

type signupRequest struct {
	Username string `validate:"required" json:"username"`
	Email    string `validate:"required" json:"email"`
	Password string `validate:"required" json:"password"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	err := h.auth.Signup(r.Context(), domain.Username(req.Username), domain.Email(req.Email), domain.Password(req.Password))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated,
		successEnvelope{Code: ackSignedUp, Message: "Signed up. Check your email for a confirmation code."})
}

type credentials struct {
	Email    string `validate:"required" json:"email"`
	Password string `validate:"required" json:"password"`
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := utils.DecodeValidate(r.Body, &creds); err != nil {
		utils.WriteError(w, err)
		return
	}

	token, user, err := h.auth.SignIn(r.Context(), domain.Email(creds.Email), domain.Password(creds.Password))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	// A pre-auth session, if any, is replaced: fresh cookie, old record
	// removed after the new one exists.
	if old := h.sessionToken(r); old != "" && old != token {
		h.auth.SignOut(r.Context(), old)
	}
	http.SetCookie(w, h.sessionCookie(token, int(h.cfg.SessionTTL().Seconds())))

	utils.WriteJSON(w, struct {
		Code int               `json:"code"`
		User domain.OwnProfile `json:"user"`
	}{ackSignedIn, user.Own()})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if token := h.sessionToken(r); token != "" {
		h.auth.SignOut(r.Context(), token)
	}
	http.SetCookie(w, h.sessionCookie("", -1))

	writeAck(w, ackSignedOut, "Signed out.")
}

// Check reports who the session resolves to, for page loads.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Resolve(r.Context(), h.sessionToken(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if user == nil {
		utils.WriteJSON(w, struct {
			Anonymous bool `json:"anonymous"`
		}{true})
		return
	}
	utils.WriteJSON(w, struct {
		Anonymous bool              `json:"anonymous"`
		User      domain.OwnProfile `json:"user"`
	}{false, user.Own()})
}

type emailRequest struct {
	Email string `validate:"required" json:"email"`
}

type confirmRequest struct {
	Email string `validate:"required" json:"email"`
	Code  string `validate:"required" json:"code"`
}

func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.auth.ConfirmEmail(r.Context(), domain.Email(req.Email), req.Code); err != nil {
		utils.WriteError(w, err)
		return
	}
	writeAck(w, ackConfirmed, "Email confirmed. You can sign in now.")
}

func (h *Handler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.auth.ResendConfirmationCode(r.Context(), domain.Email(req.Email)); err != nil {
		utils.WriteError(w, err)
		return
	}
	writeAck(w, ackResent, "If the email is registered, a new code was sent.")
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), domain.Email(req.Email)); err != nil {
		utils.WriteError(w, err)
		return
	}
	writeAck(w, ackForgot, "If the email is registered, a reset code was sent.")
}

type resetRequest struct {
	Code     string `validate:"required" json:"code"`
	Password string `validate:"required" json:"password"`
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Code, domain.Password(req.Password)); err != nil {
		utils.WriteError(w, err)
		return
	}
	writeAck(w, ackReset, "Password updated. You can sign in now.")
}

func (h *Handler) DoNotEmail(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.auth.SetDoNotEmail(r.Context(), domain.Email(req.Email), req.Code); err != nil {
		utils.WriteError(w, err)
		return
	}
	writeAck(w, ackDoNotEmail, "You will not receive any more email from us.")
}
