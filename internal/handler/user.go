package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openaudit/openaudit/internal/domain"
	"github.com/openaudit/openaudit/internal/middleware"
	"github.com/openaudit/openaudit/internal/utils"
)

func (h *Handler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	username := domain.Username(mux.Vars(r)["username"])

	profile, err := h.auth.PublicProfile(r.Context(), username)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, profile)
}

func (h *Handler) OwnProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	utils.WriteJSON(w, user.Own())
}

type profileRequest struct {
	RealName       string `json:"realName"`
	Linkedin       string `json:"linkedin"`
	Github         string `json:"github"`
	Qualifications string `json:"qualifications"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := utils.Decode(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	user := middleware.GetUserFromContext(r)
	err := h.auth.UpdateProfile(r.Context(), user.Id, req.RealName, req.Linkedin, req.Github, req.Qualifications)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeAck(w, ackProfileUpdated, "Profile updated.")
}
