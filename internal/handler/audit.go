package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openaudit/openaudit/internal/domain"
	"github.com/openaudit/openaudit/internal/utils"
)

// SubmitAudit upserts the caller's judgments for a document. The body is
// the raw judgments object; shape validation happens in the service.
func (h *Handler) SubmitAudit(w http.ResponseWriter, r *http.Request) {
	docId := domain.DocumentId(mux.Vars(r)["id"])

	var raw json.RawMessage
	if err := utils.Decode(r.Body, &raw); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.audits.Submit(r.Context(), actor(r), docId, string(raw)); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// AuditReport returns the aggregated pass/fail report for a document.
func (h *Handler) AuditReport(w http.ResponseWriter, r *http.Request) {
	docId := domain.DocumentId(mux.Vars(r)["id"])

	report, err := h.audits.Report(r.Context(), actor(r), docId)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, report)
}

// OwnAudit returns the caller's own submission for a document.
func (h *Handler) OwnAudit(w http.ResponseWriter, r *http.Request) {
	docId := domain.DocumentId(mux.Vars(r)["id"])

	sub, err := h.audits.OwnSubmission(r.Context(), actor(r), docId)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, sub)
}

func (h *Handler) OwnAudits(w http.ResponseWriter, r *http.Request) {
	subs, err := h.audits.ListOwn(r.Context(), actor(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeAudits(w, subs)
}

func (h *Handler) UserAudits(w http.ResponseWriter, r *http.Request) {
	username := domain.Username(mux.Vars(r)["username"])

	subs, err := h.audits.ListPublicByUser(r.Context(), username)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeAudits(w, subs)
}

func writeAudits(w http.ResponseWriter, subs []domain.AuditSubmission) {
	if subs == nil {
		subs = []domain.AuditSubmission{}
	}
	utils.WriteJSON(w, subs)
}
