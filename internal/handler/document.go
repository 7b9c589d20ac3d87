package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/openaudit/openaudit/internal/domain"
	"github.com/openaudit/openaudit/internal/utils"
)

type documentRequest struct {
	Title      string `json:"title"`
	Content    string `validate:"required" json:"content"`
	Visibility string `json:"visibility"`
	AllowAudit bool   `json:"allowAudit"`
}

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	doc, err := h.documents.Create(r.Context(), actor(r), req.Title, req.Content, domain.Visibility(req.Visibility), req.AllowAudit)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONStatus(w, http.StatusCreated, doc)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := domain.DocumentId(mux.Vars(r)["id"])

	doc, err := h.documents.Get(r.Context(), actor(r), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, doc)
}

func (h *Handler) GetDocumentByAlias(w http.ResponseWriter, r *http.Request) {
	alias := mux.Vars(r)["alias"]

	doc, err := h.documents.GetByAlias(r.Context(), actor(r), alias)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, doc)
}

func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := domain.DocumentId(mux.Vars(r)["id"])

	var req documentRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	doc, err := h.documents.Update(r.Context(), actor(r), id, req.Title, req.Content, domain.Visibility(req.Visibility), req.AllowAudit)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, doc)
}

type aliasRequest struct {
	Alias string `json:"alias"` // empty clears
}

func (h *Handler) SetDocumentAlias(w http.ResponseWriter, r *http.Request) {
	id := domain.DocumentId(mux.Vars(r)["id"])

	var req aliasRequest
	if err := utils.Decode(r.Body, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := h.documents.SetAlias(r.Context(), actor(r), id, req.Alias); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := domain.DocumentId(mux.Vars(r)["id"])

	if err := h.documents.Delete(r.Context(), actor(r), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) OwnDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListOwned(r.Context(), actor(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeDocuments(w, docs)
}

func (h *Handler) UserDocuments(w http.ResponseWriter, r *http.Request) {
	username := domain.Username(mux.Vars(r)["username"])

	docs, err := h.documents.ListPublicByUser(r.Context(), username)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeDocuments(w, docs)
}

func (h *Handler) FeaturedDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.Featured(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	writeDocuments(w, docs)
}

// writeDocuments always encodes an array, never null.
func writeDocuments(w http.ResponseWriter, docs []domain.Document) {
	if docs == nil {
		docs = []domain.Document{}
	}
	utils.WriteJSON(w, docs)
}
