package service

import (
	"net/http"

	"github.com/openaudit/openaudit/internal/domain"
	"github.com/openaudit/openaudit/internal/errors"
)

// Action names a document or audit operation gated by the access policy.
type Action int

const (
	ActionRead Action = iota
	ActionReadOwned
	ActionUpdate
	ActionSetAlias
	ActionDelete
	ActionSubmitAudit
	ActionReadOwnAudit
	ActionListAudits        // public audit listing
	ActionListAuditsAsOwner // owner previewing audits, private docs included
)

// Actor identifies who is asking. Anonymous actors carry no user id.
type Actor struct {
	Id        domain.UserId
	Anonymous bool
}

func AnonymousActor() Actor {
	return Actor{Anonymous: true}
}

func UserActor(id domain.UserId) Actor {
	return Actor{Id: id}
}

func (a Actor) owns(doc domain.Document) bool {
	return !a.Anonymous && a.Id == doc.OwnerId
}

var (
	errUnauthenticated = &errors.ErrorWithStatusCode{
		Message:    "Please sign in.",
		StatusCode: http.StatusUnauthorized,
		Code:       errors.CodeUnauthenticated,
	}
	errNotOwner = &errors.ErrorWithStatusCode{
		Message:    "You don't own this document.",
		StatusCode: http.StatusForbidden,
		Code:       errors.CodeNotOwner,
	}
	errPrivateDocument = &errors.ErrorWithStatusCode{
		Message:    "Document not available.",
		StatusCode: http.StatusForbidden,
		Code:       errors.CodePrivateDocument,
	}
	errPrivateAudits = &errors.ErrorWithStatusCode{
		Message:    "Can't request audits for a private document.",
		StatusCode: http.StatusBadRequest,
		Code:       errors.CodePrivateDocument,
	}
	errSelfAudit = &errors.ErrorWithStatusCode{
		Message:    "Can't audit your own document.",
		StatusCode: http.StatusBadRequest,
		Code:       errors.CodeSelfAudit,
	}
	errAuditingDisabled = &errors.ErrorWithStatusCode{
		Message:    "Auditing not currently allowed for this document.",
		StatusCode: http.StatusBadRequest,
		Code:       errors.CodeAuditingDisabled,
	}
	errBadVisibility = &errors.ErrorWithStatusCode{
		Message:    "Cannot set allowAudit to true if document visibility is private.",
		StatusCode: http.StatusBadRequest,
		Code:       errors.CodeBadVisibility,
	}
)

// Decide is the access-control policy: given an already-fetched document,
// an actor, and an action, it returns nil (allow) or the specific denial.
// It performs no I/O; callers fetch entities and render the error.
func Decide(actor Actor, doc domain.Document, action Action) error {
	switch action {
	case ActionRead:
		if doc.Visibility == domain.VisibilityPrivate && !actor.owns(doc) {
			return errPrivateDocument
		}
		return nil

	case ActionReadOwned, ActionUpdate, ActionSetAlias, ActionDelete, ActionListAuditsAsOwner:
		if actor.Anonymous {
			return errUnauthenticated
		}
		if !actor.owns(doc) {
			return errNotOwner
		}
		return nil

	case ActionSubmitAudit:
		if actor.Anonymous {
			return errUnauthenticated
		}
		if actor.owns(doc) {
			return errSelfAudit
		}
		if !doc.AllowAudit {
			return errAuditingDisabled
		}
		return nil

	case ActionReadOwnAudit:
		if actor.Anonymous {
			return errUnauthenticated
		}
		return nil

	case ActionListAudits:
		if doc.Visibility == domain.VisibilityPrivate {
			return errPrivateAudits
		}
		return nil
	}

	return errNotOwner
}

// CheckAuditVisibility enforces the write-time invariant that private
// documents can never allow auditing. Called before any create or update
// is persisted.
func CheckAuditVisibility(visibility domain.Visibility, allowAudit bool) error {
	if visibility == domain.VisibilityPrivate && allowAudit {
		return errBadVisibility
	}
	return nil
}
