package service

import (
	"context"
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/openaudit/openaudit/internal/domain"
	"github.com/openaudit/openaudit/internal/errors"
	"github.com/openaudit/openaudit/internal/logger"
)

// AuditStorage is what Audits needs from persistent storage.
type AuditStorage interface {
	UpsertAudit(ctx context.Context, docId domain.DocumentId, auditorId domain.UserId, data string) error
	AuditSubmissions(ctx context.Context, docId domain.DocumentId) ([]domain.AuditSubmission, error)
	AuditSubmission(ctx context.Context, docId domain.DocumentId, auditorId domain.UserId) (domain.AuditSubmission, error)
	AuditsByAuditor(ctx context.Context, auditorId domain.UserId) ([]domain.AuditSubmission, error)
	PublicAuditsByUser(ctx context.Context, userId domain.UserId) ([]domain.AuditSubmission, error)

	Document(ctx context.Context, id domain.DocumentId) (domain.Document, error)
	UserByUsername(ctx context.Context, username domain.Username) (domain.User, error)
}

type Audits struct {
	s AuditStorage
}

func NewAudits(s AuditStorage) *Audits {
	return &Audits{s}
}

const maxItemDescription = 999

func malformed(message string) error {
	return &errors.ErrorWithStatusCode{
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Code:       errors.CodeMalformedAudit,
	}
}

// Submit upserts the actor's full set of judgments for a document, after
// the audit policy and a shape check on the payload. Resubmitting replaces
// the previous submission wholesale.
func (a *Audits) Submit(ctx context.Context, actor Actor, docId domain.DocumentId, data string) error {
	doc, err := a.s.Document(ctx, docId)
	if err != nil {
		return err
	}
	if err := Decide(actor, doc, ActionSubmitAudit); err != nil {
		return err
	}
	if err := validateAuditData(data); err != nil {
		return err
	}
	return a.s.UpsertAudit(ctx, docId, actor.Id, data)
}

// Report aggregates all submissions for a document into per-item pass and
// fail buckets. Owners may see reports for their own documents regardless
// of visibility; everyone else is bound by the listing policy.
func (a *Audits) Report(ctx context.Context, actor Actor, docId domain.DocumentId) (domain.AggregatedReport, error) {
	doc, err := a.s.Document(ctx, docId)
	if err != nil {
		return nil, err
	}
	if err := Decide(actor, doc, ActionListAuditsAsOwner); err != nil {
		if err := Decide(actor, doc, ActionListAudits); err != nil {
			return nil, err
		}
	}

	subs, err := a.s.AuditSubmissions(ctx, docId)
	if err != nil {
		return nil, err
	}
	return aggregate(subs), nil
}

// OwnSubmission returns the actor's own submission for a document, so the
// audit form can be pre-filled on revisit.
func (a *Audits) OwnSubmission(ctx context.Context, actor Actor, docId domain.DocumentId) (domain.AuditSubmission, error) {
	doc, err := a.s.Document(ctx, docId)
	if err != nil {
		return domain.AuditSubmission{}, err
	}
	if err := Decide(actor, doc, ActionReadOwnAudit); err != nil {
		return domain.AuditSubmission{}, err
	}
	return a.s.AuditSubmission(ctx, docId, actor.Id)
}

// ListOwn returns the actor's submissions on non-private documents.
func (a *Audits) ListOwn(ctx context.Context, actor Actor) ([]domain.AuditSubmission, error) {
	if actor.Anonymous {
		return nil, errUnauthenticated
	}
	return a.s.AuditsByAuditor(ctx, actor.Id)
}

// ListPublicByUser returns a user's submissions on public documents, for
// profile pages.
func (a *Audits) ListPublicByUser(ctx context.Context, username domain.Username) ([]domain.AuditSubmission, error) {
	user, err := a.s.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return a.s.PublicAuditsByUser(ctx, user.Id)
}

// validateAuditData checks the submission shape: a JSON object mapping
// item id to {description, status, updated}. All three keys must be
// present; status is "pass", "fail", or null. A null status still
// registers the item in the report without a verdict.
func validateAuditData(data string) error {
	var items map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return malformed("Audit must be a JSON object keyed by item id")
	}

	for id, raw := range items {
		if id == "" {
			return malformed("Audit item ids can't be empty")
		}

		// Key presence is checked before field types: an absent status is
		// malformed, a present null status is a valid no-verdict judgment.
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return malformed("Audit item " + id + " has an invalid shape")
		}
		for _, key := range []string{"description", "status", "updated"} {
			if _, ok := fields[key]; !ok {
				return malformed("Audit item " + id + " is missing " + key)
			}
		}

		var description *string
		if err := json.Unmarshal(fields["description"], &description); err != nil || description == nil {
			return malformed("Audit item " + id + " description must be a string")
		}
		if utf8.RuneCountInString(*description) > maxItemDescription {
			return malformed("Audit item " + id + " description is too long")
		}

		var status *string
		if err := json.Unmarshal(fields["status"], &status); err != nil {
			return malformed("Audit item " + id + " status must be pass, fail, or null")
		}
		if status != nil && *status != domain.AuditStatusPass && *status != domain.AuditStatusFail {
			return malformed("Audit item " + id + " status must be pass, fail, or null")
		}

		var updated *int64
		if err := json.Unmarshal(fields["updated"], &updated); err != nil || updated == nil {
			return malformed("Audit item " + id + " updated must be an integer timestamp")
		}
	}
	return nil
}

// aggregate merges submissions into per-item buckets. Submissions are
// already in creation order, and each contributes at most one entry per
// item, so bucket order is deterministic across reads. Submissions whose
// stored data no longer parses are skipped rather than failing the whole
// report.
func aggregate(subs []domain.AuditSubmission) domain.AggregatedReport {
	report := domain.AggregatedReport{}

	for _, sub := range subs {
		var items map[string]domain.AuditItem
		if err := json.Unmarshal([]byte(sub.Data), &items); err != nil {
			logger.Log.Warn("skipping unparseable audit submission",
				"doc_id", sub.DocId, "auditor_id", sub.AuditorId, "error", err)
			continue
		}

		for id, item := range items {
			if report[id] == nil {
				report[id] = &domain.ItemReport{Pass: []domain.AuditEntry{}, Fail: []domain.AuditEntry{}}
			}
			if item.Status == nil {
				continue
			}

			entry := domain.AuditEntry{
				Username:    sub.Username,
				Description: item.Description,
				Updated:     item.Updated,
			}
			switch *item.Status {
			case domain.AuditStatusPass:
				report[id].Pass = append(report[id].Pass, entry)
			case domain.AuditStatusFail:
				report[id].Fail = append(report[id].Fail, entry)
			}
		}
	}
	return report
}
