package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openaudit/openaudit/internal/domain"
	internal_errors "github.com/openaudit/openaudit/internal/errors"
)

// UpsertAudit writes one auditor's submission for a document. There is
// exactly one row per (doc_id, auditor_id); concurrent writes are
// last-writer-wins.
func (s *Storage) UpsertAudit(ctx context.Context, docId domain.DocumentId, auditorId domain.UserId, data string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
        INSERT INTO audits(doc_id, auditor_id, data)
        VALUES($1, $2, $3)
        ON CONFLICT (doc_id, auditor_id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
			docId, auditorId, data,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert audit: %w", err)
		}
		return nil
	})
}

// AuditSubmissions returns every submission for a document in creation
// order. The ordering is what keeps aggregated pass/fail lists stable
// across repeated reads.
func (s *Storage) AuditSubmissions(ctx context.Context, docId domain.DocumentId) ([]domain.AuditSubmission, error) {
	return s.audits(s.db, "a.doc_id = $1", docId)
}

// AuditSubmission returns one auditor's submission for a document.
func (s *Storage) AuditSubmission(ctx context.Context, docId domain.DocumentId, auditorId domain.UserId) (domain.AuditSubmission, error) {
	var sub domain.AuditSubmission
	err := s.db.QueryRow(`
        SELECT a.doc_id, a.auditor_id, u.username, a.data,
               (a.created_at at time zone 'utc'), (a.updated_at at time zone 'utc')
        FROM audits a JOIN users u ON u.id = a.auditor_id
        WHERE a.doc_id = $1 AND a.auditor_id = $2`,
		docId, auditorId,
	).Scan(&sub.DocId, &sub.AuditorId, &sub.Username, &sub.Data, &sub.Created, &sub.Updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AuditSubmission{}, internal_errors.NotFound("Audit not found")
		}
		return domain.AuditSubmission{}, fmt.Errorf("failed to query audit: %w", err)
	}
	return sub, nil
}

// AuditsByAuditor lists an auditor's submissions on non-private documents.
func (s *Storage) AuditsByAuditor(ctx context.Context, auditorId domain.UserId) ([]domain.AuditSubmission, error) {
	return s.audits(s.db,
		"a.auditor_id = $1 AND EXISTS (SELECT 1 FROM documents d WHERE d.id = a.doc_id AND d.visibility != 'private')",
		auditorId)
}

// PublicAuditsByUser lists a user's submissions on public documents.
func (s *Storage) PublicAuditsByUser(ctx context.Context, userId domain.UserId) ([]domain.AuditSubmission, error) {
	return s.audits(s.db,
		"a.auditor_id = $1 AND EXISTS (SELECT 1 FROM documents d WHERE d.id = a.doc_id AND d.visibility = 'public')",
		userId)
}

func (s *Storage) audits(q Querier, where string, args ...interface{}) ([]domain.AuditSubmission, error) {
	rows, err := q.Query(`
        SELECT a.doc_id, a.auditor_id, u.username, a.data,
               (a.created_at at time zone 'utc'), (a.updated_at at time zone 'utc')
        FROM audits a JOIN users u ON u.id = a.auditor_id
        WHERE `+where+" ORDER BY a.created_at", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audits: %w", err)
	}
	defer rows.Close()

	var subs []domain.AuditSubmission
	for rows.Next() {
		var sub domain.AuditSubmission
		if err := rows.Scan(&sub.DocId, &sub.AuditorId, &sub.Username, &sub.Data, &sub.Created, &sub.Updated); err != nil {
			return nil, fmt.Errorf("failed to scan audit: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
