package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/openaudit/openaudit/internal/domain"
	internal_errors "github.com/openaudit/openaudit/internal/errors"
)

const documentColumns = `id, owner_id, title, content, visibility, allow_audit,
    COALESCE(alias, ''), featured, (created_at at time zone 'utc'), (updated_at at time zone 'utc')`

func (s *Storage) SaveDocument(ctx context.Context, doc domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
        INSERT INTO documents(id, owner_id, title, content, visibility, allow_audit)
        VALUES($1, $2, $3, $4, $5, $6)`,
			doc.Id, doc.OwnerId, doc.Title, doc.Content, doc.Visibility, doc.AllowAudit,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}
		return nil
	})
}

func (s *Storage) Document(ctx context.Context, id domain.DocumentId) (domain.Document, error) {
	return s.document(s.db, "id = $1", id)
}

func (s *Storage) DocumentByAlias(ctx context.Context, alias string) (domain.Document, error) {
	return s.document(s.db, "alias = $1", alias)
}

// UpdateDocument replaces the mutable fields. Ownership and the
// visibility/audit invariant are checked by the caller before this runs;
// the schema CHECK is only a backstop.
func (s *Storage) UpdateDocument(ctx context.Context, doc domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.execOne(tx, `
        UPDATE documents SET title = $1, content = $2, visibility = $3, allow_audit = $4, updated_at = now()
        WHERE id = $5`,
			"Document not found", doc.Title, doc.Content, doc.Visibility, doc.AllowAudit, doc.Id)
	})
}

// SetAlias sets or clears (nil) the document alias.
func (s *Storage) SetAlias(ctx context.Context, id domain.DocumentId, alias *string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		err := s.execOne(tx, "UPDATE documents SET alias = $1, updated_at = now() WHERE id = $2",
			"Document not found", alias, id)
		if err != nil && isUniqueViolation(err) {
			return &internal_errors.ErrorWithStatusCode{Message: "Alias already taken", StatusCode: http.StatusBadRequest}
		}
		return err
	})
}

func (s *Storage) DeleteDocument(ctx context.Context, id domain.DocumentId) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.execOne(tx, "DELETE FROM documents WHERE id = $1", "Document not found", id)
	})
}

func (s *Storage) DocumentsByOwner(ctx context.Context, ownerId domain.UserId) ([]domain.Document, error) {
	return s.documents(s.db, "owner_id = $1", ownerId)
}

func (s *Storage) PublicDocumentsByOwner(ctx context.Context, ownerId domain.UserId) ([]domain.Document, error) {
	return s.documents(s.db, "owner_id = $1 AND visibility = 'public'", ownerId)
}

func (s *Storage) FeaturedDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.documents(s.db, "featured = TRUE AND visibility = 'public'")
}

// =========================================================================
// Internal methods (core database logic)
// =========================================================================

func (s *Storage) document(q Querier, where string, args ...interface{}) (domain.Document, error) {
	var doc domain.Document
	err := q.QueryRow("SELECT "+documentColumns+" FROM documents WHERE "+where, args...,
	).Scan(&doc.Id, &doc.OwnerId, &doc.Title, &doc.Content, &doc.Visibility, &doc.AllowAudit,
		&doc.Alias, &doc.Featured, &doc.Created, &doc.Updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Document{}, internal_errors.NotFound("Document not found")
		}
		return domain.Document{}, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

func (s *Storage) documents(q Querier, where string, args ...interface{}) ([]domain.Document, error) {
	rows, err := q.Query("SELECT "+documentColumns+" FROM documents WHERE "+where+" ORDER BY created_at DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.Id, &doc.OwnerId, &doc.Title, &doc.Content, &doc.Visibility, &doc.AllowAudit,
			&doc.Alias, &doc.Featured, &doc.Created, &doc.Updated); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
