package pg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/openaudit/internal/domain"
	internal_errors "github.com/openaudit/openaudit/internal/errors"
)

func TestUpsertAudit(t *testing.T) {
	ctx := context.Background()
	ownerId := mustSaveUser(t, "auditdocowner", "auditdocowner@example.org")
	auditorId := mustSaveUser(t, "auditor1", "auditor1@example.org")
	mustSaveDocument(t, "auditdoc1", ownerId, domain.VisibilityPublic, true)

	require.NoError(t, storage.UpsertAudit(ctx, "auditdoc1", auditorId, `{"item1": {"status": "pass"}}`))

	sub, err := storage.AuditSubmission(ctx, "auditdoc1", auditorId)
	require.NoError(t, err)
	assert.Equal(t, `{"item1": {"status": "pass"}}`, sub.Data)
	assert.Equal(t, domain.Username("auditor1"), sub.Username)

	// Resubmission replaces, never duplicates
	require.NoError(t, storage.UpsertAudit(ctx, "auditdoc1", auditorId, `{"item1": {"status": "fail"}}`))

	subs, err := storage.AuditSubmissions(ctx, "auditdoc1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, `{"item1": {"status": "fail"}}`, subs[0].Data)

	_, err = storage.AuditSubmission(ctx, "auditdoc1", 99999)
	assert.True(t, internal_errors.IsNotFound(err))
}

func TestAuditSubmissionsOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	ownerId := mustSaveUser(t, "orderowner", "orderowner@example.org")
	first := mustSaveUser(t, "orderauditor1", "orderauditor1@example.org")
	second := mustSaveUser(t, "orderauditor2", "orderauditor2@example.org")
	mustSaveDocument(t, "orderdoc", ownerId, domain.VisibilityPublic, true)

	require.NoError(t, storage.UpsertAudit(ctx, "orderdoc", first, "{}"))
	require.NoError(t, storage.UpsertAudit(ctx, "orderdoc", second, "{}"))

	// Updating the first submission must not move it behind the second
	require.NoError(t, storage.UpsertAudit(ctx, "orderdoc", first, `{"updated": true}`))

	subs, err := storage.AuditSubmissions(ctx, "orderdoc")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, first, subs[0].AuditorId)
	assert.Equal(t, second, subs[1].AuditorId)
}

func TestAuditsByAuditorExcludesPrivate(t *testing.T) {
	ctx := context.Background()
	ownerId := mustSaveUser(t, "visowner", "visowner@example.org")
	auditorId := mustSaveUser(t, "visauditor", "visauditor@example.org")
	mustSaveDocument(t, "vispublic", ownerId, domain.VisibilityPublic, true)
	mustSaveDocument(t, "visunlisted", ownerId, domain.VisibilityUnlisted, true)
	mustSaveDocument(t, "visprivate", ownerId, domain.VisibilityPrivate, false)

	require.NoError(t, storage.UpsertAudit(ctx, "vispublic", auditorId, "{}"))
	require.NoError(t, storage.UpsertAudit(ctx, "visunlisted", auditorId, "{}"))
	// Audits on private documents can exist historically (the document may
	// have gone private after submission)
	require.NoError(t, storage.UpsertAudit(ctx, "visprivate", auditorId, "{}"))

	own, err := storage.AuditsByAuditor(ctx, auditorId)
	require.NoError(t, err)
	require.Len(t, own, 2)

	public, err := storage.PublicAuditsByUser(ctx, auditorId)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, domain.DocumentId("vispublic"), public[0].DocId)
}
