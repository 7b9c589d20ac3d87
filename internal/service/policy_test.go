package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/openaudit/internal/domain"
	internal_errors "github.com/openaudit/openaudit/internal/errors"
)

func statusAndCode(t *testing.T, err error) (int, int) {
	t.Helper()
	require.Error(t, err)
	return internal_errors.StatusAndCode(err)
}

func TestDecide_Read(t *testing.T) {
	owner := UserActor(1)
	stranger := UserActor(2)
	anon := AnonymousActor()

	tests := []struct {
		name       string
		actor      Actor
		visibility domain.Visibility
		wantCode   int // 0 = allow
	}{
		{"public readable by anyone", anon, domain.VisibilityPublic, 0},
		{"unlisted readable by anyone with the link", anon, domain.VisibilityUnlisted, 0},
		{"private readable by owner", owner, domain.VisibilityPrivate, 0},
		{"private denied to stranger", stranger, domain.VisibilityPrivate, internal_errors.CodePrivateDocument},
		{"private denied to anonymous", anon, domain.VisibilityPrivate, internal_errors.CodePrivateDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := domain.Document{Id: "d1", OwnerId: 1, Visibility: tt.visibility}
			err := Decide(tt.actor, doc, ActionRead)
			if tt.wantCode == 0 {
				assert.NoError(t, err)
				return
			}
			status, code := statusAndCode(t, err)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestDecide_OwnerOnlyActions(t *testing.T) {
	doc := domain.Document{Id: "d1", OwnerId: 1, Visibility: domain.VisibilityPublic}

	for _, action := range []Action{ActionReadOwned, ActionUpdate, ActionSetAlias, ActionDelete, ActionListAuditsAsOwner} {
		assert.NoError(t, Decide(UserActor(1), doc, action))

		_, code := statusAndCode(t, Decide(UserActor(2), doc, action))
		assert.Equal(t, internal_errors.CodeNotOwner, code)

		status, code := statusAndCode(t, Decide(AnonymousActor(), doc, action))
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, internal_errors.CodeUnauthenticated, code)
	}
}

func TestDecide_SubmitAudit(t *testing.T) {
	auditable := domain.Document{Id: "d1", OwnerId: 1, Visibility: domain.VisibilityPublic, AllowAudit: true}
	closed := domain.Document{Id: "d2", OwnerId: 1, Visibility: domain.VisibilityPublic, AllowAudit: false}

	assert.NoError(t, Decide(UserActor(2), auditable, ActionSubmitAudit))

	// Owner denial takes precedence over the allow_audit check: an owner of
	// a non-auditable document hears "can't audit your own", not "disabled".
	_, code := statusAndCode(t, Decide(UserActor(1), closed, ActionSubmitAudit))
	assert.Equal(t, internal_errors.CodeSelfAudit, code)

	_, code = statusAndCode(t, Decide(UserActor(2), closed, ActionSubmitAudit))
	assert.Equal(t, internal_errors.CodeAuditingDisabled, code)

	status, code := statusAndCode(t, Decide(AnonymousActor(), auditable, ActionSubmitAudit))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, internal_errors.CodeUnauthenticated, code)
}

func TestDecide_ListAudits(t *testing.T) {
	public := domain.Document{Id: "d1", OwnerId: 1, Visibility: domain.VisibilityPublic}
	private := domain.Document{Id: "d2", OwnerId: 1, Visibility: domain.VisibilityPrivate}

	assert.NoError(t, Decide(AnonymousActor(), public, ActionListAudits))

	status, code := statusAndCode(t, Decide(AnonymousActor(), private, ActionListAudits))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, internal_errors.CodePrivateDocument, code)
}

func TestCheckAuditVisibility(t *testing.T) {
	assert.NoError(t, CheckAuditVisibility(domain.VisibilityPublic, true))
	assert.NoError(t, CheckAuditVisibility(domain.VisibilityUnlisted, true))
	assert.NoError(t, CheckAuditVisibility(domain.VisibilityPrivate, false))

	status, code := statusAndCode(t, CheckAuditVisibility(domain.VisibilityPrivate, true))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, internal_errors.CodeBadVisibility, code)
}
