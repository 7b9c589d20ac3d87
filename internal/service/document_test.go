package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/openaudit/internal/domain"
	internal_errors "github.com/openaudit/openaudit/internal/errors"
	"github.com/openaudit/openaudit/internal/utils"
)

// --- Mocks ---

type MockDocumentStorage struct {
	SaveDocumentFunc           func(doc domain.Document) error
	DocumentFunc               func(id domain.DocumentId) (domain.Document, error)
	DocumentByAliasFunc        func(alias string) (domain.Document, error)
	UpdateDocumentFunc         func(doc domain.Document) error
	SetAliasFunc               func(id domain.DocumentId, alias *string) error
	DeleteDocumentFunc         func(id domain.DocumentId) error
	DocumentsByOwnerFunc       func(ownerId domain.UserId) ([]domain.Document, error)
	PublicDocumentsByOwnerFunc func(ownerId domain.UserId) ([]domain.Document, error)
	FeaturedDocumentsFunc      func() ([]domain.Document, error)
	UserByUsernameFunc         func(username domain.Username) (domain.User, error)
}

func (m *MockDocumentStorage) SaveDocument(ctx context.Context, doc domain.Document) error {
	if m.SaveDocumentFunc != nil {
		return m.SaveDocumentFunc(doc)
	}
	return nil
}

func (m *MockDocumentStorage) Document(ctx context.Context, id domain.DocumentId) (domain.Document, error) {
	if m.DocumentFunc != nil {
		return m.DocumentFunc(id)
	}
	return domain.Document{Id: id, OwnerId: 1, Visibility: domain.VisibilityPublic}, nil
}

func (m *MockDocumentStorage) DocumentByAlias(ctx context.Context, alias string) (domain.Document, error) {
	if m.DocumentByAliasFunc != nil {
		return m.DocumentByAliasFunc(alias)
	}
	return domain.Document{Id: "d1", OwnerId: 1, Visibility: domain.VisibilityPublic, Alias: alias}, nil
}

func (m *MockDocumentStorage) UpdateDocument(ctx context.Context, doc domain.Document) error {
	if m.UpdateDocumentFunc != nil {
		return m.UpdateDocumentFunc(doc)
	}
	return nil
}

func (m *MockDocumentStorage) SetAlias(ctx context.Context, id domain.DocumentId, alias *string) error {
	if m.SetAliasFunc != nil {
		return m.SetAliasFunc(id, alias)
	}
	return nil
}

func (m *MockDocumentStorage) DeleteDocument(ctx context.Context, id domain.DocumentId) error {
	if m.DeleteDocumentFunc != nil {
		return m.DeleteDocumentFunc(id)
	}
	return nil
}

func (m *MockDocumentStorage) DocumentsByOwner(ctx context.Context, ownerId domain.UserId) ([]domain.Document, error) {
	if m.DocumentsByOwnerFunc != nil {
		return m.DocumentsByOwnerFunc(ownerId)
	}
	return nil, nil
}

func (m *MockDocumentStorage) PublicDocumentsByOwner(ctx context.Context, ownerId domain.UserId) ([]domain.Document, error) {
	if m.PublicDocumentsByOwnerFunc != nil {
		return m.PublicDocumentsByOwnerFunc(ownerId)
	}
	return nil, nil
}

func (m *MockDocumentStorage) FeaturedDocuments(ctx context.Context) ([]domain.Document, error) {
	if m.FeaturedDocumentsFunc != nil {
		return m.FeaturedDocumentsFunc()
	}
	return nil, nil
}

func (m *MockDocumentStorage) UserByUsername(ctx context.Context, username domain.Username) (domain.User, error) {
	if m.UserByUsernameFunc != nil {
		return m.UserByUsernameFunc(username)
	}
	return domain.User{Id: 1, Username: username}, nil
}

func newTestDocuments(storage *MockDocumentStorage) *Documents {
	if storage == nil {
		storage = &MockDocumentStorage{}
	}
	return NewDocuments(storage, &utils.AliasValidator{})
}

// --- Tests ---

func TestCreateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous can't create", func(t *testing.T) {
		_, err := newTestDocuments(nil).Create(ctx, AnonymousActor(), "t", "{}", domain.VisibilityPublic, false)
		_, code := statusAndCode(t, err)
		assert.Equal(t, internal_errors.CodeUnauthenticated, code)
	})

	t.Run("empty visibility defaults to unlisted, auditing off", func(t *testing.T) {
		var saved domain.Document
		storage := &MockDocumentStorage{
			SaveDocumentFunc: func(doc domain.Document) error {
				saved = doc
				return nil
			},
			DocumentFunc: func(id domain.DocumentId) (domain.Document, error) {
				return saved, nil
			},
		}

		doc, err := newTestDocuments(storage).Create(ctx, UserActor(1), "t", "{}", "", true)
		require.NoError(t, err)
		assert.Equal(t, domain.VisibilityUnlisted, doc.Visibility)
		assert.False(t, doc.AllowAudit)
		assert.Equal(t, domain.UserId(1), doc.OwnerId)
		assert.NotEmpty(t, doc.Id)
	})

	t.Run("private with auditing on is rejected", func(t *testing.T) {
		_, err := newTestDocuments(nil).Create(ctx, UserActor(1), "t", "{}", domain.VisibilityPrivate, true)
		_, code := statusAndCode(t, err)
		assert.Equal(t, internal_errors.CodeBadVisibility, code)
	})

	t.Run("unknown visibility is rejected", func(t *testing.T) {
		_, err := newTestDocuments(nil).Create(ctx, UserActor(1), "t", "{}", "internal", false)
		assert.Error(t, err)
	})
}

func TestUpdateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("non-owner can't update", func(t *testing.T) {
		_, err := newTestDocuments(nil).Update(ctx, UserActor(2), "d1", "t", "{}", domain.VisibilityPublic, false)
		_, code := statusAndCode(t, err)
		assert.Equal(t, internal_errors.CodeNotOwner, code)
	})

	t.Run("invariant holds on update too", func(t *testing.T) {
		_, err := newTestDocuments(nil).Update(ctx, UserActor(1), "d1", "t", "{}", domain.VisibilityPrivate, true)
		_, code := statusAndCode(t, err)
		assert.Equal(t, internal_errors.CodeBadVisibility, code)
	})

	t.Run("owner update persists new fields", func(t *testing.T) {
		var updated domain.Document
		storage := &MockDocumentStorage{
			UpdateDocumentFunc: func(doc domain.Document) error {
				updated = doc
				return nil
			},
		}

		_, err := newTestDocuments(storage).Update(ctx, UserActor(1), "d1", "new title", `{"a":1}`, domain.VisibilityPrivate, false)
		require.NoError(t, err)
		assert.Equal(t, "new title", updated.Title)
		assert.Equal(t, domain.VisibilityPrivate, updated.Visibility)
		assert.False(t, updated.AllowAudit)
	})
}

func TestGetDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("private document hidden from strangers", func(t *testing.T) {
		storage := &MockDocumentStorage{
			DocumentFunc: func(id domain.DocumentId) (domain.Document, error) {
				return domain.Document{Id: id, OwnerId: 1, Visibility: domain.VisibilityPrivate}, nil
			},
		}

		docs := newTestDocuments(storage)
		_, err := docs.Get(ctx, UserActor(2), "d1")
		_, code := statusAndCode(t, err)
		assert.Equal(t, internal_errors.CodePrivateDocument, code)

		doc, err := docs.Get(ctx, UserActor(1), "d1")
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentId("d1"), doc.Id)
	})

	t.Run("unlisted readable by anonymous via id", func(t *testing.T) {
		storage := &MockDocumentStorage{
			DocumentFunc: func(id domain.DocumentId) (domain.Document, error) {
				return domain.Document{Id: id, OwnerId: 1, Visibility: domain.VisibilityUnlisted}, nil
			},
		}

		_, err := newTestDocuments(storage).Get(ctx, AnonymousActor(), "d1")
		assert.NoError(t, err)
	})
}

func TestSetAlias(t *testing.T) {
	ctx := context.Background()

	t.Run("valid alias is set", func(t *testing.T) {
		var gotAlias *string
		storage := &MockDocumentStorage{
			SetAliasFunc: func(id domain.DocumentId, alias *string) error {
				gotAlias = alias
				return nil
			},
		}

		err := newTestDocuments(storage).SetAlias(ctx, UserActor(1), "d1", "my-doc.v2")
		require.NoError(t, err)
		require.NotNil(t, gotAlias)
		assert.Equal(t, "my-doc.v2", *gotAlias)
	})

	t.Run("empty alias clears", func(t *testing.T) {
		cleared := false
		storage := &MockDocumentStorage{
			SetAliasFunc: func(id domain.DocumentId, alias *string) error {
				cleared = alias == nil
				return nil
			},
		}

		require.NoError(t, newTestDocuments(storage).SetAlias(ctx, UserActor(1), "d1", ""))
		assert.True(t, cleared)
	})

	t.Run("shape rules enforced", func(t *testing.T) {
		docs := newTestDocuments(nil)
		for _, alias := range []string{"ab", "UPPER", "two..dots", "-edge", "edge-", "has space"} {
			assert.Error(t, docs.SetAlias(ctx, UserActor(1), "d1", alias), alias)
		}
	})

	t.Run("non-owner can't set", func(t *testing.T) {
		err := newTestDocuments(nil).SetAlias(ctx, UserActor(2), "d1", "my-doc")
		_, code := statusAndCode(t, err)
		assert.Equal(t, internal_errors.CodeNotOwner, code)
	})
}
