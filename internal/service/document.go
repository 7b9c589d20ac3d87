package service

import (
	"context"
	"net/http"

	"github.com/openaudit/openaudit/internal/domain"
	"github.com/openaudit/openaudit/internal/errors"
	"github.com/openaudit/openaudit/internal/utils"
)

// DocumentStorage is what Documents needs from persistent storage.
type DocumentStorage interface {
	SaveDocument(ctx context.Context, doc domain.Document) error
	Document(ctx context.Context, id domain.DocumentId) (domain.Document, error)
	DocumentByAlias(ctx context.Context, alias string) (domain.Document, error)
	UpdateDocument(ctx context.Context, doc domain.Document) error
	SetAlias(ctx context.Context, id domain.DocumentId, alias *string) error
	DeleteDocument(ctx context.Context, id domain.DocumentId) error
	DocumentsByOwner(ctx context.Context, ownerId domain.UserId) ([]domain.Document, error)
	PublicDocumentsByOwner(ctx context.Context, ownerId domain.UserId) ([]domain.Document, error)
	FeaturedDocuments(ctx context.Context) ([]domain.Document, error)

	UserByUsername(ctx context.Context, username domain.Username) (domain.User, error)
}

type AliasValidator interface {
	Alias(alias string) error
}

type Documents struct {
	s     DocumentStorage
	alias AliasValidator
}

func NewDocuments(s DocumentStorage, alias AliasValidator) *Documents {
	return &Documents{s, alias}
}

var errBadVisibilityValue = &errors.ErrorWithStatusCode{
	Message:    "Visibility must be public, private, or unlisted",
	StatusCode: http.StatusBadRequest,
	Code:       errors.CodeBadVisibility,
}

// Create stores a new document owned by the actor. An empty visibility
// defaults to unlisted with auditing off, the most private state that
// still allows link sharing.
func (d *Documents) Create(ctx context.Context, actor Actor, title, content string, visibility domain.Visibility, allowAudit bool) (domain.Document, error) {
	if actor.Anonymous {
		return domain.Document{}, errUnauthenticated
	}

	if visibility == "" {
		visibility = domain.VisibilityUnlisted
		allowAudit = false
	}
	if !domain.ValidVisibility(visibility) {
		return domain.Document{}, errBadVisibilityValue
	}
	if err := CheckAuditVisibility(visibility, allowAudit); err != nil {
		return domain.Document{}, err
	}

	doc := domain.Document{
		Id:         domain.DocumentId(utils.GenerateDocumentId()),
		OwnerId:    actor.Id,
		Title:      title,
		Content:    content,
		Visibility: visibility,
		AllowAudit: allowAudit,
	}
	if err := d.s.SaveDocument(ctx, doc); err != nil {
		return domain.Document{}, err
	}
	return d.s.Document(ctx, doc.Id)
}

// Get returns a document by id, subject to the read policy. Private
// documents read by non-owners deny with the same shape as any other
// policy denial, not a generic 404.
func (d *Documents) Get(ctx context.Context, actor Actor, id domain.DocumentId) (domain.Document, error) {
	doc, err := d.s.Document(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	if err := Decide(actor, doc, ActionRead); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (d *Documents) GetByAlias(ctx context.Context, actor Actor, alias string) (domain.Document, error) {
	doc, err := d.s.DocumentByAlias(ctx, alias)
	if err != nil {
		return domain.Document{}, err
	}
	if err := Decide(actor, doc, ActionRead); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (d *Documents) Update(ctx context.Context, actor Actor, id domain.DocumentId, title, content string, visibility domain.Visibility, allowAudit bool) (domain.Document, error) {
	doc, err := d.s.Document(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	if err := Decide(actor, doc, ActionUpdate); err != nil {
		return domain.Document{}, err
	}

	if !domain.ValidVisibility(visibility) {
		return domain.Document{}, errBadVisibilityValue
	}
	if err := CheckAuditVisibility(visibility, allowAudit); err != nil {
		return domain.Document{}, err
	}

	doc.Title = title
	doc.Content = content
	doc.Visibility = visibility
	doc.AllowAudit = allowAudit
	if err := d.s.UpdateDocument(ctx, doc); err != nil {
		return domain.Document{}, err
	}
	return d.s.Document(ctx, id)
}

// SetAlias sets the document's vanity alias, or clears it when alias is
// empty.
func (d *Documents) SetAlias(ctx context.Context, actor Actor, id domain.DocumentId, alias string) error {
	doc, err := d.s.Document(ctx, id)
	if err != nil {
		return err
	}
	if err := Decide(actor, doc, ActionSetAlias); err != nil {
		return err
	}

	if alias == "" {
		return d.s.SetAlias(ctx, id, nil)
	}
	if err := d.alias.Alias(alias); err != nil {
		return err
	}
	return d.s.SetAlias(ctx, id, &alias)
}

func (d *Documents) Delete(ctx context.Context, actor Actor, id domain.DocumentId) error {
	doc, err := d.s.Document(ctx, id)
	if err != nil {
		return err
	}
	if err := Decide(actor, doc, ActionDelete); err != nil {
		return err
	}
	return d.s.DeleteDocument(ctx, id)
}

// ListOwned returns every document the actor owns, private ones included.
func (d *Documents) ListOwned(ctx context.Context, actor Actor) ([]domain.Document, error) {
	if actor.Anonymous {
		return nil, errUnauthenticated
	}
	return d.s.DocumentsByOwner(ctx, actor.Id)
}

// ListPublicByUser returns a user's public documents, for profile pages.
func (d *Documents) ListPublicByUser(ctx context.Context, username domain.Username) ([]domain.Document, error) {
	user, err := d.s.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return d.s.PublicDocumentsByOwner(ctx, user.Id)
}

func (d *Documents) Featured(ctx context.Context) ([]domain.Document, error) {
	return d.s.FeaturedDocuments(ctx)
}
