package service

import (
	"context"

	"github.com/openaudit/openaudit/internal/domain"
)

// Service interfaces consumed by the HTTP layer. Handlers depend on these
// so tests can swap in mocks.

type AuthService interface {
	SignIn(ctx context.Context, email domain.Email, password domain.Password) (string, *domain.User, error)
	Resolve(ctx context.Context, token string) (*domain.User, error)
	SignOut(ctx context.Context, token string)

	Signup(ctx context.Context, username domain.Username, email domain.Email, password domain.Password) error
	ConfirmEmail(ctx context.Context, email domain.Email, code string) error
	ResendConfirmationCode(ctx context.Context, email domain.Email) error
	ForgotPassword(ctx context.Context, email domain.Email) error
	ResetPassword(ctx context.Context, code string, password domain.Password) error

	UpdateProfile(ctx context.Context, id domain.UserId, realName, linkedin, github, qualifications string) error
	PublicProfile(ctx context.Context, username domain.Username) (domain.PublicProfile, error)
	SetDoNotEmail(ctx context.Context, email domain.Email, code string) error
}

type DocumentService interface {
	Create(ctx context.Context, actor Actor, title, content string, visibility domain.Visibility, allowAudit bool) (domain.Document, error)
	Get(ctx context.Context, actor Actor, id domain.DocumentId) (domain.Document, error)
	GetByAlias(ctx context.Context, actor Actor, alias string) (domain.Document, error)
	Update(ctx context.Context, actor Actor, id domain.DocumentId, title, content string, visibility domain.Visibility, allowAudit bool) (domain.Document, error)
	SetAlias(ctx context.Context, actor Actor, id domain.DocumentId, alias string) error
	Delete(ctx context.Context, actor Actor, id domain.DocumentId) error
	ListOwned(ctx context.Context, actor Actor) ([]domain.Document, error)
	ListPublicByUser(ctx context.Context, username domain.Username) ([]domain.Document, error)
	Featured(ctx context.Context) ([]domain.Document, error)
}

type AuditService interface {
	Submit(ctx context.Context, actor Actor, docId domain.DocumentId, data string) error
	Report(ctx context.Context, actor Actor, docId domain.DocumentId) (domain.AggregatedReport, error)
	OwnSubmission(ctx context.Context, actor Actor, docId domain.DocumentId) (domain.AuditSubmission, error)
	ListOwn(ctx context.Context, actor Actor) ([]domain.AuditSubmission, error)
	ListPublicByUser(ctx context.Context, username domain.Username) ([]domain.AuditSubmission, error)
}
