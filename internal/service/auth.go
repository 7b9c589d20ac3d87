package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/openaudit/openaudit/internal/config"
	"github.com/openaudit/openaudit/internal/domain"
	"github.com/openaudit/openaudit/internal/errors"
	"github.com/openaudit/openaudit/internal/logger"
	"github.com/openaudit/openaudit/internal/utils"
)

// AuthStorage is what Auth needs from persistent storage.
type AuthStorage interface {
	SaveUser(ctx context.Context, user domain.User) (domain.UserId, error)
	UserByEmail(ctx context.Context, email domain.Email) (domain.User, error)
	UserByUsername(ctx context.Context, username domain.Username) (domain.User, error)
	UserById(ctx context.Context, id domain.UserId) (domain.User, error)
	ConfirmUserEmail(ctx context.Context, email domain.Email) error
	UpdatePassword(ctx context.Context, email domain.Email, passHash string) error
	UpdateProfile(ctx context.Context, id domain.UserId, realName, linkedin, github, qualifications string) error
	SetDoNotEmail(ctx context.Context, email domain.Email) error

	SaveConfirmationCode(ctx context.Context, data domain.ConfirmationData) error
	ConfirmationCode(ctx context.Context, email domain.Email) (domain.ConfirmationData, error)
	DeleteConfirmationCode(ctx context.Context, email domain.Email) error

	SaveResetCode(ctx context.Context, data domain.ConfirmationData) error
	ResetCodeByHash(ctx context.Context, codeHash string) (domain.ConfirmationData, error)
	DeleteResetCode(ctx context.Context, email domain.Email) error
}

// SessionStore is the server-side session table, keyed by opaque token.
type SessionStore interface {
	CreateSession(ctx context.Context, token string, userId domain.UserId, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (domain.UserId, bool, error)
	TouchSession(ctx context.Context, token string, ttl time.Duration) error
	DeleteSession(ctx context.Context, token string) error
}

type Email interface {
	IsCorrect(email string) error
	Send(recipient, subject, text string) error
}

type UsernameValidator interface {
	Username(name string) error
}

type PasswordValidator interface {
	Password(password string) error
}

type ProfileValidator interface {
	Profile(realName, linkedin, github, qualifications string) error
}

type Auth struct {
	s        AuthStorage
	sessions SessionStore
	email    Email
	username UsernameValidator
	password PasswordValidator
	profile  ProfileValidator
	cfg      *config.Config
}

func NewAuth(
	s AuthStorage,
	sessions SessionStore,
	email Email,
	username UsernameValidator,
	password PasswordValidator,
	profile ProfileValidator,
	cfg *config.Config,
) *Auth {
	return &Auth{s, sessions, email, username, password, profile, cfg}
}

var (
	errInvalidCreds = &errors.ErrorWithStatusCode{
		Message:    "Invalid email or password",
		StatusCode: http.StatusUnauthorized,
		Code:       errors.CodeInvalidCreds,
	}
	errEmailNotConfirmed = &errors.ErrorWithStatusCode{
		Message:    "Email not confirmed",
		StatusCode: http.StatusUnauthorized,
		Code:       errors.CodeEmailNotConfirmed,
	}
	errDisposableEmail = &errors.ErrorWithStatusCode{
		Message:    "Disposable email addresses are not allowed",
		StatusCode: http.StatusBadRequest,
		Code:       errors.CodeDisposableEmail,
	}
	errBadCode = &errors.ErrorWithStatusCode{
		Message:    "Invalid or expired code",
		StatusCode: http.StatusBadRequest,
	}
)

// =========================================================================
// Sessions
// =========================================================================

// SignIn verifies credentials and returns a fresh session token.
//
// The invalid-credentials error is identical whether the email is unknown
// or the password is wrong, so the endpoint can't be used to enumerate
// accounts. An unconfirmed email is reported distinctly but only after the
// password checks out. The session is written before any previous one is
// invalidated, so a storage failure can't leave the user half signed out.
func (a *Auth) SignIn(ctx context.Context, email domain.Email, password domain.Password) (string, *domain.User, error) {
	user, err := a.s.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return "", nil, errInvalidCreds
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return "", nil, errInvalidCreds
	}

	if !user.EmailConfirmed {
		return "", nil, errEmailNotConfirmed
	}

	token := utils.GenerateSessionToken()
	if err := a.sessions.CreateSession(ctx, token, user.Id, a.cfg.SessionTTL()); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return token, &user, nil
}

// Resolve maps a presented session token to a user. An absent or dangling
// session resolves to the anonymous visitor (nil user, nil error); only
// infrastructure failures surface as errors. Valid sessions get their TTL
// extended, making expiry idle-based rather than absolute.
func (a *Auth) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}

	userId, found, err := a.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !found {
		return nil, nil
	}

	user, err := a.s.UserById(ctx, userId)
	if err != nil {
		if errors.IsNotFound(err) {
			// Session points at a deleted account. Drop it and treat
			// the visitor as anonymous.
			if err := a.sessions.DeleteSession(ctx, token); err != nil {
				logger.Log.Warn("failed to delete dangling session", "error", err)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := a.sessions.TouchSession(ctx, token, a.cfg.SessionTTL()); err != nil {
		logger.Log.Warn("failed to extend session", "error", err)
	}

	return &user, nil
}

// SignOut invalidates a session. Idempotent: signing out an absent or
// already-expired session succeeds, and storage failures are logged rather
// than surfaced so the client always ends up signed out.
func (a *Auth) SignOut(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := a.sessions.DeleteSession(ctx, token); err != nil {
		logger.Log.Warn("failed to delete session", "error", err)
	}
}

// =========================================================================
// Account lifecycle
// =========================================================================

func (a *Auth) Signup(ctx context.Context, username domain.Username, email domain.Email, password domain.Password) error {
	if err := a.username.Username(string(username)); err != nil {
		return err
	}
	if err := a.password.Password(string(password)); err != nil {
		return err
	}

	email = normalizeEmail(email)
	if err := a.email.IsCorrect(string(email)); err != nil {
		return err
	}
	if a.isDisposable(email) {
		return errDisposableEmail
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{Username: username, Email: email, PassHash: string(passHash)}
	if _, err := a.s.SaveUser(ctx, user); err != nil {
		return err
	}

	return a.sendConfirmationCode(ctx, email)
}

func (a *Auth) ConfirmEmail(ctx context.Context, email domain.Email, code string) error {
	email = normalizeEmail(email)

	data, err := a.s.ConfirmationCode(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return errBadCode
		}
		return fmt.Errorf("failed to get confirmation code: %w", err)
	}

	if time.Now().After(data.Expires) {
		return errBadCode
	}
	if err := bcrypt.CompareHashAndPassword([]byte(data.CodeHash), []byte(code)); err != nil {
		return errBadCode
	}

	if err := a.s.ConfirmUserEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	if err := a.s.DeleteConfirmationCode(ctx, email); err != nil {
		logger.Log.Warn("failed to delete used confirmation code", "error", err)
	}
	return nil
}

// ResendConfirmationCode issues a fresh code. Succeeds silently when the
// email is unknown or already confirmed, leaking nothing about accounts.
func (a *Auth) ResendConfirmationCode(ctx context.Context, email domain.Email) error {
	email = normalizeEmail(email)

	user, err := a.s.UserByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.EmailConfirmed {
		return nil
	}

	return a.sendConfirmationCode(ctx, email)
}

// ForgotPassword issues a reset code. Like resend, it succeeds silently
// for unknown emails.
func (a *Auth) ForgotPassword(ctx context.Context, email domain.Email) error {
	email = normalizeEmail(email)

	user, err := a.s.UserByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.DoNotEmail {
		return nil
	}

	code := utils.GenerateCode(a.codeLen())
	data := domain.ConfirmationData{
		Email:    email,
		CodeHash: utils.HashSHA256(code),
		Expires:  time.Now().Add(a.cfg.ResetCodeTTL()),
	}
	if err := a.s.SaveResetCode(ctx, data); err != nil {
		return fmt.Errorf("failed to save reset code: %w", err)
	}

	text := fmt.Sprintf(
		"Your password reset code is: %s\n\nIf you didn't request this, ignore this email.\n\nTo never receive mail from us again, use this code: %s",
		code, DoNotEmailCode(email))
	if err := a.email.Send(string(email), "Password reset", text); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset code and sets the new password. The code
// alone identifies the account, which is why its hash must be a
// deterministic lookup key.
func (a *Auth) ResetPassword(ctx context.Context, code string, password domain.Password) error {
	if err := a.password.Password(string(password)); err != nil {
		return err
	}

	data, err := a.s.ResetCodeByHash(ctx, utils.HashSHA256(code))
	if err != nil {
		if errors.IsNotFound(err) {
			return errBadCode
		}
		return fmt.Errorf("failed to get reset code: %w", err)
	}
	if time.Now().After(data.Expires) {
		return errBadCode
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := a.s.UpdatePassword(ctx, data.Email, string(passHash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := a.s.DeleteResetCode(ctx, data.Email); err != nil {
		logger.Log.Warn("failed to delete used reset code", "error", err)
	}
	return nil
}

// =========================================================================
// Profiles
// =========================================================================

func (a *Auth) UpdateProfile(ctx context.Context, id domain.UserId, realName, linkedin, github, qualifications string) error {
	if err := a.profile.Profile(realName, linkedin, github, qualifications); err != nil {
		return err
	}
	return a.s.UpdateProfile(ctx, id, realName, linkedin, github, qualifications)
}

func (a *Auth) PublicProfile(ctx context.Context, username domain.Username) (domain.PublicProfile, error) {
	user, err := a.s.UserByUsername(ctx, username)
	if err != nil {
		return domain.PublicProfile{}, err
	}
	return user.Public(), nil
}

// SetDoNotEmail permanently opts an address out of all mail. The code is
// the per-address token embedded in outgoing mail, so only someone who
// received a message can suppress the address.
func (a *Auth) SetDoNotEmail(ctx context.Context, email domain.Email, code string) error {
	email = normalizeEmail(email)
	if code != DoNotEmailCode(email) {
		return errBadCode
	}
	err := a.s.SetDoNotEmail(ctx, email)
	if errors.IsNotFound(err) {
		return nil
	}
	return err
}

// DoNotEmailCode derives the unsubscribe token for an address.
func DoNotEmailCode(email domain.Email) string {
	return utils.HashSHA256("do-not-email:" + string(email))
}

// =========================================================================
// Helpers
// =========================================================================

func (a *Auth) sendConfirmationCode(ctx context.Context, email domain.Email) error {
	code := utils.GenerateCode(a.codeLen())

	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash confirmation code: %w", err)
	}

	data := domain.ConfirmationData{
		Email:    email,
		CodeHash: string(codeHash),
		Expires:  time.Now().Add(a.cfg.ConfirmationCodeTTL()),
	}
	if err := a.s.SaveConfirmationCode(ctx, data); err != nil {
		return fmt.Errorf("failed to save confirmation code: %w", err)
	}

	text := fmt.Sprintf("Your confirmation code is: %s", code)
	if err := a.email.Send(string(email), "Confirm your email", text); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

func (a *Auth) codeLen() int {
	if a.cfg.Public.ConfirmationCodeLen > 0 {
		return a.cfg.Public.ConfirmationCodeLen
	}
	return 12
}

func (a *Auth) isDisposable(email domain.Email) bool {
	at := strings.LastIndex(string(email), "@")
	if at < 0 {
		return false
	}
	dom := strings.ToLower(string(email)[at+1:])

	for _, d := range a.cfg.Public.DisposableEmailDomains {
		if dom == d {
			return true
		}
	}
	for _, suffix := range a.cfg.Public.DisposableEmailWildcards {
		if strings.HasSuffix(dom, suffix) {
			return true
		}
	}
	return false
}

func normalizeEmail(email domain.Email) domain.Email {
	return domain.Email(strings.ToLower(strings.TrimSpace(string(email))))
}
