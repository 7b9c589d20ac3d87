package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"

	"github.com/openaudit/openaudit/internal/domain"
	internal_errors "github.com/openaudit/openaudit/internal/errors"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// =========================================================================
// Public methods (satisfy the service storage interfaces)
// =========================================================================

// SaveUser creates a new, unconfirmed user account.
func (s *Storage) SaveUser(ctx context.Context, user domain.User) (domain.UserId, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.saveUser(tx, user)
		return err
	})
	return id, err
}

func (s *Storage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	return s.user(s.db, "email = $1", email)
}

func (s *Storage) UserByUsername(ctx context.Context, username domain.Username) (domain.User, error) {
	return s.user(s.db, "username = $1", username)
}

func (s *Storage) UserById(ctx context.Context, id domain.UserId) (domain.User, error) {
	return s.user(s.db, "id = $1", id)
}

// ConfirmUserEmail flips the confirmed flag for the user.
func (s *Storage) ConfirmUserEmail(ctx context.Context, email domain.Email) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.execOne(tx, "UPDATE users SET email_confirmed = TRUE WHERE email = $1", "User not found", email)
	})
}

func (s *Storage) UpdatePassword(ctx context.Context, email domain.Email, passHash string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.execOne(tx, "UPDATE users SET password_hash = $1 WHERE email = $2", "User not found", passHash, email)
	})
}

func (s *Storage) UpdateProfile(ctx context.Context, id domain.UserId, realName, linkedin, github, qualifications string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.execOne(tx,
			"UPDATE users SET real_name = $1, linkedin = $2, github = $3, qualifications = $4 WHERE id = $5",
			"User not found", realName, linkedin, github, qualifications, id)
	})
}

func (s *Storage) SetDoNotEmail(ctx context.Context, email domain.Email) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.execOne(tx, "UPDATE users SET do_not_email = TRUE WHERE email = $1", "User not found", email)
	})
}

// SaveConfirmationCode stores (or replaces) the pending email-confirmation
// code for an address.
func (s *Storage) SaveConfirmationCode(ctx context.Context, data domain.ConfirmationData) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
        INSERT INTO confirmation_codes(email, code_hash, expires_at)
        VALUES($1, $2, $3)
        ON CONFLICT (email) DO UPDATE SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at`,
			data.Email, data.CodeHash, data.Expires,
		)
		if err != nil {
			return fmt.Errorf("failed to save confirmation code: %w", err)
		}
		return nil
	})
}

func (s *Storage) ConfirmationCode(ctx context.Context, email domain.Email) (domain.ConfirmationData, error) {
	var data domain.ConfirmationData
	err := s.db.QueryRow(`
        SELECT email, code_hash, (expires_at at time zone 'utc')
        FROM confirmation_codes WHERE email = $1`,
		email,
	).Scan(&data.Email, &data.CodeHash, &data.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ConfirmationData{}, internal_errors.NotFound("Confirmation code not found")
		}
		return domain.ConfirmationData{}, fmt.Errorf("failed to query confirmation code: %w", err)
	}
	return data, nil
}

func (s *Storage) DeleteConfirmationCode(ctx context.Context, email domain.Email) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM confirmation_codes WHERE email = $1", email)
		if err != nil {
			return fmt.Errorf("failed to delete confirmation code: %w", err)
		}
		return nil
	})
}

// SaveResetCode stores the pending password-reset code for an address.
// The code hash is a deterministic digest because reset consumes the code
// without knowing the email.
func (s *Storage) SaveResetCode(ctx context.Context, data domain.ConfirmationData) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
        INSERT INTO reset_codes(email, code_hash, expires_at)
        VALUES($1, $2, $3)
        ON CONFLICT (email) DO UPDATE SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at`,
			data.Email, data.CodeHash, data.Expires,
		)
		if err != nil {
			return fmt.Errorf("failed to save reset code: %w", err)
		}
		return nil
	})
}

func (s *Storage) ResetCodeByHash(ctx context.Context, codeHash string) (domain.ConfirmationData, error) {
	var data domain.ConfirmationData
	err := s.db.QueryRow(`
        SELECT email, code_hash, (expires_at at time zone 'utc')
        FROM reset_codes WHERE code_hash = $1`,
		codeHash,
	).Scan(&data.Email, &data.CodeHash, &data.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ConfirmationData{}, internal_errors.NotFound("Reset code not found")
		}
		return domain.ConfirmationData{}, fmt.Errorf("failed to query reset code: %w", err)
	}
	return data, nil
}

func (s *Storage) DeleteResetCode(ctx context.Context, email domain.Email) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM reset_codes WHERE email = $1", email)
		if err != nil {
			return fmt.Errorf("failed to delete reset code: %w", err)
		}
		return nil
	})
}

// =========================================================================
// Internal methods (core database logic)
// =========================================================================

func (s *Storage) saveUser(q Querier, user domain.User) (domain.UserId, error) {
	var id domain.UserId
	err := q.QueryRow(`
        INSERT INTO users(username, email, password_hash, email_confirmed)
        VALUES($1, $2, $3, $4) RETURNING id`,
		user.Username, user.Email, user.PassHash, user.EmailConfirmed,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Username or email already registered", StatusCode: http.StatusBadRequest}
		}
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) user(q Querier, where string, arg interface{}) (domain.User, error) {
	var user domain.User
	err := q.QueryRow(`
        SELECT id, username, email, email_confirmed, password_hash, do_not_email,
               real_name, linkedin, github, qualifications, (created_at at time zone 'utc')
        FROM users WHERE `+where, arg,
	).Scan(&user.Id, &user.Username, &user.Email, &user.EmailConfirmed, &user.PassHash, &user.DoNotEmail,
		&user.RealName, &user.Linkedin, &user.Github, &user.Qualifications, &user.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// execOne runs a statement that must affect exactly one row; zero rows maps
// to a not-found error with the given message.
func (s *Storage) execOne(q Querier, query, notFoundMsg string, args ...interface{}) error {
	result, err := q.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("exec failed: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return internal_errors.NotFound(notFoundMsg)
	}
	return nil
}
