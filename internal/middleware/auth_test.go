package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openaudit/openaudit/internal/domain"
)

type mockResolver struct {
	ResolveFunc func(token string) (*domain.User, error)
}

func (m *mockResolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(token)
	}
	return nil, nil
}

func userEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := GetUserFromContext(r); user != nil {
			w.Write([]byte(user.Username))
			return
		}
		w.Write([]byte("anonymous"))
	})
}

func TestResolveSession(t *testing.T) {
	t.Run("valid cookie attaches user", func(t *testing.T) {
		resolver := &mockResolver{
			ResolveFunc: func(token string) (*domain.User, error) {
				assert.Equal(t, "token123", token)
				return &domain.User{Id: 1, Username: "alice"}, nil
			},
		}
		handler := ResolveSession(resolver, "openauditid")(userEcho())

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "openauditid", Value: "token123"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "alice", rr.Body.String())
	})

	t.Run("no cookie proceeds anonymous without resolving", func(t *testing.T) {
		resolver := &mockResolver{
			ResolveFunc: func(string) (*domain.User, error) {
				t.Fatal("resolver should not be called")
				return nil, nil
			},
		}
		handler := ResolveSession(resolver, "openauditid")(userEcho())

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, "anonymous", rr.Body.String())
	})

	t.Run("unresolvable session proceeds anonymous", func(t *testing.T) {
		handler := ResolveSession(&mockResolver{}, "openauditid")(userEcho())

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "openauditid", Value: "stale-token"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "anonymous", rr.Body.String())
	})

	t.Run("infrastructure failure fails the request", func(t *testing.T) {
		resolver := &mockResolver{
			ResolveFunc: func(string) (*domain.User, error) {
				return nil, errors.New("redis down")
			},
		}
		handler := ResolveSession(resolver, "openauditid")(userEcho())

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "openauditid", Value: "token123"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestRequireAuthenticated(t *testing.T) {
	handler := RequireAuthenticated()(userEcho())

	t.Run("anonymous is rejected with 401", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), `"code":9`)
	})

	t.Run("resolved user passes", func(t *testing.T) {
		resolver := &mockResolver{
			ResolveFunc: func(string) (*domain.User, error) {
				return &domain.User{Id: 1, Username: "alice"}, nil
			},
		}
		chained := ResolveSession(resolver, "openauditid")(handler)

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "openauditid", Value: "token123"})
		rr := httptest.NewRecorder()
		chained.ServeHTTP(rr, req)

		assert.Equal(t, "alice", rr.Body.String())
	})
}
