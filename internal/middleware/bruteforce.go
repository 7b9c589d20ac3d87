package middleware

import (
	"net/http"

	"github.com/openaudit/openaudit/internal/middleware/bruteforce"
	"github.com/openaudit/openaudit/internal/utils"
)

// BruteForce wraps a sensitive endpoint with an attempt budget for the
// named action. Identity defaults to the originating IP.
func BruteForce(guard *bruteforce.Guard, action string, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	if getIdentity == nil {
		getIdentity = utils.GetIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteError(w, err)
				return
			}

			if err := guard.Check(r.Context(), action, identity); err != nil {
				utils.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
