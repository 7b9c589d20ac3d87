package router

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/openaudit/openaudit/internal/middleware"
	"github.com/openaudit/openaudit/internal/middleware/metrics"
	"github.com/openaudit/openaudit/internal/setup"
)

// New creates and configures the mux router with all the routes.
// Brute-force guards wrap individual sensitive endpoints, not subrouters:
// each action keeps its own counter and budget.
func New(deps *setup.Dependencies) *mux.Router {
	r := mux.NewRouter()
	cfg := deps.Config

	r.Use(handlers.CompressHandler)
	r.Use(metrics.Middleware)

	r.Use(handlers.CORS(
		handlers.AllowedOrigins(cfg.Public.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowCredentials(),
	))

	// Wildcard OPTIONS handler to avoid 404s for preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Session resolution runs everywhere; unauthenticated requests proceed
	// as anonymous.
	r.Use(mw.ResolveSession(deps.Auth, cfg.Public.SessionCookieName))

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	h := deps.Handler
	guard := func(action string) func(http.Handler) http.Handler {
		return mw.BruteForce(deps.Guard, action, nil)
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/health", h.Health).Methods("GET")

	// Auth routes. Guarded ones burn budget on every attempt, success or not.
	auth := v1.PathPrefix("/auth").Subrouter()
	auth.Handle("/signup", guard("signup")(http.HandlerFunc(h.Signup))).Methods("POST")
	auth.Handle("/confirm_email", guard("confirm_email")(http.HandlerFunc(h.ConfirmEmail))).Methods("POST")
	auth.Handle("/resend_confirmation", guard("resend_confirmation")(http.HandlerFunc(h.ResendConfirmation))).Methods("POST")
	auth.Handle("/login", guard("login")(http.HandlerFunc(h.SignIn))).Methods("POST")
	auth.Handle("/logout", guard("logout")(http.HandlerFunc(h.SignOut))).Methods("POST")
	auth.HandleFunc("/check", h.Check).Methods("GET")
	auth.Handle("/forgot_password", guard("forgot_password")(http.HandlerFunc(h.ForgotPassword))).Methods("POST")
	auth.Handle("/reset_password", guard("reset_password")(http.HandlerFunc(h.ResetPassword))).Methods("POST")
	auth.Handle("/do_not_email", guard("do_not_email")(http.HandlerFunc(h.DoNotEmail))).Methods("POST")

	// Public reads. The read policy still applies per document.
	v1.HandleFunc("/documents/featured", h.FeaturedDocuments).Methods("GET")
	v1.HandleFunc("/documents/alias/{alias}", h.GetDocumentByAlias).Methods("GET")
	v1.HandleFunc("/documents/{id}", h.GetDocument).Methods("GET")
	v1.HandleFunc("/documents/{id}/audits", h.AuditReport).Methods("GET")
	v1.HandleFunc("/users/{username}", h.PublicProfile).Methods("GET")
	v1.HandleFunc("/users/{username}/documents", h.UserDocuments).Methods("GET")
	v1.HandleFunc("/users/{username}/audits", h.UserAudits).Methods("GET")

	// Authenticated routes
	loggedIn := v1.NewRoute().Subrouter()
	loggedIn.Use(mw.RequireAuthenticated())

	loggedIn.HandleFunc("/me", h.OwnProfile).Methods("GET")
	loggedIn.HandleFunc("/me", h.UpdateProfile).Methods("PUT")
	loggedIn.HandleFunc("/me/documents", h.OwnDocuments).Methods("GET")
	loggedIn.HandleFunc("/me/audits", h.OwnAudits).Methods("GET")

	loggedIn.HandleFunc("/documents", h.CreateDocument).Methods("POST")
	loggedIn.HandleFunc("/documents/{id}", h.UpdateDocument).Methods("PUT")
	loggedIn.HandleFunc("/documents/{id}", h.DeleteDocument).Methods("DELETE")
	loggedIn.HandleFunc("/documents/{id}/alias", h.SetDocumentAlias).Methods("PUT")
	loggedIn.HandleFunc("/documents/{id}/audits", h.SubmitAudit).Methods("POST")
	loggedIn.HandleFunc("/documents/{id}/audits/mine", h.OwnAudit).Methods("GET")

	return r
}
