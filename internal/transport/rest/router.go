package rest

import (
	"net/http"
	"os"

	"rtiassist/internal/transport/rest/handler"
	"rtiassist/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	Wizard     *handler.WizardHandler
	LetterBody *handler.LetterBodyHandler
	Sessions   *middleware.SessionMiddleware
	Logger     *zap.Logger
}

// NewRouter creates the router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// CORS middleware (apply first)
	r.Use(corsMiddleware)
	r.Use(middleware.RequestLogger(logger))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Stateless JSON API
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/letters", c.LetterBody.Generate).Methods("POST", "OPTIONS")

	// Wizard pages (session cookie)
	pages := r.NewRoute().Subrouter()
	pages.Use(c.Sessions.Attach)

	pages.HandleFunc("/", c.Wizard.Show).Methods("GET")
	pages.HandleFunc("/wizard/complaint", c.Wizard.Complaint).Methods("POST")
	pages.HandleFunc("/wizard/officer", c.Wizard.Officer).Methods("POST")
	pages.HandleFunc("/wizard/letter", c.Wizard.Letter).Methods("POST")
	pages.HandleFunc("/wizard/back", c.Wizard.Back).Methods("POST")
	pages.HandleFunc("/wizard/download", c.Wizard.Download).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
