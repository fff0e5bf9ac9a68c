package web

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/CMCFame/Xpenseit/internal/expense"
	"github.com/CMCFame/Xpenseit/internal/rates"
)

// Server handles HTTP requests for the expense working set and the report
// artifacts.
type Server struct {
	service   *expense.Service
	rates     *rates.Client
	logo      []byte
	basicAuth BasicAuth
	mux       *http.ServeMux
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(service *expense.Service, ratesClient *rates.Client, logo []byte, basicAuth BasicAuth) *Server {
	return NewServerWithMux(service, ratesClient, logo, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *expense.Service, ratesClient *rates.Client, logo []byte, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		service:   service,
		rates:     ratesClient,
		logo:      logo,
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="Xpenseit"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux
// Routes must be registered from most specific to least specific to avoid conflicts
func (s *Server) registerRoutes() {
	// Expense working set
	s.mux.HandleFunc("GET /api/expenses/{id}/image", s.requireAuth(s.handleGetEntryImage))
	s.mux.HandleFunc("GET /api/expenses/{id}", s.requireAuth(s.handleGetEntry))
	s.mux.HandleFunc("PATCH /api/expenses/{id}", s.requireAuth(s.handleUpdateEntry))
	s.mux.HandleFunc("DELETE /api/expenses/{id}", s.requireAuth(s.handleDeleteEntry))
	s.mux.HandleFunc("GET /api/expenses", s.requireAuth(s.handleListEntries))
	s.mux.HandleFunc("POST /api/expenses", s.requireAuth(s.handleUpload))
	s.mux.HandleFunc("DELETE /api/expenses", s.requireAuth(s.handleClearEntries))

	// Report header
	s.mux.HandleFunc("GET /api/header", s.requireAuth(s.handleGetHeader))
	s.mux.HandleFunc("PUT /api/header", s.requireAuth(s.handleSetHeader))

	// Rates
	s.mux.HandleFunc("GET /api/rates", s.requireAuth(s.handleGetRates))

	// Report artifacts
	s.mux.HandleFunc("GET /api/report.pdf", s.requireAuth(s.handleReportPDF))
	s.mux.HandleFunc("GET /api/report.xlsx", s.requireAuth(s.handleReportXLSX))
	s.mux.HandleFunc("GET /api/export.csv", s.requireAuth(s.handleExportCSV))
	s.mux.HandleFunc("GET /api/export.json", s.requireAuth(s.handleExportJSON))
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.mux.ServeHTTP(w, r)
		})(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
