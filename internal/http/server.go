package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"raiox/internal/core"
	"raiox/internal/log"
	"raiox/internal/store"
	appweb "raiox/web"
)

// RecordStore is the slice of the record store the handlers need.
type RecordStore interface {
	Snapshot() []core.Record
	Create(ctx context.Context, in core.NewRecordInput) core.Record
	AddExam(ctx context.Context, patientID string, in store.ExamInput) (core.Record, bool)
	Update(ctx context.Context, id string, patch core.RecordPatch) []core.Record
	Remove(ctx context.Context, id string) []core.Record
}

type Server struct {
	http.Server
	templates   *template.Template
	records     RecordStore
	rateLimiter *rateLimiter
	logger      *log.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, records RecordStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: log.Middleware(logger)(mux),
		},
		records:     records,
		rateLimiter: newRateLimiter(),
		logger:      logger,
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// Record mutations
	mux.HandleFunc("/records", s.withSecurityHeaders(s.handleCreateRecord))
	mux.HandleFunc("/records/exams", s.withSecurityHeaders(s.handleAddExam))
	mux.HandleFunc("/records/update", s.withSecurityHeaders(s.handleUpdateRecord))
	mux.HandleFunc("/records/delete", s.withSecurityHeaders(s.handleDeleteRecord))

	// UI partials
	mux.HandleFunc("/ui/stats", s.withSecurityHeaders(s.handleStats))
	mux.HandleFunc("/ui/plans", s.withSecurityHeaders(s.handlePlans))
	mux.HandleFunc("/ui/exam-types", s.withSecurityHeaders(s.handleExamTypes))
	mux.HandleFunc("/ui/technicians", s.withSecurityHeaders(s.handleTechnicians))
	mux.HandleFunc("/ui/body-parts", s.withSecurityHeaders(s.handleBodyParts))
	mux.HandleFunc("/ui/cities", s.withSecurityHeaders(s.handleCities))
	mux.HandleFunc("/ui/trend", s.withSecurityHeaders(s.handleTrend))
	mux.HandleFunc("/ui/records", s.withSecurityHeaders(s.handleRecordTable))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ip := clientIP(r)
		requestID := generateRequestID()

		logger := log.FromContext(r.Context()).With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, ip,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutations only; dashboard polling stays cheap.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(ip) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, ip)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Today     string
		Locations []string
		Cities    []string
	}{
		Today:     core.FormatDate(time.Now()),
		Locations: []string{core.LocationEmergency, core.LocationSUS, core.LocationInpatient, core.LocationPrivate, core.LocationDischarged},
		Cities:    []string{core.CitySantaVitoria, core.CityChui},
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
