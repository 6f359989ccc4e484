package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	applog "finreport/internal/log"
	"finreport/internal/middleware/ratelimit"
	"finreport/internal/middleware/security"
	"finreport/internal/report"
	"finreport/internal/services"
	"finreport/internal/sheets"
	"finreport/internal/storage"
)

// ReportGenerator is satisfied by *services.ReportService.
type ReportGenerator interface {
	Generate(ctx context.Context, ref time.Time, symbols report.Symbols) (services.GeneratedReport, error)
}

// ReportArchive is satisfied by *storage.SQLiteRepository.
type ReportArchive interface {
	GetReport(ctx context.Context, id string) (storage.ArchivedReport, error)
	ListReports(ctx context.Context, limit int) ([]storage.ArchivedReport, error)
}

// Deps are the collaborators behind the API. Archive is optional; without
// it the /api/reports routes answer 404.
type Deps struct {
	Reports ReportGenerator
	Source  sheets.TransactionSource
	Archive ReportArchive

	// Symbols are used when a report request names none.
	Symbols report.Symbols
	Clock   report.Clock
	Logger  *applog.Logger

	// RateLimitPerMinute caps /api requests per client; zero disables it.
	RateLimitPerMinute int
	// TrustedProxies are CIDRs, beyond loopback and private ranges, whose
	// X-Forwarded-For is used to identify the client.
	TrustedProxies []string
}

type Server struct {
	http.Server
	deps     Deps
	limiter  *ratelimit.Limiter
	resolver *security.IPResolver
}

func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Clock == nil {
		deps.Clock = report.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.DefaultConfig())
	}

	resolver, err := security.NewIPResolver(deps.TrustedProxies...)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// report assembly waits on the quote provider
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:     deps,
		resolver: resolver,
	}
	if deps.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute})
	}
	s.Handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestID)
	r.Use(applog.Middleware(s.deps.Logger, func(r *http.Request) string {
		return r.Header.Get(requestIDHeader)
	}))
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	r.Get("/healthz", handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware(s.resolver.ClientIP, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			}))
		}
		r.Get("/report", s.handleReport)
		r.Get("/spending", s.handleSpending)
		r.Get("/search", s.handleSearch)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
	})

	return r
}

// Shutdown stops the listener and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.Server.Shutdown(ctx)
}

const requestIDHeader = "X-Request-Id"

// requestID keeps a caller-supplied request id or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) now() time.Time {
	return s.deps.Clock.Now()
}
