// Package http exposes the ledger, summary, advisor and bank-detail
// operations as an authenticated JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"ledgerly/internal/advisor"
	"ledgerly/internal/cache"
	"ledgerly/internal/core"
	"ledgerly/internal/log"
	"ledgerly/internal/middleware/auth"
	"ledgerly/internal/middleware/ratelimit"
	"ledgerly/internal/middleware/security"
	"ledgerly/internal/middleware/trace"
	"ledgerly/internal/summary"
)

// Ledger is the write and list surface the entry handlers need.
type Ledger interface {
	AddIncome(ctx context.Context, in core.Income) (int64, error)
	AddExpense(ctx context.Context, e core.Expense) (int64, error)
	AddInvoice(ctx context.Context, inv core.Invoice) (int64, error)
	AddTransfer(ctx context.Context, t core.Transfer) (int64, error)
	SaveSettings(ctx context.Context, s core.Settings) error
	MarkInvoicePaid(ctx context.Context, userID, id int64) error
	Delete(ctx context.Context, userID int64, kind string, id int64) error

	ListIncomes(ctx context.Context, userID int64) ([]core.Income, error)
	ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)
	ListInvoices(ctx context.Context, userID int64) ([]core.Invoice, error)
	ListTransfers(ctx context.Context, userID int64) ([]core.Transfer, error)
	GetSettings(ctx context.Context, userID int64) (core.Settings, error)
}

type SummaryProvider interface {
	Summary(ctx context.Context, userID int64, now time.Time) (summary.Summary, error)
}

type Advisor interface {
	Ask(ctx context.Context, userID int64, question string) (advisor.Answer, error)
}

type BankDetails interface {
	Save(ctx context.Context, b core.BankDetails) error
	Get(ctx context.Context, userID int64, full bool) (core.BankDetails, error)
}

// Deps are the collaborators of the API server. Ping and Caches are optional.
type Deps struct {
	Ledger      Ledger
	Summaries   SummaryProvider
	Advisor     Advisor
	BankDetails BankDetails
	Verifier    *auth.Verifier
	Ping        func(ctx context.Context) error
	Caches      *cache.Manager
	RateLimit   ratelimit.Config
	Logger      *log.Logger
}

type Server struct {
	http.Server

	deps     Deps
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	now      func() time.Time
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		deps:     deps,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(deps.RateLimit),
		detector: detector,
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		now:      time.Now,
		started:  time.Now(),
	}
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.Use(log.Middleware(s.logger))
	r.Use(s.tracer.Middleware)
	r.Use(s.flagSuspicious)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.MutatingOnly, s.onRateLimited))
	api.Use(s.deps.Verifier.Middleware(s.onAuthFailed))

	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/advisor", s.handleAdvisor).Methods(http.MethodPost)

	api.HandleFunc("/incomes", s.handleListIncomes).Methods(http.MethodGet)
	api.HandleFunc("/incomes", s.handleCreateIncome).Methods(http.MethodPost)
	api.HandleFunc("/incomes/{id:[0-9]+}", s.handleDelete(kindIncome)).Methods(http.MethodDelete)

	api.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id:[0-9]+}", s.handleDelete(kindExpense)).Methods(http.MethodDelete)

	api.HandleFunc("/invoices", s.handleListInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices", s.handleCreateInvoice).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id:[0-9]+}/paid", s.handleMarkInvoicePaid).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id:[0-9]+}", s.handleDelete(kindInvoice)).Methods(http.MethodDelete)

	api.HandleFunc("/transfers", s.handleListTransfers).Methods(http.MethodGet)
	api.HandleFunc("/transfers", s.handleCreateTransfer).Methods(http.MethodPost)
	api.HandleFunc("/transfers/{id:[0-9]+}", s.handleDelete(kindTransfer)).Methods(http.MethodDelete)

	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleSaveSettings).Methods(http.MethodPut)

	api.HandleFunc("/bank-details", s.handleGetBankDetails).Methods(http.MethodGet)
	api.HandleFunc("/bank-details", s.handleSaveBankDetails).Methods(http.MethodPut)

	return r
}

// flagSuspicious logs requests that look like scans. They are still served.
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldUserAgent, r.UserAgent())
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

func (s *Server) onAuthFailed(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).WithComponent(log.ComponentAuth).DebugContext(r.Context(), "Authentication failed",
		log.FieldPath, r.URL.Path,
		log.FieldError, err)
	UnauthorizedError(err.Error()).Write(w)
}

// Shutdown stops background sweepers and drains the HTTP server. Only the
// first call has an effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Info("Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
		s.limiter.Stop()
		if s.deps.Caches != nil {
			s.deps.Caches.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
