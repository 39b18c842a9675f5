package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetly/internal/cache"
	"budgetly/internal/identity"
	applog "budgetly/internal/log"
	"budgetly/internal/middleware/ratelimit"
	"budgetly/internal/middleware/trace"
	"budgetly/internal/services"
)

// ReportExporter writes a monthly report to an external destination.
// *export.SheetsExporter satisfies it.
type ReportExporter interface {
	ExportMonthlyReport(ctx context.Context, uid string, d services.Dashboard) (destination string, rows int, err error)
}

// Config carries the server's wiring knobs.
type Config struct {
	Addr              string
	RateLimitPerMin   int
	DashboardCacheTTL time.Duration
}

// Server is the JSON API server. Dashboards are cached per user and month in
// an in-process LRU; every ledger mutation drops the owner's cached months.
type Server struct {
	http.Server

	ledger   *services.LedgerService
	advice   *services.AdviceService
	exporter ReportExporter
	verifier *identity.Verifier
	logger   *applog.Logger

	dashCache    *cache.LRUCache[dashboardResponse]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, ledger *services.LedgerService, advice *services.AdviceService, exporter ReportExporter, verifier *identity.Verifier, logger *applog.Logger) *Server {
	if cfg.DashboardCacheTTL <= 0 {
		cfg.DashboardCacheTTL = 5 * time.Minute
	}

	s := &Server{
		ledger:       ledger,
		advice:       advice,
		exporter:     exporter,
		verifier:     verifier,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		dashCache:    cache.NewLRUCache[dashboardResponse](200, cfg.DashboardCacheTTL),
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMin}),
		tracer:       trace.NewMiddleware(clientIP),
	}
	s.cacheManager.Register(s.dashCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/users/sync", s.handleSyncUser)
	api.HandleFunc("GET /api/users/me", s.handleGetProfile)
	api.HandleFunc("PUT /api/users/me", s.handleUpdateProfile)

	api.HandleFunc("GET /api/ledger", s.handleGetLedger)
	api.HandleFunc("GET /api/ledger/months", s.handleGetMonths)

	api.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	api.HandleFunc("PUT /api/incomes/{id}", s.handleUpdateIncome)
	api.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	api.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	api.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	api.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	api.HandleFunc("GET /api/emis", s.handleListEMIGroups)
	api.HandleFunc("POST /api/emis", s.handleCreateEMIPurchase)
	api.HandleFunc("POST /api/emis/pay", s.handlePayInstallment)

	api.HandleFunc("GET /api/dashboard", s.handleDashboard)

	api.HandleFunc("POST /api/advice", s.handleEvaluatePurchase)
	api.HandleFunc("GET /api/suggestions", s.handleListSuggestions)
	api.HandleFunc("DELETE /api/suggestions/{id}", s.handleDeleteSuggestion)

	api.HandleFunc("GET /api/reports/monthly", s.handleMonthlyReport)
	api.HandleFunc("POST /api/reports/export", s.handleExportReport)

	limited := s.limiter.Middleware(clientIP, nil)
	mux.Handle("/api/", s.tracer.Middleware(limited(verifier.Middleware(api))))

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background routines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// clientIP extracts the client address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// callerUID returns the authenticated user's ID. The identity middleware
// guarantees it is present on /api routes.
func callerUID(r *http.Request) string {
	if c, ok := identity.FromContext(r.Context()); ok {
		return c.UID
	}
	return ""
}

func (s *Server) dashCacheKey(uid, month string) string {
	return uid + ":" + month
}

// invalidateDashboards drops every cached month for the user.
func (s *Server) invalidateDashboards(r *http.Request, uid string) {
	s.dashCache.DeletePrefix(uid + ":")
	s.advice.InvalidateUser(r.Context(), uid)
}
