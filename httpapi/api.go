package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/fixacareer/fixauth"
	promexport "github.com/fixacareer/fixauth/metrics/export/prometheus"
	"github.com/fixacareer/fixauth/middleware"
)

// Options tunes the HTTP surface. The zero value gets sensible defaults
// from [New].
type Options struct {
	Logger *slog.Logger
	// MaxBodyBytes caps request body size; 0 means 1 MiB.
	MaxBodyBytes int64
	// RateLimit is the per-client request budget; zero disables limiting.
	RateLimit rate.Limit
	// RateBurst is the per-client burst; defaults to 20 when limiting is on.
	RateBurst int
}

// API wires the engine's operations to HTTP routes.
type API struct {
	engine  *fixauth.Engine
	logger  *slog.Logger
	opts    Options
	metrics *httpMetrics
}

// New builds the API around a fully constructed engine.
func New(engine *fixauth.Engine, opts Options) *API {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.RateLimit > 0 && opts.RateBurst <= 0 {
		opts.RateBurst = 20
	}
	return &API{
		engine:  engine,
		logger:  opts.Logger,
		opts:    opts,
		metrics: newHTTPMetrics(prometheus.NewRegistry()),
	}
}

// Handler returns the fully assembled route tree with the standard
// middleware chain applied.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /admin/login", a.handleAdminLogin)
	mux.HandleFunc("GET /admin/{id}/verification/status", a.handleSecondFactorStatus)
	mux.HandleFunc("POST /admin/{id}/verification/choose-method", a.handleChooseMethod)
	mux.HandleFunc("POST /admin/{id}/verification", a.handleVerifySecondFactor)
	mux.HandleFunc("POST /admin/refresh-token", a.handleRefresh)
	mux.HandleFunc("PUT /admin/{id}/change-password", a.handleChangePassword)
	mux.HandleFunc("POST /admin/forgot-password", a.handleForgotPassword)
	mux.Handle("POST /admin",
		middleware.Guard(a.engine, fixauth.RoleAdmin)(http.HandlerFunc(a.handleCreateAdmin)))

	mux.HandleFunc("POST /user/login", a.handleUserLogin)
	mux.HandleFunc("POST /user/register", a.handleRegisterUser)
	mux.HandleFunc("POST /user/refresh-token", a.handleRefresh)

	mux.HandleFunc("GET /health", a.handleHealth)
	mux.Handle("GET /metrics", promexport.NewExporter(a.engine).Handler())
	mux.Handle("GET /metrics/http", a.metrics.handler())

	var h http.Handler = mux
	h = a.metrics.instrument(h)
	if a.opts.RateLimit > 0 {
		h = rateLimitMiddleware(a.opts.RateLimit, a.opts.RateBurst)(h)
	}
	h = maxBodyBytes(a.opts.MaxBodyBytes)(h)
	h = securityHeaders(h)
	h = clientIPMiddleware(h)
	h = requestID(h)
	h = logging(a.logger)(h)
	return h
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}, "ok")
}
