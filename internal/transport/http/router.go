package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/shrinkr-io/shrinkr/internal/config"
	"github.com/shrinkr-io/shrinkr/internal/infrastructure/telemetry"
	"github.com/shrinkr-io/shrinkr/internal/processing/auth"
	"github.com/shrinkr-io/shrinkr/internal/processing/links"
	"github.com/shrinkr-io/shrinkr/internal/transport/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var spanNames = map[string]string{
	"GET /health":                 "health",
	"GET /metrics":                "metrics",
	"POST /api/shorten":           "links.shorten",
	"POST /api/auth/register":     "auth.register",
	"POST /api/auth/login":        "auth.login",
	"GET /api/links/my-links":     "links.mine",
	"GET /api/links/{code}/stats": "links.stats",
	"GET /{code}":                 "links.redirect",
}

type RouterOptions struct {
	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool

	LinksHandlerOptions LinksHandlerOptions
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
		LinksHandlerOptions: LinksHandlerOptions{
			AsyncClick:   true,
			ClickTimeout: 2 * time.Second,
		},
	}
}

func NewRouter(cfg *config.Config, linkService *links.Service, authService *auth.Service, verifier auth.TokenVerifier, shortenLimiter *middleware.RedisFixedWindowLimiter) http.Handler {
	return NewRouterWithOptions(cfg, linkService, authService, verifier, shortenLimiter, DefaultRouterOptions())
}

func NewRouterWithOptions(cfg *config.Config, linkService *links.Service, authService *auth.Service, verifier auth.TokenVerifier, shortenLimiter *middleware.RedisFixedWindowLimiter, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler()
	linksHandler := NewLinksHandlerWithOptions(cfg, linkService, opts.LinksHandlerOptions)
	authHandler := NewAuthHandler(authService)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", healthHandler.Metrics())

	optionalAuth := middleware.OptionalAuth(verifier)

	shortenMiddlewares := []func(http.Handler) http.Handler{optionalAuth}
	if shortenLimiter != nil {
		shortenMiddlewares = append(shortenMiddlewares, middleware.RateLimitMiddleware(shortenLimiter))
	}

	mux.Handle("POST /api/shorten", middleware.Chain(
		http.HandlerFunc(linksHandler.Shorten),
		shortenMiddlewares...,
	))

	// Registration and login never require an identity.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("GET /api/links/my-links", optionalAuth(http.HandlerFunc(linksHandler.MyLinks)))
	mux.HandleFunc("GET /api/links/{code}/stats", linksHandler.Stats)
	mux.HandleFunc("GET /{code}", linksHandler.Redirect)

	var innerHandler http.Handler = mux
	if opts.EnableCORS {
		innerHandler = middleware.CORSMiddleware(innerHandler)
	}
	if opts.EnableLogging {
		innerHandler = middleware.LoggingMiddleware(innerHandler)
	}
	if opts.EnableMetrics {
		innerHandler = middleware.MetricsMiddleware(innerHandler)
	}

	otelOptions := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			key := r.Method + " " + r.Pattern
			if name, ok := spanNames[key]; ok {
				return name
			}
			if r.Pattern != "" {
				return r.Pattern
			}
			path := strings.TrimSpace(r.URL.Path)
			if path == "" {
				path = "/"
			}
			return path
		}),
	}

	if telemetry.TracerProvider != nil {
		otelOptions = append(otelOptions, otelhttp.WithTracerProvider(telemetry.TracerProvider))
	}

	return otelhttp.NewHandler(innerHandler, cfg.App.Name, otelOptions...)
}
