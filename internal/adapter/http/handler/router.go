package handler

import (
	"net/http"

	"connect-client/internal/adapter/http/middleware"
	"connect-client/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Secrets        ports.SecretLookup
	Signatures     ports.SignatureService
	Nonces         ports.NonceStore
	Metrics        middleware.Metrics // nil = no sandbox metrics
	MetricsHandler http.Handler       // nil = /metrics not served
	MetricsPath    string
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine for the sandbox server.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger, deps.Metrics))
	r.Use(middleware.RequestLogger(deps.Logger, deps.Metrics))

	// Unauthenticated
	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.MetricsHandler != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(deps.MetricsHandler))
	}

	// Everything else must carry a valid X_JP_Auth header.
	auth := middleware.JPAuth(middleware.JPAuthConfig{
		Secrets:    deps.Secrets,
		Signatures: deps.Signatures,
		Nonces:     deps.Nonces,
		Metrics:    deps.Metrics,
	}, deps.Logger)

	h := NewSandboxHandler()
	signed := r.Group("/", auth)
	{
		signed.GET("/connection/test", h.ConnectionTest)
		signed.GET("/shipping/label/:id", h.LabelStatus)
		signed.POST("/sandbox/fail/:status", h.Fail)
	}
	r.NoRoute(auth, h.Echo)

	return r
}
