package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports"
	"connect-client/internal/service"
	"connect-client/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// Nonces are remembered a little longer than the widest accepted clock skew.
	nonceTTL = 15 * time.Minute

	// Context keys
	CtxTokenKey       = "token_key"
	CtxAPIVersion     = "api_version"
	CtxExternalUserID = "external_user_id"

	// Verification results, also used as metric labels.
	ResultOK               = "ok"
	ResultMissingHeader    = "missing_authorization"
	ResultMalformedHeader  = "malformed_authorization"
	ResultUnknownToken     = "invalid_token"
	ResultStaleTimestamp   = "stale_timestamp"
	ResultInvalidSignature = "invalid_signature"
	ResultReplayedNonce    = "nonce_used"
	ResultLookupFailure    = "lookup_failure"
)

// Metrics is what the middleware reports to.
type Metrics interface {
	RecordVerification(result string)
	RecordHTTPRequest(method string, statusCode int)
	RecordPanic()
}

type nopMetrics struct{}

func (nopMetrics) RecordVerification(string)     {}
func (nopMetrics) RecordHTTPRequest(string, int) {}
func (nopMetrics) RecordPanic()                  {}

func orNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

// JPAuthConfig holds the collaborators of the X_JP_Auth verifier.
type JPAuthConfig struct {
	Secrets    ports.SecretLookup
	Signatures ports.SignatureService
	Nonces     ports.NonceStore
	Metrics    Metrics
	Now        func() time.Time // nil = time.Now
}

// JPAuth verifies X_JP_Auth headers.
// Pipeline: parse header -> resolve secret -> check freshness -> verify signature -> check nonce.
func JPAuth(cfg JPAuthConfig, log zerolog.Logger) gin.HandlerFunc {
	metrics := orNop(cfg.Metrics)
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	reject := func(c *gin.Context, status int, result, message string) {
		metrics.RecordVerification(result)
		response.Fail(c, status, result, message, nil)
	}

	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if raw == "" {
			reject(c, http.StatusUnauthorized, ResultMissingHeader, "Authorization header is missing")
			return
		}

		header, err := domain.ParseAuthorizationHeader(raw)
		if err != nil {
			reject(c, http.StatusUnauthorized, ResultMalformedHeader, "Authorization header is malformed")
			return
		}

		key, apiVersion, userID, ok := splitTokenField(header.Token)
		if !ok {
			reject(c, http.StatusUnauthorized, ResultMalformedHeader, "Authorization token is malformed")
			return
		}

		secret, found, err := cfg.Secrets.LookupSecret(c.Request.Context(), key)
		if err != nil {
			log.Error().Err(err).Str("token_key", key).Msg("secret lookup failed")
			metrics.RecordVerification(ResultLookupFailure)
			response.Fail(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
			return
		}
		if !found {
			reject(c, http.StatusUnauthorized, ResultUnknownToken, "Unknown access token")
			return
		}

		if err := service.CheckFreshness(header.Timestamp, now().Unix()); err != nil {
			reject(c, http.StatusUnauthorized, ResultStaleTimestamp, "Timestamp is outside the accepted window")
			return
		}

		if !cfg.Signatures.Verify(header.Token, header.Timestamp, header.Nonce, secret, header.Signature) {
			reject(c, http.StatusUnauthorized, ResultInvalidSignature, "Signature mismatch")
			return
		}

		isNew, err := cfg.Nonces.CheckAndSet(c.Request.Context(), header.Token, header.Nonce, nonceTTL)
		if err != nil {
			log.Warn().Err(err).Msg("nonce store error, allowing request")
		} else if !isNew {
			reject(c, http.StatusUnauthorized, ResultReplayedNonce, "Nonce already used")
			return
		}

		metrics.RecordVerification(ResultOK)
		c.Set(CtxTokenKey, key)
		c.Set(CtxAPIVersion, apiVersion)
		c.Set(CtxExternalUserID, userID)
		c.Next()
	}
}

// splitTokenField splits "<key>:<api version>:<external user id>".
func splitTokenField(token string) (key string, apiVersion int, userID int64, ok bool) {
	parts := strings.Split(token, ":")
	if len(parts) != 3 || parts[0] == "" {
		return "", 0, 0, false
	}
	apiVersion, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, false
	}
	userID, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	return parts[0], apiVersion, userID, true
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger, m Metrics) gin.HandlerFunc {
	metrics := orNop(m)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(c.Request.Method, status)

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger, m Metrics) gin.HandlerFunc {
	metrics := orNop(m)
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				metrics.RecordPanic()
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				response.Fail(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
			}
		}()
		c.Next()
	}
}
