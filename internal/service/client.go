package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports"
	"connect-client/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultServerURL  = "https://api.woocommerce.com/"
	DefaultAccept     = "application/vnd.woocommerce-connect.v1"
	DefaultAPIVersion = 1

	jsonContentType = "application/json; charset=utf-8"
	tracerName      = "connect-client"
)

// Hooks are the extension points of the request pipeline.
type Hooks struct {
	// ServerURL may rewrite the server base URL before the path is appended.
	ServerURL func(base string) string
	// Token may replace the access token before it is validated.
	Token TokenFilter
	// PreSerialize runs on the merged envelope before JSON encoding.
	PreSerialize []EnvelopeHook
	// PreRequest runs on the assembled request just before it is sent.
	PreRequest []func(ctx context.Context, req *domain.OutboundRequest) error
}

// ClientConfig holds the static request policy.
type ClientConfig struct {
	ServerURL  string
	APIVersion int
	Locale     string // e.g. "en_US", sent as Accept-Language "en-us"
	Accept     string
}

// ClientDeps holds everything a Client needs.
type ClientDeps struct {
	Config      ClientConfig
	Credentials ports.CredentialProvider
	Host        ports.HostEnvironment
	Options     ports.OptionStore
	Transport   ports.Transport         // nil = HTTPTransport with the default timeout
	Metrics     ports.RequestMetrics    // nil = no metrics
	RequestLog  ports.RequestLogService // nil = no request log
	Hooks       Hooks
	Logger      zerolog.Logger
	AuthOptions []AuthHeaderOption
}

// Client sends signed requests to the Connect server.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	cfg        ClientConfig
	auth       *AuthHeaderService
	envelope   *EnvelopeService
	transport  ports.Transport
	classifier *ResponseClassifier
	options    ports.OptionStore
	metrics    ports.RequestMetrics
	requestLog ports.RequestLogService
	hooks      Hooks
	tracer     trace.Tracer
	log        zerolog.Logger
	now        func() time.Time
}

// NewClient wires a Client. It fails if a required collaborator is missing.
func NewClient(deps ClientDeps) (*Client, error) {
	if deps.Host == nil {
		return nil, errors.New("connect client: host environment is required")
	}
	if deps.Options == nil {
		return nil, errors.New("connect client: option store is required")
	}

	cfg := deps.Config
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.APIVersion == 0 {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Accept == "" {
		cfg.Accept = DefaultAccept
	}

	authOpts := deps.AuthOptions
	if deps.Hooks.Token != nil {
		authOpts = append(authOpts, WithTokenFilter(deps.Hooks.Token))
	}
	auth, err := NewAuthHeaderService(deps.Credentials, NewHMACSignatureService(), cfg.APIVersion, authOpts...)
	if err != nil {
		return nil, err
	}

	transport := deps.Transport
	if transport == nil {
		transport = NewHTTPTransport(nil)
	}

	return &Client{
		cfg:        cfg,
		auth:       auth,
		envelope:   NewEnvelopeService(deps.Host, deps.Options, NewGUIDService(deps.Options), deps.Hooks.PreSerialize...),
		transport:  transport,
		classifier: NewResponseClassifier(),
		options:    deps.Options,
		metrics:    deps.Metrics,
		requestLog: deps.RequestLog,
		hooks:      deps.Hooks,
		tracer:     otel.Tracer(tracerName),
		log:        deps.Logger,
		now:        time.Now,
	}, nil
}

// Request sends one signed request and classifies the response.
// body must be nil, a map[string]any, or a value that encodes to a JSON object.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*domain.Outcome, error) {
	start := c.now()
	ctx, span := c.tracer.Start(ctx, "connect.request", trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("connect.path", path),
	))
	defer span.End()

	outcome, status, err := c.do(ctx, method, path, body)

	var label string
	if err != nil {
		label = string(apperror.KindOf(err))
	} else {
		label = string(outcome.Kind)
	}
	c.finish(ctx, span, method, path, status, label, start, err)
	return outcome, err
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*domain.Outcome, int, error) {
	normalized, err := NormalizeBody(body)
	if err != nil {
		return nil, 0, err
	}

	env := &domain.RequestEnvelope{Method: method, Path: path, Body: normalized}
	payload, err := c.envelope.BuildBody(ctx, env)
	if err != nil {
		return nil, 0, err
	}

	out, err := c.signedRequest(ctx, method, path, payload)
	if err != nil {
		return nil, 0, err
	}

	raw, err := c.transport.Send(ctx, out)
	if err != nil {
		return nil, 0, err
	}

	outcome, err := c.classifier.Classify(raw)
	return outcome, raw.StatusCode, err
}

// ProxyRequest relays an opaque body to the server with a fresh signature.
// The body is not wrapped in an envelope and the response is returned unclassified.
func (c *Client) ProxyRequest(ctx context.Context, path string, contentType string, body []byte) (*domain.RawResponse, error) {
	start := c.now()
	ctx, span := c.tracer.Start(ctx, "connect.proxy", trace.WithAttributes(attribute.String("connect.path", path)))
	defer span.End()

	raw, err := c.proxy(ctx, path, contentType, body)

	status, label := 0, string(domain.OutcomeRaw)
	if raw != nil {
		status = raw.StatusCode
	}
	if err != nil {
		label = string(apperror.KindOf(err))
	}
	c.finish(ctx, span, http.MethodPost, path, status, label, start, err)
	return raw, err
}

func (c *Client) proxy(ctx context.Context, path string, contentType string, body []byte) (*domain.RawResponse, error) {
	out, err := c.signedRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		out.Header.Set("Content-Type", contentType)
	}
	return c.transport.Send(ctx, out)
}

// signedRequest assembles headers, including a freshly built Authorization, and runs PreRequest hooks.
func (c *Client) signedRequest(ctx context.Context, method, path string, payload []byte) (*domain.OutboundRequest, error) {
	auth, err := c.auth.Build(ctx)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Accept-Language", strings.ToLower(strings.ReplaceAll(c.cfg.Locale, "_", "-")))
	header.Set("Content-Type", jsonContentType)
	header.Set("Accept", c.cfg.Accept)
	header.Set("Authorization", auth.String())

	out := &domain.OutboundRequest{
		Method: method,
		URL:    c.URL(path),
		Header: header,
		Body:   payload,
	}
	for _, hook := range c.hooks.PreRequest {
		if err := hook(ctx, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// URL joins the (possibly hooked) server URL and path with exactly one slash.
func (c *Client) URL(path string) string {
	base := trailingSlash(c.cfg.ServerURL)
	if c.hooks.ServerURL != nil {
		base = trailingSlash(c.hooks.ServerURL(base))
	}
	return base + strings.TrimLeft(path, "/")
}

func trailingSlash(s string) string {
	return strings.TrimRight(s, "/") + "/"
}

func (c *Client) finish(ctx context.Context, span trace.Span, method, path string, status int, label string, start time.Time, err error) {
	elapsed := c.now().Sub(start)

	span.SetAttributes(attribute.Int("http.status_code", status), attribute.String("connect.outcome", label))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, label)
		c.log.Warn().Err(err).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Str("kind", label).
			Msg("connect request failed")
	} else {
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Str("kind", label).
			Dur("duration", elapsed).
			Msg("connect request")
	}

	if c.metrics != nil {
		c.metrics.ObserveRequest(method, label, status, elapsed)
	}
	if c.requestLog != nil {
		c.requestLog.Record(ctx, &domain.RequestLog{
			ID:         uuid.New(),
			Method:     method,
			Path:       path,
			StatusCode: status,
			Outcome:    label,
			Duration:   elapsed,
			CreatedAt:  start.UTC(),
		})
	}
}
