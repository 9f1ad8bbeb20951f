package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connect-client/config"
	"connect-client/internal/adapter/credentials"
	"connect-client/internal/adapter/hostenv"
	"connect-client/internal/adapter/metrics"
	redisStore "connect-client/internal/adapter/storage/redis"
	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports"
	"connect-client/internal/core/ports/mocks"
	"connect-client/internal/service"
	"connect-client/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type sandbox struct {
	server  *httptest.Server
	redis   *miniredis.Miniredis
	options ports.OptionStore
}

func newSandbox(t *testing.T, checkers ...ports.HealthChecker) *sandbox {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reg := prometheus.NewRegistry()
	router := SetupRouter(RouterDeps{
		Secrets:        credentials.StaticSecrets{"abc": "s3cr3t"},
		Signatures:     service.NewHMACSignatureService(),
		Nonces:         redisStore.NewNonceStore(client),
		Metrics:        metrics.NewService(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		HealthCheckers: append([]ports.HealthChecker{redisStore.NewHealthCheck(client)}, checkers...),
		Logger:         zerolog.Nop(),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &sandbox{server: server, redis: mr, options: redisStore.NewOptionStore(client)}
}

func newSandboxClient(t *testing.T, sb *sandbox, secret string, opts ...service.AuthHeaderOption) *service.Client {
	t.Helper()
	creds, err := credentials.NewStaticProvider(config.CredentialsConfig{Secret: secret, ExternalUserID: 42}, sb.options, nil)
	require.NoError(t, err)

	client, err := service.NewClient(service.ClientDeps{
		Config:      service.ClientConfig{ServerURL: sb.server.URL, APIVersion: 1, Locale: "en_US"},
		Credentials: creds,
		Host:        hostenv.NewStatic(config.StoreConfig{Currency: "USD", DimensionUnit: "IN", WeightUnit: "LBS"}, "1.0.0"),
		Options:     sb.options,
		Logger:      zerolog.Nop(),
		AuthOptions: opts,
	})
	require.NoError(t, err)
	return client
}

func TestSandbox_AuthTest(t *testing.T) {
	sb := newSandbox(t)
	client := newSandboxClient(t, sb, "abc.s3cr3t")

	outcome, err := client.AuthTest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, true, outcome.Value)
}

func TestSandbox_EchoCarriesEnvelope(t *testing.T) {
	sb := newSandbox(t)
	client := newSandboxClient(t, sb, "abc.s3cr3t")

	outcome, err := client.SendAddressNormalizationRequest(context.Background(), map[string]any{
		"address": map[string]any{"postcode": "94107"},
	})
	require.NoError(t, err)

	echo := outcome.Value.(map[string]any)
	assert.Equal(t, "POST", echo["method"])
	assert.Equal(t, "/shipping/address/normalize", echo["path"])
	assert.Equal(t, "abc", echo["token_key"])
	assert.Equal(t, float64(42), echo["external_user_id"])

	body := echo["body"].(map[string]any)
	settings := body["settings"].(map[string]any)
	assert.Equal(t, "in", settings["dimension_unit"])
	assert.NotEmpty(t, settings["store_guid"])

	guid, ok, err := sb.options.Get(context.Background(), domain.OptionStoreGUID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, guid, settings["store_guid"])
}

func TestSandbox_LabelStatus(t *testing.T) {
	sb := newSandbox(t)
	client := newSandboxClient(t, sb, "abc.s3cr3t")

	outcome, err := client.GetLabelStatus(context.Background(), 981)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"label_id": float64(981), "status": "PURCHASED"}, outcome.Value)
}

func TestSandbox_WrongSecret(t *testing.T) {
	sb := newSandbox(t)
	client := newSandboxClient(t, sb, "abc.wrong")

	_, err := client.AuthTest(context.Background())

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindServerErrorResponse, appErr.Kind)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	assert.Equal(t, "Error: The Connect server returned: invalid_signature Signature mismatch ( 401 )", appErr.Message)
}

func TestSandbox_ReplayRejected(t *testing.T) {
	sb := newSandbox(t)
	client := newSandboxClient(t, sb, "abc.s3cr3t", service.WithNonceGenerator(func() string { return "fixedNonce" }))

	_, err := client.AuthTest(context.Background())
	require.NoError(t, err)

	_, err = client.AuthTest(context.Background())
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "nonce_used")
}

func TestSandbox_ClockOffsetApplied(t *testing.T) {
	sb := newSandbox(t)
	require.NoError(t, sb.options.Set(context.Background(), domain.OptionTimeDiff, "200"))
	client := newSandboxClient(t, sb, "abc.s3cr3t")

	_, err := client.AuthTest(context.Background())
	require.NoError(t, err, "200s ahead is inside the server window")

	require.NoError(t, sb.options.Set(context.Background(), domain.OptionTimeDiff, "400"))
	_, err = client.AuthTest(context.Background())
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "stale_timestamp")
}

func TestSandbox_RequestedFailure(t *testing.T) {
	sb := newSandbox(t)
	client := newSandboxClient(t, sb, "abc.s3cr3t")

	_, err := client.Request(context.Background(), http.MethodPost, "/sandbox/fail/422", nil)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindServerErrorResponse, appErr.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode)
	assert.Equal(t, map[string]any{"status": float64(422)}, appErr.Data)
}

func TestSandbox_UnsignedRequestRejected(t *testing.T) {
	sb := newSandbox(t)

	resp, err := http.Get(sb.server.URL + "/connection/test")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSandbox_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockHealthChecker(ctrl)
	failing.EXPECT().Name().Return("postgresql").AnyTimes()
	failing.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	sb := newSandbox(t, failing)

	resp, err := http.Get(sb.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSandbox_HealthHealthy(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","dependencies":{}}`, w.Body.String())
}

func TestSandbox_Metrics(t *testing.T) {
	sb := newSandbox(t)
	client := newSandboxClient(t, sb, "abc.s3cr3t")
	_, err := client.AuthTest(context.Background())
	require.NoError(t, err)

	resp, err := http.Get(sb.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSandboxHandler_EchoRejectsNonObject(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/services", strings.NewReader(`["not","an","object"]`))

	NewSandboxHandler().Echo(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_body")
}

func TestSandboxHandler_FailRejectsNonErrorStatus(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "status", Value: "200"}}
	c.Request = httptest.NewRequest(http.MethodPost, "/sandbox/fail/200", nil)

	NewSandboxHandler().Fail(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
