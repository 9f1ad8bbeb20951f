package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"connect-client/internal/adapter/storage/memory"
	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports/mocks"
	"connect-client/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// recordingServer answers every request with the given status/content type/body
// and keeps what it received.
type recordingServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []capturedRequest
}

func newRecordingServer(t *testing.T, status int, contentType, body string) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rs.mu.Lock()
		rs.requests = append(rs.requests, capturedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: b})
		rs.mu.Unlock()
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) last(t *testing.T) capturedRequest {
	t.Helper()
	rs.mu.Lock()
	defer rs.mu.Unlock()
	require.NotEmpty(t, rs.requests)
	return rs.requests[len(rs.requests)-1]
}

type clientFixture struct {
	client  *Client
	creds   *mocks.MockCredentialProvider
	metrics *mocks.MockRequestMetrics
	options *memory.OptionStore
}

func newClientFixture(t *testing.T, serverURL string, hooks Hooks) *clientFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	creds := mocks.NewMockCredentialProvider(ctrl)
	host := mocks.NewMockHostEnvironment(ctrl)
	host.EXPECT().StoreProfile(gomock.Any()).Return(testStoreProfile(), nil).AnyTimes()
	metrics := mocks.NewMockRequestMetrics(ctrl)
	options := memory.NewOptionStore(map[string]string{domain.OptionStoreGUID: "store-guid-1"})

	client, err := NewClient(ClientDeps{
		Config:      ClientConfig{ServerURL: serverURL, APIVersion: 3, Locale: "en_US"},
		Credentials: creds,
		Host:        host,
		Options:     options,
		Metrics:     metrics,
		Hooks:       hooks,
		Logger:      newTestLogger(),
		AuthOptions: []AuthHeaderOption{
			WithClock(func() time.Time { return fixedNow }),
			WithNonceGenerator(func() string { return "Xy12Zw34Qr" }),
		},
	})
	require.NoError(t, err)
	client.now = func() time.Time { return fixedNow }

	return &clientFixture{client: client, creds: creds, metrics: metrics, options: options}
}

func (f *clientFixture) validToken() {
	f.creds.EXPECT().AccessToken(gomock.Any()).
		Return(&domain.Token{Secret: "abc.s3cr3t", ExternalUserID: 42}, nil).AnyTimes()
	f.creds.EXPECT().TimeDiff(gomock.Any()).Return(int64(0), nil).AnyTimes()
}

func TestNewClient_RequiredDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHostEnvironment(ctrl)
	options := memory.NewOptionStore(nil)

	_, err := NewClient(ClientDeps{Host: host, Options: options})
	assert.Equal(t, apperror.KindProviderMissing, apperror.KindOf(err))

	_, err = NewClient(ClientDeps{Credentials: mocks.NewMockCredentialProvider(ctrl), Options: options})
	assert.Error(t, err)

	_, err = NewClient(ClientDeps{Credentials: mocks.NewMockCredentialProvider(ctrl), Host: host})
	assert.Error(t, err)
}

func TestClient_SignedPOST(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, "application/json", `{"ok":true}`)
	f := newClientFixture(t, server.URL, Hooks{})
	f.validToken()
	f.metrics.EXPECT().ObserveRequest(http.MethodPost, "success", http.StatusOK, gomock.Any())

	outcome, err := f.client.Request(context.Background(), http.MethodPost, "/services", map[string]any{"foo": "bar"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, map[string]any{"ok": true}, outcome.Value)

	got := server.last(t)
	assert.Equal(t, "/services", got.Path)
	assert.Equal(t, "en-us", got.Header.Get("Accept-Language"))
	assert.Equal(t, "application/json; charset=utf-8", got.Header.Get("Content-Type"))
	assert.Equal(t, DefaultAccept, got.Header.Get("Accept"))

	auth, err := domain.ParseAuthorizationHeader(got.Header.Get("Authorization"))
	require.NoError(t, err)
	assert.Equal(t, "abc:3:42", auth.Token)
	assert.Equal(t, fixedNow.Unix(), auth.Timestamp)
	assert.Equal(t, "Xy12Zw34Qr", auth.Nonce)
	assert.True(t, NewHMACSignatureService().Verify("abc:3:42", auth.Timestamp, auth.Nonce, "s3cr3t", auth.Signature))

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.Body, &body))
	assert.Equal(t, "bar", body["foo"])
	settings := body["settings"].(map[string]any)
	assert.Equal(t, "store-guid-1", settings["store_guid"])
	assert.Equal(t, "USD", settings["currency"])
}

func TestClient_GETHasNoBody(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, "application/json", `true`)
	f := newClientFixture(t, server.URL, Hooks{})
	f.validToken()
	f.metrics.EXPECT().ObserveRequest(http.MethodGet, "success", http.StatusOK, gomock.Any())

	outcome, err := f.client.AuthTest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, outcome.Value)

	got := server.last(t)
	assert.Equal(t, "/connection/test", got.Path)
	assert.Empty(t, got.Body)
	assert.NotEmpty(t, got.Header.Get("Authorization"))
}

func TestClient_ServerErrorResponse(t *testing.T) {
	server := newRecordingServer(t, http.StatusBadRequest, "application/json",
		`{"error":"invalid_settings","message":"Bad zip","data":{"field":"zip"}}`)
	f := newClientFixture(t, server.URL, Hooks{})
	f.validToken()
	f.metrics.EXPECT().ObserveRequest(http.MethodPost, "wcc_server_error_response", http.StatusBadRequest, gomock.Any())

	_, err := f.client.Request(context.Background(), http.MethodPost, "/services/usps/settings", nil)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Error: The Connect server returned: invalid_settings Bad zip ( 400 )", appErr.Message)
	assert.Equal(t, map[string]any{"field": "zip"}, appErr.Data)
}

func TestClient_MalformedTokenSendsNothing(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, "application/json", `{}`)
	f := newClientFixture(t, server.URL, Hooks{})
	f.creds.EXPECT().AccessToken(gomock.Any()).Return(&domain.Token{Secret: "no-separator"}, nil)
	f.metrics.EXPECT().ObserveRequest(http.MethodGet, "invalid_token", 0, gomock.Any())

	_, err := f.client.AuthTest(context.Background())
	assert.Equal(t, apperror.KindMalformedCredential, apperror.KindOf(err))
	assert.Empty(t, server.requests)
}

func TestClient_NonObjectBodyRejected(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, "application/json", `{}`)
	f := newClientFixture(t, server.URL, Hooks{})
	f.metrics.EXPECT().ObserveRequest(http.MethodPost, "request_body_should_be_array", 0, gomock.Any())

	_, err := f.client.Request(context.Background(), http.MethodPost, "/services", "just a string")
	assert.Equal(t, apperror.KindNonArrayBody, apperror.KindOf(err))
	assert.Empty(t, server.requests)
}

func TestClient_Hooks(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, "application/json", `{}`)
	var gotBase string
	f := newClientFixture(t, "http://unused.invalid", Hooks{
		ServerURL: func(base string) string {
			gotBase = base
			return server.URL + "/v2"
		},
		Token: func(tok *domain.Token) *domain.Token {
			return &domain.Token{Secret: "zzz.other", ExternalUserID: 7}
		},
		PreSerialize: []EnvelopeHook{func(ctx context.Context, env *domain.RequestEnvelope) error {
			env.Body["hooked"] = true
			return nil
		}},
		PreRequest: []func(context.Context, *domain.OutboundRequest) error{
			func(ctx context.Context, req *domain.OutboundRequest) error {
				req.Header.Set("X-Trace", "abc")
				return nil
			},
		},
	})
	f.validToken()
	f.metrics.EXPECT().ObserveRequest(http.MethodPost, "success", http.StatusOK, gomock.Any())

	_, err := f.client.GetPaymentMethods(context.Background())
	require.NoError(t, err)

	got := server.last(t)
	assert.Equal(t, "http://unused.invalid/", gotBase)
	assert.Equal(t, "/v2/payment/methods", got.Path)
	assert.Equal(t, "abc", got.Header.Get("X-Trace"))
	assert.Contains(t, got.Header.Get("Authorization"), `token="zzz:3:7"`)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.Body, &body))
	assert.Equal(t, true, body["hooked"])
}

func TestClient_PreRequestHookErrorAborts(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, "application/json", `{}`)
	f := newClientFixture(t, server.URL, Hooks{
		PreRequest: []func(context.Context, *domain.OutboundRequest) error{
			func(context.Context, *domain.OutboundRequest) error { return errors.New("blocked") },
		},
	})
	f.validToken()
	f.metrics.EXPECT().ObserveRequest(http.MethodGet, "", 0, gomock.Any())

	_, err := f.client.AuthTest(context.Background())
	assert.EqualError(t, err, "blocked")
	assert.Empty(t, server.requests)
}

func TestClient_URL(t *testing.T) {
	for _, tc := range []struct {
		base, path, want string
	}{
		{"https://api.example.com", "/services", "https://api.example.com/services"},
		{"https://api.example.com/", "services", "https://api.example.com/services"},
		{"https://api.example.com//", "//services", "https://api.example.com/services"},
	} {
		c := &Client{cfg: ClientConfig{ServerURL: tc.base}}
		assert.Equal(t, tc.want, c.URL(tc.path))
	}
}

func TestClient_ProxyRequest(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, "text/plain", "ACK=Success&TOKEN=EC-1")
	f := newClientFixture(t, server.URL, Hooks{})
	f.validToken()
	f.metrics.EXPECT().ObserveRequest(http.MethodPost, "raw", http.StatusOK, gomock.Any())

	raw, err := f.client.ProxyRequest(context.Background(), "paypal/nvp/sandbox",
		"application/x-www-form-urlencoded", []byte("METHOD=SetExpressCheckout"))
	require.NoError(t, err)
	assert.Equal(t, "ACK=Success&TOKEN=EC-1", string(raw.Body))

	got := server.last(t)
	assert.Equal(t, "/paypal/nvp/sandbox", got.Path)
	assert.Equal(t, "METHOD=SetExpressCheckout", string(got.Body))
	assert.Equal(t, "application/x-www-form-urlencoded", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get("Authorization"))
}

func TestClient_RecordsRequestLog(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, "application/json", `{}`)
	ctrl := gomock.NewController(t)
	f := newClientFixture(t, server.URL, Hooks{})
	f.validToken()
	f.metrics.EXPECT().ObserveRequest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())

	logSvc := mocks.NewMockRequestLogService(ctrl)
	logSvc.EXPECT().Record(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.RequestLog) {
		assert.Equal(t, http.MethodPost, entry.Method)
		assert.Equal(t, "/payment/methods", entry.Path)
		assert.Equal(t, http.StatusOK, entry.StatusCode)
		assert.Equal(t, "success", entry.Outcome)
	})
	f.client.requestLog = logSvc

	_, err := f.client.GetPaymentMethods(context.Background())
	require.NoError(t, err)
}
