package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/agent/stream"
	"storefront/internal/common/config"
	apperrors "storefront/internal/common/errors"
	"storefront/internal/common/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(baseURL string) *Config {
	return &Config{
		AppID:   "APP123",
		APIKey:  "secret",
		AgentID: "agent-1",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
}

func newTestClient(t *testing.T, cfg *Config) *Client {
	log := logger.NewTestLogger(t)
	return NewClient(cfg, stream.NewDecoder(log), log)
}

// ==========================================
// Client
// ==========================================

func TestComplete_Success(t *testing.T) {
	var captured completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/agent-studio/1/agents/agent-1/completions", r.URL.Path)
		assert.Equal(t, "ai-sdk-4", r.URL.Query().Get("compatibilityMode"))
		assert.Equal(t, "APP123", r.Header.Get("x-algolia-application-id"))
		assert.Equal(t, "secret", r.Header.Get("x-algolia-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = io.WriteString(w, "0:\"Try the \"\n0:\"Pixel 8\"\na:{\"result\":{\"hits\":[{\"objectID\":\"smartphones-3\"}]}}\n")
	}))
	defer srv.Close()

	reply, err := newTestClient(t, testConfig(srv.URL)).Complete(context.Background(), "best phone?")
	require.NoError(t, err)

	assert.Equal(t, "Try the Pixel 8", reply.Text)
	require.Len(t, reply.Products, 1)
	assert.JSONEq(t, `{"objectID":"smartphones-3"}`, string(reply.Products[0]))

	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "best phone?", captured.Messages[0].Content)
	_, err = uuid.Parse(captured.Messages[0].ID)
	assert.NoError(t, err)
}

func TestComplete_MissingConfigurationSendsNothing(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIKey = ""
	cfg.AgentID = ""

	_, err := newTestClient(t, cfg).Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigurationMissing))
	assert.Contains(t, err.Error(), "agent.api_key, agent.agent_id")
	assert.False(t, called)
}

func TestComplete_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"Invalid API key","status":403}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, testConfig(srv.URL)).Complete(context.Background(), "hi")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusForbidden, upstream.Status)
	assert.Equal(t, map[string]interface{}{"message": "Invalid API key", "status": float64(403)}, upstream.Details)
}

func TestComplete_UpstreamErrorWithTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down\n")
	}))
	defer srv.Close()

	_, err := newTestClient(t, testConfig(srv.URL)).Complete(context.Background(), "hi")
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "upstream down", upstream.Details)
}

func TestComplete_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(t, testConfig(srv.URL)).Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAgentRequestFailed))
}

func TestCompletionsURL_DefaultsToAppHost(t *testing.T) {
	c := newTestClient(t, &Config{AppID: "APP123", APIKey: "k", AgentID: "a b"})
	assert.Equal(t, "https://APP123.algolia.net/agent-studio/1/agents/a%20b/completions?compatibilityMode=ai-sdk-4", c.completionsURL())
}

func TestFromAgentConfig(t *testing.T) {
	cfg := FromAgentConfig(config.AgentConfig{AppID: "A", APIKey: "K", AgentID: "G", BaseURL: "http://x", Timeout: 1500})
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

// ==========================================
// HTTP surface
// ==========================================

type fakeCompleter struct {
	reply stream.Reply
	err   error
	got   string
}

func (f *fakeCompleter) Complete(ctx context.Context, message string) (stream.Reply, error) {
	f.got = message
	return f.reply, f.err
}

func serve(t *testing.T, h *Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		completer  *fakeCompleter
		wantStatus int
		wantBody   string
	}{
		{
			name:       "reply",
			body:       `{"message":"laptops under 500"}`,
			completer:  &fakeCompleter{reply: stream.Reply{Text: "Here you go", Products: []stream.Hit{stream.Hit(`{"objectID":"1"}`)}}},
			wantStatus: http.StatusOK,
			wantBody:   `{"text":"Here you go","products":[{"objectID":"1"}]}`,
		},
		{
			name:       "empty reply keeps products array",
			body:       `{"message":"hi"}`,
			completer:  &fakeCompleter{reply: stream.Reply{Products: []stream.Hit{}}},
			wantStatus: http.StatusOK,
			wantBody:   `{"text":"","products":[]}`,
		},
		{
			name:       "missing message",
			body:       `{}`,
			completer:  &fakeCompleter{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"message is required"}`,
		},
		{
			name:       "configuration missing",
			body:       `{"message":"hi"}`,
			completer:  &fakeCompleter{err: apperrors.NewConfigurationMissingError("agent.app_id")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"agent configuration missing"}`,
		},
		{
			name:       "upstream error",
			body:       `{"message":"hi"}`,
			completer:  &fakeCompleter{err: &UpstreamError{Status: http.StatusTooManyRequests, Details: map[string]interface{}{"message": "slow down"}}},
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `{"error":"agent error","details":{"message":"slow down"}}`,
		},
		{
			name:       "transport failure",
			body:       `{"message":"hi"}`,
			completer:  &fakeCompleter{err: apperrors.NewAgentRequestFailedError(errors.New("dial tcp: refused"))},
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"failed to process chat request","details":"dial tcp: refused"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.completer, nil, logger.NewNoOpLogger())
			rec := serve(t, h, http.MethodPost, "/api/chat", []byte(tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestProbes(t *testing.T) {
	h := NewHandler(&fakeCompleter{}, func(ctx context.Context) error {
		return apperrors.NewConfigurationMissingError("agent.agent_id")
	}, logger.NewNoOpLogger())

	rec := serve(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "agent.agent_id")

	rec = serve(t, NewHandler(&fakeCompleter{}, nil, logger.NewNoOpLogger()), http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
