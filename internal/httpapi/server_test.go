package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apresai/personaswap/internal/config"
	"github.com/apresai/personaswap/internal/embellish"
	"github.com/apresai/personaswap/internal/history"
	"github.com/apresai/personaswap/internal/persona"
	"github.com/apresai/personaswap/internal/transformer"
)

type response struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	StatusCode int             `json:"statusCode"`
	Error      string          `json:"error"`
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := transformer.New(persona.Default(embellish.Fixed{}), history.NewMemory(cfg.History.Capacity), logger)
	return New(Options{Service: svc, Config: cfg, Logger: logger})
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func TestWelcomeAndHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec, resp := do(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to PersonaSwap API", resp.Message)

	rec, _ = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPersonas(t *testing.T) {
	rec, resp := do(t, newTestServer(t, nil), http.MethodGet, "/api/personas", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Available personas retrieved successfully", resp.Message)

	var infos []persona.Info
	require.NoError(t, json.Unmarshal(resp.Data, &infos))
	require.Len(t, infos, 4)
	assert.Equal(t, "Elon Musk", infos[2].Name)
}

func TestTransform(t *testing.T) {
	rec, resp := do(t, newTestServer(t, nil), http.MethodPost, "/api/transform",
		`{"message":"I am going to the store.","persona":"yoda"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Message transformed successfully", resp.Message)

	var res transformer.Result
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, "Going to the store, I am.", res.Transformed)
	assert.Equal(t, "Yoda", res.Persona)

	assert.Equal(t, "100", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "99", rec.Header().Get("RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTransformForm(t *testing.T) {
	s := newTestServer(t, nil)
	form := url.Values{"message": {"hello friend!"}, "persona": {"bard"}}
	req := httptest.NewRequest(http.MethodPost, "/api/transform", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Zounds! hark gentle companion!")
}

func TestTransformErrors(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"missing message", `{"persona":"yoda"}`, http.StatusBadRequest, "Message is required"},
		{"missing persona", `{"message":"hi"}`, http.StatusBadRequest, "Persona is required"},
		{"empty body", ``, http.StatusBadRequest, "Message is required"},
		{"unknown persona", `{"message":"hi","persona":"napoleon"}`, http.StatusNotFound, `Persona "napoleon" not found`},
		{"bad json", `{"message":`, http.StatusBadRequest, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/transform", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			var resp response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestErrorDetailHiddenInProduction(t *testing.T) {
	_, resp := do(t, newTestServer(t, nil), http.MethodPost, "/api/transform", `{"message":`)
	assert.NotEmpty(t, resp.Error)

	prod := newTestServer(t, func(c *config.Config) { c.Server.Env = "production" })
	_, resp = do(t, prod, http.MethodPost, "/api/transform", `{"message":`)
	assert.Empty(t, resp.Error)
}

func TestHistory(t *testing.T) {
	s := newTestServer(t, nil)
	for _, msg := range []string{"one", "two", "three"} {
		rec, _ := do(t, s, http.MethodPost, "/api/transform", `{"message":"`+msg+`","persona":"sherlock"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, resp := do(t, s, http.MethodGet, "/api/history?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []history.Record
	require.NoError(t, json.Unmarshal(resp.Data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "three", records[0].OriginalMessage)
	assert.Equal(t, "two", records[1].OriginalMessage)
	assert.Equal(t, "Sherlock Holmes", records[0].Persona)

	_, resp = do(t, s, http.MethodGet, "/api/history?limit=abc", "")
	require.NoError(t, json.Unmarshal(resp.Data, &records))
	assert.Len(t, records, 3)
}

func TestEmptyHistoryIsArray(t *testing.T) {
	rec, _ := do(t, newTestServer(t, nil), http.MethodGet, "/api/history", "")
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/api/transform"},
		{http.MethodDelete, "/api/personas"},
	} {
		rec, resp := do(t, s, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
		assert.Equal(t, "Endpoint not found", resp.Message)
		assert.False(t, resp.Success)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.RateLimit.Max = 2 })
	body := `{"message":"hi","persona":"musk"}`

	for i := 0; i < 2; i++ {
		rec, _ := do(t, s, http.MethodPost, "/api/transform", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, resp := do(t, s, http.MethodPost, "/api/transform", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests, please try again later", resp.Message)
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))

	rec, _ = do(t, s, http.MethodGet, "/api/personas", "")
	assert.Equal(t, http.StatusOK, rec.Code, "only transform is limited")
}

func TestRecoverer(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := config.Default()
	cfg.Server.Env = "production"
	s := New(Options{Config: cfg, Logger: logger})

	rec, resp := do(t, s, http.MethodGet, "/api/personas", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server error", resp.Message)
}

func TestRequestIDEcho(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/transform", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestMCPMount(t *testing.T) {
	cfg := config.Default()
	svc := transformer.New(persona.Default(embellish.Fixed{}), nil, nil)
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	s := New(Options{Service: svc, Config: cfg, MCP: mcp})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}")))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestWebSocket(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil))
	t.Cleanup(ts.Close)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?persona=yoda"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("I am going to the store.")))
	var frame wsFrame
	require.NoError(t, conn.ReadJSON(&frame))
	require.True(t, frame.Success)
	assert.Equal(t, "Going to the store, I am.", frame.Data.Transformed)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"hello friend!","persona":"bard"}`)))
	frame = wsFrame{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "Zounds! hark gentle companion!", frame.Data.Transformed)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"hi","persona":"napoleon"}`)))
	frame = wsFrame{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.False(t, frame.Success)
	assert.Contains(t, frame.Message, "napoleon")
}

func TestWebSocketUnknownPersona(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil))
	t.Cleanup(ts.Close)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/ws?persona=napoleon", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimiterRefillAndSweep(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	ok, left := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, left)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
	ok, _ = l.Allow("a")
	assert.False(t, ok)

	ok, _ = l.Allow("b")
	assert.True(t, ok, "clients are limited independently")

	now = now.Add(30 * time.Second)
	ok, _ = l.Allow("a")
	assert.True(t, ok, "one token refills every window/max")

	now = now.Add(2 * time.Minute)
	l.Allow("c")
	assert.Len(t, l.clients, 1)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(r, 0))

	r.Header.Set("X-Forwarded-For", "198.51.100.4, 203.0.113.9")
	tests := []struct {
		hops int
		want string
	}{
		{0, "10.0.0.1"},
		{1, "203.0.113.9"},
		{2, "198.51.100.4"},
		{5, "198.51.100.4"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clientIP(r, tt.hops), "hops=%d", tt.hops)
	}
}

func TestRateLimitIgnoresForwardedForByDefault(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.RateLimit.Max = 2 })

	var codes []int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/transform", strings.NewReader(`{"message":"hi","persona":"musk"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.RemoteAddr = "203.0.113.7:40000"
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429, 429}, codes)
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.RateLimit.Max = 1
		c.Server.TrustProxy = 1
	})

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/transform", strings.NewReader(`{"message":"hi","persona":"musk"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", xff)
		req.RemoteAddr = "10.0.0.2:40000"
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"), "distinct clients behind the proxy")
	assert.Equal(t, http.StatusTooManyRequests, send("spoofed, 198.51.100.1"), "only the hop the proxy appended counts")
}
