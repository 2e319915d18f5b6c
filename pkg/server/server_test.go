package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pario-ai/advisor/pkg/advisor"
	"github.com/pario-ai/advisor/pkg/cache"
	"github.com/pario-ai/advisor/pkg/cache/memory"
	"github.com/pario-ai/advisor/pkg/cascade"
	"github.com/pario-ai/advisor/pkg/config"
	"github.com/pario-ai/advisor/pkg/fallback"
	"github.com/pario-ai/advisor/pkg/models"
	"github.com/pario-ai/advisor/pkg/session"
)

type countingResolver struct {
	calls atomic.Int32
	inner *cascade.Cascade
}

func (c *countingResolver) Resolve(ctx context.Context, req models.Request) (cascade.Response, error) {
	c.calls.Add(1)
	return c.inner.Resolve(ctx, req)
}

type testEnv struct {
	srv      *httptest.Server
	resolver *countingResolver
	sessions *session.Manager
}

// newTestEnv runs the API with no backends, so every answer is the fallback.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Backends = nil
	cfg.CORSOrigins = []string{"https://advisor.example"}

	resolver := &countingResolver{inner: cascade.New(nil)}
	c := cache.New(memory.New(0), cfg.TTLPolicy())
	sessions := session.NewManager(cfg.Locale, cfg.Conversation.Retention, cfg.Conversation.Display)
	a := advisor.New(resolver, advisor.WithCache(c))

	srv := httptest.NewServer(New(cfg, a, sessions))
	t.Cleanup(func() {
		srv.Close()
		sessions.Close()
		c.Close()
	})
	return &testEnv{srv: srv, resolver: resolver, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) newSession(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	snap := decodeBody[session.Snapshot](t, resp)
	require.NotEmpty(t, snap.ID)
	return snap.ID
}

var farmer = map[string]any{
	"age":            30,
	"occupation":     "Farmer",
	"income_bracket": "₹5,000-10,000",
	"location":       "Pune",
	"family_size":    "2-3",
	"health":         "Good",
	"goal":           "Basic Protection",
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestAdviceFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)

	resp := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/advice", farmer)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeBody[advisor.Result](t, resp)
	assert.Equal(t, models.BackendNone, res.Backend)
	assert.Contains(t, res.Text, "₹7500/month", "income bracket is converted")
	assert.Contains(t, res.Text, "PMSBY")

	resp = env.do(t, http.MethodGet, "/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "ready", snap["state"])
	assert.Equal(t, res.Text, snap["advice"])

	resp = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decodeBody[map[string]any](t, resp)
	assert.Equal(t, "idle", snap["state"])
	assert.Nil(t, snap["advice"])
}

func TestQuestionAndHistory(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)

	q := "What documents do I need for a claim?"
	resp := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/questions", models.QueryRequest{Question: q})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeBody[advisor.Result](t, resp)
	assert.Equal(t, fallback.Answer(q), res.Text)

	for i := 0; i < 6; i++ {
		env.do(t, http.MethodPost, "/v1/sessions/"+id+"/questions", models.QueryRequest{Question: "premium cost?"})
	}

	resp = env.do(t, http.MethodGet, "/v1/sessions/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]models.ConversationRecord](t, resp), 5, "display window by default")

	resp = env.do(t, http.MethodGet, "/v1/sessions/"+id+"/history?n=10", nil)
	records := decodeBody[[]models.ConversationRecord](t, resp)
	require.Len(t, records, 7)
	assert.Equal(t, q, records[0].Question)

	resp = env.do(t, http.MethodGet, "/v1/sessions/"+id+"/history?n=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/v1/sessions/"+id+"/history?n=11", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "n beyond the retention cap")

	resp = env.do(t, http.MethodDelete, "/v1/sessions/"+id+"/history", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/v1/sessions/"+id+"/history", nil)
	assert.Empty(t, decodeBody[[]models.ConversationRecord](t, resp))
}

func TestInvalidRequests(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)

	bad := map[string]any{"age": 5, "occupation": "Farmer"}
	resp := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/advice", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[map[string]map[string]any](t, resp)
	assert.Contains(t, body["error"]["message"], "age")
	assert.Equal(t, "advisor_error", body["error"]["type"])

	resp = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/questions", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	withBracket := map[string]any{"age": 30, "income_bracket": "lots"}
	resp = env.do(t, http.MethodPost, "/v1/sessions/"+id+"/advice", withBracket)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.EqualValues(t, 0, env.resolver.calls.Load())
}

func TestUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/sessions/nope"},
		{http.MethodDelete, "/v1/sessions/nope"},
		{http.MethodPost, "/v1/sessions/nope/advice"},
		{http.MethodPost, "/v1/sessions/nope/questions"},
		{http.MethodGet, "/v1/sessions/nope/history"},
		{http.MethodPut, "/v1/sessions/nope/locale"},
		{http.MethodPost, "/v1/sessions/nope/reset"},
	} {
		resp := env.do(t, tc.method, tc.path, "{}")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, tc.method+" "+tc.path)
	}
}

func TestBusySessionConflict(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)
	sess, ok := env.sessions.Get(id)
	require.True(t, ok)
	_, err := sess.Begin()
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/v1/sessions/"+id+"/advice", farmer)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLocaleChange(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)

	resp := env.do(t, http.MethodPut, "/v1/sessions/"+id+"/locale", localeRequest{Locale: "ta"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[localeResponse](t, resp)
	assert.True(t, body.Changed)
	assert.Equal(t, "ta", body.Locale)

	resp = env.do(t, http.MethodPut, "/v1/sessions/"+id+"/locale", localeRequest{Locale: "zz"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOptionsAndCacheStats(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/v1/options", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	opts := decodeBody[models.Options](t, resp)
	assert.Equal(t, models.ClaimTypes, opts.ClaimTypes)

	resp = env.do(t, http.MethodGet, "/v1/cache/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeBody[cacheStatsResponse](t, resp)
	assert.EqualValues(t, 1, stats.Entries)

	resp = env.do(t, http.MethodDelete, "/v1/cache", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/v1/cache/stats", nil)
	stats = decodeBody[cacheStatsResponse](t, resp)
	assert.EqualValues(t, 0, stats.Entries)
}

func TestStatsWithoutJournal(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]models.ResolutionSummary](t, resp))
}

func TestSessionListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	id := env.newSession(t)

	resp := env.do(t, http.MethodGet, "/v1/sessions", nil)
	body := decodeBody[map[string][]string](t, resp)
	assert.Equal(t, []string{id}, body["sessions"])

	resp = env.do(t, http.MethodDelete, "/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)
	req, err := http.NewRequest(http.MethodOptions, env.srv.URL+"/v1/options", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://advisor.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "https://advisor.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWriteJSONErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSONError(rec, http.StatusConflict, `say "hi"`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `{"error":{"message":"say \"hi\""`))
}
