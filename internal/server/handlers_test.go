package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lewisedginton/local_places/internal/bridge"
	appconfig "github.com/lewisedginton/local_places/internal/config"
	"github.com/lewisedginton/local_places/internal/oracle"
	"github.com/lewisedginton/local_places/internal/places"
	"github.com/lewisedginton/local_places/internal/session"
	"github.com/lewisedginton/local_places/internal/tools"
	"github.com/lewisedginton/local_places/pkg/logger"
	"github.com/lewisedginton/local_places/pkg/metrics"
)

type stubStore struct {
	places.Store
	all    []places.Place
	allErr error
}

func (s *stubStore) GetAll(_ context.Context) ([]places.Place, error) {
	return s.all, s.allErr
}

type stubOracle struct {
	reply *oracle.Reply
	err   error
}

func (s *stubOracle) Name() string { return "stub" }

func (s *stubOracle) Generate(_ context.Context, _ oracle.Request) (*oracle.Reply, error) {
	return s.reply, s.err
}

func newTestServer(t *testing.T, store places.Store, backend oracle.Oracle) *Server {
	t.Helper()

	log := logger.NewLogger(logger.Config{Level: logger.ErrorLevel, Service: "test"})
	cfg := &appconfig.AppConfig{}
	cfg.HTTP.Port = 8080
	cfg.HTTP.RequestTimeout = 30 * time.Second
	cfg.Session.MaxIdle = time.Hour

	s := &Server{
		cfg:     cfg,
		log:     log,
		metrics: metrics.NewMetrics(log),
		store:   store,
		sessions: session.NewStore(session.Config{
			MaxIdle: time.Hour,
			Logger:  log,
		}),
	}
	if store != nil && backend != nil {
		s.bridge = bridge.New(bridge.Config{
			Oracle:   backend,
			Executor: tools.NewExecutor(store, log),
			Logger:   log,
		})
	}
	return s
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubStore{}, nil)

	rec := doRequest(s, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "local-places-mcp", body["service"])
}

func TestAPIInfo(t *testing.T) {
	s := newTestServer(t, &stubStore{}, nil)

	rec := doRequest(s, http.MethodGet, "/api", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["mcp_tools"], 8)
	assert.NotEmpty(t, body["endpoints"])
	assert.NotEmpty(t, body["example_questions"])
}

func TestListPlaces(t *testing.T) {
	s := newTestServer(t, &stubStore{all: []places.Place{
		{ID: 1, Name: "Dolores Park", Category: places.CategoryPark, Amenities: []string{}},
	}}, nil)

	rec := doRequest(s, http.MethodGet, "/api/places", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "Dolores Park", body[0]["name"])
}

func TestListPlacesStoreFailure(t *testing.T) {
	s := newTestServer(t, &stubStore{allErr: errors.New("boom")}, nil)

	rec := doRequest(s, http.MethodGet, "/api/places", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "store_failure", body["error"])
}

func TestListPlacesWithoutDatabase(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/places", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "configuration_missing", body["error"])
}

func TestChat(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubOracle{reply: &oracle.Reply{Text: "Here you go."}})

	rec := doRequest(s, http.MethodPost, "/api/chat", `{"message":"find cafes"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Here you go.", body["response"])
	assert.NotEmpty(t, body["sessionId"])
}

func TestChatKeepsSessionID(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubOracle{reply: &oracle.Reply{Text: "ok"}})

	rec := doRequest(s, http.MethodPost, "/api/chat", `{"message":"one","sessionId":"abc"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc", body["sessionId"])
}

func TestChatMissingMessage(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubOracle{reply: &oracle.Reply{Text: "ok"}})

	rec := doRequest(s, http.MethodPost, "/api/chat", `{"message":"  "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body["error"])
}

func TestChatWithoutAPIKey(t *testing.T) {
	s := newTestServer(t, &stubStore{}, nil)

	rec := doRequest(s, http.MethodPost, "/api/chat", `{"message":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "configuration_missing", body["error"])
	assert.Contains(t, body["details"], "API key")
}

func TestChatOracleFailure(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubOracle{err: errors.New("upstream down")})

	rec := doRequest(s, http.MethodPost, "/api/chat", `{"message":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "oracle_failure", body["error"])
}

func TestChatReset(t *testing.T) {
	s := newTestServer(t, &stubStore{}, &stubOracle{reply: &oracle.Reply{Text: "ok"}})
	s.sessions.GetOrCreate("abc")

	rec := doRequest(s, http.MethodPost, "/api/chat/reset", `{"sessionId":"abc"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, s.sessions.Len())

	// Resetting an unknown session still succeeds.
	rec = doRequest(s, http.MethodPost, "/api/chat/reset", `{"sessionId":"nope"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStaticIndex(t *testing.T) {
	s := newTestServer(t, &stubStore{}, nil)

	rec := doRequest(s, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Local Places Explorer")
}

func TestStaticUnknownPath(t *testing.T) {
	s := newTestServer(t, &stubStore{}, nil)

	rec := doRequest(s, http.MethodGet, "/no/such/page", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
