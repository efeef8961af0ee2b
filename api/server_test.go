package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/log"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/rag"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/tools"
)

// stubChatService scripts the pipeline behind the API.
type stubChatService struct {
	answer    string
	sources   []tools.Source
	queryErr  error
	sessionID string
	analytics rag.Analytics

	lastQuery   string
	lastSession string
}

func (s *stubChatService) Query(_ context.Context, query, sessionID string) (string, []tools.Source, error) {
	s.lastQuery = query
	s.lastSession = sessionID
	if s.queryErr != nil {
		return "", nil, s.queryErr
	}
	return s.answer, s.sources, nil
}

func (s *stubChatService) CreateSession() string { return s.sessionID }

func (s *stubChatService) CourseAnalytics() rag.Analytics { return s.analytics }

func newTestServer(svc ChatService) http.Handler {
	return NewServer(svc, log.NewNop()).Handler()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// TestQueryEndpoint tests POST /api/query end to end through the
// middleware chain.
func TestQueryEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("answers with sources and session", func(t *testing.T) {
		t.Parallel()

		svc := &stubChatService{
			answer:    "Gradient descent minimizes loss.",
			sources:   []tools.Source{{Label: "ML - Lesson 2", Link: "https://example.com/l2"}},
			sessionID: "unused",
		}
		h := newTestServer(svc)

		w := postJSON(t, h, "/api/query", `{"query":"What is gradient descent?","session_id":"abc"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp QueryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Gradient descent minimizes loss.", resp.Answer)
		require.Len(t, resp.Sources, 1)
		assert.Equal(t, "ML - Lesson 2", resp.Sources[0].Label)
		assert.Equal(t, "abc", resp.SessionID)

		assert.Equal(t, "What is gradient descent?", svc.lastQuery)
		assert.Equal(t, "abc", svc.lastSession)
	})

	t.Run("creates a session when none is supplied", func(t *testing.T) {
		t.Parallel()

		svc := &stubChatService{answer: "hi", sessionID: "new-session"}
		h := newTestServer(svc)

		w := postJSON(t, h, "/api/query", `{"query":"hello"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp QueryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "new-session", resp.SessionID)
		assert.Equal(t, "new-session", svc.lastSession)
	})

	t.Run("nil sources serialize as an empty array", func(t *testing.T) {
		t.Parallel()

		svc := &stubChatService{answer: "general knowledge"}
		h := newTestServer(svc)

		w := postJSON(t, h, "/api/query", `{"query":"q"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"sources":[]`)
	})

	t.Run("missing query field", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(&stubChatService{})
		w := postJSON(t, h, "/api/query", `{"session_id":"abc"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "query is required")
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(&stubChatService{})
		w := postJSON(t, h, "/api/query", "not json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_request")
	})

	t.Run("oversized query", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(&stubChatService{})
		long := strings.Repeat("a", MaxQueryLength+1)
		w := postJSON(t, h, "/api/query", `{"query":"`+long+`"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "query too long")
	})

	t.Run("pipeline failure", func(t *testing.T) {
		t.Parallel()

		svc := &stubChatService{queryErr: errors.New("model unavailable"), sessionID: "s"}
		h := newTestServer(svc)

		w := postJSON(t, h, "/api/query", `{"query":"q"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "query_failed")
	})

	t.Run("pipeline failure still returns the created session", func(t *testing.T) {
		t.Parallel()

		svc := &stubChatService{queryErr: errors.New("model unavailable"), sessionID: "minted-session"}
		h := newTestServer(svc)

		w := postJSON(t, h, "/api/query", `{"query":"q"}`)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "minted-session", resp.SessionID)
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(&stubChatService{})
		req := httptest.NewRequest(http.MethodGet, "/api/query", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

// TestSessionEndpoint tests POST /api/sessions.
func TestSessionEndpoint(t *testing.T) {
	t.Parallel()

	svc := &stubChatService{sessionID: "fresh-id"}
	h := newTestServer(svc)

	w := postJSON(t, h, "/api/sessions", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fresh-id", resp.SessionID)
}

// TestCoursesEndpoint tests GET /api/courses.
func TestCoursesEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("reports analytics", func(t *testing.T) {
		t.Parallel()

		svc := &stubChatService{analytics: rag.Analytics{
			TotalCourses: 2,
			CourseTitles: []string{"Course A", "Course B"},
		}}
		h := newTestServer(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp rag.Analytics
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.TotalCourses)
		assert.Equal(t, []string{"Course A", "Course B"}, resp.CourseTitles)
	})

	t.Run("empty corpus yields an empty array", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(&stubChatService{})
		req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"course_titles":[]`)
	})
}

// TestHealthEndpoints tests /health and /ready.
func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(&stubChatService{})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("readiness with indexed courses", func(t *testing.T) {
		t.Parallel()

		svc := &stubChatService{analytics: rag.Analytics{TotalCourses: 1, CourseTitles: []string{"Course A"}}}
		h := newTestServer(svc)
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", w.Body.String())
	})

	t.Run("readiness with empty index", func(t *testing.T) {
		t.Parallel()

		h := newTestServer(&stubChatService{})
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("readiness without service", func(t *testing.T) {
		t.Parallel()

		handler := NewHealthHandler(nil, log.NewNop())
		mux := http.NewServeMux()
		handler.RegisterRoutes(mux)

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
