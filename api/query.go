package api

import (
	"encoding/json"
	"net/http"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/log"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/tools"
)

// MaxQueryLength bounds query size to keep prompt construction and
// embedding costs sane.
const MaxQueryLength = 10_000

// QueryRequest is the request body for POST /api/query.
type QueryRequest struct {
	Query     *string `json:"query"`
	SessionID string  `json:"session_id,omitempty"`
}

// QueryResponse is the response body for POST /api/query.
type QueryResponse struct {
	Answer    string         `json:"answer"`
	Sources   []tools.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

// SessionResponse is the response body for POST /api/sessions.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// QueryHandler handles the query and session endpoints.
type QueryHandler struct {
	svc    ChatService
	logger log.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(svc ChatService, logger log.Logger) *QueryHandler {
	return &QueryHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers query routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.query)
	mux.HandleFunc("POST /api/sessions", h.createSession)
}

// query answers one user question. Without a session_id a fresh
// session is created and returned so the client can continue the
// conversation.
func (h *QueryHandler) query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if req.Query == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}
	if len(*req.Query) > MaxQueryLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "query too long")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.svc.CreateSession()
	}

	answer, sources, err := h.svc.Query(r.Context(), *req.Query, sessionID)
	if err != nil {
		h.logger.Error("query failed", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:     "query_failed",
			Message:   err.Error(),
			SessionID: sessionID,
		})
		return
	}

	if sources == nil {
		sources = []tools.Source{}
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

// createSession starts a new empty conversation session.
func (h *QueryHandler) createSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{SessionID: h.svc.CreateSession()})
}
