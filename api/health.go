package api

import (
	"net/http"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/log"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	svc    ChatService
	logger log.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc ChatService, logger log.Logger) *HealthHandler {
	return &HealthHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// liveness is a liveness probe endpoint.
// Returns 200 OK if the process is alive.
func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness is a readiness probe endpoint.
// Returns 200 OK once the query pipeline is wired up and the index
// holds at least one course.
func (h *HealthHandler) readiness(w http.ResponseWriter, _ *http.Request) {
	if h.svc == nil {
		http.Error(w, "pipeline not configured", http.StatusServiceUnavailable)
		return
	}
	if h.svc.CourseAnalytics().TotalCourses == 0 {
		http.Error(w, "no courses indexed", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
