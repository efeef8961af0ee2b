package api

import (
	"net/http"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/log"
)

// CourseHandler handles course analytics endpoints.
type CourseHandler struct {
	svc    ChatService
	logger log.Logger
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(svc ChatService, logger log.Logger) *CourseHandler {
	return &CourseHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers course routes on the given mux.
func (h *CourseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/courses", h.list)
}

// list reports how many courses are indexed and their titles.
func (h *CourseHandler) list(w http.ResponseWriter, _ *http.Request) {
	analytics := h.svc.CourseAnalytics()
	if analytics.CourseTitles == nil {
		analytics.CourseTitles = []string{}
	}
	writeJSON(w, http.StatusOK, analytics)
}
