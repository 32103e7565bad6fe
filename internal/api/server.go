package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/familygifts/internal/metrics"
	"github.com/Kerhoff/familygifts/internal/service"
)

// ViewerHeader carries the ID of the member making the request.
const ViewerHeader = "X-User-ID"

// Server provides the HTTP API.
type Server struct {
	svc      *service.Service
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
	mux      *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it. m may be nil.
func NewServer(svc *service.Service, logger *logrus.Logger, m *metrics.Metrics) *Server {
	s := &Server{
		svc:      svc,
		logger:   logger,
		metrics:  m,
		validate: newValidator(),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.requestLogger(s.mux)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	// API – Lists
	s.mux.HandleFunc("GET /api/lists", s.handleBrowseLists)
	s.mux.HandleFunc("POST /api/lists", s.handleCreateList)
	s.mux.HandleFunc("GET /api/lists/{id}", s.handleGetList)
	s.mux.HandleFunc("PATCH /api/lists/{id}", s.handleUpdateList)
	s.mux.HandleFunc("GET /api/lists/{id}/permissions", s.handleGetPermissions)
	s.mux.HandleFunc("PUT /api/lists/{id}/permissions", s.handleReplacePermissions)
	s.mux.HandleFunc("POST /api/lists/{id}/items", s.handleAddItem)

	// API – Items
	s.mux.HandleFunc("GET /api/items/{id}", s.handleGetItem)
	s.mux.HandleFunc("PUT /api/items/{id}/purchase", s.handleMarkPurchased)
	s.mux.HandleFunc("DELETE /api/items/{id}/purchase", s.handleUnmarkPurchased)
	s.mux.HandleFunc("PUT /api/items/{id}/archived", s.handleArchiveItem)
	s.mux.HandleFunc("PUT /api/items/{id}/interest", s.handleToggleInterest)

	// API – Gift card contributions
	s.mux.HandleFunc("GET /api/items/{id}/contributions", s.handleGetContributions)
	s.mux.HandleFunc("POST /api/items/{id}/contributions", s.handleAddContribution)
	s.mux.HandleFunc("PATCH /api/contributions/{id}", s.handleUpdateContribution)
	s.mux.HandleFunc("DELETE /api/contributions/{id}", s.handleDeleteContribution)

	// API – Comments
	s.mux.HandleFunc("GET /api/items/{id}/comments", s.handleListComments)
	s.mux.HandleFunc("POST /api/items/{id}/comments", s.handleAddComment)
	s.mux.HandleFunc("DELETE /api/comments/{id}", s.handleDeleteComment)

	// API – Suggestions
	s.mux.HandleFunc("POST /api/suggestions", s.handleCreateSuggestion)
	s.mux.HandleFunc("GET /api/suggestions/received", s.handleReceivedSuggestions)
	s.mux.HandleFunc("GET /api/suggestions/sent", s.handleSentSuggestions)
	s.mux.HandleFunc("GET /api/suggestions/{id}", s.handleGetSuggestion)
	s.mux.HandleFunc("POST /api/suggestions/{id}/{action}", s.handleTransitionSuggestion)
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads the request body into dst and validates it. It writes the
// error response itself; the caller should return when ok == false.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (ok bool) {
	if r.Body == nil || r.ContentLength == 0 {
		s.respondError(w, http.StatusBadRequest, "request body is empty")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		if structured := fromValidationError(err); structured != nil {
			s.respondJSON(w, http.StatusBadRequest, structured)
			return false
		}
		s.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// pathID extracts a numeric path value and converts it to int64.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s in path", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// requireViewer reads the viewer from the X-User-ID header. It writes an
// error response and returns false when the header is absent or invalid.
func (s *Server) requireViewer(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(ViewerHeader)
	if raw == "" {
		s.respondError(w, http.StatusUnauthorized, ViewerHeader+" header is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, ViewerHeader+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// viewerAndID combines requireViewer and pathID("id").
func (s *Server) viewerAndID(w http.ResponseWriter, r *http.Request) (viewerID, id int64, ok bool) {
	viewerID, ok = s.requireViewer(w, r)
	if !ok {
		return 0, 0, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return viewerID, id, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
