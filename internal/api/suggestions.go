package api

import (
	"net/http"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/policy"
	"github.com/Kerhoff/familygifts/internal/service"
)

type createSuggestionRequest struct {
	TargetUserID int64  `json:"target_user_id" validate:"required,gt=0"`
	Name         string `json:"name" validate:"required,max=200"`
	URL          string `json:"url" validate:"omitempty,url"`
	Price        string `json:"price" validate:"max=50"`
	Notes        string `json:"notes" validate:"max=2000"`
	IsAnonymous  bool   `json:"is_anonymous"`
}

type transitionRequest struct {
	ListID int64  `json:"list_id" validate:"omitempty,gt=0"`
	Reason string `json:"reason" validate:"max=500"`
}

func (s *Server) handleCreateSuggestion(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}
	var req createSuggestionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	sug, err := s.svc.CreateSuggestion(r.Context(), viewerID, service.NewSuggestion{
		TargetUserID: req.TargetUserID,
		Name:         req.Name,
		URL:          req.URL,
		Price:        req.Price,
		Notes:        req.Notes,
		IsAnonymous:  req.IsAnonymous,
	})
	if err != nil {
		s.respondServiceError(w, r, err, "create suggestion")
		return
	}
	s.respondJSON(w, http.StatusCreated, sug)
}

func (s *Server) handleReceivedSuggestions(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	var status *models.SuggestionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := models.SuggestionStatus(raw)
		switch st {
		case models.SuggestionStatusPending, models.SuggestionStatusApproved, models.SuggestionStatusDenied:
			status = &st
		default:
			s.respondError(w, http.StatusBadRequest, "status must be one of pending, approved, denied")
			return
		}
	}

	rows, err := s.svc.ListSuggestionsForTarget(r.Context(), viewerID, status)
	if err != nil {
		s.respondServiceError(w, r, err, "get suggestions")
		return
	}
	s.respondJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSentSuggestions(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	rows, err := s.svc.ListSuggestionsBySuggester(r.Context(), viewerID)
	if err != nil {
		s.respondServiceError(w, r, err, "get suggestions")
		return
	}
	s.respondJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGetSuggestion(w http.ResponseWriter, r *http.Request) {
	viewerID, suggestionID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}

	sug, err := s.svc.GetSuggestion(r.Context(), suggestionID, viewerID)
	if err != nil {
		s.respondServiceError(w, r, err, "get suggestion")
		return
	}
	s.respondJSON(w, http.StatusOK, sug)
}

func (s *Server) handleTransitionSuggestion(w http.ResponseWriter, r *http.Request) {
	viewerID, suggestionID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}
	action, err := policy.ParseAction(r.PathValue("action"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "not found")
		return
	}

	var req transitionRequest
	if r.ContentLength != 0 && !s.decodeJSON(w, r, &req) {
		return
	}

	res, err := s.svc.TransitionSuggestion(r.Context(), suggestionID, action, viewerID, service.TransitionRequest{
		ListID:       req.ListID,
		DenialReason: req.Reason,
	})
	if err != nil {
		s.respondServiceError(w, r, err, string(action)+" suggestion")
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}
