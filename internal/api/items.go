package api

import (
	"net/http"
)

type archiveRequest struct {
	Archived bool `json:"archived"`
}

type interestRequest struct {
	Interested bool `json:"interested"`
}

type amountRequest struct {
	// Amount is in cents.
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	viewerID, itemID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}

	view, err := s.svc.GetItem(r.Context(), itemID, viewerID)
	if err != nil {
		s.respondServiceError(w, r, err, "get item")
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleMarkPurchased(w http.ResponseWriter, r *http.Request) {
	viewerID, itemID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}

	item, err := s.svc.MarkPurchased(r.Context(), itemID, viewerID)
	if err != nil {
		s.respondServiceError(w, r, err, "mark item purchased")
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleUnmarkPurchased(w http.ResponseWriter, r *http.Request) {
	viewerID, itemID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}

	item, err := s.svc.UnmarkPurchased(r.Context(), itemID, viewerID)
	if err != nil {
		s.respondServiceError(w, r, err, "unmark item purchase")
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleArchiveItem(w http.ResponseWriter, r *http.Request) {
	viewerID, itemID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}
	var req archiveRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	item, err := s.svc.ArchiveItem(r.Context(), itemID, viewerID, req.Archived)
	if err != nil {
		s.respondServiceError(w, r, err, "archive item")
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleToggleInterest(w http.ResponseWriter, r *http.Request) {
	viewerID, itemID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}
	var req interestRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	interests, err := s.svc.ToggleInterest(r.Context(), itemID, viewerID, req.Interested)
	if err != nil {
		s.respondServiceError(w, r, err, "toggle interest")
		return
	}
	s.respondJSON(w, http.StatusOK, interests)
}

func (s *Server) handleGetContributions(w http.ResponseWriter, r *http.Request) {
	viewerID, itemID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}

	view, err := s.svc.GetContributionView(r.Context(), itemID, viewerID)
	if err != nil {
		s.respondServiceError(w, r, err, "get contributions")
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	viewerID, itemID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	c, err := s.svc.AddContribution(r.Context(), itemID, viewerID, req.Amount)
	if err != nil {
		s.respondServiceError(w, r, err, "add contribution")
		return
	}
	s.respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateContribution(w http.ResponseWriter, r *http.Request) {
	viewerID, contributionID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	c, err := s.svc.UpdateContribution(r.Context(), contributionID, viewerID, req.Amount)
	if err != nil {
		s.respondServiceError(w, r, err, "update contribution")
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteContribution(w http.ResponseWriter, r *http.Request) {
	viewerID, contributionID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}

	if err := s.svc.DeleteContribution(r.Context(), contributionID, viewerID); err != nil {
		s.respondServiceError(w, r, err, "delete contribution")
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	viewerID, itemID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}

	comments, err := s.svc.ListComments(r.Context(), itemID, viewerID)
	if err != nil {
		s.respondServiceError(w, r, err, "get comments")
		return
	}
	s.respondJSON(w, http.StatusOK, comments)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	viewerID, itemID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	c, err := s.svc.AddComment(r.Context(), itemID, viewerID, req.Content)
	if err != nil {
		s.respondServiceError(w, r, err, "add comment")
		return
	}
	s.respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	viewerID, commentID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}

	if err := s.svc.DeleteComment(r.Context(), commentID, viewerID); err != nil {
		s.respondServiceError(w, r, err, "delete comment")
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
