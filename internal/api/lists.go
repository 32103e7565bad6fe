package api

import (
	"net/http"

	"github.com/Kerhoff/familygifts/internal/models"
	"github.com/Kerhoff/familygifts/internal/service"
)

type createListRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	IsPublic    bool   `json:"is_public"`
}

type updateListRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	IsPublic    *bool   `json:"is_public"`
}

type permissionRow struct {
	UserID  int64 `json:"user_id" validate:"required,gt=0"`
	CanView bool  `json:"can_view"`
}

type replacePermissionsRequest struct {
	Permissions []permissionRow `json:"permissions" validate:"dive"`
}

type addItemRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	URL          string `json:"url" validate:"omitempty,url"`
	Price        string `json:"price" validate:"max=50"`
	Notes        string `json:"notes" validate:"max=2000"`
	IsGiftCard   bool   `json:"is_gift_card"`
	IsGroupGift  bool   `json:"is_group_gift"`
	TargetAmount int64  `json:"target_amount" validate:"gte=0"`
}

func (s *Server) handleBrowseLists(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}

	lists, err := s.svc.BrowseLists(r.Context(), viewerID)
	if err != nil {
		s.respondServiceError(w, r, err, "get lists")
		return
	}
	s.respondJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := s.requireViewer(w, r)
	if !ok {
		return
	}
	var req createListRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	list, err := s.svc.CreateList(r.Context(), viewerID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		s.respondServiceError(w, r, err, "create list")
		return
	}
	s.respondJSON(w, http.StatusCreated, list)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	viewerID, listID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}

	view, err := s.svc.GetList(r.Context(), listID, viewerID)
	if err != nil {
		s.respondServiceError(w, r, err, "get list")
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	viewerID, listID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}
	var req updateListRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	list, err := s.svc.UpdateList(r.Context(), listID, viewerID, service.ListUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		s.respondServiceError(w, r, err, "update list")
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPermissions(w http.ResponseWriter, r *http.Request) {
	viewerID, listID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}

	set, err := s.svc.GetListPermissions(r.Context(), listID, viewerID)
	if err != nil {
		s.respondServiceError(w, r, err, "get list permissions")
		return
	}
	s.respondJSON(w, http.StatusOK, set)
}

func (s *Server) handleReplacePermissions(w http.ResponseWriter, r *http.Request) {
	viewerID, listID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}
	var req replacePermissionsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	rows := make([]models.ListPermission, 0, len(req.Permissions))
	for _, p := range req.Permissions {
		rows = append(rows, models.ListPermission{ListID: listID, UserID: p.UserID, CanView: p.CanView})
	}

	set, err := s.svc.ReplaceListPermissions(r.Context(), listID, viewerID, rows)
	if err != nil {
		s.respondServiceError(w, r, err, "replace list permissions")
		return
	}
	s.respondJSON(w, http.StatusOK, set)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	viewerID, listID, ok := s.viewerAndID(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	item, err := s.svc.AddItem(r.Context(), listID, viewerID, service.NewItem{
		Name:         req.Name,
		URL:          req.URL,
		Price:        req.Price,
		Notes:        req.Notes,
		IsGiftCard:   req.IsGiftCard,
		IsGroupGift:  req.IsGroupGift,
		TargetAmount: req.TargetAmount,
	})
	if err != nil {
		s.respondServiceError(w, r, err, "add item")
		return
	}
	s.respondJSON(w, http.StatusCreated, item)
}
