package handlers

import (
	"net/http"

	"github.com/NotAnonymousUser/Ticket-System/internal/repository"
	"github.com/NotAnonymousUser/Ticket-System/internal/service"
	"github.com/NotAnonymousUser/Ticket-System/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// TicketHTTP wires HTTP endpoints to the ticket service.
type TicketHTTP struct {
	svc *service.TicketService
	log zerolog.Logger
}

func NewTicketHTTP(s *service.TicketService, log zerolog.Logger) *TicketHTTP {
	return &TicketHTTP{svc: s, log: log}
}

// -----------------------------------------------------------------------------
// GET /api/tickets?q=&status=&priority=&assignee=&limit=&offset=
// -----------------------------------------------------------------------------
func (h *TicketHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		items, err := h.svc.List(r.Context(), repository.TicketFilter{
			Q:        utils.QueryString(qv, "q"),
			Status:   utils.QueryString(qv, "status"),
			Priority: utils.QueryString(qv, "priority"),
			Assignee: utils.QueryString(qv, "assignee"),
			Limit:    utils.QueryInt(qv, "limit", 0),
			Offset:   utils.QueryInt(qv, "offset", 0),
		})
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, items)
	}
}

// -----------------------------------------------------------------------------
// GET /api/tickets/{code}
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := h.svc.Get(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// GET /api/tickets/{code}/comments
// -----------------------------------------------------------------------------
func (h *TicketHTTP) ListComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.svc.ListComments(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, items)
	}
}

// -----------------------------------------------------------------------------
// POST /api/ticket (and POST /api/tickets)
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Create() http.HandlerFunc {
	type inDTO struct {
		Title       string `json:"title"`
		Employee    string `json:"employee"`
		Date        string `json:"date"`
		Description string `json:"description"`
		Status      string `json:"status"`
		Priority    string `json:"priority"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := decode(r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		t, err := h.svc.Create(r.Context(), callerFrom(r), service.CreateTicketInput{
			Title:       in.Title,
			Employee:    in.Employee,
			Date:        in.Date,
			Description: in.Description,
			Status:      in.Status,
			Priority:    in.Priority,
		})
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		h.log.Info().Str("ticket", t.Code).Str("by", t.CreatedBy).Msg("ticket created")
		utils.JSON(w, http.StatusCreated, t)
	}
}

// -----------------------------------------------------------------------------
// POST /api/tickets/{code}/comments
// -----------------------------------------------------------------------------
func (h *TicketHTTP) AddComment() http.HandlerFunc {
	type inDTO struct {
		CommentText string `json:"commentText"`
		CommentedBy string `json:"commentedBy"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := decode(r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		c, err := h.svc.AddComment(r.Context(), callerFrom(r), chi.URLParam(r, "code"), in.CommentText, in.CommentedBy)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, map[string]any{
			"commentId": c.ID,
			"comment":   c,
		})
	}
}

// -----------------------------------------------------------------------------
// PUT /api/tickets/{code} (admin)
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Update() http.HandlerFunc {
	type inDTO struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Priority    *string `json:"priority"`
		Assignee    *string `json:"assignee"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var in inDTO
		if err := decode(r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		t, err := h.svc.Update(r.Context(), callerFrom(r), chi.URLParam(r, "code"), service.UpdateTicketInput{
			Title:       in.Title,
			Description: in.Description,
			Status:      in.Status,
			Priority:    in.Priority,
			Assignee:    in.Assignee,
		})
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, t)
	}
}

// -----------------------------------------------------------------------------
// DELETE /api/tickets/{code} (admin)
// -----------------------------------------------------------------------------
func (h *TicketHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Delete(r.Context(), callerFrom(r), chi.URLParam(r, "code")); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"message": "Ticket deleted successfully"})
	}
}
