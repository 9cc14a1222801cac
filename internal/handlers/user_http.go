package handlers

import (
	"net/http"

	"github.com/NotAnonymousUser/Ticket-System/internal/repository"
	"github.com/NotAnonymousUser/Ticket-System/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type UserHTTP struct {
	repo repository.UserRepository
	log  zerolog.Logger
}

func NewUserHTTP(r repository.UserRepository, log zerolog.Logger) *UserHTTP {
	return &UserHTTP{repo: r, log: log}
}

// GET /api/users?q=&role=&limit=&offset=
func (h *UserHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		limit := utils.QueryInt(qv, "limit", 20)
		offset := utils.QueryInt(qv, "offset", 0)

		users, total, err := h.repo.List(r.Context(), utils.QueryString(qv, "q"), utils.QueryString(qv, "role"), limit, offset)
		if err != nil {
			h.log.Error().Err(err).Msg("list users")
			utils.ErrorDetails(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": users, "total": total})
	}
}

// GET /api/users/{id}
func (h *UserHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			h.log.Error().Err(err).Msg("get user")
			utils.ErrorDetails(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		if u == nil {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}
