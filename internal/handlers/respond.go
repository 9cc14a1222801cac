package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NotAnonymousUser/Ticket-System/internal/middleware"
	"github.com/NotAnonymousUser/Ticket-System/internal/service"
	"github.com/NotAnonymousUser/Ticket-System/internal/utils"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var ve *service.ValidationError
	var pe *service.PersistenceError
	switch {
	case errors.As(err, &ve):
		utils.Error(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.Error(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, service.ErrUnauthorized):
		utils.Error(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrForbidden):
		utils.Error(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.As(err, &pe):
		log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg(pe.Op)
		utils.ErrorDetails(w, http.StatusInternalServerError, "Database error", pe.Err.Error())
	default:
		log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("unhandled error")
		utils.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &service.ValidationError{Msg: "invalid json"}
	}
	return nil
}

// callerFrom reads the identity WithAuth stored on the request.
func callerFrom(r *http.Request) service.Caller {
	uid, _ := utils.GetString(r.Context(), middleware.CtxUserID)
	name, _ := utils.GetString(r.Context(), middleware.CtxUsername)
	role, _ := utils.GetString(r.Context(), middleware.CtxRole)
	return service.Caller{UserID: uid, Username: name, Role: role}
}
