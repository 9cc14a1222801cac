package handlers

import (
	"net/http"

	"github.com/NotAnonymousUser/Ticket-System/internal/service"
	"github.com/NotAnonymousUser/Ticket-System/internal/utils"

	"github.com/rs/zerolog"
)

type ReportsHTTP struct {
	svc *service.TicketService
	log zerolog.Logger
}

func NewReportsHTTP(s *service.TicketService, log zerolog.Logger) *ReportsHTTP {
	return &ReportsHTTP{svc: s, log: log}
}

// GET /api/reports/summary
// Returns: { open, resolved7d, highOpen }
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := h.svc.Summary(r.Context())
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]int{
			"open":       sum.Open,
			"resolved7d": sum.Resolved7d,
			"highOpen":   sum.HighOpen,
		})
	}
}
