package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nikhilbhutani/cretahub/internal/audit"
)

type AdminHandler struct {
	auditSvc *audit.Service
}

func NewAdminHandler(auditSvc *audit.Service) *AdminHandler {
	return &AdminHandler{auditSvc: auditSvc}
}

func (h *AdminHandler) Usage(w http.ResponseWriter, r *http.Request) {
	summary, err := h.auditSvc.UsageSummary(r.Context(), since(r))
	if err != nil {
		slog.Error("usage summary", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not load usage")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"usage": summary})
}

func (h *AdminHandler) Turns(w http.ResponseWriter, r *http.Request) {
	pq, err := page(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	q := audit.TurnQuery{
		Role:   r.URL.Query().Get("role"),
		Since:  since(r),
		Limit:  pq.Limit,
		Offset: pq.Offset,
	}

	turns, err := h.auditSvc.RecentTurns(r.Context(), q)
	if err != nil {
		slog.Error("recent turns", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not load turns")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"turns": turns, "count": len(turns)})
}

func since(r *http.Request) *time.Time {
	s := r.URL.Query().Get("since")
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
