package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/cretahub/internal/auth"
	"github.com/nikhilbhutani/cretahub/internal/dataset"
	"github.com/nikhilbhutani/cretahub/internal/multimodal/tts"
	"github.com/nikhilbhutani/cretahub/internal/policy"
)

// CatalogHandler serves the static lookups a client needs to build its UI.
type CatalogHandler struct {
	data dataset.Provider
}

func NewCatalogHandler(data dataset.Provider) *CatalogHandler {
	return &CatalogHandler{data: data}
}

func (h *CatalogHandler) Roles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"roles": policy.All()})
}

func (h *CatalogHandler) Voices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"voices": tts.Voices()})
}

// recordView is a Record as a given role may see it.
type recordView struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Balance       *string        `json:"balance,omitempty"`
	Currency      string         `json:"currency"`
	Status        dataset.Status `json:"status"`
	LastPayment   string         `json:"last_payment"`
	AgreementNote string         `json:"agreement_note"`
	LogisticsNote string         `json:"logistics_note"`
	ContactPerson string         `json:"contact_person"`
}

// Dataset is the data lake inspection view, scoped to the caller's role.
func (h *CatalogHandler) Dataset(w http.ResponseWriter, r *http.Request) {
	role, err := resolveRole(r, r.URL.Query().Get("role"))
	if err != nil {
		writeRoleError(w, err)
		return
	}
	pol, err := policy.For(role)
	if err != nil {
		writeRoleError(w, err)
		return
	}

	pq, err := page(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	snap, err := h.data.Snapshot(r.Context(), dataset.Window{Offset: pq.Offset, Limit: pq.Limit})
	if err != nil {
		slog.Error("dataset snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "dataset_unavailable", "could not load dataset")
		return
	}

	views := make([]recordView, len(snap.Records))
	for i, rec := range snap.Records {
		views[i] = recordView{
			ID:            rec.ID,
			Name:          rec.Name,
			Currency:      rec.Currency,
			Status:        rec.Status,
			LastPayment:   rec.LastPayment,
			AgreementNote: rec.AgreementNote,
			LogisticsNote: rec.LogisticsNote,
			ContactPerson: rec.ContactPerson,
		}
		if pol.DiscloseMonetary {
			b := dataset.FormatBalance(rec.Balance)
			views[i].Balance = &b
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"role":    pol.Role,
		"access":  pol.Access,
		"records": views,
		"total":   snap.Total,
	})
}

// resolveRole prefers the authenticated role; the client-supplied one is
// used only when no token is in play.
func resolveRole(r *http.Request, supplied string) (policy.Role, error) {
	if role, ok := auth.RoleFromContext(r.Context()); ok {
		return role, nil
	}
	return policy.ParseRole(supplied)
}

func writeRoleError(w http.ResponseWriter, err error) {
	if errors.Is(err, policy.ErrUnknownRole) {
		writeError(w, http.StatusBadRequest, "unknown_role", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}
