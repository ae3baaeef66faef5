package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/cretahub/internal/assistant"
	"github.com/nikhilbhutani/cretahub/internal/multimodal/stt"
	"github.com/nikhilbhutani/cretahub/internal/policy"
	"github.com/nikhilbhutani/cretahub/internal/session"
)

const maxAudioBytes = 25 << 20

type SessionHandler struct {
	sessions *session.Manager
	pipeline *assistant.Pipeline
	stt      stt.Provider
	language string
}

// NewSessionHandler builds the conversation endpoints. transcriber may be
// nil, which disables voice queries.
func NewSessionHandler(m *session.Manager, p *assistant.Pipeline, transcriber stt.Provider, language string) *SessionHandler {
	return &SessionHandler{sessions: m, pipeline: p, stt: transcriber, language: language}
}

type sessionResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create(r.Context())
	if err != nil {
		slog.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not create session")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, State: s.State().String()})
}

func (h *SessionHandler) Turns(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	turns, err := s.Turns(r.Context())
	if err != nil {
		slog.Error("read turns", "session_id", s.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not read session log")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": s.ID, "turns": turns, "count": len(turns)})
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.End(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session_not_found", "no such session")
			return
		}
		slog.Error("end session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not end session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type queryRequest struct {
	Role  string `json:"role" validate:"omitempty,max=64"`
	Query string `json:"query" validate:"required,max=16000"`
}

func (h *SessionHandler) Query(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req queryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	role, err := resolveRole(r, req.Role)
	if err != nil {
		writeRoleError(w, err)
		return
	}
	h.ask(w, r, s, role, req.Query)
}

type voiceForm struct {
	Role string `validate:"omitempty,max=64"`
}

// Voice transcribes an uploaded recording and asks the transcript. A failed
// transcription is reported as such and never reaches the pipeline.
func (h *SessionHandler) Voice(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if h.stt == nil {
		writeError(w, http.StatusServiceUnavailable, "stt_disabled", "speech input is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "expected multipart form with an audio file")
		return
	}
	form := voiceForm{Role: r.FormValue("role")}
	if err := check(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	role, err := resolveRole(r, form.Role)
	if err != nil {
		writeRoleError(w, err)
		return
	}

	file, hdr, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing audio part")
		return
	}
	defer file.Close()

	tr, err := h.stt.Transcribe(r.Context(), stt.TranscriptionRequest{
		Audio:    file,
		Filename: filepath.Base(hdr.Filename),
		Language: h.language,
	})
	if err != nil {
		slog.Warn("transcription failed", "session_id", s.ID, "backend", h.stt.Name(), "error", err)
		writeError(w, http.StatusUnprocessableEntity, "transcription_error", err.Error())
		return
	}

	h.ask(w, r, s, role, tr.Text)
}

func (h *SessionHandler) ask(w http.ResponseWriter, r *http.Request, s *session.Session, role policy.Role, query string) {
	reply, err := h.pipeline.Ask(r.Context(), s, role, query)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reply)
	case errors.Is(err, policy.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, "unknown_role", err.Error())
	case errors.Is(err, assistant.ErrQueryRejected):
		writeError(w, http.StatusBadRequest, "query_rejected", err.Error())
	case errors.Is(err, session.ErrBusy):
		writeError(w, http.StatusConflict, "session_busy", "a query is already in progress for this session")
	case errors.Is(err, session.ErrEnded):
		writeError(w, http.StatusNotFound, "session_not_found", "session has ended")
	default:
		slog.Error("ask", "session_id", s.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not process query")
	}
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", "no such session")
		return nil, false
	}
	return s, true
}
