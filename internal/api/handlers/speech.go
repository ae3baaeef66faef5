package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nikhilbhutani/cretahub/internal/multimodal/tts"
)

type SpeechHandler struct {
	tts tts.Provider
}

// NewSpeechHandler takes a nil provider when synthesis is disabled.
func NewSpeechHandler(p tts.Provider) *SpeechHandler {
	return &SpeechHandler{tts: p}
}

type speechRequest struct {
	Text    string  `json:"text" validate:"required,max=5000"`
	VoiceID string  `json:"voice_id" validate:"omitempty,alphanum,max=64"`
	Speed   float64 `json:"speed" validate:"omitempty,gte=0.25,lte=4"`
}

func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	if h.tts == nil {
		writeError(w, http.StatusServiceUnavailable, "tts_disabled", "speech synthesis is disabled")
		return
	}

	var req speechRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.tts.Synthesize(r.Context(), tts.SynthesisRequest{Input: req.Text, Voice: req.VoiceID, Speed: req.Speed})
	if err != nil {
		slog.Error("synthesize", "backend", h.tts.Name(), "error", err)
		writeError(w, http.StatusBadGateway, "tts_error", err.Error())
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Audio)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Audio)
}
