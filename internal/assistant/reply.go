package assistant

import (
	"fmt"
	"math"
	"time"

	"github.com/nikhilbhutani/cretahub/internal/policy"
	"github.com/nikhilbhutani/cretahub/internal/session"
)

type Reply struct {
	SessionID string        `json:"session_id"`
	Turn      session.Turn  `json:"turn"`
	Answer    string        `json:"answer"`
	Failed    bool          `json:"failed"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Latency   time.Duration `json:"-"`
	// LatencySeconds is Latency rounded to two decimals.
	LatencySeconds float64     `json:"latency_seconds"`
	Flags          []string    `json:"flags,omitempty"`
	Debug          DebugRecord `json:"debug"`
}

// Voice describes the speech synthesis setup reported with every answer.
type Voice struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	VoiceID  string `json:"voice_id"`
	Enabled  bool   `json:"enabled"`
}

func DefaultVoice() Voice {
	return Voice{Provider: "ElevenLabs", Model: "eleven_multilingual_v2", VoiceID: "21m00Tcm4TlvDq8ikWAM"}
}

type DebugRecord struct {
	Timestamp      time.Time   `json:"timestamp"`
	Role           policy.Role `json:"role"`
	RoleLabel      string      `json:"role_label"`
	LatencySeconds float64     `json:"latency_seconds"`
	Provider       string      `json:"provider,omitempty"`
	Model          string      `json:"model,omitempty"`
	Attempts       int         `json:"attempts,omitempty"`
	InputTokens    int         `json:"input_tokens"`
	OutputTokens   int         `json:"output_tokens"`
	CostUSD        float64     `json:"cost_usd"`
	Voice          Voice       `json:"voice"`
}

// Lines renders the record as the operator log panel shows it.
func (d DebugRecord) Lines() []string {
	state := "DISABLED"
	if d.Voice.Enabled {
		state = "ENABLED"
	}
	return []string{
		fmt.Sprintf("[INFO] Timestamp: %s", d.Timestamp.Format(time.RFC3339)),
		fmt.Sprintf("[INFO] User Role: %s", d.RoleLabel),
		fmt.Sprintf("[INFO] Latency: %.2fs", d.LatencySeconds),
		fmt.Sprintf("[LLM] Provider: %s", d.Provider),
		fmt.Sprintf("[LLM] Model: %s", d.Model),
		fmt.Sprintf("[LLM] Tokens: %d in / %d out ($%.5f)", d.InputTokens, d.OutputTokens, d.CostUSD),
		fmt.Sprintf("[VOICE] Provider: %s (%s)", d.Voice.Provider, state),
		fmt.Sprintf("[VOICE] Model: %s", d.Voice.Model),
		fmt.Sprintf("[VOICE] ID: %s", d.Voice.VoiceID),
	}
}

// Seconds rounds to two decimals.
func Seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
