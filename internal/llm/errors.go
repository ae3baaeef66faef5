package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyCompletion is returned when the provider answers without content choices.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// ErrorKind groups completion failures by what a caller can do about them.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "network"
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindTimeout   ErrorKind = "timeout"
	KindMalformed ErrorKind = "malformed"
	KindUpstream  ErrorKind = "upstream"
	KindConfig    ErrorKind = "config"
	KindUnknown   ErrorKind = "unknown"
)

// StatusError is a non-2xx reply from a provider reached over plain HTTP.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// ErrProviderNotConfigured is returned for provider names the gateway does not know.
var ErrProviderNotConfigured = errors.New("provider not configured")

// Classify maps an error from any provider onto an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrEmptyCompletion):
		return KindMalformed
	case errors.Is(err, ErrProviderNotConfigured):
		return KindConfig
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return kindForStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindForStatus(reqErr.HTTPStatusCode)
	}
	var antErr *anthropic.Error
	if errors.As(err, &antErr) {
		return kindForStatus(antErr.StatusCode)
	}
	var stErr *StatusError
	if errors.As(err, &stErr) {
		return kindForStatus(stErr.StatusCode)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return KindMalformed
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	return KindUnknown
}

func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests:
		return KindRateLimit
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout
	case code >= 500:
		return KindUpstream
	case code == 0:
		return KindNetwork
	default:
		return KindUnknown
	}
}

// Retryable reports whether another attempt could plausibly succeed.
func Retryable(k ErrorKind) bool {
	switch k {
	case KindNetwork, KindRateLimit, KindTimeout, KindUpstream:
		return true
	}
	return false
}
