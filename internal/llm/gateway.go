package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nikhilbhutani/cretahub/internal/config"
)

// GatewayOptions tunes routing and retry behaviour.
type GatewayOptions struct {
	DefaultProvider  string
	FallbackProvider string
	// FallbackModel replaces the request model when the fallback provider is
	// used. Empty keeps the original model.
	FallbackModel string
	MaxRetries    int
	// CallTimeout bounds every individual attempt. Zero disables the deadline.
	CallTimeout time.Duration
	// Backoff is the base delay; attempt n waits n*n*Backoff.
	Backoff time.Duration
}

type gateway struct {
	providers map[string]Provider
	opts      GatewayOptions
}

// NewGateway registers every provider that has credentials in cfg.
func NewGateway(cfg config.LLMConfig) Gateway {
	var providers []Provider
	if cfg.OpenAIKey != "" {
		providers = append(providers, NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL))
	}
	if cfg.AnthropicKey != "" {
		providers = append(providers, NewAnthropicProvider(cfg.AnthropicKey, cfg.AnthropicBaseURL))
	}
	if cfg.OllamaURL != "" {
		providers = append(providers, NewOllamaProvider(cfg.OllamaURL))
	}

	return NewGatewayWith(GatewayOptions{
		DefaultProvider:  cfg.DefaultProvider,
		FallbackProvider: cfg.FallbackProvider,
		FallbackModel:    cfg.FallbackModel,
		MaxRetries:       cfg.MaxRetries,
		CallTimeout:      cfg.CallTimeout,
		Backoff:          cfg.RetryBackoff,
	}, providers...)
}

// NewGatewayWith builds a gateway over explicit providers, keyed by Name().
func NewGatewayWith(opts GatewayOptions, providers ...Provider) Gateway {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	g := &gateway{
		providers: make(map[string]Provider, len(providers)),
		opts:      opts,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func (g *gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotConfigured, name)
	}
	return p, nil
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	providerName := req.Provider
	if providerName == "" {
		providerName = g.opts.DefaultProvider
	}

	resp, err := g.chatWithRetry(ctx, providerName, req)
	if err == nil || g.opts.FallbackProvider == "" || g.opts.FallbackProvider == providerName {
		return resp, err
	}
	if ctx.Err() != nil {
		return nil, err
	}

	slog.Warn("primary provider failed, trying fallback",
		"primary", providerName,
		"fallback", g.opts.FallbackProvider,
		"kind", Classify(err),
		"error", err,
	)
	fb := req
	fb.Provider = g.opts.FallbackProvider
	if g.opts.FallbackModel != "" {
		fb.Model = g.opts.FallbackModel
	}
	return g.chatWithRetry(ctx, g.opts.FallbackProvider, fb)
}

func (g *gateway) chatWithRetry(ctx context.Context, providerName string, req ChatRequest) (*ChatResponse, error) {
	p, err := g.Provider(providerName)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= g.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * g.opts.Backoff
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%s: %w", providerName, lastErr)
			case <-time.After(backoff):
			}
			slog.Debug("retrying LLM call", "provider", providerName, "attempt", attempt)
		}

		resp, err := g.attempt(ctx, p, req)
		if err == nil {
			resp.Attempts = attempt + 1
			return resp, nil
		}
		lastErr = err
		if !Retryable(Classify(err)) {
			break
		}
	}
	return nil, fmt.Errorf("%s: %w", providerName, lastErr)
}

func (g *gateway) attempt(ctx context.Context, p Provider, req ChatRequest) (*ChatResponse, error) {
	if g.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.CallTimeout)
		defer cancel()
	}
	return p.ChatCompletion(ctx, req)
}

func (g *gateway) ListModels() []ModelInfo {
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	var models []ModelInfo
	for _, name := range names {
		for _, m := range g.providers[name].Models() {
			models = append(models, ModelInfo{Provider: name, Model: m})
		}
	}
	return models
}
