package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrMissingCredentials marks a configuration that cannot answer queries.
var ErrMissingCredentials = errors.New("missing required credentials")

type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Database  DatabaseConfig  `envconfig:"DATABASE"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Session   SessionConfig   `envconfig:"SESSION"`
	Auth      AuthConfig      `envconfig:"AUTH"`
	LLM       LLMConfig       `envconfig:"LLM"`
	Assistant AssistantConfig `envconfig:"ASSISTANT"`
	STT       STTConfig       `envconfig:"STT"`
	TTS       TTSConfig       `envconfig:"TTS"`
}

type ServerConfig struct {
	Host           string        `envconfig:"HOST" default:"0.0.0.0"`
	Port           int           `envconfig:"PORT" default:"8080"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"WRITE_TIMEOUT" default:"120s"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"100s"`
	RateLimit      int           `envconfig:"RATE_LIMIT" default:"60"` // requests per minute per IP
	Production     bool          `envconfig:"PRODUCTION" default:"false"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

type DatabaseConfig struct {
	URL            string `envconfig:"URL" default:""`
	MaxConns       int    `envconfig:"MAX_CONNS" default:"10"`
	MinConns       int    `envconfig:"MIN_CONNS" default:"1"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"migrations"`
}

type RedisConfig struct {
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD" default:""`
	DB       int    `envconfig:"DB" default:"0"`
}

type SessionConfig struct {
	Store string        `envconfig:"STORE" default:"memory"` // "memory" or "redis"
	TTL   time.Duration `envconfig:"TTL" default:"12h"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET" default:""`
}

type LLMConfig struct {
	OpenAIKey        string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `envconfig:"OPENAI_BASE_URL"`
	AnthropicKey     string        `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string        `envconfig:"ANTHROPIC_BASE_URL"`
	OllamaURL        string        `envconfig:"OLLAMA_URL"`
	DefaultProvider  string        `envconfig:"DEFAULT_PROVIDER" default:"openai"`
	DefaultModel     string        `envconfig:"DEFAULT_MODEL" default:"gpt-4o"`
	FallbackProvider string        `envconfig:"FALLBACK_PROVIDER"`
	FallbackModel    string        `envconfig:"FALLBACK_MODEL"`
	Temperature      float64       `envconfig:"TEMPERATURE" default:"0.3"`
	MaxTokens        int           `envconfig:"MAX_TOKENS" default:"256"`
	MaxRetries       int           `envconfig:"MAX_RETRIES" default:"1"`
	CallTimeout      time.Duration `envconfig:"CALL_TIMEOUT" default:"30s"`
	RetryBackoff     time.Duration `envconfig:"RETRY_BACKOFF" default:"500ms"`
}

type AssistantConfig struct {
	Company         string        `envconfig:"COMPANY" default:"Creta Gas"`
	Language        string        `envconfig:"RESPONSE_LANGUAGE" default:"Greek (Ελληνικά)"`
	Tone            string        `envconfig:"TONE" default:"Professional but natural"`
	MaxSentences    int           `envconfig:"MAX_SENTENCES" default:"2"`
	MaxQueryChars   int           `envconfig:"MAX_QUERY_CHARS" default:"2000"`
	ContextBudget   int           `envconfig:"CONTEXT_TOKEN_BUDGET" default:"6000"`
	DatasetPageSize int           `envconfig:"DATASET_PAGE_SIZE" default:"0"` // 0 embeds the whole table
	DatasetCacheTTL time.Duration `envconfig:"DATASET_CACHE_TTL" default:"5m"`
}

type STTConfig struct {
	Backend      string `envconfig:"ENGINE" default:"openai"` // "openai" or "local"
	OpenAIKey    string `envconfig:"OPENAI_API_KEY"`
	BaseURL      string `envconfig:"OPENAI_BASE_URL"`
	Model        string `envconfig:"WHISPER_MODEL" default:"whisper-1"`
	Language     string `envconfig:"LANGUAGE_HINT" default:"el"`
	LocalBaseURL string `envconfig:"LOCAL_BASE_URL" default:"http://localhost:8178"`
}

type TTSConfig struct {
	Enabled           bool   `envconfig:"ENABLED" default:"false"`
	Backend           string `envconfig:"BACKEND" default:"elevenlabs"` // "elevenlabs" or "openai"
	ElevenLabsKey     string `envconfig:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string `envconfig:"ELEVENLABS_BASE_URL"`
	ElevenLabsModel   string `envconfig:"ELEVENLABS_MODEL" default:"eleven_multilingual_v2"`
	VoiceID           string `envconfig:"VOICE_ID" default:"21m00Tcm4TlvDq8ikWAM"`
	OpenAIKey         string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL     string `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel       string `envconfig:"SPEECH_MODEL" default:"tts-1"`
}

// Load reads an optional .env file and then the process environment.
// Section fields fall back to their unprefixed name, so OPENAI_API_KEY
// serves LLM, STT and TTS unless a prefixed variable overrides it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports every credential the enabled providers need but lack.
func (c *Config) Validate() error {
	var missing []string

	for _, p := range []string{c.LLM.DefaultProvider, c.LLM.FallbackProvider} {
		switch p {
		case "openai":
			if c.LLM.OpenAIKey == "" {
				missing = appendOnce(missing, "OPENAI_API_KEY")
			}
		case "anthropic":
			if c.LLM.AnthropicKey == "" {
				missing = appendOnce(missing, "ANTHROPIC_API_KEY")
			}
		case "ollama":
			if c.LLM.OllamaURL == "" {
				missing = appendOnce(missing, "OLLAMA_URL")
			}
		case "":
		default:
			return fmt.Errorf("unknown LLM provider %q", p)
		}
	}
	if fb := c.LLM.FallbackProvider; fb != "" && fb != c.LLM.DefaultProvider && c.LLM.FallbackModel == "" {
		return fmt.Errorf("FALLBACK_MODEL is required when FALLBACK_PROVIDER %q differs from the default provider", fb)
	}

	if c.STT.Backend == "openai" && c.STT.OpenAIKey == "" {
		missing = appendOnce(missing, "OPENAI_API_KEY")
	}

	if c.TTS.Enabled {
		switch c.TTS.Backend {
		case "elevenlabs":
			if c.TTS.ElevenLabsKey == "" {
				missing = appendOnce(missing, "ELEVENLABS_API_KEY")
			}
		case "openai":
			if c.TTS.OpenAIKey == "" {
				missing = appendOnce(missing, "OPENAI_API_KEY")
			}
		default:
			return fmt.Errorf("unknown TTS backend %q", c.TTS.Backend)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

func appendOnce(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
