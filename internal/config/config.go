package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	// LLM settings. The default base URL points at Groq's OpenAI-compatible
	// endpoint; any compatible provider works.
	LLMProvider      string `env:"LLM_PROVIDER" envDefault:"openai"`
	GroqAPIKey       string `env:"GROQ_API_KEY"`
	GroqModel        string `env:"GROQ_MODEL" envDefault:"llama3-70b-8192"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// Backing store
	SupabaseURL          string `env:"SUPABASE_URL"`
	SupabaseKey          string `env:"SUPABASE_KEY"`
	ApplyGeneratedFilter bool   `env:"APPLY_GENERATED_FILTER" envDefault:"false"`

	// Transport
	ListenAddr       string   `env:"LISTEN_ADDR" envDefault:":5000"`
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	TelegramBotToken string   `env:"TELEGRAM_BOT_TOKEN"`

	// Exchange behavior
	StageTimeout time.Duration `env:"STAGE_TIMEOUT" envDefault:"60s"`

	// Session eviction: a TTL of 0 never evicts (matches the original
	// deployment's unbounded registry).
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"0"`
	SweepSchedule  string        `env:"SWEEP_SCHEDULE" envDefault:"@every 10m"`

	// Audit trail
	ExchangeLogPath string `env:"EXCHANGE_LOG_PATH"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
