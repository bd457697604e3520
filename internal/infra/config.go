package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Placeholder values shipped in .env.example; treated the same as an unset token.
var tokenPlaceholders = map[string]struct{}{
	"your_veo3.1_token_here": {},
	"your_sora2_token_here":  {},
}

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv string
	Port   string

	// Optional Hugging Face tokens, one per premium model. A missing token
	// disables the model but the process still starts.
	HFTokenVeo31 string
	HFTokenSora2 string

	NekolabsBaseURL     string
	NekolabsInsecureTLS bool
	HFRouterBaseURL     string

	StaticDir string
	VideoDir  string

	PollInterval    time.Duration
	PollMaxAttempts int

	VideoMaxAge   time.Duration
	SweepInterval time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// None of the variables are required: credentials are optional preconditions checked per model.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "3000"),
		HFTokenVeo31:        cleanToken(os.Getenv("HF_TOKEN_VEO31")),
		HFTokenSora2:        cleanToken(os.Getenv("HF_TOKEN_SORA2")),
		NekolabsBaseURL:     getEnv("NEKOLABS_BASE_URL", "https://api.nekolabs.my.id"),
		NekolabsInsecureTLS: getEnvBool("NEKOLABS_INSECURE_TLS", true),
		HFRouterBaseURL:     getEnv("HF_ROUTER_BASE_URL", "https://router.huggingface.co"),
		StaticDir:           getEnv("STATIC_DIR", "public"),
		VideoDir:            getEnv("VIDEO_DIR", "public/videos"),
		PollInterval:        time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 2)),
		PollMaxAttempts:     getEnvInt("POLL_MAX_ATTEMPTS", 180),
		VideoMaxAge:         time.Minute * time.Duration(getEnvInt("VIDEO_MAX_AGE_MINUTES", 60)),
		SweepInterval:       time.Minute * time.Duration(getEnvInt("SWEEP_INTERVAL_MINUTES", 60)),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}
	return cfg, nil
}

// HasVeo31Token reports whether the veo-3.1-fast credential is configured.
func (c *Config) HasVeo31Token() bool { return c.HFTokenVeo31 != "" }

// HasSora2Token reports whether the sora-2 credential is configured.
func (c *Config) HasSora2Token() bool { return c.HFTokenSora2 != "" }

func cleanToken(v string) string {
	v = strings.TrimSpace(v)
	if _, ok := tokenPlaceholders[v]; ok {
		return ""
	}
	return v
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
