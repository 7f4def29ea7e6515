package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/abhisek/choosedb/internal/questionnaire"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "CHOOSEDB"

// Config holds all choosedb configuration.
type Config struct {
	// BaseURL is the root of the recommendation backend.
	BaseURL       string `envconfig:"BASE_URL"`
	QuestionsPath string `envconfig:"QUESTIONS_PATH"`
	RecommendPath string `envconfig:"RECOMMEND_PATH"`

	// RequestName tags every recommend request.
	RequestName string `envconfig:"REQUEST_NAME"`

	// DefaultMode applies to choice questions the backend does not
	// classify. Values: "single", "multi".
	DefaultMode string `envconfig:"DEFAULT_MODE"`

	// Timeout bounds a single HTTP request (per attempt).
	Timeout time.Duration `envconfig:"TIMEOUT"`

	Retry RetryConfig `envconfig:"RETRY"`

	// DBPath is the sqlite history file. Empty means the XDG default.
	DBPath string `envconfig:"DB"`

	// History enables recording submissions and request events.
	History bool `envconfig:"HISTORY"`

	LogLevel    string `envconfig:"LOG_LEVEL"`
	LogEncoding string `envconfig:"LOG_ENCODING"`

	// LogFile is where logs go. Empty means the XDG state default for the
	// interactive commands and stderr for serve-fixture.
	LogFile string `envconfig:"LOG_FILE"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS"`
	InitialWait time.Duration `envconfig:"INITIAL_WAIT"`
	MaxWait     time.Duration `envconfig:"MAX_WAIT"`
	Multiplier  float64       `envconfig:"MULTIPLIER"`
}

// DefaultConfig returns the configuration used when no variable is set.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "https://www.choose-your-db-backend.hekimed.com",
		QuestionsPath: "/questions",
		RecommendPath: "/recommend",
		RequestName:   questionnaire.DefaultRequestName,
		DefaultMode:   string(questionnaire.ModeSingle),
		Timeout:       15 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		History:     true,
		LogLevel:    "info",
		LogEncoding: "json",
	}
}

// Load reads an optional dotenv file and then the CHOOSEDB_* environment
// over DefaultConfig. Unset variables keep their default. Without an
// explicit envFile a missing .env is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// Mode returns DefaultMode as a SelectionMode.
func (c Config) Mode() questionnaire.SelectionMode {
	m, err := questionnaire.ParseSelectionMode(c.DefaultMode)
	if err != nil {
		return questionnaire.ModeSingle
	}
	return m
}

// QuestionsURL returns the full questions endpoint URL.
func (c Config) QuestionsURL() string {
	return joinURL(c.BaseURL, c.QuestionsPath)
}

// RecommendURL returns the full recommend endpoint URL.
func (c Config) RecommendURL() string {
	return joinURL(c.BaseURL, c.RecommendPath)
}

// CallTimeout bounds one logical backend call: every attempt at Timeout
// plus the longest backoff between attempts.
func (c Config) CallTimeout() time.Duration {
	attempts := max(c.Retry.MaxAttempts, 1)
	return time.Duration(attempts)*c.Timeout + time.Duration(attempts-1)*c.Retry.MaxWait
}

func joinURL(base, path string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return base + path
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CHOOSEDB_BASE_URL must be an absolute URL, got %q", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("CHOOSEDB_BASE_URL must use http or https, got %q", u.Scheme)
	}
	if _, err := questionnaire.ParseSelectionMode(c.DefaultMode); err != nil {
		return fmt.Errorf("CHOOSEDB_DEFAULT_MODE: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("CHOOSEDB_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("CHOOSEDB_RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("CHOOSEDB_RETRY_MULTIPLIER must be at least 1, got %v", c.Retry.Multiplier)
	}
	return nil
}

// DefaultDBPath resolves the history database path in priority order:
// 1. $XDG_DATA_HOME/choosedb/choosedb.db
// 2. ~/.local/share/choosedb/choosedb.db
func DefaultDBPath() (string, error) {
	return xdgPath("XDG_DATA_HOME", filepath.Join(".local", "share"), "choosedb.db")
}

// DefaultLogPath resolves the log file used by the interactive commands:
// 1. $XDG_STATE_HOME/choosedb/choosedb.log
// 2. ~/.local/state/choosedb/choosedb.log
func DefaultLogPath() (string, error) {
	return xdgPath("XDG_STATE_HOME", filepath.Join(".local", "state"), "choosedb.log")
}

func xdgPath(envVar, fallback, file string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, fallback)
	}
	p := filepath.Join(base, "choosedb", file)
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
