package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"loan-calculator/domain"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Calculator CalculatorConfig `yaml:"calculator"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig describes the optional shared result cache. An empty URL
// selects the in-process cache.
type RedisConfig struct {
	URL       string        `yaml:"url"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
	// MemorySize caps the in-process cache used when URL is empty.
	MemorySize int `yaml:"memory_size"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json|console
}

type RateLimitConfig struct {
	Capacity int           `yaml:"capacity"`
	Window   time.Duration `yaml:"window"`
}

// CalculatorConfig holds the defaults for calculator sessions.
type CalculatorConfig struct {
	MaxSessions int                     `yaml:"max_sessions"`
	IdleTTL     time.Duration           `yaml:"idle_ttl"`
	HistorySize int                     `yaml:"history_size"`
	Defaults    domain.CalculatorConfig `yaml:"defaults"`
}

const (
	defaultAddr            = ":8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "json"
	defaultRateCapacity    = 60
	defaultRateWindow      = time.Minute
	defaultRedisPrefix     = "loancalc:"
	defaultCacheTTL        = time.Hour
	defaultMemoryCacheSize = 10_000
	defaultMaxSessions     = 1000
	defaultSessionIdleTTL  = 30 * time.Minute
	defaultHistorySize     = 1000
)

// Default returns the built-in configuration: the business loan calculator
// with an amount slider between 10 000 and 30 000 000 kr.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            defaultAddr,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Redis: RedisConfig{
			KeyPrefix:  defaultRedisPrefix,
			TTL:        defaultCacheTTL,
			MemorySize: defaultMemoryCacheSize,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
		RateLimit: RateLimitConfig{
			Capacity: defaultRateCapacity,
			Window:   defaultRateWindow,
		},
		Calculator: CalculatorConfig{
			MaxSessions: defaultMaxSessions,
			IdleTTL:     defaultSessionIdleTTL,
			HistorySize: defaultHistorySize,
			Defaults: domain.CalculatorConfig{
				InputIDs: map[domain.Field]string{
					domain.FieldAmount: "loanAmount",
					domain.FieldRate:   "interestRate",
					domain.FieldTerm:   "loanTerm",
				},
				OutputIDs: domain.OutputIDs{
					LoanAmount:     "totalLoanAmount",
					MonthlyPayment: "monthlyPayment",
					TotalPayment:   "totalPayment",
					TotalInterest:  "totalInterest",
				},
				Sliders: map[domain.Field]domain.SliderConfig{
					domain.FieldAmount: {
						SliderID:  "loanAmountSlider",
						DisplayID: "loanAmountDisplay",
						Min:       10_000,
						Max:       30_000_000,
						Step:      10_000,
						Initial:   500_000,
					},
				},
				InitialText: map[domain.Field]string{
					domain.FieldRate: "5",
					domain.FieldTerm: "60",
				},
				SliderDebounce:    10 * time.Millisecond,
				DisplayDebounce:   300 * time.Millisecond,
				RecomputeDebounce: 150 * time.Millisecond,
				Locale: domain.LocaleRule{
					GroupSeparator:   " ",
					DecimalSeparator: ",",
					CurrencySuffix:   " kr",
				},
			},
		},
	}
}

// Load starts from Default, overlays the YAML file at path (if path is not
// empty) and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTP.Addr = valueOrDefault("LOANCALC_ADDR", cfg.HTTP.Addr)
	cfg.Redis.URL = valueOrDefault("LOANCALC_REDIS_URL", cfg.Redis.URL)
	cfg.Logging.Level = valueOrDefault("LOANCALC_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("LOANCALC_LOG_FORMAT", cfg.Logging.Format)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"LOANCALC_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"LOANCALC_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"LOANCALC_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"LOANCALC_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"LOANCALC_CACHE_TTL", &cfg.Redis.TTL},
		{"LOANCALC_RATE_WINDOW", &cfg.RateLimit.Window},
		{"LOANCALC_SESSION_IDLE_TTL", &cfg.Calculator.IdleTTL},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.dst); err != nil {
			return err
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"LOANCALC_RATE_LIMIT", &cfg.RateLimit.Capacity},
		{"LOANCALC_MAX_SESSIONS", &cfg.Calculator.MaxSessions},
		{"LOANCALC_CACHE_SIZE", &cfg.Redis.MemorySize},
	}
	for _, i := range ints {
		if err := parseInt(i.key, i.dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http addr must not be empty")
	}
	if c.RateLimit.Capacity <= 0 {
		return fmt.Errorf("rate limit capacity must be positive, got %d", c.RateLimit.Capacity)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.RateLimit.Window)
	}
	for field, s := range c.Calculator.Defaults.Sliders {
		if _, err := domain.ParseField(string(field)); err != nil {
			return fmt.Errorf("slider: %w", err)
		}
		if s.Max < s.Min {
			return fmt.Errorf("slider %s: max %v below min %v", field, s.Max, s.Min)
		}
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func parseInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
