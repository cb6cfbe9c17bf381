// Package config loads and validates engine configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/einsum/internal/parallel"
)

// LevelTrace sits below slog.LevelDebug and carries dispatcher state
// transitions and fallback notes.
const LevelTrace = slog.Level(-8)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

// Config is the top-level engine configuration.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	// Parallel controls both parallel axes: generic evaluation and batching.
	Parallel ParallelConfig `json:"parallel" yaml:"parallel"`

	// Dispatch controls classification and result checking.
	Dispatch DispatchConfig `json:"dispatch" yaml:"dispatch"`

	// Logging controls the logger built by NewLogger.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ParallelConfig contains worker settings.
type ParallelConfig struct {
	Enabled      bool `json:"enabled" yaml:"enabled"`
	Workers      int  `json:"workers" yaml:"workers" validate:"gte=0"` // 0 means runtime.NumCPU()
	MinChunkSize int  `json:"min_chunk_size" yaml:"min_chunk_size" validate:"gte=1"`
	BatchWorkers int  `json:"batch_workers" yaml:"batch_workers" validate:"gte=0"` // 0 means runtime.NumCPU()
}

// DispatchConfig contains classification and checking settings.
type DispatchConfig struct {
	// GenericOnly skips every pattern predicate.
	GenericOnly bool `json:"generic_only" yaml:"generic_only"`

	// CheckDimensions rejects labels bound to inconsistent extents.
	CheckDimensions bool `json:"check_dimensions" yaml:"check_dimensions"`

	// PlanCache memoizes classifications per index-tuple triple.
	PlanCache bool `json:"plan_cache" yaml:"plan_cache"`

	// Verify re-evaluates every specialized result with the generic
	// evaluator and compares within VerifyTolerance.
	Verify          bool    `json:"verify" yaml:"verify"`
	VerifyTolerance float64 `json:"verify_tolerance" yaml:"verify_tolerance" validate:"gt=0"`

	// CheckFinite rejects outputs holding NaN or Inf.
	CheckFinite bool `json:"check_finite" yaml:"check_finite"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=text json"`
}

// Default returns the default configuration.
func Default() Config {
	par := parallel.DefaultConfig()
	return Config{
		Parallel: ParallelConfig{
			Enabled:      par.Enabled,
			Workers:      0,
			MinChunkSize: par.MinChunkSize,
			BatchWorkers: 0,
		},
		Dispatch: DispatchConfig{
			CheckDimensions: true,
			PlanCache:       true,
			VerifyTolerance: 1e-6,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from path, applies environment overrides and
// validates the result. Missing keys keep their defaults; an empty path
// yields the defaults plus overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		//nolint:gosec // G304: config path is supplied by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from EINSUM_* environment variables.
func applyEnv(cfg *Config) {
	if v, ok := envBool("EINSUM_GENERIC_ONLY"); ok {
		cfg.Dispatch.GenericOnly = v
	}
	if v, ok := envBool("EINSUM_CHECK_DIMENSIONS"); ok {
		cfg.Dispatch.CheckDimensions = v
	}
	if v, ok := envBool("EINSUM_VERIFY"); ok {
		cfg.Dispatch.Verify = v
	}
	if v, ok := envBool("EINSUM_CHECK_FINITE"); ok {
		cfg.Dispatch.CheckFinite = v
	}
	if v, ok := envBool("EINSUM_PARALLEL"); ok {
		cfg.Parallel.Enabled = v
	}
	if v := os.Getenv("EINSUM_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Parallel.Workers = i
		}
	}
	if v := os.Getenv("EINSUM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

func envBool(key string) (value, ok bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParallelFor returns the settings for the generic evaluator's worker loop.
func (c Config) ParallelFor() parallel.Config {
	if !c.Parallel.Enabled {
		return parallel.Sequential()
	}
	workers := c.Parallel.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return parallel.Config{
		Enabled:      workers > 1,
		NumWorkers:   workers,
		MinChunkSize: c.Parallel.MinChunkSize,
	}
}

// BatchLimit returns the number of batch positions evaluated concurrently.
func (c Config) BatchLimit() int {
	switch {
	case !c.Parallel.Enabled:
		return 1
	case c.Parallel.BatchWorkers > 0:
		return c.Parallel.BatchWorkers
	default:
		return runtime.NumCPU()
	}
}

// NewLogger builds a slog logger writing to w as configured.
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(c.Level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog level. Unknown names yield Info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
