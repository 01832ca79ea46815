// Package config reads pipeline configuration from the environment with
// sensible defaults. A .env file in the working directory is honored when
// present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
)

// Config holds all pipeline configuration.
type Config struct {
	Source      SourceConfig
	Labeling    LabelingConfig
	Filter      FilterConfig
	Fingerprint FingerprintConfig
	Output      OutputConfig
	LogLevel    string
}

// SourceConfig selects and parameterizes the extraction provider.
type SourceConfig struct {
	Provider string `validate:"required"`
	DSN      string // connection string or file path, depending on provider
}

// LabelingConfig holds the potency thresholds for stage 1.
type LabelingConfig struct {
	DefaultThreshold float64 `validate:"gt=0"`
	RulesPath        string  // optional YAML rules file replacing the built-in family rules
}

// FilterConfig holds the target qualification thresholds for stage 2.
type FilterConfig struct {
	MinActive   int `validate:"gte=1"`
	MinInactive int `validate:"gte=1"`
	MinDocs     int `validate:"gte=1"`
}

// FingerprintConfig holds the feature extraction parameters for stage 3.
type FingerprintConfig struct {
	Radius  int `validate:"gte=0"`
	NumBits int `validate:"gt=0"`
	Workers int `validate:"gte=0"` // 0 means NumCPU
}

// OutputConfig holds artifact and checkpoint destinations.
type OutputConfig struct {
	Path          string `validate:"required"`
	CheckpointDir string // empty disables stage dumps
}

// Load reads configuration from the environment (after loading .env if one
// exists) and validates it.
func Load() (Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := Config{
		Source: SourceConfig{
			Provider: getenv("CHEMBL_MT_SOURCE", "sqlite"),
			DSN:      os.Getenv("CHEMBL_MT_DSN"),
		},
		Labeling: LabelingConfig{
			DefaultThreshold: getenvFloat("CHEMBL_MT_DEFAULT_THRESHOLD", 1000),
			RulesPath:        os.Getenv("CHEMBL_MT_RULES"),
		},
		Filter: FilterConfig{
			MinActive:   getenvInt("CHEMBL_MT_MIN_ACTIVE", 100),
			MinInactive: getenvInt("CHEMBL_MT_MIN_INACTIVE", 100),
			MinDocs:     getenvInt("CHEMBL_MT_MIN_DOCS", 2),
		},
		Fingerprint: FingerprintConfig{
			Radius:  getenvInt("CHEMBL_MT_FP_RADIUS", 2),
			NumBits: getenvInt("CHEMBL_MT_FP_BITS", 1024),
			Workers: getenvInt("CHEMBL_MT_FP_WORKERS", 0),
		},
		Output: OutputConfig{
			Path:          getenv("CHEMBL_MT_OUT", "mt_data.h5"),
			CheckpointDir: os.Getenv("CHEMBL_MT_CHECKPOINT_DIR"),
		},
		LogLevel: getenv("CHEMBL_MT_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct-level constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
