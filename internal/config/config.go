// Package config provides configuration loading and validation for the
// matching service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kajiplatform/matching-service/internal/matching"
)

// Config is the service configuration, loadable from a JSON file with
// environment variable overrides for the connection strings.
type Config struct {
	// Server
	ListenAddr string `json:"listen_addr,omitempty"` // HTTP listen address
	JSONLogs   bool   `json:"json_logs,omitempty"`   // JSON log encoding instead of console
	Debug      bool   `json:"debug,omitempty"`       // Debug-level logging

	// Backends
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	RedisURL    string `json:"redis_url,omitempty"`    // Redis URL for the digest queue; empty = in-memory queue

	// Scoring
	Weights         matching.Weights `json:"weights,omitempty"`           // Score component weights
	MinMatchScore   float64          `json:"min_match_score,omitempty"`   // Shortlist threshold for recommendation rounds
	SimilarMinScore float64          `json:"similar_min_score,omitempty"` // Threshold for similar-posting rounds

	// Round ceilings
	CandidateCap int `json:"candidate_cap,omitempty"` // Max candidates pulled per round
	PostingCap   int `json:"posting_cap,omitempty"`   // Max postings pulled per round
	SimilarLimit int `json:"similar_limit,omitempty"` // Max alternatives per push

	// Urgent alerts
	MaxAlertRadiusKm float64 `json:"max_alert_radius_km,omitempty"` // Widest opt-in alert radius
	RecipientCap     int     `json:"recipient_cap,omitempty"`       // Max recipients pulled per alert round

	// Delivery
	Workers            int    `json:"workers,omitempty"`              // Fan-out worker pool size
	SendTimeoutSeconds int    `json:"send_timeout_seconds,omitempty"` // Per-send timeout
	DigestCron         string `json:"digest_cron,omitempty"`          // Cron spec for digest flushes
}

// Default returns the documented production defaults.
func Default() Config {
	return Config{
		ListenAddr:         ":8080",
		Weights:            matching.DefaultWeights(),
		MinMatchScore:      50,
		SimilarMinScore:    40,
		CandidateCap:       200,
		PostingCap:         100,
		SimilarLimit:       5,
		MaxAlertRadiusKm:   50,
		RecipientCap:       500,
		Workers:            8,
		SendTimeoutSeconds: 10,
		DigestCron:         "*/30 * * * *",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides the connection strings and listen address from the
// environment. Secrets come from the environment, never the config file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.MinMatchScore < 0 || c.MinMatchScore > 100 {
		return fmt.Errorf("config error: 'min_match_score' must be in [0, 100]")
	}
	if c.SimilarMinScore < 0 || c.SimilarMinScore > 100 {
		return fmt.Errorf("config error: 'similar_min_score' must be in [0, 100]")
	}
	if c.CandidateCap < 0 || c.PostingCap < 0 || c.SimilarLimit < 0 || c.RecipientCap < 0 {
		return fmt.Errorf("config error: round ceilings must be non-negative")
	}
	if c.MaxAlertRadiusKm <= 0 {
		return fmt.Errorf("config error: 'max_alert_radius_km' must be positive")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.SendTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'send_timeout_seconds' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. Zero means unset for every numeric field here; bools are not
// merged since unset and false cannot be told apart.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.DigestCron == "" {
		result.DigestCron = defaults.DigestCron
	}

	zero := matching.Weights{}
	if result.Weights == zero {
		result.Weights = defaults.Weights
	}
	if result.MinMatchScore == 0 {
		result.MinMatchScore = defaults.MinMatchScore
	}
	if result.SimilarMinScore == 0 {
		result.SimilarMinScore = defaults.SimilarMinScore
	}
	if result.CandidateCap == 0 {
		result.CandidateCap = defaults.CandidateCap
	}
	if result.PostingCap == 0 {
		result.PostingCap = defaults.PostingCap
	}
	if result.SimilarLimit == 0 {
		result.SimilarLimit = defaults.SimilarLimit
	}
	if result.MaxAlertRadiusKm == 0 {
		result.MaxAlertRadiusKm = defaults.MaxAlertRadiusKm
	}
	if result.RecipientCap == 0 {
		result.RecipientCap = defaults.RecipientCap
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.SendTimeoutSeconds == 0 {
		result.SendTimeoutSeconds = defaults.SendTimeoutSeconds
	}

	return result
}
