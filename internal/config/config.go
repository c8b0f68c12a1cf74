// Package config provides configuration management for the Video Audit agent.
// Configuration is loaded from environment variables with sensible defaults;
// scoring heuristics can additionally be overridden from a YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultPort          = 8790
	DefaultLogLevel      = "info"
	DefaultDataDir       = ".videoaudit"
	DefaultUploadTimeout = 60 * time.Second

	// Environment variable names
	EnvPort           = "AUDIT_PORT"
	EnvLogLevel       = "AUDIT_LOG_LEVEL"
	EnvDataDir        = "AUDIT_DATA_DIR"
	EnvAnalysisURL    = "AUDIT_ANALYSIS_URL"
	EnvUploadTimeoutS = "AUDIT_UPLOAD_TIMEOUT_S"
	EnvScoringConfig  = "AUDIT_SCORING_CONFIG"
	EnvDigestSchedule = "AUDIT_DIGEST_SCHEDULE"

	// Database filename
	DBFilename = "videoaudit.db"

	// Cron spec for the nightly history digest
	DefaultDigestSchedule = "@daily"
)

// Scoring holds the product heuristics behind the retention score. The
// defaults mirror the calibrated fallback band: never failing, never
// perfect. They are deliberately configuration, not inferred intent.
type Scoring struct {
	BaseScore      int `yaml:"base_score"`
	PenaltyHigh    int `yaml:"penalty_high"`
	PenaltyMedium  int `yaml:"penalty_medium"`
	PenaltyLow     int `yaml:"penalty_low"`
	MinScore       int `yaml:"min_score"`
	MaxScore       int `yaml:"max_score"`
	ReadyThreshold int `yaml:"ready_threshold"`
}

// DefaultScoring returns the built-in scoring heuristics.
func DefaultScoring() Scoring {
	return Scoring{
		BaseScore:      90,
		PenaltyHigh:    5,
		PenaltyMedium:  3,
		PenaltyLow:     1,
		MinScore:       50,
		MaxScore:       98,
		ReadyThreshold: 85,
	}
}

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	AnalysisURL() string
	UploadTimeout() time.Duration
	DigestSchedule() string
	Scoring() Scoring
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port           int
	logLevel       string
	dataDir        string
	analysisURL    string
	uploadTimeout  time.Duration
	digestSchedule string
	scoring        Scoring
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:           DefaultPort,
		logLevel:       DefaultLogLevel,
		dataDir:        defaultDataDir(),
		uploadTimeout:  DefaultUploadTimeout,
		digestSchedule: DefaultDigestSchedule,
		scoring:        DefaultScoring(),
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.analysisURL = os.Getenv(EnvAnalysisURL)

	if ts := os.Getenv(EnvUploadTimeoutS); ts != "" {
		secs, err := strconv.Atoi(ts)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvUploadTimeoutS, err)
		}
		if secs < 1 {
			return nil, fmt.Errorf("invalid %s: timeout must be positive", EnvUploadTimeoutS)
		}
		cfg.uploadTimeout = time.Duration(secs) * time.Second
	}

	if ds := os.Getenv(EnvDigestSchedule); ds != "" {
		cfg.digestSchedule = ds
	}

	scoring, err := LoadScoring(os.Getenv(EnvScoringConfig))
	if err != nil {
		return nil, err
	}
	cfg.scoring = scoring

	return cfg, nil
}

// LoadScoring reads scoring overrides from a YAML file. An empty path or a
// missing file yields the defaults; fields left at zero keep their default.
func LoadScoring(path string) (Scoring, error) {
	s := DefaultScoring()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read scoring config: %w", err)
	}

	var override Scoring
	if err := yaml.Unmarshal(data, &override); err != nil {
		return s, fmt.Errorf("parse scoring config %s: %w", path, err)
	}

	if override.BaseScore > 0 {
		s.BaseScore = override.BaseScore
	}
	if override.PenaltyHigh > 0 {
		s.PenaltyHigh = override.PenaltyHigh
	}
	if override.PenaltyMedium > 0 {
		s.PenaltyMedium = override.PenaltyMedium
	}
	if override.PenaltyLow > 0 {
		s.PenaltyLow = override.PenaltyLow
	}
	if override.MinScore > 0 {
		s.MinScore = override.MinScore
	}
	if override.MaxScore > 0 {
		s.MaxScore = override.MaxScore
	}
	if override.ReadyThreshold > 0 {
		s.ReadyThreshold = override.ReadyThreshold
	}

	if s.MinScore > s.MaxScore {
		return s, fmt.Errorf("invalid scoring config %s: min_score %d exceeds max_score %d", path, s.MinScore, s.MaxScore)
	}

	return s, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// AnalysisURL returns the base URL of the analysis service. Empty means
// the agent runs in offline mode with a stub client.
func (c *EnvConfig) AnalysisURL() string {
	return c.analysisURL
}

// UploadTimeout returns the wall-clock budget for one submission
func (c *EnvConfig) UploadTimeout() time.Duration {
	return c.uploadTimeout
}

// DigestSchedule returns the cron spec for the history digest job
func (c *EnvConfig) DigestSchedule() string {
	return c.digestSchedule
}

// Scoring returns the active scoring heuristics
func (c *EnvConfig) Scoring() Scoring {
	return c.scoring
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
