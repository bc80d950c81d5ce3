// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// SMTP settings
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	Recipient    string

	// Digest settings
	SourcesPath         string
	DigestSize          int
	Lookback            time.Duration
	SummaryMaxLen       int
	SimilarityThreshold float64
	DedupWindow         time.Duration
	KeywordWeights      map[string]float64
	TrackingParams      []string
	MaxFreshnessPoints  float64
	FreshnessDecay      float64 // points lost per hour of age

	// Insights settings
	GeminiAPIKey       string
	MaxInsightRequests int // maximum Gemini requests per run (0 = disabled)

	// Collector settings
	FetchConcurrency int
	FetchTimeout     time.Duration
	FetchPace        time.Duration // minimum interval between requests to one host
	RetryAttempts    int
	RetryDelay       time.Duration
	UserAgent        string

	// App settings
	Debug  bool
	DryRun bool // render the briefing to stdout instead of sending mail
}

// defaultKeywordWeights is the starting relevance vocabulary. Weights are
// tunable via KEYWORD_WEIGHTS ("zero-day:10,breach:8,...").
func defaultKeywordWeights() map[string]float64 {
	return map[string]float64{
		"zero-day":      10,
		"breach":        8,
		"ransomware":    7,
		"critical":      6,
		"exploit":       6,
		"vulnerability": 5,
		"malware":       4,
		"patch":         3,
	}
}

// defaultTrackingParams is the query-parameter denylist applied during URL
// canonicalization. Entries ending in '*' match by prefix.
func defaultTrackingParams() []string {
	return []string{"utm_*", "ref", "ref_src", "fbclid", "gclid", "mc_cid", "mc_eid", "source"}
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		SMTPHost:            "smtp.gmail.com",
		SMTPPort:            587,
		SourcesPath:         "configs/sources.yaml",
		DigestSize:          10,
		Lookback:            24 * time.Hour,
		SummaryMaxLen:       400,
		SimilarityThreshold: 0.6,
		DedupWindow:         6 * time.Hour,
		KeywordWeights:      defaultKeywordWeights(),
		TrackingParams:      defaultTrackingParams(),
		MaxFreshnessPoints:  5,
		FreshnessDecay:      0.2,
		MaxInsightRequests:  12,
		FetchConcurrency:    4,
		FetchTimeout:        30 * time.Second,
		FetchPace:           500 * time.Millisecond,
		RetryAttempts:       3,
		RetryDelay:          5 * time.Second,
		UserAgent:           "cyberbrief/1.0",
	}

	// Load from environment
	cfg.SMTPHost = getEnvOrDefault("SMTP_SERVER", cfg.SMTPHost)
	cfg.SMTPPort = getEnvIntOrDefault("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.Recipient = os.Getenv("RECIPIENT_EMAIL")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.SourcesPath = getEnvOrDefault("SOURCES_PATH", cfg.SourcesPath)
	cfg.DigestSize = getEnvIntOrDefault("DIGEST_SIZE", cfg.DigestSize)
	cfg.SummaryMaxLen = getEnvIntOrDefault("SUMMARY_MAX_LEN", cfg.SummaryMaxLen)
	cfg.MaxInsightRequests = getEnvIntOrDefault("MAX_INSIGHT_REQUESTS", cfg.MaxInsightRequests)
	cfg.FetchConcurrency = getEnvIntOrDefault("FETCH_CONCURRENCY", cfg.FetchConcurrency)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.UserAgent = getEnvOrDefault("USER_AGENT", cfg.UserAgent)

	if v := getEnvIntOrDefault("LOOKBACK_HOURS", 0); v > 0 {
		cfg.Lookback = time.Duration(v) * time.Hour
	}
	if v := getEnvIntOrDefault("DEDUP_WINDOW_HOURS", 0); v > 0 {
		cfg.DedupWindow = time.Duration(v) * time.Hour
	}
	if v := getEnvIntOrDefault("FETCH_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.FetchTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("RETRY_DELAY_SECONDS", 0); v > 0 {
		cfg.RetryDelay = time.Duration(v) * time.Second
	}

	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			cfg.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("MAX_FRESHNESS_POINTS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.MaxFreshnessPoints = f
		}
	}
	if v := os.Getenv("FRESHNESS_DECAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.FreshnessDecay = f
		}
	}

	if v := os.Getenv("KEYWORD_WEIGHTS"); v != "" {
		weights, err := parseKeywordWeights(v)
		if err != nil {
			return nil, fmt.Errorf("invalid KEYWORD_WEIGHTS: %w", err)
		}
		cfg.KeywordWeights = weights
	}
	if v := os.Getenv("TRACKING_PARAMS"); v != "" {
		cfg.TrackingParams = splitAndTrim(v)
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}
	if os.Getenv("DRY_RUN") == "true" {
		cfg.DryRun = true
	}

	return cfg, cfg.Validate()
}

// parseKeywordWeights parses "keyword:weight,keyword:weight" pairs.
func parseKeywordWeights(s string) (map[string]float64, error) {
	weights := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kw, val, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("missing weight in %q", pair)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("bad weight in %q", pair)
		}
		weights[strings.ToLower(strings.TrimSpace(kw))] = w
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("no keyword:weight pairs")
	}
	return weights, nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.DigestSize <= 0 {
		return fmt.Errorf("DIGEST_SIZE must be positive")
	}
	if c.Lookback <= 0 {
		return fmt.Errorf("LOOKBACK_HOURS must be positive")
	}
	if len(c.KeywordWeights) == 0 {
		return fmt.Errorf("keyword weights must not be empty")
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	if c.SummaryMaxLen <= 0 {
		return fmt.Errorf("SUMMARY_MAX_LEN must be positive")
	}
	if !c.DryRun {
		if c.SMTPUser == "" {
			return fmt.Errorf("SMTP_USER is required")
		}
		if c.SMTPPassword == "" {
			return fmt.Errorf("SMTP_PASSWORD is required")
		}
		if c.Recipient == "" {
			return fmt.Errorf("RECIPIENT_EMAIL is required")
		}
	}
	return nil
}
