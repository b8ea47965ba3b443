package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the vaani dialogue service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	// Dialogue turn-taking knobs.
	WakePhrases         []string
	LanguageHint        string
	SilenceTimeout      time.Duration
	WakeAckTimeout      time.Duration
	SettleDelay         time.Duration
	RetryMax            int
	RetryBaseDelay      time.Duration
	HighConfidence      float64
	HistoryContextLimit int

	// Barge-in amplitude monitor.
	BargeInEnabled          bool
	BargeInSpeechThreshold  float64
	BargeInSilenceThreshold float64

	// External collaborators.
	InterpreterURL string
	ResponderURL   string
	DatabaseURL    string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                envOrDefault("VAANI_BIND_ADDR", ":8080"),
		MetricsNamespace:        envOrDefault("VAANI_METRICS_NAMESPACE", "vaani"),
		AllowAnyOrigin:          false,
		WakePhrases:             splitPhrases(envOrDefault("VAANI_WAKE_PHRASES", "hey vaani,ok vaani,vaani")),
		LanguageHint:            envOrDefault("VAANI_LANGUAGE_HINT", "en-IN"),
		InterpreterURL:          trimmedEnv("VAANI_INTERPRETER_URL"),
		ResponderURL:            trimmedEnv("VAANI_RESPONDER_URL"),
		DatabaseURL:             trimmedEnv("DATABASE_URL"),
		ShutdownTimeout:         15 * time.Second,
		SilenceTimeout:          8 * time.Second,
		WakeAckTimeout:          3 * time.Second,
		SettleDelay:             850 * time.Millisecond,
		RetryMax:                3,
		RetryBaseDelay:          300 * time.Millisecond,
		HighConfidence:          0.75,
		HistoryContextLimit:     8,
		BargeInEnabled:          true,
		BargeInSpeechThreshold:  0.015,
		BargeInSilenceThreshold: 0.008,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("VAANI_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SilenceTimeout, err = durationFromEnv("VAANI_SILENCE_TIMEOUT", cfg.SilenceTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.WakeAckTimeout, err = durationFromEnv("VAANI_WAKE_ACK_TIMEOUT", cfg.WakeAckTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SettleDelay, err = durationFromEnv("VAANI_SETTLE_DELAY", cfg.SettleDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.RetryBaseDelay, err = durationFromEnv("VAANI_RETRY_BASE_DELAY", cfg.RetryBaseDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.RetryMax, err = intFromEnv("VAANI_RETRY_MAX", cfg.RetryMax)
	if err != nil {
		return Config{}, err
	}
	cfg.HighConfidence, err = floatFromEnv("VAANI_HIGH_CONFIDENCE", cfg.HighConfidence)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryContextLimit, err = intFromEnv("VAANI_HISTORY_CONTEXT_LIMIT", cfg.HistoryContextLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("VAANI_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.BargeInEnabled, err = boolFromEnv("VAANI_BARGE_IN_ENABLED", cfg.BargeInEnabled)
	if err != nil {
		return Config{}, err
	}
	cfg.BargeInSpeechThreshold, err = floatFromEnv("VAANI_BARGE_IN_SPEECH_THRESHOLD", cfg.BargeInSpeechThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.BargeInSilenceThreshold, err = floatFromEnv("VAANI_BARGE_IN_SILENCE_THRESHOLD", cfg.BargeInSilenceThreshold)
	if err != nil {
		return Config{}, err
	}

	if len(cfg.WakePhrases) == 0 {
		return Config{}, fmt.Errorf("VAANI_WAKE_PHRASES must name at least one phrase")
	}
	if cfg.SilenceTimeout < time.Second {
		return Config{}, fmt.Errorf("VAANI_SILENCE_TIMEOUT must be at least 1s")
	}
	if cfg.WakeAckTimeout <= 0 || cfg.WakeAckTimeout >= cfg.SilenceTimeout {
		return Config{}, fmt.Errorf("VAANI_WAKE_ACK_TIMEOUT must be positive and shorter than the silence timeout")
	}
	if cfg.SettleDelay <= 0 {
		return Config{}, fmt.Errorf("VAANI_SETTLE_DELAY must be positive")
	}
	if cfg.RetryMax <= 0 {
		return Config{}, fmt.Errorf("VAANI_RETRY_MAX must be positive")
	}
	if cfg.RetryBaseDelay <= 0 {
		return Config{}, fmt.Errorf("VAANI_RETRY_BASE_DELAY must be positive")
	}
	if cfg.HighConfidence <= 0 || cfg.HighConfidence > 1 {
		return Config{}, fmt.Errorf("VAANI_HIGH_CONFIDENCE must be in (0,1]")
	}
	if cfg.HistoryContextLimit <= 0 {
		return Config{}, fmt.Errorf("VAANI_HISTORY_CONTEXT_LIMIT must be positive")
	}
	if cfg.BargeInSilenceThreshold >= cfg.BargeInSpeechThreshold {
		return Config{}, fmt.Errorf("VAANI_BARGE_IN_SILENCE_THRESHOLD must be below the speech threshold")
	}

	return cfg, nil
}

func splitPhrases(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
