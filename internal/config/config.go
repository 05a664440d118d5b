package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/iamasit07/knock/backend/internal/domain"
)

type Config struct {
	Port               string
	Environment        string
	LogLevel           string
	AllowedOrigins     []string
	FrontendURL        string
	SessionIdleTimeout time.Duration
	FinishedSessionTTL time.Duration
	CleanupInterval    time.Duration
	Rules              domain.Rules
}

var AppConfig *Config

// ErrInvalidConfig marks a setting that parsed but cannot be used.
const ErrInvalidConfig = domain.Error("invalid configuration")

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func LoadConfig() (*Config, error) {
	port := GetEnv("PORT", "8080")
	environment := GetEnv("ENVIRONMENT", "development")
	logLevel := GetEnv("LOG_LEVEL", "info")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOriginsStr := GetEnv("ALLOWED_ORIGINS", "")

	allowedOrigins := []string{frontendURL}
	if allowedOriginsStr != "" {
		extras := strings.Split(allowedOriginsStr, ",")
		for _, origin := range extras {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	// Session lifetimes
	idleMin := GetEnvAsInt("SESSION_IDLE_TIMEOUT_MINUTES", 24*60)
	finishedMin := GetEnvAsInt("FINISHED_SESSION_TTL_MINUTES", 60)
	cleanupMin := GetEnvAsInt("CLEANUP_INTERVAL_MINUTES", 60)

	// Board rules: defaults, then the YAML file, then env overrides
	rules := domain.DefaultRules()
	if path := GetEnv("RULES_FILE", ""); path != "" {
		fileRules, err := LoadRulesFile(path, rules)
		if err != nil {
			return nil, err
		}
		rules = fileRules
	}
	rules.Rows = GetEnvAsInt("BOARD_ROWS", rules.Rows)
	rules.Columns = GetEnvAsInt("BOARD_COLUMNS", rules.Columns)
	rules.MaxStackHeight = GetEnvAsInt("MAX_STACK_HEIGHT", rules.MaxStackHeight)
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	durations := []struct {
		key     string
		minutes int
	}{
		{"SESSION_IDLE_TIMEOUT_MINUTES", idleMin},
		{"FINISHED_SESSION_TTL_MINUTES", finishedMin},
		{"CLEANUP_INTERVAL_MINUTES", cleanupMin},
	}
	for _, d := range durations {
		if d.minutes <= 0 {
			return nil, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, d.key, d.minutes)
		}
	}

	AppConfig = &Config{
		Port:               port,
		Environment:        environment,
		LogLevel:           logLevel,
		AllowedOrigins:     allowedOrigins,
		FrontendURL:        frontendURL,
		SessionIdleTimeout: time.Duration(idleMin) * time.Minute,
		FinishedSessionTTL: time.Duration(finishedMin) * time.Minute,
		CleanupInterval:    time.Duration(cleanupMin) * time.Minute,
		Rules:              rules,
	}

	return AppConfig, nil
}

// LoadRulesFile reads a YAML rules file. Keys missing from the file keep the
// values in base.
func LoadRulesFile(path string, base domain.Rules) (domain.Rules, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	rules := base
	if err := yaml.Unmarshal(content, &rules); err != nil {
		return base, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rules, nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
