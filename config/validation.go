package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateConfig checks that the loaded configuration is usable.
func ValidateConfig(cfg *Config) error {
	var problems []string

	if cfg.ServerPort == "" {
		problems = append(problems, "SERVER_PORT is required")
	} else if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		problems = append(problems, fmt.Sprintf("SERVER_PORT must be numeric, got %q", cfg.ServerPort))
	}

	if cfg.DBHost == "" {
		problems = append(problems, "DB_HOST is required")
	}
	if cfg.DBPort == "" {
		problems = append(problems, "DB_PORT is required")
	}
	if cfg.DBUser == "" {
		problems = append(problems, "DB_USER is required")
	}
	if cfg.DBName == "" {
		problems = append(problems, "DB_NAME is required")
	}

	switch cfg.DBSSLMode {
	case "disable", "require", "verify-ca", "verify-full", "prefer", "allow":
	default:
		problems = append(problems, fmt.Sprintf("DB_SSL_MODE %q is not a valid sslmode", cfg.DBSSLMode))
	}

	if cfg.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if cfg.JWTExpiry <= 0 {
		problems = append(problems, "JWT_EXPIRY must be positive")
	}
	if cfg.ShoppingListTTL < 0 {
		problems = append(problems, "SHOPPING_LIST_TTL must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnvList(key string, fallback []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
