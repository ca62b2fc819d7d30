package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	// Validate db.driver (if set, must be a supported backend)
	if viper.IsSet("db.driver") {
		driver := viper.GetString("db.driver")
		switch driver {
		case "sqlite", "sqlite3", "postgres", "postgresql", "":
		default:
			errors = append(errors, fmt.Sprintf("db.driver must be sqlite or postgres, got: %q", driver))
		}
	}

	// Validate ci.min_compliance (must be a percentage)
	if viper.IsSet("ci.min_compliance") {
		min := viper.GetFloat64("ci.min_compliance")
		if min < 0 || min > 100 {
			errors = append(errors, fmt.Sprintf("ci.min_compliance must be between 0 and 100, got: %g", min))
		}
	}

	// Validate crawl limits (if set, must be positive)
	if viper.IsSet("crawl.depth") {
		depth := viper.GetInt("crawl.depth")
		if depth < 0 {
			errors = append(errors, fmt.Sprintf("crawl.depth must not be negative, got: %d", depth))
		}
	}
	if viper.IsSet("crawl.max_pages") {
		pages := viper.GetInt("crawl.max_pages")
		if pages <= 0 {
			errors = append(errors, fmt.Sprintf("crawl.max_pages must be positive, got: %d", pages))
		}
	}

	// Validate port numbers (if set, must be in valid range 1-65535)
	if viper.IsSet("serve.port") {
		port := viper.GetInt("serve.port")
		if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("serve.port must be between 1 and 65535, got: %d", port))
		}
	}
	if viper.IsSet("metrics_port") {
		port := viper.GetInt("metrics_port")
		if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("metrics_port must be between 1 and 65535, got: %d", port))
		}
	}

	if len(errors) > 0 {
		errorMsg := errors[0]
		for i := 1; i < len(errors); i++ {
			errorMsg += "\n  " + errors[i]
		}
		return fmt.Errorf("configuration validation failed:\n  %s", errorMsg)
	}

	return nil
}

// ValidateAndExit validates the configuration and exits with a non-zero code if validation fails.
// This is a convenience function that prints errors to stderr and exits.
func ValidateAndExit() {
	if err := ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
