package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		setup     func()
		wantError bool
		errMsg    string
	}{
		{
			name: "valid configuration",
			setup: func() {
				viper.Set("db.driver", "sqlite")
				viper.Set("ci.min_compliance", 80.0)
				viper.Set("crawl.depth", 2)
				viper.Set("crawl.max_pages", 100)
				viper.Set("serve.port", 8080)
			},
			wantError: false,
		},
		{
			name: "unsupported db driver",
			setup: func() {
				viper.Set("db.driver", "mongodb")
			},
			wantError: true,
			errMsg:    "db.driver must be sqlite or postgres",
		},
		{
			name: "compliance above 100",
			setup: func() {
				viper.Set("ci.min_compliance", 120.0)
			},
			wantError: true,
			errMsg:    "ci.min_compliance must be between 0 and 100",
		},
		{
			name: "negative crawl depth",
			setup: func() {
				viper.Set("crawl.depth", -1)
			},
			wantError: true,
			errMsg:    "crawl.depth must not be negative",
		},
		{
			name: "zero max pages",
			setup: func() {
				viper.Set("crawl.max_pages", 0)
			},
			wantError: true,
			errMsg:    "crawl.max_pages must be positive",
		},
		{
			name: "port out of range",
			setup: func() {
				viper.Set("serve.port", 70000)
			},
			wantError: true,
			errMsg:    "serve.port must be between 1 and 65535",
		},
		{
			name: "metrics port out of range",
			setup: func() {
				viper.Set("metrics_port", 0)
			},
			wantError: true,
			errMsg:    "metrics_port must be between 1 and 65535",
		},
		{
			name:      "empty configuration is valid",
			setup:     func() {},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()
			tt.setup()

			err := ValidateConfig()
			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateConfigCollectsAllErrors(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("db.driver", "oracle")
	viper.Set("ci.min_compliance", -5.0)

	err := ValidateConfig()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "db.driver") || !strings.Contains(err.Error(), "ci.min_compliance") {
		t.Errorf("expected both failures reported, got: %v", err)
	}
}
