package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration from file and environment variables.
func Load(cfgFile string) {
	// explicit .env loading; a missing .env is fine
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config in the working directory with name ".wfip".
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wfip")
	}

	viper.SetEnvPrefix("WFIP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// Storage
	viper.SetDefault("db.driver", "sqlite")
	viper.SetDefault("db.dsn", ".wfip.db")

	// Baseline catalog and market data
	viper.SetDefault("baseline.cache_path", ".wfip/baseline.json")
	viper.SetDefault("market.cache_path", ".wfip/market.json")

	// Scanning
	viper.SetDefault("scan.extensions", []string{
		".js", ".jsx", ".ts", ".tsx", ".css", ".scss", ".sass", ".html", ".vue", ".svelte",
	})
	viper.SetDefault("crawl.depth", 1)
	viper.SetDefault("crawl.max_pages", 50)

	// CI gate
	viper.SetDefault("ci.min_compliance", 80.0)
	viper.SetDefault("ci.fail_on_deprecated", false)

	// Server
	viper.SetDefault("serve.port", 8080)
	viper.SetDefault("metrics_port", 2112)
	viper.SetDefault("verbose", false)

	// Notification defaults
	slackEnabled := false
	if os.Getenv("SLACK_BOT_USER_TOKEN") != "" || os.Getenv("SLACK_WEBHOOK_URL") != "" {
		slackEnabled = true
	}
	viper.SetDefault("notifications.slack.enabled", slackEnabled)
	viper.SetDefault("notifications.slack.channel", "#general")
	viper.SetDefault("notifications.teams.enabled", os.Getenv("TEAMS_WEBHOOK_URL") != "")
	viper.SetDefault("notifications.events.on_scan_complete", true)
	viper.SetDefault("notifications.events.on_low_compliance", true)
	viper.SetDefault("notifications.events.on_high_risk", true)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
