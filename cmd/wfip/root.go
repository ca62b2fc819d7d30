package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wfip/internal/config"
	"wfip/internal/metrics"
	"wfip/internal/telemetry"
)

var exit = os.Exit
var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wfip",
	Short: "WFIP: Web Feature Intelligence Platform",
	Long: `WFIP scans frontend codebases and live sites for modern web feature
usage, scores them against Baseline browser support data, and reports
adoption risk across an organization's UIs.`,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n=== CRITICAL ERROR: Command Execution Panic ===\n")
			fmt.Fprintf(os.Stderr, "Error: %v\n", r)
			exit(1)
		}
	}()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'wfip --help' for usage.")
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.wfip.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("db", "", "Database connection string (file path for sqlite, DSN for postgres)")
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver (sqlite or postgres)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("db.dsn", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("db.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
}

var metricsRegistered bool

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.Load(cfgFile)

	if err := config.ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}

	telemetry.InitLogger(viper.GetBool("verbose"), "")

	if !metricsRegistered {
		metrics.Register(prometheus.DefaultRegisterer)
		metricsRegistered = true
	}
}
