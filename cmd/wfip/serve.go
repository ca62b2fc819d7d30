package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wfip/internal/crawl"
	"wfip/internal/telemetry"
	"wfip/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API server",
	Long: `Serve exposes scanning, risk scoring, and the org heatmap over a local
JSON API. Prometheus metrics are served on a separate port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		catalog := openCatalog()
		crawler := crawl.New(newDetector())
		crawler.MaxDepth = viper.GetInt("crawl.depth")
		crawler.MaxPages = viper.GetInt("crawl.max_pages")

		port := servePort
		if !cmd.Flags().Changed("port") {
			port = viper.GetInt("serve.port")
		}

		go func() {
			addr := fmt.Sprintf(":%d", viper.GetInt("metrics_port"))
			if err := telemetry.StartMetricsServer(addr); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: metrics server failed: %v\n", err)
			}
		}()

		server := web.NewServer(
			store,
			catalog,
			newCompatScorer(catalog),
			newRiskScorer(catalog),
			newAggregator(catalog),
			crawler,
			port,
		)
		return server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
}
