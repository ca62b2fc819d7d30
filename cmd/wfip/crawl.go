package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wfip/internal/crawl"
	"wfip/internal/db"
	"wfip/internal/heatmap"
	"wfip/internal/metrics"
	"wfip/internal/model"
	"wfip/internal/notify"
)

var (
	crawlUIName string
	crawlDepth  int
	crawlPages  int
	crawlJSON   bool
	crawlNoSave bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Crawl a live site and scan it for web feature usage",
	Long: `Crawl fetches a page and its same-origin links breadth-first, runs
signature detection over embedded styles, scripts, and markup, and scores
the site against the Baseline catalog.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startURL := args[0]
		uiName := crawlUIName
		if uiName == "" {
			uiName = startURL
		}

		crawler := crawl.New(newDetector())
		if cmd.Flags().Changed("depth") {
			crawler.MaxDepth = crawlDepth
		} else {
			crawler.MaxDepth = viper.GetInt("crawl.depth")
		}
		if cmd.Flags().Changed("max-pages") {
			crawler.MaxPages = crawlPages
		} else {
			crawler.MaxPages = viper.GetInt("crawl.max_pages")
		}

		pages, err := crawler.Crawl(cmd.Context(), startURL)
		if err != nil {
			return err
		}

		var usages []model.FeatureUsage
		for _, page := range pages {
			usages = append(usages, page.Usages...)
		}

		catalog := openCatalog()
		analysis := newAggregator(catalog).AnalyzeUI(uiName, usages)

		if !crawlNoSave {
			store, err := openStore()
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer store.Close()
			if _, err := store.SaveScan(analysis, usages, startURL); err != nil {
				return fmt.Errorf("failed to save scan: %w", err)
			}
		}

		metrics.ScansCompleted.WithLabelValues(db.ScanTypeCrawl).Inc()
		metrics.UsagesDetected.Add(float64(len(usages)))

		manager := notify.NewManager(nil)
		manager.NotifyScanComplete(cmd.Context(), analysis, heatmap.LowComplianceThreshold)

		if crawlJSON {
			out := map[string]any{
				"analysis":      analysis,
				"pages_crawled": len(pages),
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		fmt.Fprintf(w, "Site:\t%s\n", uiName)
		fmt.Fprintf(w, "Pages crawled:\t%d\n", len(pages))
		fmt.Fprintf(w, "Usages detected:\t%d\n", len(usages))
		fmt.Fprintf(w, "Distinct features:\t%d\n", analysis.TotalFeatures)
		fmt.Fprintf(w, "Compliance score:\t%.2f%%\n", analysis.ComplianceScore)
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	crawlCmd.Flags().StringVar(&crawlUIName, "ui-name", "", "Name to record the crawl under (defaults to the URL)")
	crawlCmd.Flags().IntVar(&crawlDepth, "depth", crawl.DefaultMaxDepth, "Link depth to follow from the start URL")
	crawlCmd.Flags().IntVar(&crawlPages, "max-pages", crawl.DefaultMaxPages, "Maximum pages to fetch")
	crawlCmd.Flags().BoolVar(&crawlJSON, "json", false, "Output JSON instead of a table")
	crawlCmd.Flags().BoolVar(&crawlNoSave, "no-save", false, "Do not persist the crawl to the database")
}
