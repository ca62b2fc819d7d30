package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"wfip/internal/report"
)

var (
	reportUIName string
	reportRender bool
	reportPR     int
	reportRepo   string
)

var reportCmd = &cobra.Command{
	Use:   "report [path]",
	Short: "Build a markdown compliance report, optionally posting it to a PR",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		uiName := reportUIName
		if uiName == "" {
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			uiName = filepath.Base(abs)
		}

		usages, err := newDetector().ScanDir(root, scanExtensions())
		if err != nil {
			return err
		}

		catalog := openCatalog()
		analysis := newAggregator(catalog).AnalyzeUI(uiName, usages)
		markdown := report.BuildMarkdown(analysis, usages, catalog)

		if reportPR > 0 {
			if reportRepo == "" {
				return fmt.Errorf("--repo is required when posting to a PR (owner/name)")
			}
			owner, repo, ok := splitRepo(reportRepo)
			if !ok {
				return fmt.Errorf("invalid --repo %q, expected owner/name", reportRepo)
			}
			client := report.NewGitHubClient(os.Getenv("GITHUB_TOKEN"))
			if err := client.CommentOnPR(cmd.Context(), owner, repo, reportPR, markdown); err != nil {
				return fmt.Errorf("failed to post PR comment: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted report to %s#%d\n", reportRepo, reportPR)
			return nil
		}

		if reportRender {
			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(80),
			)
			if err == nil {
				if rendered, err := renderer.Render(markdown); err == nil {
					fmt.Fprint(cmd.OutOrStdout(), rendered)
					return nil
				}
			}
			// fall through to raw markdown on renderer failure
		}

		fmt.Fprint(cmd.OutOrStdout(), markdown)
		return nil
	},
}

func splitRepo(full string) (owner, repo string, ok bool) {
	for i, r := range full {
		if r == '/' {
			owner, repo = full[:i], full[i+1:]
			return owner, repo, owner != "" && repo != ""
		}
	}
	return "", "", false
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportUIName, "ui-name", "", "Name to title the report with (defaults to the directory name)")
	reportCmd.Flags().BoolVar(&reportRender, "render", false, "Render the markdown in the terminal")
	reportCmd.Flags().IntVar(&reportPR, "pr", 0, "Pull request number to post the report to")
	reportCmd.Flags().StringVar(&reportRepo, "repo", "", "GitHub repository as owner/name (required with --pr)")
}
