package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wfip/internal/report"
)

var (
	ciMinCompliance    float64
	ciFailOnDeprecated bool
	ciUIName           string
)

var ciCmd = &cobra.Command{
	Use:   "ci [path]",
	Short: "Scan a source tree and fail if it misses the compliance gate",
	Long: `CI scans a source tree like 'wfip scan' and then applies the compliance
gate. The process exits nonzero when the gate fails, which is what makes
it usable as a pipeline step.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		uiName := ciUIName
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

		gate := report.Gate{
			MinCompliance:    ciMinCompliance,
			FailOnDeprecated: ciFailOnDeprecated,
		}
		if !cmd.Flags().Changed("min-compliance") {
			gate.MinCompliance = viper.GetFloat64("ci.min_compliance")
		}
		if !cmd.Flags().Changed("fail-on-deprecated") {
			gate.FailOnDeprecated = viper.GetBool("ci.fail_on_deprecated")
		}

		passed, verdict := gate.Check(analysis)
		fmt.Fprintln(cmd.OutOrStdout(), verdict)
		if !passed {
			// SilenceUsage: a failed gate is not a usage error
			cmd.SilenceUsage = true
			return fmt.Errorf("compliance gate failed for %s", uiName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ciCmd)
	ciCmd.Flags().Float64Var(&ciMinCompliance, "min-compliance", report.DefaultMinCompliance, "Minimum compliance percentage to pass")
	ciCmd.Flags().BoolVar(&ciFailOnDeprecated, "fail-on-deprecated", false, "Fail when any deprecated feature is in use")
	ciCmd.Flags().StringVar(&ciUIName, "ui-name", "", "Name reported in the verdict (defaults to the directory name)")
}
