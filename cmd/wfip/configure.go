package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactively write a .wfip.yaml config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		answers := struct {
			Driver        string
			DSN           string
			MinCompliance float64
			SlackEnabled  bool
			SlackChannel  string
		}{}

		questions := []*survey.Question{
			{
				Name: "driver",
				Prompt: &survey.Select{
					Message: "Database driver:",
					Options: []string{"sqlite", "postgres"},
					Default: "sqlite",
				},
			},
			{
				Name: "dsn",
				Prompt: &survey.Input{
					Message: "Database connection string:",
					Default: ".wfip.db",
					Help:    "File path for sqlite, DSN for postgres",
				},
			},
			{
				Name: "mincompliance",
				Prompt: &survey.Input{
					Message: "CI minimum compliance (%):",
					Default: "80",
				},
			},
			{
				Name: "slackenabled",
				Prompt: &survey.Confirm{
					Message: "Enable Slack notifications?",
					Default: false,
				},
			},
		}

		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}

		if answers.SlackEnabled {
			if err := survey.AskOne(&survey.Input{
				Message: "Slack channel:",
				Default: "#general",
			}, &answers.SlackChannel); err != nil {
				return err
			}
		}

		viper.Set("db.driver", answers.Driver)
		viper.Set("db.dsn", answers.DSN)
		viper.Set("ci.min_compliance", answers.MinCompliance)
		viper.Set("notifications.slack.enabled", answers.SlackEnabled)
		if answers.SlackChannel != "" {
			viper.Set("notifications.slack.channel", answers.SlackChannel)
		}

		if err := viper.WriteConfigAs(".wfip.yaml"); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote .wfip.yaml")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
