package notify

import (
	"context"
	"os"

	"github.com/slack-go/slack"
	"github.com/spf13/viper"

	"wfip/internal/metrics"
	"wfip/internal/model"
)

// Event types
const (
	EventScanComplete  = "on_scan_complete"
	EventLowCompliance = "on_low_compliance"
	EventHighRisk      = "on_high_risk"
)

// Manager fans notifications out to the configured providers.
type Manager struct {
	// Slack API (bot token), preferred when available
	client    *slack.Client
	channelID string

	// Webhook fallbacks
	slackWebhook *SlackNotifier
	teamsWebhook *TeamsNotifier

	logger func(string, ...interface{})
}

// NewManager creates a new Notification Manager from viper configuration.
func NewManager(logger func(string, ...interface{})) *Manager {
	m := &Manager{
		logger: logger,
	}

	m.initSlack()
	m.initTeams()

	return m
}

func (m *Manager) initSlack() {
	if !viper.GetBool("notifications.slack.enabled") {
		return
	}

	botToken := os.Getenv("SLACK_BOT_USER_TOKEN")
	if botToken != "" {
		m.client = slack.New(botToken)
		m.channelID = viper.GetString("notifications.slack.channel")
		return
	}

	webhookURL := viper.GetString("notifications.slack.webhook_url")
	if webhookURL == "" {
		webhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	}
	if webhookURL != "" {
		m.slackWebhook = NewSlackNotifier(webhookURL)
		return
	}

	if m.logger != nil {
		m.logger("Warning: no SLACK_BOT_USER_TOKEN or webhook URL, slack notifications disabled")
	}
}

func (m *Manager) initTeams() {
	if !viper.GetBool("notifications.teams.enabled") {
		return
	}

	webhookURL := viper.GetString("notifications.teams.webhook_url")
	if webhookURL == "" {
		webhookURL = os.Getenv("TEAMS_WEBHOOK_URL")
	}
	if webhookURL != "" {
		m.teamsWebhook = NewTeamsNotifier(webhookURL)
		return
	}

	if m.logger != nil {
		m.logger("Warning: notifications.teams.webhook_url not set, teams notifications disabled")
	}
}

// Notify sends a plain message if the event is enabled in configuration.
func (m *Manager) Notify(ctx context.Context, eventType string, message string) error {
	if !m.isEnabled(eventType) {
		return nil
	}

	if m.client != nil {
		channelID := m.channelID
		if channelID == "" {
			channelID = "#general"
		}
		_, _, err := m.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(message, false))
		if err != nil {
			metrics.NotificationsFailed.WithLabelValues("slack").Inc()
			if m.logger != nil {
				m.logger("Failed to send Slack notification: %v", err)
			}
		}
	}
	if m.slackWebhook != nil {
		if err := m.slackWebhook.Notify(ctx, message); err != nil {
			metrics.NotificationsFailed.WithLabelValues("slack").Inc()
			if m.logger != nil {
				m.logger("Failed to send Slack notification: %v", err)
			}
		}
	}
	if m.teamsWebhook != nil {
		if err := m.teamsWebhook.Notify(ctx, message); err != nil {
			metrics.NotificationsFailed.WithLabelValues("teams").Inc()
			if m.logger != nil {
				m.logger("Failed to send Teams notification: %v", err)
			}
		}
	}

	return nil
}

// NotifyScanComplete fires the scan events appropriate for the analysis: the
// completion event always, plus low-compliance and high-risk events when the
// thresholds trip.
func (m *Manager) NotifyScanComplete(ctx context.Context, analysis model.UIAnalysis, lowComplianceThreshold float64) {
	if m.isEnabled(EventScanComplete) {
		m.sendAnalysis(ctx, analysis)
	}
	if analysis.ComplianceScore < lowComplianceThreshold && m.isEnabled(EventLowCompliance) {
		m.Notify(ctx, EventLowCompliance,
			complianceEmoji(analysis.ComplianceScore)+" Low compliance: "+analysis.UIName)
	}
	if len(analysis.HighRiskFeatures) > 0 && m.isEnabled(EventHighRisk) {
		m.Notify(ctx, EventHighRisk,
			"🔥 High risk features in "+analysis.UIName+": "+joinNames(analysis.HighRiskFeatures))
	}
}

func (m *Manager) sendAnalysis(ctx context.Context, analysis model.UIAnalysis) {
	if m.client != nil {
		channelID := m.channelID
		if channelID == "" {
			channelID = "#general"
		}
		header := complianceEmoji(analysis.ComplianceScore) + " Scan complete: " + analysis.UIName
		_, _, err := m.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(header, false))
		if err != nil {
			metrics.NotificationsFailed.WithLabelValues("slack").Inc()
			if m.logger != nil {
				m.logger("Failed to send Slack notification: %v", err)
			}
		}
	}
	if m.slackWebhook != nil {
		if err := m.slackWebhook.NotifyAnalysis(ctx, analysis); err != nil {
			metrics.NotificationsFailed.WithLabelValues("slack").Inc()
			if m.logger != nil {
				m.logger("Failed to send Slack notification: %v", err)
			}
		}
	}
	if m.teamsWebhook != nil {
		if err := m.teamsWebhook.NotifyAnalysis(ctx, analysis); err != nil {
			metrics.NotificationsFailed.WithLabelValues("teams").Inc()
			if m.logger != nil {
				m.logger("Failed to send Teams notification: %v", err)
			}
		}
	}
}

func (m *Manager) isEnabled(eventType string) bool {
	slackEnabled := viper.GetBool("notifications.slack.enabled")
	teamsEnabled := viper.GetBool("notifications.teams.enabled")
	if !slackEnabled && !teamsEnabled {
		return false
	}

	return viper.GetBool("notifications.events." + eventType)
}
