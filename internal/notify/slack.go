package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wfip/internal/model"
)

// SlackNotifier sends notifications to Slack via a Webhook.
type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewSlackNotifier creates a new SlackNotifier.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends a plain text message to the configured Slack webhook.
func (s *SlackNotifier) Notify(ctx context.Context, message string) error {
	payload := map[string]string{
		"text": message,
	}
	return s.post(ctx, payload)
}

// NotifyAnalysis sends a formatted compliance summary for a completed scan.
func (s *SlackNotifier) NotifyAnalysis(ctx context.Context, analysis model.UIAnalysis) error {
	header := fmt.Sprintf("%s Scan complete: %s", complianceEmoji(analysis.ComplianceScore), analysis.UIName)
	fields := []map[string]any{
		{"type": "mrkdwn", "text": fmt.Sprintf("*Compliance:*\n%.2f%%", analysis.ComplianceScore)},
		{"type": "mrkdwn", "text": fmt.Sprintf("*Features:*\n%d (%d compliant)", analysis.TotalFeatures, analysis.BaselineCompliant)},
	}
	if len(analysis.HighRiskFeatures) > 0 {
		fields = append(fields, map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*High risk:*\n%s", joinNames(analysis.HighRiskFeatures)),
		})
	}
	if len(analysis.DeprecatedFeatures) > 0 {
		fields = append(fields, map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Deprecated:*\n%s", joinNames(analysis.DeprecatedFeatures)),
		})
	}

	payload := map[string]any{
		"text": header,
		"blocks": []map[string]any{
			{
				"type": "header",
				"text": map[string]any{"type": "plain_text", "text": header, "emoji": true},
			},
			{
				"type":   "section",
				"fields": fields,
			},
		},
	}
	return s.post(ctx, payload)
}

func (s *SlackNotifier) post(ctx context.Context, payload any) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack notification failed with status: %s", resp.Status)
	}

	return nil
}

func joinNames(names []string) string {
	const maxListed = 5
	out := ""
	for i, name := range names {
		if i == maxListed {
			out += fmt.Sprintf(" and %d more", len(names)-maxListed)
			break
		}
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}

func complianceEmoji(score float64) string {
	switch {
	case score >= 90:
		return "✅"
	case score >= 70:
		return "⚠️"
	default:
		return "🔥"
	}
}
