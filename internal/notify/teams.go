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

// TeamsNotifier sends notifications to Microsoft Teams via an incoming webhook.
type TeamsNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewTeamsNotifier creates a new TeamsNotifier.
func NewTeamsNotifier(webhookURL string) *TeamsNotifier {
	return &TeamsNotifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends a plain text message as a simple MessageCard.
func (t *TeamsNotifier) Notify(ctx context.Context, message string) error {
	card := map[string]any{
		"@type":    "MessageCard",
		"@context": "http://schema.org/extensions",
		"text":     message,
	}
	return t.post(ctx, card)
}

// NotifyAnalysis sends a MessageCard summarizing a completed scan.
func (t *TeamsNotifier) NotifyAnalysis(ctx context.Context, analysis model.UIAnalysis) error {
	facts := []map[string]string{
		{"name": "Compliance", "value": fmt.Sprintf("%.2f%%", analysis.ComplianceScore)},
		{"name": "Features", "value": fmt.Sprintf("%d (%d compliant)", analysis.TotalFeatures, analysis.BaselineCompliant)},
	}
	if len(analysis.HighRiskFeatures) > 0 {
		facts = append(facts, map[string]string{"name": "High risk", "value": joinNames(analysis.HighRiskFeatures)})
	}
	if len(analysis.DeprecatedFeatures) > 0 {
		facts = append(facts, map[string]string{"name": "Deprecated", "value": joinNames(analysis.DeprecatedFeatures)})
	}

	card := map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"summary":    fmt.Sprintf("Scan complete: %s", analysis.UIName),
		"themeColor": teamsThemeColor(analysis.ComplianceScore),
		"title":      fmt.Sprintf("%s Scan complete: %s", complianceEmoji(analysis.ComplianceScore), analysis.UIName),
		"sections": []map[string]any{
			{"facts": facts},
		},
	}
	return t.post(ctx, card)
}

func (t *TeamsNotifier) post(ctx context.Context, card any) error {
	if t.WebhookURL == "" {
		return fmt.Errorf("teams webhook URL is not configured")
	}

	body, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to marshal teams payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send teams notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("teams notification failed with status: %s", resp.Status)
	}

	return nil
}

func teamsThemeColor(score float64) string {
	switch {
	case score >= 90:
		return "2EB886"
	case score >= 70:
		return "DAA038"
	default:
		return "A30200"
	}
}
