package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wfip/internal/model"
)

type webhookRecorder struct {
	mu       sync.Mutex
	payloads []map[string]any
}

func (r *webhookRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)
		r.mu.Lock()
		r.payloads = append(r.payloads, payload)
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (r *webhookRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func resetNotifyConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("SLACK_BOT_USER_TOKEN", "")
	t.Setenv("SLACK_WEBHOOK_URL", "")
	t.Setenv("TEAMS_WEBHOOK_URL", "")
}

func TestManagerDisabledProvidersSendNothing(t *testing.T) {
	resetNotifyConfig(t)
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	viper.Set("notifications.slack.enabled", false)
	viper.Set("notifications.slack.webhook_url", server.URL)
	viper.Set("notifications.events."+EventScanComplete, true)

	m := NewManager(nil)
	m.NotifyScanComplete(context.Background(), model.UIAnalysis{UIName: "web", ComplianceScore: 100}, 70)
	assert.Equal(t, 0, rec.count())
}

func TestManagerScanCompleteEvent(t *testing.T) {
	resetNotifyConfig(t)
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	viper.Set("notifications.slack.enabled", true)
	viper.Set("notifications.slack.webhook_url", server.URL)
	viper.Set("notifications.events."+EventScanComplete, true)
	viper.Set("notifications.events."+EventLowCompliance, true)
	viper.Set("notifications.events."+EventHighRisk, true)

	m := NewManager(nil)
	require.NotNil(t, m.slackWebhook)

	analysis := model.UIAnalysis{UIName: "web", TotalFeatures: 4, BaselineCompliant: 4, ComplianceScore: 95}
	m.NotifyScanComplete(context.Background(), analysis, 70)

	// Healthy analysis fires only the completion event.
	assert.Equal(t, 1, rec.count())
}

func TestManagerThresholdEvents(t *testing.T) {
	resetNotifyConfig(t)
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	viper.Set("notifications.slack.enabled", true)
	viper.Set("notifications.slack.webhook_url", server.URL)
	viper.Set("notifications.events."+EventScanComplete, true)
	viper.Set("notifications.events."+EventLowCompliance, true)
	viper.Set("notifications.events."+EventHighRisk, true)

	m := NewManager(nil)
	analysis := model.UIAnalysis{
		UIName:           "legacy",
		TotalFeatures:    10,
		ComplianceScore:  42,
		HighRiskFeatures: []string{"subgrid", "view-transitions"},
	}
	m.NotifyScanComplete(context.Background(), analysis, 70)

	// scan complete + low compliance + high risk
	assert.Equal(t, 3, rec.count())
}

func TestManagerEventGating(t *testing.T) {
	resetNotifyConfig(t)
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	viper.Set("notifications.slack.enabled", true)
	viper.Set("notifications.slack.webhook_url", server.URL)
	viper.Set("notifications.events."+EventScanComplete, false)
	viper.Set("notifications.events."+EventLowCompliance, true)
	viper.Set("notifications.events."+EventHighRisk, false)

	m := NewManager(nil)
	analysis := model.UIAnalysis{
		UIName:           "legacy",
		ComplianceScore:  42,
		HighRiskFeatures: []string{"subgrid"},
	}
	m.NotifyScanComplete(context.Background(), analysis, 70)

	// Only the low-compliance event is enabled.
	assert.Equal(t, 1, rec.count())
}

func TestManagerWebhookFromEnv(t *testing.T) {
	resetNotifyConfig(t)
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	viper.Set("notifications.slack.enabled", true)
	t.Setenv("SLACK_WEBHOOK_URL", server.URL)

	m := NewManager(nil)
	require.NotNil(t, m.slackWebhook)
	assert.Equal(t, server.URL, m.slackWebhook.WebhookURL)
}

func TestManagerNotifyDisabledEventIsNoop(t *testing.T) {
	resetNotifyConfig(t)
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec.handler())
	defer server.Close()

	viper.Set("notifications.slack.enabled", true)
	viper.Set("notifications.slack.webhook_url", server.URL)
	viper.Set("notifications.events."+EventHighRisk, false)

	m := NewManager(nil)
	require.NoError(t, m.Notify(context.Background(), EventHighRisk, "nope"))
	assert.Equal(t, 0, rec.count())
}
