package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wfip/internal/model"
)

func TestSlackNotify(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL)
	err := n.Notify(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", received["text"])
}

func TestSlackNotifyErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL)
	err := n.Notify(context.Background(), "hello")
	assert.Error(t, err)
}

func TestSlackNotifyMissingWebhook(t *testing.T) {
	n := NewSlackNotifier("")
	err := n.Notify(context.Background(), "hello")
	assert.Error(t, err)
}

func TestSlackNotifyAnalysisBlocks(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL)
	analysis := model.UIAnalysis{
		UIName:           "checkout",
		TotalFeatures:    5,
		ComplianceScore:  65.5,
		HighRiskFeatures: []string{"subgrid"},
	}
	require.NoError(t, n.NotifyAnalysis(context.Background(), analysis))

	text, _ := received["text"].(string)
	assert.Contains(t, text, "checkout")
	assert.Contains(t, text, "🔥", "sub-70 compliance gets the fire emoji")
	assert.NotEmpty(t, received["blocks"])
}

func TestComplianceEmoji(t *testing.T) {
	assert.Equal(t, "✅", complianceEmoji(95))
	assert.Equal(t, "✅", complianceEmoji(90))
	assert.Equal(t, "⚠️", complianceEmoji(89.9))
	assert.Equal(t, "⚠️", complianceEmoji(70))
	assert.Equal(t, "🔥", complianceEmoji(69.9))
}

func TestJoinNamesCapsList(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	assert.Equal(t, "a, b, c, d, e and 2 more", joinNames(names))
	assert.Equal(t, "a, b", joinNames([]string{"a", "b"}))
}
