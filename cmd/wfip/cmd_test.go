package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wfip/internal/baseline"
	"wfip/internal/model"
)

// setupEnv points the command environment at throwaway paths so runs do
// not touch the developer's working directory.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	catalog := baseline.NewStore(filepath.Join(dir, "baseline.json"))
	require.NoError(t, catalog.Replace([]model.FeatureRecord{
		{Name: "dialog", BaselineStatus: model.StatusWidelyAvailable, GlobalSupport: 97.5},
		{Name: "backdrop-filter", BaselineStatus: model.StatusNewlyAvailable, GlobalSupport: 92.0},
		{Name: "subgrid", BaselineStatus: model.StatusLimited, GlobalSupport: 78.0, Alternatives: []string{"css-grid"}},
	}))

	viper.Set("baseline.cache_path", filepath.Join(dir, "baseline.json"))
	viper.Set("market.cache_path", filepath.Join(dir, "market.json"))
	viper.Set("db.driver", "sqlite")
	viper.Set("db.dsn", filepath.Join(dir, "wfip.db"))
	viper.Set("notifications.slack.enabled", false)
	viper.Set("notifications.teams.enabled", false)

	return dir
}

func writeFixture(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(content), 0o644))
	}
	return src
}

func runCommand(args ...string) (string, string, error) {
	// Flag variables persist between Execute calls, so start each run
	// from the defaults.
	scanUIName, scanJSON, scanNoSave = "", false, false
	riskJSON = false
	heatmapJSON, heatmapLimit = false, 0
	featuresJSON, featuresStatus = false, ""
	historyUIName, historyLimit, historyJSON = "", 20, false
	ciUIName, ciFailOnDeprecated = "", false
	reportUIName, reportRender, reportPR, reportRepo = "", false, 0, ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestScanCommand(t *testing.T) {
	dir := setupEnv(t)
	src := writeFixture(t, dir, map[string]string{
		"app.css":    ".hero { backdrop-filter: blur(4px); }\n.grid { grid-template-rows: subgrid; }\n",
		"index.html": "<dialog open>hi</dialog>\n",
	})

	out, _, err := runCommand("scan", src, "--ui-name", "storefront", "--json", "--no-save")
	require.NoError(t, err)

	var result struct {
		Analysis model.UIAnalysis `json:"analysis"`
		Score    model.UIScore    `json:"score"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	assert.Equal(t, "storefront", result.Analysis.UIName)
	assert.Equal(t, 3, result.Analysis.TotalFeatures)
	assert.Equal(t, 1, result.Analysis.BaselineCompliant)
	assert.Contains(t, result.Analysis.HighRiskFeatures, "subgrid")
	// Weakest link is the limited feature.
	assert.Equal(t, 78.0, result.Score.GlobalSupport)
}

func TestScanCommandPersists(t *testing.T) {
	dir := setupEnv(t)
	src := writeFixture(t, dir, map[string]string{
		"index.html": "<dialog open>hi</dialog>\n",
	})

	_, _, err := runCommand("scan", src, "--ui-name", "billing", "--json")
	require.NoError(t, err)

	out, _, err := runCommand("history", "--ui-name", "billing", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, "billing")
}

func TestRiskCommand(t *testing.T) {
	setupEnv(t)

	out, _, err := runCommand("risk", "subgrid", "--json")
	require.NoError(t, err)

	var scores []model.RiskScore
	require.NoError(t, json.Unmarshal([]byte(out), &scores))
	require.Len(t, scores, 1)
	assert.Equal(t, "subgrid", scores[0].FeatureName)
	assert.Equal(t, model.TierHighRisk, scores[0].Tier)
	assert.Contains(t, scores[0].Alternatives, "css-grid")
}

func TestRiskCommandUnknownFeature(t *testing.T) {
	setupEnv(t)

	out, errOut, err := runCommand("risk", "marquee", "--json")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Unknown feature: marquee")
	assert.Contains(t, out, "null")
}

func TestFeaturesCommand(t *testing.T) {
	setupEnv(t)

	out, _, err := runCommand("features", "--json")
	require.NoError(t, err)

	var records []model.FeatureRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Len(t, records, 3)
}

func TestCICommandPass(t *testing.T) {
	dir := setupEnv(t)
	src := writeFixture(t, dir, map[string]string{
		"index.html": "<dialog open>hi</dialog>\n",
	})

	out, _, err := runCommand("ci", src, "--ui-name", "clean-ui", "--min-compliance", "80")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS")
}

func TestCICommandFail(t *testing.T) {
	dir := setupEnv(t)
	src := writeFixture(t, dir, map[string]string{
		"app.css": ".grid { grid-template-rows: subgrid; }\n",
	})

	out, _, err := runCommand("ci", src, "--ui-name", "risky-ui", "--min-compliance", "80")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL")
}

func TestHeatmapCommand(t *testing.T) {
	dir := setupEnv(t)
	src := writeFixture(t, dir, map[string]string{
		"index.html": "<dialog open>hi</dialog>\n",
	})

	_, _, err := runCommand("scan", src, "--ui-name", "web-a", "--json")
	require.NoError(t, err)
	_, _, err = runCommand("scan", src, "--ui-name", "web-b", "--json")
	require.NoError(t, err)

	out, _, err := runCommand("heatmap", "--json")
	require.NoError(t, err)

	var hm model.OrgHeatmap
	require.NoError(t, json.Unmarshal([]byte(out), &hm))
	assert.Equal(t, 2, hm.TotalUIs)
	assert.Equal(t, 100.0, hm.AverageCompliance)
}

func TestReportCommand(t *testing.T) {
	dir := setupEnv(t)
	src := writeFixture(t, dir, map[string]string{
		"app.css": ".grid { grid-template-rows: subgrid; }\n",
	})

	out, _, err := runCommand("report", src, "--ui-name", "storefront")
	require.NoError(t, err)
	assert.Contains(t, out, "# Baseline Compliance Report: storefront")
	assert.Contains(t, out, "subgrid")
}

func TestSplitRepo(t *testing.T) {
	owner, repo, ok := splitRepo("acme/storefront")
	assert.True(t, ok)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "storefront", repo)

	_, _, ok = splitRepo("no-slash")
	assert.False(t, ok)

	_, _, ok = splitRepo("/leading")
	assert.False(t, ok)

	_, _, ok = splitRepo("trailing/")
	assert.False(t, ok)
}
