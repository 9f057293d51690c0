package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, charts bool) (path, results string) {
	t.Helper()
	dir := t.TempDir()
	data, err := filepath.Abs(filepath.Join("..", "..", "data"))
	require.NoError(t, err)
	results = filepath.Join(dir, "results")
	body := fmt.Sprintf(`input:
  control_path: %q
  test_path: %q
significance:
  alpha: 0.05
output:
  results_dir: %q
  images_dir: %q
  charts: %t
log:
  level: warn
`, filepath.Join(data, "control_group.csv"), filepath.Join(data, "test_group.csv"),
		results, filepath.Join(dir, "images"), charts)
	path = filepath.Join(dir, "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path, results
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeRuns(t *testing.T) {
	cfg, results := writeConfig(t, false)

	out, err := execute("--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Key Performance Indicators")
	for _, name := range []string{"kpi_summary.csv", "statistical_tests.csv", "funnel.csv", "kpi_comparison.csv", "daily_metrics.csv", "pipeline.prom"} {
		assert.FileExists(t, filepath.Join(results, name))
	}
}

func TestAnalyzeRejectsArgs(t *testing.T) {
	_, err := execute("extra")
	assert.Error(t, err)
}

func TestAnalyzeMissingConfig(t *testing.T) {
	out, err := execute("--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "missing.yaml")
}

func TestAnalyzeEnvOverride(t *testing.T) {
	cfg, _ := writeConfig(t, false)
	t.Setenv("ABTEST_SIGNIFICANCE_ALPHA", "2")

	_, err := execute("--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "significance.alpha")
}
