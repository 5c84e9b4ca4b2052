package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/config"
	"github.com/hairizuan-noorazman/ui-bdd/report"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig creates a properties file whose report directory holds the
// given number of timestamped reports, oldest first.
func writeConfig(t *testing.T, reports int, extra ...string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	reportDir := filepath.Join(dir, "reports")
	require.NoError(t, os.MkdirAll(reportDir, 0755))

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < reports; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		path := filepath.Join(reportDir, report.Prefix+at.Format(report.TimestampLayout)+report.Suffix)
		require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0644))
		require.NoError(t, os.Chtimes(path, at, at))
	}

	lines := append([]string{
		"browser=chrome",
		"extent.report.path=" + reportDir,
		"extent.report.retention.count=2",
		"log.level=error",
	}, extra...)
	path := filepath.Join(dir, "config.properties")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path, reportDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "uitest dev")
}

func TestReportsCommands(t *testing.T) {
	cfgPath, reportDir := writeConfig(t, 4)

	out, err := execute(t, "reports", "count", "-c", cfgPath, "--json")
	require.NoError(t, err)
	var counts map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	assert.Equal(t, 4, counts["count"])
	assert.Equal(t, 2, counts["retention"])

	out, err = execute(t, "reports", "list", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ExtentReport_2024-01-15_10-03-00.html")

	out, err = execute(t, "reports", "cleanup", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "found 4, deleted 2, failed 0, retained 2")

	entries, err := os.ReadDir(reportDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestReportsFinalize(t *testing.T) {
	cfgPath, reportDir := writeConfig(t, 0)

	out, err := execute(t, "reports", "finalize", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No report to finalize")

	require.NoError(t, os.WriteFile(filepath.Join(reportDir, report.TempReportName), []byte("<html></html>"), 0644))
	out, err = execute(t, "reports", "finalize", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Report renamed to ExtentReport_")
}

func TestMissingConfig(t *testing.T) {
	_, err := execute(t, "reports", "count", "-c", filepath.Join(t.TempDir(), "missing.properties"))
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestHistoryList_Disabled(t *testing.T) {
	cfgPath, _ := writeConfig(t, 0)

	_, err := execute(t, "history", "list", "-c", cfgPath)
	assert.ErrorIs(t, err, errHistoryDisabled)
}

func TestMigrateAndHistory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "db", "history.db")
	cfgPath, _ := writeConfig(t, 0, "history.enabled=true", "history.driver=sqlite", "history.dsn="+dsn)

	out, err := execute(t, "migrate", "up", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "version 2")

	out, err = execute(t, "history", "list", "-c", cfgPath, "--json")
	require.NoError(t, err)
	assert.Contains(t, []string{"[]", "null"}, strings.TrimSpace(out))

	_, err = execute(t, "history", "list", "-c", cfgPath, "--status", "exploded")
	assert.Error(t, err)

	out, err = execute(t, "migrate", "down", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "rolled back")
}

func TestConfigShow_HidesPasswordHash(t *testing.T) {
	cfgPath, _ := writeConfig(t, 0, "server.password_hash=$2a$10$abcdefghijklmnopqrstuv")

	out, err := execute(t, "config", "show", "-c", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Config: "+cfgPath)
	assert.Contains(t, out, "(set)")
	assert.NotContains(t, out, "$2a$10$")
}

func TestApplyRunFlags(t *testing.T) {
	cfg := config.Defaults()
	cmd := &cobra.Command{}
	cmd.Flags().Bool("headless", false, "")
	require.NoError(t, cmd.Flags().Set("headless", "true"))

	applyRunFlags(cmd, &cfg, runFlags{
		tags:     "@Smoke and not @wip",
		browser:  "firefox",
		features: "other/features",
		headless: true,
		parallel: 4,
	})

	assert.Equal(t, "@Smoke and not @wip", cfg.Run.Tags)
	assert.Equal(t, "firefox", cfg.Browser)
	assert.Equal(t, "other/features", cfg.Run.FeaturesPath)
	assert.True(t, cfg.Driver.Headless)
	assert.Equal(t, 4, cfg.Concurrency())
}

func TestRun_UnsupportedBrowser(t *testing.T) {
	cfgPath, _ := writeConfig(t, 0)

	_, err := execute(t, "run", "-c", cfgPath, "--browser", "safari")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported browser")
}

func TestExitError(t *testing.T) {
	var err error = exitError{code: 3}
	var exit exitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, fmt.Sprintf("exit status %d", 3), err.Error())
}
