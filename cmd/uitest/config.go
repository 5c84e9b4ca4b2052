package main

import (
	"fmt"

	"github.com/hairizuan-noorazman/ui-bdd/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the loaded configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return showConfig(cmd, a.cfg)
		},
	})

	return cmd
}

// configRows lists the effective values. The password hash is never printed.
func configRows(cfg config.Config) [][]string {
	secret := "-"
	if cfg.Server.PasswordHash != "" {
		secret = "(set)"
	}
	return [][]string{
		{config.KeyBrowser, cfg.Browser},
		{config.KeyBaseURL, cfg.BaseURL},
		{config.KeyImplicitWait, cfg.ImplicitWait.String()},
		{config.KeyExplicitWait, cfg.ExplicitWait.String()},
		{config.KeyPageLoadTimeout, cfg.PageLoadTimeout.String()},
		{config.KeyScreenshotOnFailure, fmt.Sprint(cfg.ScreenshotOnFailure)},
		{config.KeyScreenshotOnPass, fmt.Sprint(cfg.ScreenshotOnPass)},
		{config.KeyScreenshotPath, cfg.ScreenshotPath},
		{config.KeyReportPath, cfg.ReportPath},
		{config.KeyReportRetentionCount, fmt.Sprint(cfg.ReportRetentionCount)},
		{config.KeyDriverBackend, cfg.Driver.Backend},
		{config.KeyDriverBinary, cfg.Driver.Binary},
		{config.KeyHeadless, fmt.Sprint(cfg.Driver.Headless)},
		{config.KeyParallel, fmt.Sprint(cfg.Run.Parallel)},
		{config.KeyConcurrency, fmt.Sprint(cfg.Run.Concurrency)},
		{config.KeyFeaturesPath, cfg.Run.FeaturesPath},
		{config.KeyTags, cfg.Run.Tags},
		{config.KeyLogLevel, cfg.Log.Level},
		{config.KeyLogFormat, cfg.Log.Format},
		{config.KeyLogFile, cfg.Log.File},
		{config.KeyHistoryEnabled, fmt.Sprint(cfg.History.Enabled)},
		{config.KeyHistoryDriver, cfg.History.Driver},
		{config.KeyHistoryDSN, cfg.History.DSN},
		{config.KeyStorageType, cfg.Storage.Type},
		{config.KeyStorageBaseDir, cfg.Storage.BaseDir},
		{config.KeyStorageS3Bucket, cfg.Storage.S3Bucket},
		{config.KeyStorageS3Region, cfg.Storage.S3Region},
		{config.KeyServerHost, cfg.Server.Host},
		{config.KeyServerPort, fmt.Sprint(cfg.Server.Port)},
		{config.KeyServerUsername, cfg.Server.Username},
		{config.KeyServerPasswordHash, secret},
	}
}

func showConfig(cmd *cobra.Command, cfg config.Config) error {
	rows := configRows(cfg)
	if flagJSON {
		values := make(map[string]string, len(rows))
		for _, row := range rows {
			values[row[0]] = row[1]
		}
		return printJSON(cmd.OutOrStdout(), values)
	}

	source := cfg.Source()
	if source == "" {
		source = "(defaults)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n\n", source)
	printTable(cmd.OutOrStdout(), []string{"KEY", "VALUE"}, rows)
	return nil
}
