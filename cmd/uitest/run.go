package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hairizuan-noorazman/ui-bdd/config"
	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/runhistory"
	"github.com/hairizuan-noorazman/ui-bdd/scenario"
	"github.com/hairizuan-noorazman/ui-bdd/storage"
	"github.com/spf13/cobra"
)

type runFlags struct {
	suite    string
	tags     string
	browser  string
	features string
	format   string
	headless bool
	parallel int
	archive  bool
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario suite",
		Long:  "Runs the features of a named suite (" + strings.Join(scenario.SuiteNames(), ", ") + ") and writes a timestamped HTML report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			applyRunFlags(cmd, &a.cfg, f)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			status, err := runSuite(ctx, a, f)
			if err != nil {
				return err
			}
			if status != 0 {
				return exitError{code: status}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.suite, "suite", "s", scenario.DefaultSuite, "suite to run")
	cmd.Flags().StringVarP(&f.tags, "tags", "t", "", "tag expression, overrides the suite tags")
	cmd.Flags().StringVarP(&f.browser, "browser", "b", "", "browser: chrome, firefox or edge")
	cmd.Flags().StringVar(&f.features, "features", "", "features directory")
	cmd.Flags().StringVar(&f.format, "format", "pretty", "godog output format")
	cmd.Flags().BoolVar(&f.headless, "headless", false, "run the browser headless")
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "run this many scenarios at once")
	cmd.Flags().BoolVar(&f.archive, "archive", true, "copy screenshots and the report to blob storage")
	return cmd
}

// applyRunFlags copies explicitly set flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, f runFlags) {
	if f.tags != "" {
		cfg.Run.Tags = f.tags
	}
	if f.browser != "" {
		cfg.Browser = f.browser
	}
	if f.features != "" {
		cfg.Run.FeaturesPath = f.features
	}
	if cmd.Flags().Changed("headless") {
		cfg.Driver.Headless = f.headless
	}
	if f.parallel > 0 {
		cfg.Run.Parallel = true
		cfg.Run.Concurrency = f.parallel
	}
}

func runSuite(ctx context.Context, a *app, f runFlags) (int, error) {
	if _, err := driver.ParseKind(a.cfg.Browser); err != nil {
		return 0, err
	}

	launcher, err := a.launcher()
	if err != nil {
		return 0, err
	}
	drivers := driver.NewManager(launcher, driver.OptionsFromConfig(a.cfg), a.log)

	deps := scenario.Deps{
		Config:  a.cfg,
		Drivers: drivers,
		Fs:      a.fs,
		Logger:  a.log,
		Format:  f.format,
	}

	if f.archive {
		blobs, err := storage.New(ctx, a.cfg.Storage, a.fs)
		if err != nil {
			return 0, fmt.Errorf("failed to initialize storage: %w", err)
		}
		deps.Archiver = storage.NewArchiver(blobs, a.fs, a.log)
	}

	runs, assets, err := a.historyStores(true)
	if err != nil {
		return 0, err
	}
	if runs != nil {
		deps.History = runhistory.NewRecorder(runs, assets, a.log)
	}

	suite, err := scenario.NewSuite(f.suite, deps)
	if err != nil {
		return 0, err
	}

	a.log.Info(ctx, "starting run", map[string]interface{}{
		"suite":   suite.Name(),
		"tags":    suite.Tags(),
		"backend": launcher.Name(),
		"version": Version,
		"config":  a.cfg.Source(),
	})

	outcome := suite.Run(ctx)
	if outcome.Report != "" {
		fmt.Printf("Report: %s\n", outcome.Report)
	}
	return outcome.Status, nil
}
