package scenario

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/ui-bdd/config"
	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/hairizuan-noorazman/ui-bdd/report"
	"github.com/hairizuan-noorazman/ui-bdd/runhistory"
	"github.com/hairizuan-noorazman/ui-bdd/storage"
	"github.com/spf13/afero"
)

// DefaultSuite is run when no suite name is given.
const DefaultSuite = "default"

// suiteTags maps suite names to their tag expressions.
var suiteTags = map[string]string{
	DefaultSuite: "@GoogleSearch",
	"smoke":      "@Smoke",
	"regression": "@Regression",
}

// SuiteNames returns the known suite names sorted.
func SuiteNames() []string {
	names := make([]string, 0, len(suiteTags))
	for name := range suiteTags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TagsFor returns the tag expression of a named suite.
func TagsFor(name string) (string, error) {
	if name == "" {
		name = DefaultSuite
	}
	tags, ok := suiteTags[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("unknown suite %q, expected one of %s", name, strings.Join(SuiteNames(), ", "))
	}
	return tags, nil
}

// Deps are the collaborators of a Suite. Archiver and History are optional.
type Deps struct {
	Config   config.Config
	Drivers  *driver.Manager
	Fs       afero.Fs
	Archiver *storage.Archiver
	History  *runhistory.Recorder
	Logger   logger.Logger
	// Output receives godog's formatter output, stdout when nil.
	Output io.Writer
	// Format is the godog formatter, "pretty" when empty.
	Format string
}

// Suite runs one tagged selection of features and produces its report.
type Suite struct {
	name    string
	tags    string
	deps    Deps
	reports *report.Manager
	writer  *report.Writer
	logger  logger.Logger
}

// NewSuite builds the named suite. A non-empty config tag expression
// replaces the suite's own tags.
func NewSuite(name string, deps Deps) (*Suite, error) {
	tags, err := TagsFor(name)
	if err != nil {
		return nil, err
	}
	if deps.Config.Run.Tags != "" {
		tags = deps.Config.Run.Tags
	}
	if name == "" {
		name = DefaultSuite
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Output == nil {
		deps.Output = os.Stdout
	}
	if deps.Format == "" {
		deps.Format = "pretty"
	}

	cfg := deps.Config
	log := deps.Logger.WithField("suite", name)

	var opts []report.Option
	if deps.Archiver != nil {
		archiver := deps.Archiver
		opts = append(opts, report.WithDeleteHook(func(ctx context.Context, name string) {
			if err := archiver.RemoveReport(ctx, name); err != nil {
				log.Warn(ctx, "failed to remove archived report", map[string]interface{}{
					"report": name,
					"error":  err.Error(),
				})
			}
		}))
	}

	return &Suite{
		name:    name,
		tags:    tags,
		deps:    deps,
		reports: report.NewManager(deps.Fs, cfg.ReportPath, cfg.ReportRetentionCount, log, opts...),
		writer: report.NewWriter(deps.Fs, cfg.ReportPath, "UI Automation Report: "+name,
			report.DefaultSystemInfo(cfg.Browser, cfg.Driver.Backend)),
		logger: log,
	}, nil
}

func (s *Suite) Name() string { return s.name }

func (s *Suite) Tags() string { return s.tags }

// Reports exposes the suite's report directory manager.
func (s *Suite) Reports() *report.Manager { return s.reports }

// Outcome summarizes a finished run.
type Outcome struct {
	Status  int
	Summary report.Summary
	Report  string // finalized report path, empty when none was written
}

// Run sweeps old reports, executes the scenarios, then writes, finalizes
// and archives the report. Status is non-zero when any scenario failed.
func (s *Suite) Run(ctx context.Context) Outcome {
	cfg := s.deps.Config

	swept := s.reports.CleanupOldReports(ctx)
	s.logger.Info(ctx, "report retention applied", map[string]interface{}{
		"reports":   s.reports.ReportCount(ctx),
		"retention": s.reports.Retention(),
		"deleted":   swept.Deleted,
	})

	results := report.NewCollector()
	hooks := NewHooks(cfg, s.deps.Drivers, s.deps.Fs, s.deps.Archiver, s.deps.History, results, s.logger)
	steps := NewGoogleSteps(cfg.BaseURL)

	s.logger.Info(ctx, "running suite", map[string]interface{}{
		"features":    cfg.Run.FeaturesPath,
		"tags":        s.tags,
		"concurrency": cfg.Concurrency(),
		"browser":     cfg.Browser,
	})

	status := godog.TestSuite{
		Name: s.name,
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			hooks.Register(sc)
			steps.Register(sc)
		},
		Options: &godog.Options{
			Format:         s.deps.Format,
			Paths:          []string{cfg.Run.FeaturesPath},
			Tags:           s.tags,
			Concurrency:    cfg.Concurrency(),
			Output:         s.deps.Output,
			DefaultContext: ctx,
			Strict:         true,
		},
	}.Run()

	collected := results.Results()
	outcome := Outcome{Status: status, Summary: report.Summarize(collected)}
	if outcome.Summary.Failed > 0 && outcome.Status == 0 {
		outcome.Status = 1
	}

	outcome.Report = s.finish(ctx, collected, hooks.RunIDs())
	s.deps.Drivers.QuitAll(ctx)

	s.logger.Info(ctx, "suite finished", map[string]interface{}{
		"status":  outcome.Status,
		"total":   outcome.Summary.Total,
		"passed":  outcome.Summary.Passed,
		"failed":  outcome.Summary.Failed,
		"skipped": outcome.Summary.Skipped,
		"report":  outcome.Report,
	})
	return outcome
}

// finish renders the report, renames it and archives it. Failures are logged.
func (s *Suite) finish(ctx context.Context, results []report.ScenarioResult, runs []uuid.UUID) string {
	if _, err := s.writer.Write(results); err != nil {
		s.logger.Error(ctx, "failed to write report", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}

	name := s.reports.FinalizeReport(ctx)
	if name == "" {
		return ""
	}
	path := filepath.Join(s.reports.Dir(), name)
	s.deps.History.SetReport(ctx, runs, name)

	if s.deps.Archiver != nil {
		if _, err := s.deps.Archiver.ArchiveReport(ctx, path); err != nil {
			s.logger.Warn(ctx, "failed to archive report", map[string]interface{}{
				"error":  err.Error(),
				"report": path,
			})
		}
	}
	return path
}
