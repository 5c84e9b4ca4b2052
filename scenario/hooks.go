package scenario

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/ui-bdd/config"
	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/hairizuan-noorazman/ui-bdd/page"
	"github.com/hairizuan-noorazman/ui-bdd/report"
	"github.com/hairizuan-noorazman/ui-bdd/runhistory"
	"github.com/hairizuan-noorazman/ui-bdd/storage"
	"github.com/spf13/afero"
)

// ScreenshotLayout is the timestamp part of screenshot file names.
const ScreenshotLayout = "20060102_150405"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ShouldCapture reports whether a screenshot is taken for a scenario that
// failed or passed.
func ShouldCapture(failed bool, cfg config.Config) bool {
	if failed {
		return cfg.ScreenshotOnFailure
	}
	return cfg.ScreenshotOnPass
}

// ScreenshotName returns "<name>_<yyyyMMdd_HHmmss>.png" with characters that
// are unsafe in file names replaced by underscores.
func ScreenshotName(scenario string, at time.Time) string {
	name := unsafeNameChars.ReplaceAllString(scenario, "_")
	if name == "" {
		name = "scenario"
	}
	return name + "_" + at.Format(ScreenshotLayout) + ".png"
}

// Hooks opens a browser session before every scenario and tears it down
// afterwards.
type Hooks struct {
	cfg      config.Config
	drivers  *driver.Manager
	fs       afero.Fs
	archiver *storage.Archiver
	history  *runhistory.Recorder
	results  *report.Collector
	backend  string
	logger   logger.Logger
	now      func() time.Time

	mu     sync.Mutex
	runIDs []uuid.UUID
}

// NewHooks wires the scenario lifecycle. archiver and history may be nil.
func NewHooks(cfg config.Config, drivers *driver.Manager, fs afero.Fs, archiver *storage.Archiver,
	history *runhistory.Recorder, results *report.Collector, log logger.Logger) *Hooks {
	return &Hooks{
		cfg:      cfg,
		drivers:  drivers,
		fs:       fs,
		archiver: archiver,
		history:  history,
		results:  results,
		backend:  cfg.Driver.Backend,
		logger:   log,
		now:      time.Now,
	}
}

// Register installs the hooks on sc.
func (h *Hooks) Register(sc *godog.ScenarioContext) {
	sc.Before(h.Before)
	sc.After(h.After)
}

// RunIDs returns the history ids of the scenarios started so far.
func (h *Hooks) RunIDs() []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]uuid.UUID(nil), h.runIDs...)
}

// Before allocates a worker and a browser session for the scenario.
func (h *Hooks) Before(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	tc := &TestContext{
		Worker:    driver.NewWorkerID(),
		Name:      sc.Name,
		Feature:   filepath.Base(sc.Uri),
		Tags:      tagNames(sc),
		StartedAt: h.now(),
	}
	ctx = WithTestContext(driver.WithWorker(ctx, tc.Worker), tc)

	log := h.logger.WithField("worker_id", tc.Worker)
	log.Info(ctx, "starting scenario", map[string]interface{}{
		"scenario": tc.Name,
		"tags":     tc.Tags,
	})

	tc.RunID = h.history.Start(ctx, &runhistory.ScenarioRun{
		Name:      tc.Name,
		Feature:   tc.Feature,
		Tags:      runhistory.JoinTags(tc.Tags),
		Browser:   h.cfg.Browser,
		Backend:   h.backend,
		WorkerID:  string(tc.Worker),
		StartedAt: tc.StartedAt,
	})
	if tc.RunID != uuid.Nil {
		h.mu.Lock()
		h.runIDs = append(h.runIDs, tc.RunID)
		h.mu.Unlock()
	}

	session, err := h.drivers.InitializeDriver(ctx, tc.Worker, h.cfg.Browser)
	if err != nil {
		return ctx, fmt.Errorf("failed to initialize driver: %w", err)
	}
	tc.Session = session
	tc.Page = page.NewBase(session, h.cfg.ExplicitWait, log)

	log.Info(ctx, "browser initialized", map[string]interface{}{
		"browser": h.cfg.Browser,
	})
	return ctx, nil
}

// After captures a screenshot when configured, records the result and always
// releases the scenario's session. It never changes the scenario outcome.
func (h *Hooks) After(ctx context.Context, sc *godog.Scenario, scenarioErr error) (context.Context, error) {
	tc, err := FromContext(ctx)
	if err != nil {
		h.logger.Warn(ctx, "scenario finished without context", map[string]interface{}{
			"scenario": sc.Name,
		})
		return ctx, nil
	}
	defer h.drivers.QuitDriver(ctx, tc.Worker)

	log := h.logger.WithField("worker_id", tc.Worker)
	status := statusOf(scenarioErr)
	failed := status == report.StatusFailed

	if tc.Session != nil && ShouldCapture(failed, h.cfg) {
		h.capture(ctx, log, tc, failed)
	} else {
		log.Debug(ctx, "screenshot skipped", map[string]interface{}{
			"scenario": tc.Name,
			"failed":   failed,
		})
	}

	finished := h.now()
	result := report.ScenarioResult{
		Name:        tc.Name,
		Feature:     tc.Feature,
		Tags:        tc.Tags,
		Browser:     h.cfg.Browser,
		Status:      status,
		StartedAt:   tc.StartedAt,
		Duration:    finished.Sub(tc.StartedAt),
		Attachments: tc.Attachments(),
	}
	if scenarioErr != nil {
		result.Error = scenarioErr.Error()
	}
	h.results.Add(result)
	h.history.Finish(ctx, tc.RunID, runhistory.Status(status), result.Error)

	log.Info(ctx, "finishing scenario", map[string]interface{}{
		"scenario":    tc.Name,
		"status":      status,
		"duration_ms": result.Duration.Milliseconds(),
	})
	return ctx, nil
}

// capture logs every failure instead of returning it.
func (h *Hooks) capture(ctx context.Context, log logger.Logger, tc *TestContext, failed bool) {
	data, err := tc.Session.Screenshot(ctx)
	if err != nil {
		log.Warn(ctx, "failed to capture screenshot", map[string]interface{}{
			"error":    err.Error(),
			"scenario": tc.Name,
		})
		return
	}

	title := "Passed - " + tc.Name
	if failed {
		title = "Failed - " + tc.Name
	}
	tc.Attach(title, data)

	fileName := ScreenshotName(tc.Name, h.now())
	path := filepath.Join(h.cfg.ScreenshotPath, fileName)
	if err := h.fs.MkdirAll(h.cfg.ScreenshotPath, 0755); err != nil {
		log.Warn(ctx, "failed to create screenshot directory", map[string]interface{}{
			"error": err.Error(),
			"path":  h.cfg.ScreenshotPath,
		})
		return
	}
	if err := afero.WriteFile(h.fs, path, data, 0644); err != nil {
		log.Warn(ctx, "failed to save screenshot", map[string]interface{}{
			"error": err.Error(),
			"path":  path,
		})
		return
	}

	key := path
	if h.archiver != nil {
		archived, err := h.archiver.ArchiveScreenshot(ctx, string(tc.Worker), fileName, data)
		if err != nil {
			log.Warn(ctx, "failed to archive screenshot", map[string]interface{}{
				"error": err.Error(),
				"file":  fileName,
			})
		} else {
			key = archived
		}
	}
	h.history.AddAsset(ctx, tc.RunID, fileName, key, "image/png", int64(len(data)))

	log.Info(ctx, "screenshot captured", map[string]interface{}{
		"scenario": tc.Name,
		"path":     path,
		"failed":   failed,
	})
}

func statusOf(err error) report.Status {
	switch {
	case err == nil:
		return report.StatusPassed
	case errors.Is(err, godog.ErrSkip), errors.Is(err, godog.ErrPending), errors.Is(err, godog.ErrUndefined):
		return report.StatusSkipped
	default:
		return report.StatusFailed
	}
}

func tagNames(sc *godog.Scenario) []string {
	tags := make([]string, 0, len(sc.Tags))
	for _, t := range sc.Tags {
		tags = append(tags, t.Name)
	}
	return tags
}
