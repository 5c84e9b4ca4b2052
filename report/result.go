package report

import (
	"sort"
	"sync"
	"time"
)

// Status is the outcome of a scenario.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Attachment is a PNG screenshot embedded in the report.
type Attachment struct {
	Title string
	Data  []byte
}

// ScenarioResult is one executed scenario.
type ScenarioResult struct {
	Name        string
	Feature     string
	Tags        []string
	Browser     string
	Status      Status
	Error       string
	StartedAt   time.Time
	Duration    time.Duration
	Attachments []Attachment
}

// Failed reports whether the scenario failed.
func (r ScenarioResult) Failed() bool {
	return r.Status == StatusFailed
}

// Collector accumulates results from concurrently running scenarios.
type Collector struct {
	mu      sync.Mutex
	results []ScenarioResult
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(r ScenarioResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

// Results returns a copy of the collected results ordered by start time.
func (c *Collector) Results() []ScenarioResult {
	c.mu.Lock()
	out := make([]ScenarioResult, len(c.results))
	copy(out, c.results)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Summary counts results by status.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

func Summarize(results []ScenarioResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		default:
			s.Skipped++
		}
	}
	return s
}
