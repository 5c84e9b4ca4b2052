package report

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/afero"
)

//go:embed report.html.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"pngURI": func(b []byte) template.URL {
		return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(b))
	},
	"join": strings.Join,
	"ms":   func(d time.Duration) int64 { return d.Milliseconds() },
}).Parse(reportTemplate))

// SystemInfo is shown in the report header.
type SystemInfo struct {
	OS       string
	Arch     string
	Go       string
	User     string
	Browser  string
	Backend  string
	Hostname string
}

// DefaultSystemInfo fills in what the running process can discover itself.
func DefaultSystemInfo(browser, backend string) SystemInfo {
	host, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	return SystemInfo{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Go:       runtime.Version(),
		User:     user,
		Browser:  browser,
		Backend:  backend,
		Hostname: host,
	}
}

// Writer renders scenario results into the in-progress report file.
type Writer struct {
	fs    afero.Fs
	dir   string
	title string
	info  SystemInfo
	now   func() time.Time
}

func NewWriter(fs afero.Fs, dir, title string, info SystemInfo) *Writer {
	return &Writer{fs: fs, dir: dir, title: title, info: info, now: time.Now}
}

type reportView struct {
	Title       string
	GeneratedAt string
	Info        SystemInfo
	Summary     Summary
	Results     []ScenarioResult
}

// Write renders results to ExtentReport.html in the report directory and
// returns the written path.
func (w *Writer) Write(results []ScenarioResult) (string, error) {
	if err := w.fs.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	var buf bytes.Buffer
	view := reportView{
		Title:       w.title,
		GeneratedAt: w.now().Format(time.RFC3339),
		Info:        w.info,
		Summary:     Summarize(results),
		Results:     results,
	}
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	path := filepath.Join(w.dir, TempReportName)
	if err := afero.WriteFile(w.fs, path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
