package cdpdriver

import (
	"context"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/driver"
	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArg(t *testing.T) {
	tests := []struct {
		arg       string
		wantName  string
		wantValue interface{}
	}{
		{"--start-maximized", "start-maximized", true},
		{"--disable-blink-features=AutomationControlled", "disable-blink-features", "AutomationControlled"},
		{"--disable-features=A,B", "disable-features", "A,B"},
		{"no-first-run", "no-first-run", true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, value := splitArg(tt.arg)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestLaunch_FirefoxUnsupported(t *testing.T) {
	l := NewLauncher(logger.NewTestLogger())
	_, err := l.Launch(context.Background(), driver.Firefox, driver.Options{}.ForKind(driver.Firefox))
	assert.ErrorIs(t, err, driver.ErrUnsupportedBrowser)
}

func TestAllocatorOptions_ExplicitBinary(t *testing.T) {
	opts := driver.Options{Binary: "/usr/bin/msedge"}.ForKind(driver.Edge)
	allocOpts, err := allocatorOptions(driver.Edge, opts)
	require.NoError(t, err)
	assert.NotEmpty(t, allocOpts)
}

func TestAllocatorOptions_EdgeNotFound(t *testing.T) {
	saved := edgeCandidates[runtime.GOOS]
	edgeCandidates[runtime.GOOS] = []string{"uitest-no-such-edge-binary"}
	defer func() { edgeCandidates[runtime.GOOS] = saved }()

	_, err := allocatorOptions(driver.Edge, driver.Options{}.ForKind(driver.Edge))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set driver.binary")
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"textarea[name=\"q\"]"`, quote(`textarea[name="q"]`))
}

// TestLaunch_Browser needs a local Chrome and UITEST_BROWSER=1.
func TestLaunch_Browser(t *testing.T) {
	if os.Getenv("UITEST_BROWSER") != "1" {
		t.Skip("set UITEST_BROWSER=1 to run browser tests")
	}

	ctx := context.Background()
	l := NewLauncher(logger.NewTestLogger())
	opts := driver.Options{Headless: true, ImplicitWait: 5 * time.Second, PageLoadTimeout: 20 * time.Second}
	s, err := l.Launch(ctx, driver.Chrome, opts.ForKind(driver.Chrome))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Navigate(ctx, "data:text/html,<title>t</title><input id=q><a id=x>1</a><a>2</a>"))
	title, err := s.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t", title)

	require.NoError(t, s.Fill(ctx, "#q", "golang"))
	v, err := s.InputValue(ctx, "#q")
	require.NoError(t, err)
	assert.Equal(t, "golang", v)

	n, err := s.Count(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	err = s.WaitFor(ctx, "#missing", driver.Visible, 200*time.Millisecond)
	assert.ErrorIs(t, err, driver.ErrTimeout)

	require.NoError(t, s.EvalOnElement(ctx, "#q", "el.value = String(navigator.webdriver);"))
	webdriver, err := s.InputValue(ctx, "#q")
	require.NoError(t, err)
	assert.Equal(t, "undefined", webdriver)
}
