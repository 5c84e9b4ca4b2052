package driver

import (
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/config"
)

// StealthScript hides navigator.webdriver from page scripts.
const StealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

const (
	chromeUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	edgeUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0"
	firefoxUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0"
)

// Options are the backend-independent session settings.
type Options struct {
	Headless        bool
	Binary          string
	ImplicitWait    time.Duration
	ExplicitWait    time.Duration
	PageLoadTimeout time.Duration
}

// ActionTimeout is the default timeout a backend applies to element actions.
// An implicit wait of 0 means "rely on explicit waits", so the explicit wait
// is used instead of letting the backend wait forever.
func (o Options) ActionTimeout() time.Duration {
	if o.ImplicitWait > 0 {
		return o.ImplicitWait
	}
	return o.ExplicitWait
}

// OptionsFromConfig reads session settings from the loaded configuration.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Headless:        cfg.Driver.Headless,
		Binary:          cfg.Driver.Binary,
		ImplicitWait:    cfg.ImplicitWait,
		ExplicitWait:    cfg.ExplicitWait,
		PageLoadTimeout: cfg.PageLoadTimeout,
	}
}

// LaunchOptions is everything a backend needs to start one browser kind.
type LaunchOptions struct {
	Options

	UserAgent string
	// Args are command line switches for Chromium based browsers.
	Args []string
	// DropArgs are default switches the backend must not pass.
	DropArgs []string
	// Prefs are Firefox about:config preferences.
	Prefs       map[string]interface{}
	InitScripts []string
}

// ForKind expands o with the per-browser launch settings: maximized window,
// no notifications or popup blocking, no password manager and automation
// detection suppressed.
func (o Options) ForKind(kind Kind) LaunchOptions {
	out := LaunchOptions{
		Options:     o,
		InitScripts: []string{StealthScript},
	}

	switch kind {
	case Firefox:
		out.UserAgent = firefoxUserAgent
		out.Prefs = map[string]interface{}{
			"dom.webdriver.enabled":        false,
			"useAutomationExtension":       false,
			"dom.webnotifications.enabled": false,
			"dom.disable_open_during_load": false,
			"signon.rememberSignons":       false,
			"general.useragent.override":   firefoxUserAgent,
		}
	default:
		out.UserAgent = chromeUserAgent
		if kind == Edge {
			out.UserAgent = edgeUserAgent
		}
		out.Args = []string{
			"--start-maximized",
			"--disable-notifications",
			"--disable-popup-blocking",
			"--disable-blink-features=AutomationControlled",
			"--disable-save-password-bubble",
			"--password-store=basic",
			"--disable-features=PasswordLeakDetection,AutofillServerCommunication",
			"--no-first-run",
			"--no-default-browser-check",
		}
		out.DropArgs = []string{"--enable-automation"}
	}
	return out
}
