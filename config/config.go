// Package config loads the framework settings from a properties file.
//
// The loaded Config is a plain value: it is read once at process start and
// handed to every component that needs it.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hairizuan-noorazman/ui-bdd/logger"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// DefaultPath is used when no config file is given on the command line.
const DefaultPath = "config/config.properties"

// ErrConfigNotFound is returned when the config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// Recognized keys.
const (
	KeyBrowser              = "browser"
	KeyBaseURL              = "base.url"
	KeyImplicitWait         = "implicit.wait"
	KeyExplicitWait         = "explicit.wait"
	KeyPageLoadTimeout      = "page.load.timeout"
	KeyScreenshotOnFailure  = "take.screenshot.on.failure"
	KeyScreenshotOnPass     = "take.screenshot.on.pass"
	KeyScreenshotPath       = "screenshot.path"
	KeyReportPath           = "extent.report.path"
	KeyReportRetentionCount = "extent.report.retention.count"

	KeyDriverBackend = "driver.backend"
	KeyDriverBinary  = "driver.binary"
	KeyHeadless      = "headless"

	KeyParallel     = "parallel"
	KeyConcurrency  = "concurrency"
	KeyFeaturesPath = "features.path"
	KeyTags         = "tags"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyLogFile   = "log.file"

	KeyHistoryEnabled = "history.enabled"
	KeyHistoryDriver  = "history.driver"
	KeyHistoryDSN     = "history.dsn"

	KeyStorageType          = "storage.type"
	KeyStorageBaseDir       = "storage.base_dir"
	KeyStorageS3Bucket      = "storage.s3_bucket"
	KeyStorageS3Region      = "storage.s3_region"
	KeyStorageS3PresignTime = "storage.s3_presign_expiry"

	KeyServerHost         = "server.host"
	KeyServerPort         = "server.port"
	KeyServerUsername     = "server.username"
	KeyServerPasswordHash = "server.password_hash"
)

// Config holds every framework setting. Durations are already converted from
// the seconds stored in the file.
type Config struct {
	Browser              string
	BaseURL              string
	ImplicitWait         time.Duration
	ExplicitWait         time.Duration
	PageLoadTimeout      time.Duration
	ScreenshotOnFailure  bool
	ScreenshotOnPass     bool
	ScreenshotPath       string
	ReportPath           string
	ReportRetentionCount int

	Driver  DriverConfig
	Run     RunConfig
	Log     LogConfig
	History HistoryConfig
	Storage StorageConfig
	Server  ServerConfig

	source     string
	properties map[string]string
}

// DriverConfig selects and tunes the browser backend.
type DriverConfig struct {
	Backend  string // "playwright" or "chromedp"
	Binary   string // explicit browser executable, optional
	Headless bool
}

// RunConfig controls scenario discovery and scheduling.
type RunConfig struct {
	Parallel     bool
	Concurrency  int
	FeaturesPath string
	Tags         string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// HistoryConfig configures the scenario run history database.
type HistoryConfig struct {
	Enabled bool
	Driver  string // "sqlite" or "mysql"
	DSN     string
}

// StorageConfig holds artifact storage configuration.
type StorageConfig struct {
	Type            string // "local" or "s3"
	BaseDir         string
	S3Bucket        string
	S3Region        string
	S3PresignExpiry time.Duration
}

// ServerConfig holds the report server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	Username     string
	PasswordHash string
}

// Source returns the file the configuration was read from, if any.
func (c Config) Source() string {
	return c.source
}

// Property returns the raw value of key as read from the file or environment.
func (c Config) Property(key string) (string, bool) {
	v, ok := c.properties[key]
	return v, ok
}

// Concurrency returns the number of scenarios godog may run at once.
func (c Config) Concurrency() int {
	if !c.Run.Parallel || c.Run.Concurrency < 1 {
		return 1
	}
	return c.Run.Concurrency
}

// Load reads the properties file at path. A missing file is an error;
// malformed values fall back to their defaults with a warning.
func Load(path string, log logger.Logger) (Config, error) {
	if path == "" {
		path = DefaultPath
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f, log)
	if err != nil {
		return Config{}, err
	}
	cfg.source = path
	return cfg, nil
}

// Parse reads properties from r. Environment variables override file values
// using the key upper-cased with dots replaced by underscores.
func Parse(r io.Reader, log logger.Logger) (Config, error) {
	v := newViper()
	v.SetConfigType("properties")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadConfig(r); err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	return build(v, log), nil
}

// newViper returns a viper instance with flat keys and every default set.
func newViper() *viper.Viper {
	// Keys are flat; dots are part of the name, not nesting.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	setDefaults(v)
	return v
}

func build(v *viper.Viper, log logger.Logger) Config {
	p := parser{v: v, log: log}

	var cfg Config
	cfg.Browser = strings.ToLower(p.str(KeyBrowser))
	cfg.BaseURL = p.str(KeyBaseURL)
	cfg.ImplicitWait = p.optionalSeconds(KeyImplicitWait, defaultImplicitWait)
	cfg.ExplicitWait = p.seconds(KeyExplicitWait, defaultExplicitWait)
	cfg.PageLoadTimeout = p.seconds(KeyPageLoadTimeout, defaultPageLoadTimeout)
	cfg.ScreenshotOnFailure = p.boolean(KeyScreenshotOnFailure, true)
	cfg.ScreenshotOnPass = p.boolean(KeyScreenshotOnPass, false)
	cfg.ScreenshotPath = p.str(KeyScreenshotPath)
	cfg.ReportPath = p.str(KeyReportPath)
	cfg.ReportRetentionCount = p.nonNegative(KeyReportRetentionCount, defaultRetentionCount)

	cfg.Driver.Backend = strings.ToLower(p.str(KeyDriverBackend))
	cfg.Driver.Binary = p.str(KeyDriverBinary)
	cfg.Driver.Headless = p.boolean(KeyHeadless, false)

	cfg.Run.Parallel = p.boolean(KeyParallel, false)
	cfg.Run.Concurrency = p.positive(KeyConcurrency, 1)
	cfg.Run.FeaturesPath = p.str(KeyFeaturesPath)
	cfg.Run.Tags = p.str(KeyTags)

	cfg.Log.Level = p.str(KeyLogLevel)
	cfg.Log.Format = p.str(KeyLogFormat)
	cfg.Log.File = p.str(KeyLogFile)

	cfg.History.Enabled = p.boolean(KeyHistoryEnabled, false)
	cfg.History.Driver = strings.ToLower(p.str(KeyHistoryDriver))
	cfg.History.DSN = p.str(KeyHistoryDSN)

	cfg.Storage.Type = strings.ToLower(p.str(KeyStorageType))
	cfg.Storage.BaseDir = p.str(KeyStorageBaseDir)
	cfg.Storage.S3Bucket = p.str(KeyStorageS3Bucket)
	cfg.Storage.S3Region = p.str(KeyStorageS3Region)
	cfg.Storage.S3PresignExpiry = p.duration(KeyStorageS3PresignTime, 15*time.Minute)

	cfg.Server.Host = p.str(KeyServerHost)
	cfg.Server.Port = p.positive(KeyServerPort, defaultServerPort)
	cfg.Server.Username = p.str(KeyServerUsername)
	cfg.Server.PasswordHash = p.str(KeyServerPasswordHash)

	cfg.properties = make(map[string]string)
	for _, key := range v.AllKeys() {
		cfg.properties[key] = cast.ToString(v.Get(key))
	}

	return cfg
}

type parser struct {
	v   *viper.Viper
	log logger.Logger
}

func (p parser) str(key string) string {
	return strings.TrimSpace(cast.ToString(p.v.Get(key)))
}

func (p parser) warn(key string, raw, def interface{}) {
	if p.log == nil {
		return
	}
	p.log.Warn(context.Background(), "invalid config value, using default", map[string]interface{}{
		"key":     key,
		"value":   raw,
		"default": def,
	})
}

func (p parser) integer(key string, def int, valid func(int) bool) int {
	raw := p.v.Get(key)
	n, err := strconv.Atoi(strings.TrimSpace(cast.ToString(raw)))
	if err != nil || !valid(n) {
		p.warn(key, raw, def)
		return def
	}
	return n
}

func (p parser) positive(key string, def int) int {
	return p.integer(key, def, func(n int) bool { return n > 0 })
}

func (p parser) nonNegative(key string, def int) int {
	return p.integer(key, def, func(n int) bool { return n >= 0 })
}

// seconds reads a whole, positive number of seconds.
func (p parser) seconds(key string, def int) time.Duration {
	return time.Duration(p.positive(key, def)) * time.Second
}

// optionalSeconds is seconds but also accepts 0.
func (p parser) optionalSeconds(key string, def int) time.Duration {
	return time.Duration(p.nonNegative(key, def)) * time.Second
}

func (p parser) boolean(key string, def bool) bool {
	raw := p.v.Get(key)
	s := strings.TrimSpace(cast.ToString(raw))
	if s == "" {
		return def
	}
	b, err := cast.ToBoolE(strings.ToLower(s))
	if err != nil {
		p.warn(key, raw, def)
		return def
	}
	return b
}

func (p parser) duration(key string, def time.Duration) time.Duration {
	raw := p.v.Get(key)
	d, err := cast.ToDurationE(strings.TrimSpace(cast.ToString(raw)))
	if err != nil || d <= 0 {
		p.warn(key, raw, def)
		return def
	}
	return d
}
