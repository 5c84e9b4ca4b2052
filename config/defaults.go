package config

import (
	"github.com/spf13/viper"
)

const (
	defaultImplicitWait    = 10
	defaultExplicitWait    = 15
	defaultPageLoadTimeout = 30
	defaultRetentionCount  = 10
	defaultServerPort      = 8090
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyBrowser, "chrome")
	v.SetDefault(KeyBaseURL, "https://www.google.com")
	v.SetDefault(KeyImplicitWait, defaultImplicitWait)
	v.SetDefault(KeyExplicitWait, defaultExplicitWait)
	v.SetDefault(KeyPageLoadTimeout, defaultPageLoadTimeout)
	v.SetDefault(KeyScreenshotOnFailure, true)
	v.SetDefault(KeyScreenshotOnPass, false)
	v.SetDefault(KeyScreenshotPath, "target/screenshots")
	v.SetDefault(KeyReportPath, "test-output/ExtentReports")
	v.SetDefault(KeyReportRetentionCount, defaultRetentionCount)

	v.SetDefault(KeyDriverBackend, "playwright")
	v.SetDefault(KeyDriverBinary, "")
	v.SetDefault(KeyHeadless, false)

	v.SetDefault(KeyParallel, false)
	v.SetDefault(KeyConcurrency, 1)
	v.SetDefault(KeyFeaturesPath, "features")
	v.SetDefault(KeyTags, "")

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyLogFile, "")

	v.SetDefault(KeyHistoryEnabled, false)
	v.SetDefault(KeyHistoryDriver, "sqlite")
	v.SetDefault(KeyHistoryDSN, "test-output/history.db")

	v.SetDefault(KeyStorageType, "local")
	v.SetDefault(KeyStorageBaseDir, "test-output/artifacts")
	v.SetDefault(KeyStorageS3Bucket, "")
	v.SetDefault(KeyStorageS3Region, "us-east-1")
	v.SetDefault(KeyStorageS3PresignTime, "15m")

	v.SetDefault(KeyServerHost, "127.0.0.1")
	v.SetDefault(KeyServerPort, defaultServerPort)
	v.SetDefault(KeyServerUsername, "")
	v.SetDefault(KeyServerPasswordHash, "")
}

// Defaults returns the configuration used when a file sets no keys.
func Defaults() Config {
	return build(newViper(), nil)
}
