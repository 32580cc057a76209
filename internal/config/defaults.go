package config

const (
	defaultDataDir            = "~/.local/share/appbinhub/data"
	defaultStoreDir           = "~/.local/share/appbinhub/converted_packages"
	defaultStagingDir         = "~/.local/share/appbinhub/staging"
	defaultLogDir             = "~/.local/share/appbinhub/logs"
	defaultUserAgent          = "AppBinHub/1.0 (+https://github.com/appbinhub/appbinhub)"
	defaultRequestTimeout     = 30
	defaultDownloadTimeout    = 300
	defaultMaxRetries         = 3
	defaultRetryDelay         = 5
	defaultProbeTimeout       = 10
	defaultExtractTimeout     = 60
	defaultBuildTimeout       = 300
	defaultValidateTimeout    = 30
	defaultTokenEnv           = "GITHUB_TOKEN"
	defaultRateLimitThreshold = 100
	defaultMinBundleBytes     = 1 << 20   // 1 MiB
	defaultMaxBundleBytes     = 500 << 20 // 500 MiB
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StoreDir:   defaultStoreDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Network: Network{
			UserAgent:       defaultUserAgent,
			RequestTimeout:  defaultRequestTimeout,
			DownloadTimeout: defaultDownloadTimeout,
			MaxRetries:      defaultMaxRetries,
			RetryDelay:      defaultRetryDelay,
		},
		Tools: Tools{
			ProbeTimeout:    defaultProbeTimeout,
			ExtractTimeout:  defaultExtractTimeout,
			BuildTimeout:    defaultBuildTimeout,
			ValidateTimeout: defaultValidateTimeout,
		},
		GitHub: GitHub{
			TokenEnv:           defaultTokenEnv,
			RateLimitThreshold: defaultRateLimitThreshold,
		},
		Validation: Validation{
			MinBundleBytes: defaultMinBundleBytes,
			MaxBundleBytes: defaultMaxBundleBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
