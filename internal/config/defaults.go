package config

const (
	defaultLogDir          = "~/.local/share/lightbox/logs"
	defaultSourceLocation  = "https://www.raywenderlich.com/downloads/ClassicPhotosDictionary.plist"
	defaultFetchTimeout    = 30
	defaultFetchMaxBytes   = 32 << 20
	defaultUserAgent       = "Lightbox/dev"
	defaultSepiaIntensity  = 0.8
	defaultViewportWindow  = 8
	defaultViewportStep    = 4
	defaultViewportSettle  = 250
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	sourceLocationEnv      = "LIGHTBOX_SOURCE"
	defaultConfigLocation  = "~/.config/lightbox/config.toml"
	projectConfigFilename  = "lightbox.toml"
	defaultLogFileBasename = "lightbox.log"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Source: Source{
			Location: defaultSourceLocation,
		},
		Fetch: Fetch{
			TimeoutSeconds: defaultFetchTimeout,
			MaxBytes:       defaultFetchMaxBytes,
			UserAgent:      defaultUserAgent,
		},
		Transform: Transform{
			SepiaIntensity: defaultSepiaIntensity,
		},
		Viewport: Viewport{
			Window:   defaultViewportWindow,
			Step:     defaultViewportStep,
			SettleMS: defaultViewportSettle,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
