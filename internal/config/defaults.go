package config

const (
	defaultAPIBaseURL     = "http://localhost:8000"
	defaultAPITimeout     = 30
	defaultListLimit      = 100
	defaultSearchLimit    = 50
	defaultLogDir         = "~/.local/share/almoner/logs"
	defaultJournalEnabled = true
	defaultJournalPath    = "~/.local/share/almoner/review.db"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			BaseURL:        defaultAPIBaseURL,
			TimeoutSeconds: defaultAPITimeout,
			ListLimit:      defaultListLimit,
			SearchLimit:    defaultSearchLimit,
		},
		Journal: Journal{
			Enabled: defaultJournalEnabled,
			Path:    defaultJournalPath,
		},
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
