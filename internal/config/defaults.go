package config

const (
	defaultStagingDir           = "~/.local/share/spool/staging"
	defaultLogDir               = "~/.local/share/spool/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultWatchDebounceSeconds = 2
	defaultMinFreeGiB           = 10
	defaultNotifyTimeout        = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Preflight: Preflight{
			Enabled:    true,
			MinFreeGiB: defaultMinFreeGiB,
		},
		Workflow: Workflow{
			WatchDebounceSeconds: defaultWatchDebounceSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completed:      true,
			Errors:         true,
		},
	}
}
