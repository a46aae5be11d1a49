package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"spool/internal/config"
	"spool/internal/history"
	"spool/internal/logging"
)

// appState carries the configuration and logger shared by every command.
// Config loading happens once per invocation, after flags are parsed.
type appState struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newAppState(configFlag, logLevelFlag, logFormatFlag *string) *appState {
	return &appState{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (a *appState) ensureConfig() (*config.Config, error) {
	a.configOnce.Do(func() {
		var path string
		if a.configFlag != nil {
			path = strings.TrimSpace(*a.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			a.configErr = err
			return
		}
		if a.logLevelFlag != nil {
			if level := strings.TrimSpace(*a.logLevelFlag); level != "" {
				cfg.Logging.Level = level
			}
		}
		if a.logFormatFlag != nil {
			if format := strings.TrimSpace(*a.logFormatFlag); format != "" {
				cfg.Logging.Format = format
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			a.configErr = err
			return
		}
		a.config = cfg
		a.configPath = resolvedPath
	})
	return a.config, a.configErr
}

// requestedConfigPath returns the raw --config value, empty when unset.
func (a *appState) requestedConfigPath() string {
	if a.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*a.configFlag)
}

func (a *appState) logger() (*slog.Logger, error) {
	cfg, err := a.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// withStore opens the history database, runs fn, and closes it again.
func (a *appState) withStore(fn func(*history.Store) error) error {
	cfg, err := a.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
