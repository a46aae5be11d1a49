package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Operational knobs with
// sane fallbacks are corrected by normalize instead; only settings the
// user must decide end up here.
func (c *Config) Validate() error {
	if err := c.validatePreflight(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePreflight() error {
	if c.Preflight.Enabled && c.Preflight.MinFreeGiB <= 0 {
		return errors.New("preflight.min_free_gib must be positive when preflight.enabled is true")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if !c.Notifications.Enabled {
		return nil
	}
	if c.Notifications.NtfyTopic == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/spool/config.toml"
		}
		return fmt.Errorf("notifications.ntfy_topic must be set when notifications.enabled is true (edit %s)", defaultPath)
	}
	return nil
}
