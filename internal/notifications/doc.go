// Package notifications delivers run events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Completion and error events are gated individually so a setup can
// alert on failures without narrating every successful batch.
//
// Extend this package if you need alternative transports; workflow code
// depends only on the Service interface.
package notifications
