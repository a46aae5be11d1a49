// Package services defines shared utilities consumed by the encode pipeline
// stages and external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and source paths for
//     logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed vs skipped vs interrupted).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
