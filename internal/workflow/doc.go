// Package workflow drives batch encode runs. A run discovers the scripts
// an input path names, resolves each script's output specification, and
// takes every resolved output through the lossless/av1an/audio/mux
// pipeline, recording each attempt in history. A file lock keeps runs from
// sharing staging intermediates with another spool process.
package workflow
