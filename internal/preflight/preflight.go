package preflight

import (
	"spool/internal/config"
	"spool/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the given config: every
// configured directory must be usable and the staging volume must have
// room for intermediates.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if cfg.Preflight.MinFreeGiB > 0 {
		results = append(results, CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, cfg.Preflight.MinFreeGiB))
	}
	return results
}

// CheckTools reports the availability of the external encode toolchain.
func CheckTools(cfg *config.Config) []deps.Status {
	if cfg == nil {
		return nil
	}
	requirements := []deps.Requirement{
		{Name: "av1an", Command: cfg.Av1anBinary(), Description: "Chunked video encoding"},
		{Name: "vspipe", Command: cfg.VspipeBinary(), Description: "VapourSynth script evaluation"},
		{Name: "ffmpeg", Command: cfg.FFmpegBinary(), Description: "Lossless intermediates, audio encoding, mp4 muxing"},
		{Name: "ffprobe", Command: cfg.FFprobeBinary(), Description: "Stream and frame inspection"},
		{Name: "mkvmerge", Command: cfg.MkvmergeBinary(), Description: "Matroska muxing and chunk concatenation"},
	}
	return deps.CheckBinaries(requirements)
}

// Failures filters results down to the checks that did not pass.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
