// Package media probes source material: VapourSynth clip dimensions via
// vspipe -i, and container streams via ffprobe JSON output.
//
// Key types:
//   - VideoDimensions: the clip a script produces (size, frame count,
//     frame rate, pixel format, bit depth, derived color space)
//   - Result: parsed ffprobe output containing streams and format metadata
//
// Primary entry points:
//   - ProbeScript: runs vspipe -i and parses the reported clip info
//   - Inspect: executes ffprobe and returns a parsed Result
//   - SourceFile: extracts the media file a script reads from its text
//
// All probing shells out through a package-level command constructor so
// tests can substitute canned binaries.
package media
