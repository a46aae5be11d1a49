// Package encoder builds the argument lists for the external tools the
// encode pipeline drives and runs them.
//
// Argument construction is pure: one builder per video encoder
// (aom/rav1e/svt/x264/x265), the av1an wrapper command, the lossless
// intermediate pipe, audio extraction, and the mkvmerge/ffmpeg mux. The
// Runner executes the assembled commands, streaming tool output into the
// debug log and carrying the final lines into errors.
package encoder
