package encoder

import (
	"fmt"

	"spool/internal/media"
)

// LosslessOptions adjust the lossless intermediate encode.
type LosslessOptions struct {
	// Slow trades roughly half the pipe speed for a smaller intermediate.
	Slow bool
	// CopyAudioFrom muxes the first audio track of the named file into
	// the intermediate alongside the video.
	CopyAudioFrom string
}

// BuildVspipeInfoArgs returns the vspipe argv that prints script info to
// the console once before the lossless pipe starts.
func BuildVspipeInfoArgs(script string) []string {
	return []string{"-i", script, "-o", "0", "-"}
}

// BuildVspipeY4MArgs returns the vspipe argv that streams the script as
// y4m on stdout.
func BuildVspipeY4MArgs(script string) []string {
	return []string{"-c", "y4m", script, "-", "-o", "0"}
}

// BuildLosslessArgs returns the ffmpeg argv that consumes y4m on stdin and
// writes the lossless intermediate. The colorimetry tags are stamped into
// the stream so av1an and the encoders read back what the script produced.
func BuildLosslessArgs(dims media.VideoDimensions, output string, opts LosslessOptions) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "level+error",
		"-stats",
		"-y",
		"-i", "-",
	}
	if opts.CopyAudioFrom != "" {
		args = append(args,
			"-i", opts.CopyAudioFrom,
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-acodec", "copy",
		)
	}
	// ultrafast to superfast halves the speed for a 15% size win; presets
	// past superfast shrink the file very little for a lot more time.
	preset := "ultrafast"
	if opts.Slow {
		preset = "superfast"
	}
	color := colorName(dims.ColorSpace)
	args = append(args,
		"-vcodec", "libx264",
		"-preset", preset,
		"-qp", "0",
		"-x264-params", fmt.Sprintf("colorprim=%s:colormatrix=%s:transfer=%s:input-range=limited:range=limited", color, color, color),
		output,
	)
	return args
}

// BuildExtractVideoArgs returns the ffmpeg argv that copies the source
// video stream out of its container unchanged. Copy outputs mux from the
// extracted stream instead of an encode.
func BuildExtractVideoArgs(input, output string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "level+error",
		"-stats",
		"-y",
		"-i", input,
		"-vcodec", "copy",
		"-map", "0:v:0",
		output,
	}
}

// FrameCountWithin reports whether a measured frame count is close enough
// to the expected one. Some sources report a count slightly off from the
// number of decodable frames, so a half percent slack is allowed.
func FrameCountWithin(got, want int) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= want/200
}
