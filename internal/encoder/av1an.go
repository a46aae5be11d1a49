package encoder

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"spool/internal/media"
	"spool/internal/outputs"
)

// Av1anOptions carries the per-run knobs threaded into the av1an command.
type Av1anOptions struct {
	// Workers pins the av1an worker count when above zero.
	Workers int
	// ForceKeyframes lists frame numbers av1an must cut keyframes at,
	// comma separated.
	ForceKeyframes string
	// ScaleTo inserts an ffmpeg scale filter ahead of the encoder. The
	// dims passed alongside must already reflect the target size.
	ScaleTo *outputs.Resolution
	// Cores overrides the detected core count. Zero means autodetect.
	Cores int
}

// BuildAv1anArgs assembles the full av1an argument list for one encode.
// input is the lossless intermediate and output the chunked encode target;
// both are made absolute because av1an changes directories while it works.
func BuildAv1anArgs(video outputs.VideoSettings, dims media.VideoDimensions, input, output string, opts Av1anOptions) ([]string, error) {
	if _, ok := video.(*outputs.CopySettings); ok {
		return nil, errors.New("copy output does not re-encode video")
	}
	absInput, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", input, err)
	}
	absOutput, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", output, err)
	}

	res := PlanResources(video, dims, opts.Cores, opts.Workers)
	encArgs, err := VideoArgs(video, dims, res)
	if err != nil {
		return nil, err
	}

	fps := dims.RoundedFPS()
	sceneInterval := fps * 10
	minSceneLen := fps
	if profileOf(video).IsAnime() {
		sceneInterval = fps * 15
		minSceneLen = fps / 2
	}

	args := []string{
		"-i", absInput,
		"-e", video.Av1anName(),
		"-v", strings.Join(encArgs, " "),
		"--sc-method", "standard",
		"-x", fmt.Sprint(sceneInterval),
		"--min-scene-len", fmt.Sprint(minSceneLen),
		"-w", fmt.Sprint(res.Workers),
		"--pix-format", dims.FFmpegPixelFormat(),
		"-r",
		"-o", absOutput,
	}
	if opts.ScaleTo != nil {
		args = append(args, "-f", fmt.Sprintf("-vf scale=%d:%d", opts.ScaleTo.Width, opts.ScaleTo.Height))
	}
	if opts.ForceKeyframes != "" {
		args = append(args, "--force-keyframes", opts.ForceKeyframes)
	}
	if dims.Height > 1080 {
		args = append(args, "--sc-downscale-height", "1080")
	}
	if isAV1(video) {
		args = append(args, "--set-thread-affinity", fmt.Sprint(res.Affinity()))
	}
	if grain := grainOf(video); grain > 0 {
		args = append(args, "--photon-noise", fmt.Sprint(grain), "--chroma-noise")
	}
	if _, ok := video.(*outputs.X265Settings); ok {
		args = append(args, "--concat", "mkvmerge")
	}
	return args, nil
}

// DimensionWarnings lists encode dimensions the encoders handle poorly.
func DimensionWarnings(dims media.VideoDimensions) []string {
	var warnings []string
	if dims.Width%8 != 0 {
		warnings = append(warnings, fmt.Sprintf("width %d is not divisible by 8", dims.Width))
	}
	if dims.Height%8 != 0 {
		warnings = append(warnings, fmt.Sprintf("height %d is not divisible by 8", dims.Height))
	}
	return warnings
}
