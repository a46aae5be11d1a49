package encoder

import (
	"fmt"

	"spool/internal/media"
	"spool/internal/outputs"
)

// VideoArgs returns the encoder argument list av1an passes through -v.
func VideoArgs(video outputs.VideoSettings, dims media.VideoDimensions, res Resources) ([]string, error) {
	switch s := video.(type) {
	case *outputs.AomSettings:
		return buildAomArgs(s, dims, res.Threads), nil
	case *outputs.Rav1eSettings:
		return buildRav1eArgs(s, dims), nil
	case *outputs.SvtAv1Settings:
		return buildSvtAv1Args(s, dims, res.Affinity()), nil
	case *outputs.X264Settings:
		return buildX264Args(s, dims), nil
	case *outputs.X265Settings:
		return buildX265Args(s, dims, res.Threads), nil
	}
	return nil, fmt.Errorf("encoder %s takes no encode arguments", video.EncoderName())
}

// EncodeDimensions applies an output's bit depth and resolution overrides
// onto the probed source dimensions. The color space stays as probed; a
// resize does not retag the matrix.
func EncodeDimensions(dims media.VideoDimensions, out outputs.Output) media.VideoDimensions {
	if out.BitDepth != nil {
		dims.BitDepth = *out.BitDepth
	}
	if out.Resolution != nil {
		dims.Width = out.Resolution.Width
		dims.Height = out.Resolution.Height
	}
	return dims
}

func profileOf(video outputs.VideoSettings) outputs.Profile {
	switch s := video.(type) {
	case *outputs.AomSettings:
		return s.Profile
	case *outputs.Rav1eSettings:
		return s.Profile
	case *outputs.SvtAv1Settings:
		return s.Profile
	case *outputs.X264Settings:
		return s.Profile
	case *outputs.X265Settings:
		return s.Profile
	}
	return outputs.ProfileFilm
}

func grainOf(video outputs.VideoSettings) int {
	switch s := video.(type) {
	case *outputs.AomSettings:
		return s.Grain
	case *outputs.Rav1eSettings:
		return s.Grain
	case *outputs.SvtAv1Settings:
		return s.Grain
	}
	return 0
}
