package jobspec

import (
	"slices"
	"strconv"
	"strings"

	"spool/internal/outputs"
)

// Resolve parses a full specification string against a source file and
// returns one Output per segment, in specification order. An empty or
// all-whitespace specification yields the single default configuration.
// The first failing segment aborts the whole call; no partial results are
// returned.
func Resolve(spec, source string) ([]outputs.Output, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return []outputs.Output{outputs.Default()}, nil
	}
	segments := strings.Split(spec, ";")
	configs := make([]outputs.Output, 0, len(segments))
	for _, segment := range segments {
		filters, err := ParseSegment(segment, source)
		if err != nil {
			return nil, err
		}
		out, err := ResolveSegment(filters)
		if err != nil {
			return nil, err
		}
		configs = append(configs, out)
	}
	return configs, nil
}

// ResolveSegment folds one segment's filters into a configuration. The
// first VideoEncoderFilter in the stream selects the encoder and its
// defaults no matter where it appears; every other filter is then applied
// in stream order. Filters aimed at fields the selected encoder lacks are
// ignored.
func ResolveSegment(filters []Filter) (outputs.Output, error) {
	out := outputs.Default()
	for _, f := range filters {
		if enc, ok := f.(VideoEncoderFilter); ok {
			video, known := outputs.DefaultVideoSettings(enc.Name)
			if !known {
				return outputs.Output{}, &UnknownEncoderError{Name: enc.Name}
			}
			out.Video = video
			break
		}
	}
	for _, f := range filters {
		if err := applyFilter(&out, f); err != nil {
			return outputs.Output{}, err
		}
	}
	return out, nil
}

// applyFilter projects a single filter onto the configuration. The switch
// is exhaustive over the Filter implementations; adding a token type
// without handling it here leaves it silently unapplied, so keep the two
// lists in sync.
func applyFilter(out *outputs.Output, f Filter) error {
	switch f := f.(type) {
	case VideoEncoderFilter:
		// Applied ahead of projection by ResolveSegment.
		return nil
	case QuantizerFilter:
		return applyQuantizer(out, f.Value)
	case SpeedFilter:
		return applySpeed(out, f.Value)
	case ProfileFilter:
		applyProfile(out, f.Profile)
		return nil
	case GrainFilter:
		return applyGrain(out, f.Value)
	case CompatFilter:
		applyCompat(out, f.Enabled)
		return nil
	case ExtensionFilter:
		out.Extension = f.Extension
		return nil
	case BitDepthFilter:
		depth := f.Depth
		out.BitDepth = &depth
		return nil
	case ResolutionFilter:
		out.Resolution = &outputs.Resolution{Width: f.Width, Height: f.Height}
		return nil
	case AudioEncoderFilter:
		out.Audio.Encoder = f.Codec
		return nil
	case AudioBitrateFilter:
		if f.Kbps == 0 {
			return &InvalidAudioBitrateError{Value: f.Kbps}
		}
		out.Audio.KbpsPerChannel = f.Kbps
		return nil
	case AudioTracksFilter:
		out.AudioTracks = slices.Clone(f.Tracks)
		return nil
	case AudioNormalizeFilter:
		out.AudioNormalize = true
		return nil
	case SubtitleTracksFilter:
		out.SubtitleTracks = slices.Clone(f.Tracks)
		return nil
	}
	return nil
}

func applyQuantizer(out *outputs.Output, value int) error {
	var lo, hi int
	switch v := out.Video.(type) {
	case *outputs.X264Settings:
		v.CRF = value
		lo, hi = -12, 51
	case *outputs.X265Settings:
		v.CRF = value
		lo, hi = 0, 51
	case *outputs.AomSettings:
		v.CRF = value
		lo, hi = 0, 63
	case *outputs.SvtAv1Settings:
		v.CRF = value
		lo, hi = 0, 63
	case *outputs.Rav1eSettings:
		v.CRF = value
		lo, hi = 0, 255
	default:
		return nil
	}
	if value < lo || value > hi {
		return rangeError("q", strconv.Itoa(value), lo, hi)
	}
	return nil
}

func applySpeed(out *outputs.Output, value int) error {
	switch v := out.Video.(type) {
	case *outputs.AomSettings:
		v.Speed = value
	case *outputs.Rav1eSettings:
		v.Speed = value
	case *outputs.SvtAv1Settings:
		v.Speed = value
	default:
		return nil
	}
	if value > 10 {
		return rangeError("s", strconv.Itoa(value), 0, 10)
	}
	return nil
}

func applyGrain(out *outputs.Output, value int) error {
	switch v := out.Video.(type) {
	case *outputs.AomSettings:
		v.Grain = value
	case *outputs.Rav1eSettings:
		v.Grain = value
	case *outputs.SvtAv1Settings:
		v.Grain = value
	default:
		return nil
	}
	if value > 64 {
		return rangeError("grain", strconv.Itoa(value), 0, 64)
	}
	return nil
}

func applyProfile(out *outputs.Output, profile outputs.Profile) {
	switch v := out.Video.(type) {
	case *outputs.AomSettings:
		v.Profile = profile
	case *outputs.Rav1eSettings:
		v.Profile = profile
	case *outputs.SvtAv1Settings:
		v.Profile = profile
	case *outputs.X264Settings:
		v.Profile = profile
	case *outputs.X265Settings:
		v.Profile = profile
	}
}

func applyCompat(out *outputs.Output, enabled bool) {
	switch v := out.Video.(type) {
	case *outputs.X264Settings:
		v.Compat = enabled
	case *outputs.X265Settings:
		v.Compat = enabled
	case *outputs.AomSettings:
		v.Compat = enabled
	}
}
