package outputs

import "encoding/json"

// Resolution is an explicit output frame size override.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Output is one fully resolved encode configuration for a source file.
// BitDepth and Resolution are overrides: nil means the source values are
// kept as-is.
type Output struct {
	Video          VideoSettings
	Extension      string
	BitDepth       *int
	Resolution     *Resolution
	Audio          AudioSettings
	AudioNormalize bool
	AudioTracks    []Track
	SubtitleTracks []Track
}

// Default returns the configuration used when a specification names
// nothing: x264 at crf 18 with the film profile, muxed to mkv, audio
// copied through.
func Default() Output {
	return Output{
		Video:     &X264Settings{CRF: 18, Profile: ProfileFilm},
		Extension: "mkv",
		Audio:     AudioSettings{Encoder: AudioCopy, KbpsPerChannel: DefaultKbpsPerChannel},
	}
}

// MarshalJSON flattens the video settings variant into a discriminated
// object so resolved configurations can be dumped and diffed.
func (o Output) MarshalJSON() ([]byte, error) {
	type jsonOutput struct {
		Video          map[string]any `json:"video"`
		Extension      string         `json:"extension"`
		BitDepth       *int           `json:"bit_depth,omitempty"`
		Resolution     *Resolution    `json:"resolution,omitempty"`
		Audio          AudioSettings  `json:"audio"`
		AudioNormalize bool           `json:"audio_normalize"`
		AudioTracks    []Track        `json:"audio_tracks,omitempty"`
		SubtitleTracks []Track        `json:"subtitle_tracks,omitempty"`
	}
	return json.Marshal(jsonOutput{
		Video:          videoJSON(o.Video),
		Extension:      o.Extension,
		BitDepth:       o.BitDepth,
		Resolution:     o.Resolution,
		Audio:          o.Audio,
		AudioNormalize: o.AudioNormalize,
		AudioTracks:    o.AudioTracks,
		SubtitleTracks: o.SubtitleTracks,
	})
}

func videoJSON(v VideoSettings) map[string]any {
	m := map[string]any{"encoder": v.EncoderName()}
	switch s := v.(type) {
	case *AomSettings:
		m["crf"] = s.CRF
		m["speed"] = s.Speed
		m["profile"] = s.Profile
		m["grain"] = s.Grain
		m["compat"] = s.Compat
	case *Rav1eSettings:
		m["crf"] = s.CRF
		m["speed"] = s.Speed
		m["profile"] = s.Profile
		m["grain"] = s.Grain
	case *SvtAv1Settings:
		m["crf"] = s.CRF
		m["speed"] = s.Speed
		m["profile"] = s.Profile
		m["grain"] = s.Grain
	case *X264Settings:
		m["crf"] = s.CRF
		m["profile"] = s.Profile
		m["compat"] = s.Compat
	case *X265Settings:
		m["crf"] = s.CRF
		m["profile"] = s.Profile
		m["compat"] = s.Compat
	}
	return m
}
