package jobspec

import "spool/internal/outputs"

// Filter is one parsed clause from a specification segment. The resolver
// folds a segment's filters into an Output; each implementation projects
// onto the configuration fields it is defined for.
type Filter interface {
	filterToken()
}

// VideoEncoderFilter selects the video encoder (enc=).
type VideoEncoderFilter struct {
	Name string
}

// QuantizerFilter sets the rate-control quantizer (q=, qp=, crf=).
type QuantizerFilter struct {
	Value int
}

// SpeedFilter sets the encoder speed preset (s=, speed=).
type SpeedFilter struct {
	Value int
}

// ProfileFilter sets the tuning profile (p=, profile=).
type ProfileFilter struct {
	Profile outputs.Profile
}

// GrainFilter sets the synthesized photon-noise strength (g=, grain=).
type GrainFilter struct {
	Value int
}

// CompatFilter toggles device-compatibility constraints (compat=).
type CompatFilter struct {
	Enabled bool
}

// ExtensionFilter sets the output container extension (ext=).
type ExtensionFilter struct {
	Extension string
}

// BitDepthFilter overrides the output bit depth (bd=).
type BitDepthFilter struct {
	Depth int
}

// ResolutionFilter overrides the output resolution (res=).
type ResolutionFilter struct {
	Width  int
	Height int
}

// AudioEncoderFilter selects the audio codec (aenc=).
type AudioEncoderFilter struct {
	Codec outputs.AudioCodec
}

// AudioBitrateFilter sets the per-channel audio bitrate (ab=).
type AudioBitrateFilter struct {
	Kbps int
}

// AudioTracksFilter selects the audio tracks to carry (at=).
type AudioTracksFilter struct {
	Tracks []outputs.Track
}

// AudioNormalizeFilter enables loudness normalization (an=1).
type AudioNormalizeFilter struct{}

// SubtitleTracksFilter selects the subtitle tracks to carry (st=).
type SubtitleTracksFilter struct {
	Tracks []outputs.Track
}

func (VideoEncoderFilter) filterToken()   {}
func (QuantizerFilter) filterToken()      {}
func (SpeedFilter) filterToken()          {}
func (ProfileFilter) filterToken()        {}
func (GrainFilter) filterToken()          {}
func (CompatFilter) filterToken()         {}
func (ExtensionFilter) filterToken()      {}
func (BitDepthFilter) filterToken()       {}
func (ResolutionFilter) filterToken()     {}
func (AudioEncoderFilter) filterToken()   {}
func (AudioBitrateFilter) filterToken()   {}
func (AudioTracksFilter) filterToken()    {}
func (AudioNormalizeFilter) filterToken() {}
func (SubtitleTracksFilter) filterToken() {}
