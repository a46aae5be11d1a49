package outputs

import "strings"

// AudioCodec identifies the audio encoder for an output.
type AudioCodec string

// Supported audio codecs.
const (
	AudioCopy AudioCodec = "copy"
	AudioAac  AudioCodec = "aac"
	AudioFlac AudioCodec = "flac"
	AudioOpus AudioCodec = "opus"
)

// DefaultKbpsPerChannel is the per-channel bitrate applied when a
// specification selects a lossy audio codec without an ab= clause.
const DefaultKbpsPerChannel = 80

// ParseAudioCodec maps an audio encoder name from a specification string
// to its AudioCodec value.
func ParseAudioCodec(name string) (AudioCodec, bool) {
	switch strings.ToLower(name) {
	case "copy":
		return AudioCopy, true
	case "aac":
		return AudioAac, true
	case "flac":
		return AudioFlac, true
	case "opus":
		return AudioOpus, true
	}
	return "", false
}

// SupportedAudioEncoders lists the codec names accepted in aenc= clauses.
func SupportedAudioEncoders() []string {
	return []string{"copy", "aac", "flac", "opus"}
}

// UsesBitrate reports whether the codec consumes a target bitrate. Copy
// passes the stream through and flac is lossless, so only the lossy codecs
// care.
func (c AudioCodec) UsesBitrate() bool {
	return c == AudioAac || c == AudioOpus
}

// AudioSettings holds the audio encoding parameters for an output.
type AudioSettings struct {
	Encoder        AudioCodec `json:"encoder"`
	KbpsPerChannel int        `json:"kbps_per_channel"`
}
