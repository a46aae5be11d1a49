package encoder

import (
	"fmt"

	"spool/internal/outputs"
)

// BuildAudioArgs assembles the ffmpeg argv that extracts one audio track
// and encodes it into a matroska intermediate. channels sizes the bitrate
// for the lossy codecs; input is the container the track index counts
// within.
func BuildAudioArgs(input string, trackIndex int, audio outputs.AudioSettings, normalize bool, channels int, output string) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "level+error",
		"-stats",
		"-y",
		"-i", input,
		"-acodec", ffmpegAudioCodec(audio.Encoder),
	}
	if audio.Encoder.UsesBitrate() {
		kbps := audio.KbpsPerChannel
		if kbps <= 0 {
			kbps = outputs.DefaultKbpsPerChannel
		}
		args = append(args, "-b:a", fmt.Sprintf("%dk", kbps*channels))
	}
	// loudnorm needs a decode, so a copied stream cannot be normalized.
	if normalize && audio.Encoder != outputs.AudioCopy {
		args = append(args, "-af", "loudnorm=I=-16:TP=-1.5:LRA=11")
	}
	args = append(args,
		"-map", fmt.Sprintf("0:a:%d", trackIndex),
		"-map_chapters", "-1",
		output,
	)
	return args
}

// BuildSubtitleExtractArgs assembles the ffmpeg argv that copies one
// subtitle track into a standalone intermediate, so the mux can address
// every input at track zero.
func BuildSubtitleExtractArgs(input string, trackIndex int, output string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "level+error",
		"-stats",
		"-y",
		"-i", input,
		"-map", fmt.Sprintf("0:s:%d", trackIndex),
		"-c:s", "copy",
		output,
	}
}

func ffmpegAudioCodec(codec outputs.AudioCodec) string {
	switch codec {
	case outputs.AudioAac:
		return "aac"
	case outputs.AudioFlac:
		return "flac"
	case outputs.AudioOpus:
		return "libopus"
	default:
		return "copy"
	}
}
