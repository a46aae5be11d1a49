package encoder

import (
	"fmt"

	"spool/internal/outputs"
)

// MuxInput pairs an intermediate file with the track flags it should carry
// in the final container. Every intermediate holds exactly one track, so
// flags always address track zero.
type MuxInput struct {
	Path  string
	Track outputs.Track
}

// BuildMkvmergeArgs assembles the mkvmerge argv that combines the encoded
// video with the prepared audio and subtitle intermediates.
func BuildMkvmergeArgs(output, video string, audio, subtitles []MuxInput) []string {
	args := []string{"-o", output, video}
	for _, in := range append(append([]MuxInput{}, audio...), subtitles...) {
		args = append(args,
			"--default-track-flag", "0:"+yesNo(in.Track.Enabled),
			"--forced-display-flag", "0:"+yesNo(in.Track.Forced),
			in.Path,
		)
	}
	return args
}

// BuildFFmpegMuxArgs assembles the ffmpeg argv for containers mkvmerge
// does not write, mp4 in practice. Subtitles are converted to mov_text
// because mp4 carries no text subtitle format ffmpeg can copy in.
func BuildFFmpegMuxArgs(output, video string, audio, subtitles []MuxInput) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "level+error",
		"-stats",
		"-y",
		"-i", video,
	}
	for _, in := range audio {
		args = append(args, "-i", in.Path)
	}
	for _, in := range subtitles {
		args = append(args, "-i", in.Path)
	}
	args = append(args, "-map", "0:v:0")
	for i := range audio {
		args = append(args, "-map", fmt.Sprintf("%d:a:0", 1+i))
	}
	for i := range subtitles {
		args = append(args, "-map", fmt.Sprintf("%d:s:0", 1+len(audio)+i))
	}
	args = append(args, "-vcodec", "copy", "-acodec", "copy")
	if len(subtitles) > 0 {
		args = append(args, "-c:s", "mov_text")
	}
	// opus in mp4 still needs the experimental muxer unlocked.
	args = append(args, "-strict", "-2")
	for i, in := range audio {
		args = append(args, fmt.Sprintf("-disposition:a:%d", i), disposition(in.Track))
	}
	for i, in := range subtitles {
		args = append(args, fmt.Sprintf("-disposition:s:%d", i), disposition(in.Track))
	}
	args = append(args, "-map_chapters", "-1", output)
	return args
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func disposition(t outputs.Track) string {
	switch {
	case t.Enabled && t.Forced:
		return "default+forced"
	case t.Enabled:
		return "default"
	case t.Forced:
		return "forced"
	default:
		return "0"
	}
}
