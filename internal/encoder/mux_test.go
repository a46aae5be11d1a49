package encoder

import (
	"reflect"
	"testing"

	"spool/internal/outputs"
)

func TestBuildMkvmergeArgs(t *testing.T) {
	audio := []MuxInput{
		{Path: "movie.a0.mka", Track: outputs.Track{Source: outputs.VideoTrack{Index: 0}, Enabled: true}},
		{Path: "movie.a1.mka", Track: outputs.Track{Source: outputs.VideoTrack{Index: 1}}},
	}
	subs := []MuxInput{
		{Path: "movie.s0.mks", Track: outputs.Track{Source: outputs.VideoTrack{Index: 0}, Forced: true}},
	}
	got := BuildMkvmergeArgs("movie.x264-q18.mkv", "movie.video.mkv", audio, subs)
	want := []string{
		"-o", "movie.x264-q18.mkv",
		"movie.video.mkv",
		"--default-track-flag", "0:yes",
		"--forced-display-flag", "0:no",
		"movie.a0.mka",
		"--default-track-flag", "0:no",
		"--forced-display-flag", "0:no",
		"movie.a1.mka",
		"--default-track-flag", "0:no",
		"--forced-display-flag", "0:yes",
		"movie.s0.mks",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mkvmerge args\n got: %v\nwant: %v", got, want)
	}
}

func TestBuildMkvmergeArgsVideoOnly(t *testing.T) {
	got := BuildMkvmergeArgs("out.mkv", "video.mkv", nil, nil)
	want := []string{"-o", "out.mkv", "video.mkv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mkvmerge args = %v, want %v", got, want)
	}
}

func TestBuildFFmpegMuxArgs(t *testing.T) {
	audio := []MuxInput{
		{Path: "movie.a0.mka", Track: outputs.Track{Source: outputs.VideoTrack{Index: 0}, Enabled: true}},
	}
	subs := []MuxInput{
		{Path: "movie.srt", Track: outputs.Track{Source: outputs.ExternalTrack{Path: "movie.srt"}, Enabled: true, Forced: true}},
	}
	got := BuildFFmpegMuxArgs("movie.x264-q18.mp4", "movie.video.mkv", audio, subs)
	want := []string{
		"-hide_banner", "-loglevel", "level+error", "-stats", "-y",
		"-i", "movie.video.mkv",
		"-i", "movie.a0.mka",
		"-i", "movie.srt",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-map", "2:s:0",
		"-vcodec", "copy",
		"-acodec", "copy",
		"-c:s", "mov_text",
		"-strict", "-2",
		"-disposition:a:0", "default",
		"-disposition:s:0", "default+forced",
		"-map_chapters", "-1",
		"movie.x264-q18.mp4",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ffmpeg mux args\n got: %v\nwant: %v", got, want)
	}
}

func TestBuildFFmpegMuxArgsNoSubtitles(t *testing.T) {
	got := BuildFFmpegMuxArgs("out.mp4", "video.mkv", nil, nil)
	for _, arg := range got {
		if arg == "mov_text" {
			t.Fatalf("subtitle codec set without subtitles: %v", got)
		}
	}
}

func TestDisposition(t *testing.T) {
	cases := []struct {
		enabled, forced bool
		want            string
	}{
		{true, true, "default+forced"},
		{true, false, "default"},
		{false, true, "forced"},
		{false, false, "0"},
	}
	for _, tc := range cases {
		track := outputs.Track{Source: outputs.VideoTrack{}, Enabled: tc.enabled, Forced: tc.forced}
		if got := disposition(track); got != tc.want {
			t.Errorf("disposition(enabled=%v, forced=%v) = %q, want %q", tc.enabled, tc.forced, got, tc.want)
		}
	}
}
