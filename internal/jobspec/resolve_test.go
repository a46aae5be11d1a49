package jobspec

import (
	"errors"
	"reflect"
	"testing"

	"spool/internal/outputs"
)

func resolveOne(t *testing.T, spec string) outputs.Output {
	t.Helper()
	configs, err := Resolve(spec, "movie.vpy")
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", spec, err)
	}
	if len(configs) != 1 {
		t.Fatalf("Resolve(%q) = %d outputs, want 1", spec, len(configs))
	}
	return configs[0]
}

func TestResolveEmptySpec(t *testing.T) {
	for _, spec := range []string{"", "   ", "\t"} {
		out := resolveOne(t, spec)
		if !reflect.DeepEqual(out, outputs.Default()) {
			t.Errorf("Resolve(%q) = %+v, want default", spec, out)
		}
	}
}

func TestResolveDefaultConfiguration(t *testing.T) {
	out := resolveOne(t, "")
	video, ok := out.Video.(*outputs.X264Settings)
	if !ok {
		t.Fatalf("default video = %T, want *X264Settings", out.Video)
	}
	if video.CRF != 18 || video.Profile != outputs.ProfileFilm || video.Compat {
		t.Errorf("default video = %+v", video)
	}
	if out.Extension != "mkv" {
		t.Errorf("default extension = %q, want mkv", out.Extension)
	}
	if out.BitDepth != nil || out.Resolution != nil {
		t.Errorf("default overrides should be unset: %+v", out)
	}
	if out.Audio.Encoder != outputs.AudioCopy || out.Audio.KbpsPerChannel != 80 {
		t.Errorf("default audio = %+v", out.Audio)
	}
}

func TestResolveEncoderDefaults(t *testing.T) {
	cases := []struct {
		spec string
		want outputs.VideoSettings
	}{
		{"enc=copy", &outputs.CopySettings{}},
		{"enc=aom", &outputs.AomSettings{CRF: 16, Speed: 4, Profile: outputs.ProfileFilm}},
		{"enc=rav1e", &outputs.Rav1eSettings{CRF: 40, Speed: 5, Profile: outputs.ProfileFilm}},
		{"enc=svt", &outputs.SvtAv1Settings{CRF: 16, Speed: 4, Profile: outputs.ProfileFilm}},
		{"enc=x264", &outputs.X264Settings{CRF: 18, Profile: outputs.ProfileFilm}},
		{"enc=x265", &outputs.X265Settings{CRF: 18, Profile: outputs.ProfileFilm}},
	}
	for _, tc := range cases {
		out := resolveOne(t, tc.spec)
		if !reflect.DeepEqual(out.Video, tc.want) {
			t.Errorf("Resolve(%q).Video = %#v, want %#v", tc.spec, out.Video, tc.want)
		}
	}
}

func TestResolveEncoderSelectedBeforeProjection(t *testing.T) {
	out := resolveOne(t, "q=30,enc=aom")
	video, ok := out.Video.(*outputs.AomSettings)
	if !ok {
		t.Fatalf("video = %T, want *AomSettings", out.Video)
	}
	if video.CRF != 30 {
		t.Errorf("crf = %d, want 30", video.CRF)
	}
}

func TestResolveFirstEncoderWins(t *testing.T) {
	out := resolveOne(t, "enc=aom,enc=x265")
	if _, ok := out.Video.(*outputs.AomSettings); !ok {
		t.Errorf("video = %T, want *AomSettings", out.Video)
	}
}

func TestResolveProjectionOrderIndependent(t *testing.T) {
	a := resolveOne(t, "q=20,p=anime")
	b := resolveOne(t, "p=anime,q=20")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("order changed the result: %+v vs %+v", a, b)
	}
	video := a.Video.(*outputs.X264Settings)
	if video.CRF != 20 || video.Profile != outputs.ProfileAnime {
		t.Errorf("video = %+v", video)
	}
}

func TestResolveIdempotent(t *testing.T) {
	spec := "enc=svt,q=20,s=6,p=animegrain,g=12,bd=10,res=1920x1080,aenc=opus,ab=96,an=1"
	a, err := Resolve(spec, "movie.vpy")
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	b, err := Resolve(spec, "movie.vpy")
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("resolves differ: %+v vs %+v", a, b)
	}
}

func TestResolveQuantizerRanges(t *testing.T) {
	good := []string{
		"enc=x264,q=-12",
		"enc=x264,q=51",
		"enc=x265,q=0",
		"enc=aom,q=63",
		"enc=svt,q=63",
		"enc=rav1e,q=255",
		"enc=copy,q=500", // quantizer has no home on copy; ignored
	}
	for _, spec := range good {
		if _, err := Resolve(spec, "movie.vpy"); err != nil {
			t.Errorf("Resolve(%q) failed: %v", spec, err)
		}
	}

	bad := []string{
		"enc=x264,q=60",
		"enc=x264,q=-13",
		"enc=x265,q=-1",
		"enc=aom,q=64",
		"enc=svt,q=64",
		"enc=rav1e,q=256",
	}
	for _, spec := range bad {
		_, err := Resolve(spec, "movie.vpy")
		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			t.Errorf("Resolve(%q) = %v, want OutOfRangeError", spec, err)
		}
	}
}

func TestResolveQuantizerErrorMessage(t *testing.T) {
	_, err := Resolve("enc=x264,q=60", "movie.vpy")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "'q' must be between -12 and 51, received 60"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestResolveSpeed(t *testing.T) {
	out := resolveOne(t, "enc=rav1e,s=10")
	if video := out.Video.(*outputs.Rav1eSettings); video.Speed != 10 {
		t.Errorf("speed = %d, want 10", video.Speed)
	}

	_, err := Resolve("enc=rav1e,s=11", "movie.vpy")
	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected OutOfRangeError, got %v", err)
	}

	// Speed has no field on the H.264/H.265 encoders, so the filter is
	// dropped without validation.
	out = resolveOne(t, "enc=x264,s=11")
	if video := out.Video.(*outputs.X264Settings); video.CRF != 18 {
		t.Errorf("video = %+v", video)
	}
}

func TestResolveGrain(t *testing.T) {
	out := resolveOne(t, "enc=aom,g=64")
	if video := out.Video.(*outputs.AomSettings); video.Grain != 64 {
		t.Errorf("grain = %d, want 64", video.Grain)
	}

	_, err := Resolve("enc=aom,g=65", "movie.vpy")
	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected OutOfRangeError, got %v", err)
	}

	if _, err := Resolve("enc=x264,g=65", "movie.vpy"); err != nil {
		t.Errorf("grain should be ignored for x264: %v", err)
	}
}

func TestResolveCompat(t *testing.T) {
	out := resolveOne(t, "enc=aom,compat=1")
	if video := out.Video.(*outputs.AomSettings); !video.Compat {
		t.Error("compat not applied to aom")
	}

	out = resolveOne(t, "enc=x265,compat=1")
	if video := out.Video.(*outputs.X265Settings); !video.Compat {
		t.Error("compat not applied to x265")
	}

	// No compat field on rav1e; silently dropped.
	out = resolveOne(t, "enc=rav1e,compat=1")
	if _, ok := out.Video.(*outputs.Rav1eSettings); !ok {
		t.Errorf("video = %T", out.Video)
	}
}

func TestResolveAudio(t *testing.T) {
	out := resolveOne(t, "aenc=opus,ab=96,an=1")
	if out.Audio.Encoder != outputs.AudioOpus {
		t.Errorf("audio encoder = %q", out.Audio.Encoder)
	}
	if out.Audio.KbpsPerChannel != 96 {
		t.Errorf("kbps per channel = %d, want 96", out.Audio.KbpsPerChannel)
	}
	if !out.AudioNormalize {
		t.Error("normalize not set")
	}

	_, err := Resolve("ab=0", "movie.vpy")
	var zero *InvalidAudioBitrateError
	if !errors.As(err, &zero) {
		t.Fatalf("expected InvalidAudioBitrateError, got %v", err)
	}
	if want := "'ab' must be greater than 0, got 0"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestResolveContainerOverrides(t *testing.T) {
	out := resolveOne(t, "bd=10,res=1920x1080,ext=mp4")
	if out.Extension != "mp4" {
		t.Errorf("extension = %q", out.Extension)
	}
	if out.BitDepth == nil || *out.BitDepth != 10 {
		t.Errorf("bit depth = %v", out.BitDepth)
	}
	if out.Resolution == nil || *out.Resolution != (outputs.Resolution{Width: 1920, Height: 1080}) {
		t.Errorf("resolution = %v", out.Resolution)
	}
}

func TestResolveMultipleOutputs(t *testing.T) {
	configs, err := Resolve("enc=x264,q=18;enc=aom,q=16,s=4", "movie.vpy")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("got %d outputs, want 2", len(configs))
	}
	if _, ok := configs[0].Video.(*outputs.X264Settings); !ok {
		t.Errorf("first output video = %T", configs[0].Video)
	}
	if _, ok := configs[1].Video.(*outputs.AomSettings); !ok {
		t.Errorf("second output video = %T", configs[1].Video)
	}
}

func TestResolveEmptySegmentsYieldDefaults(t *testing.T) {
	configs, err := Resolve("enc=aom;;", "movie.vpy")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(configs) != 3 {
		t.Fatalf("got %d outputs, want 3", len(configs))
	}
	for i, out := range configs[1:] {
		if !reflect.DeepEqual(out, outputs.Default()) {
			t.Errorf("segment %d = %+v, want default", i+1, out)
		}
	}
}

func TestResolveFailingSegmentAborts(t *testing.T) {
	configs, err := Resolve("enc=x264;enc=vp9", "movie.vpy")
	if err == nil {
		t.Fatal("expected error")
	}
	if configs != nil {
		t.Errorf("partial results returned: %+v", configs)
	}
	var unknown *UnknownEncoderError
	if !errors.As(err, &unknown) {
		t.Errorf("error = %T (%v)", err, err)
	}
}

func TestResolveTrackFilters(t *testing.T) {
	out := resolveOne(t, "at=0-e|1,st=2-f")
	wantAudio := []outputs.Track{
		{Source: outputs.VideoTrack{Index: 0}, Enabled: true},
		{Source: outputs.VideoTrack{Index: 1}},
	}
	if !reflect.DeepEqual(out.AudioTracks, wantAudio) {
		t.Errorf("audio tracks = %#v", out.AudioTracks)
	}
	wantSubs := []outputs.Track{
		{Source: outputs.VideoTrack{Index: 2}, Forced: true},
	}
	if !reflect.DeepEqual(out.SubtitleTracks, wantSubs) {
		t.Errorf("subtitle tracks = %#v", out.SubtitleTracks)
	}
}

func TestResolveSegmentIgnoresLaterEncoderFilters(t *testing.T) {
	// A later enc= clause neither replaces the selected encoder nor
	// resets fields applied in between.
	out := resolveOne(t, "enc=aom,q=20,enc=x265")
	video, ok := out.Video.(*outputs.AomSettings)
	if !ok {
		t.Fatalf("video = %T, want *AomSettings", out.Video)
	}
	if video.CRF != 20 {
		t.Errorf("crf = %d, want 20", video.CRF)
	}
}
