package encoder

import (
	"strings"
	"testing"

	"spool/internal/media"
	"spool/internal/outputs"
)

func joined(args []string) string { return strings.Join(args, " ") }

func TestBuildAomArgs(t *testing.T) {
	settings := &outputs.AomSettings{CRF: 16, Speed: 4, Profile: outputs.ProfileFilm}
	got := joined(buildAomArgs(settings, dims(1920, 1080), 4))
	want := "-b 8 --end-usage=q --min-q=1 --lag-in-frames=64 --cpu-used=4 --cq-level=16" +
		" --disable-kf --kf-max-dist=9999 --enable-fwd-kf=0 --sharpness=3 --row-mt=0" +
		" --tile-columns=0 --tile-rows=0 --arnr-maxframes=15 --arnr-strength=3 --tune=ssim" +
		" --enable-chroma-deltaq=1 --disable-trellis-quant=0 --enable-qm=1 --qm-min=0 --qm-max=8" +
		" --quant-b-adapt=1 --aq-mode=0 --deltaq-mode=1 --tune-content=psy --sb-size=dynamic" +
		" --enable-dnl-denoising=0 --color-primaries=bt709 --transfer-characteristics=bt709" +
		" --matrix-coefficients=bt709 --threads=4"
	if got != want {
		t.Errorf("aom args\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildAomArgsAnimeSoftensTemporalFilter(t *testing.T) {
	settings := &outputs.AomSettings{CRF: 20, Speed: 6, Profile: outputs.ProfileAnime}
	got := joined(buildAomArgs(settings, dims(1920, 1080), 8))
	if !strings.Contains(got, "--arnr-strength=1") {
		t.Errorf("anime aom args should use arnr strength 1: %s", got)
	}
	if got2 := joined(buildAomArgs(&outputs.AomSettings{Profile: outputs.ProfileAnimeGrain}, dims(1920, 1080), 8)); !strings.Contains(got2, "--arnr-strength=3") {
		t.Errorf("animegrain keeps full arnr strength: %s", got2)
	}
}

func TestBuildAomArgsUHDTiles(t *testing.T) {
	settings := &outputs.AomSettings{CRF: 16, Speed: 4, Profile: outputs.ProfileFilm}
	d := dims(3840, 2160)
	d.BitDepth = 10
	got := joined(buildAomArgs(settings, d, 8))
	for _, flag := range []string{"-b 10", "--tile-columns=1", "--tile-rows=1"} {
		if !strings.Contains(got, flag) {
			t.Errorf("uhd aom args missing %q: %s", flag, got)
		}
	}
}

func TestBuildRav1eArgs(t *testing.T) {
	settings := &outputs.Rav1eSettings{CRF: 40, Speed: 5, Profile: outputs.ProfileFilm}
	got := joined(buildRav1eArgs(settings, dims(720, 480)))
	want := "--speed 5 --quantizer 40 --tile-cols 0 --tile-rows 0" +
		" --primaries BT601 --matrix BT601 --transfer BT601 --range Limited" +
		" --rdo-lookahead-frames 25 --no-scene-detection --keyint 0"
	if got != want {
		t.Errorf("rav1e args\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildSvtAv1Args(t *testing.T) {
	settings := &outputs.SvtAv1Settings{CRF: 16, Speed: 4, Profile: outputs.ProfileFilm}
	d := dims(3840, 2160)
	d.BitDepth = 10
	got := joined(buildSvtAv1Args(settings, d, 4))
	want := "--input-depth 10 --scm 0 --preset 4 --crf 16 --film-grain-denoise 0" +
		" --tile-columns 1 --tile-rows 1 --rc 0 --enable-qm 1 --qm-min 0 --qm-max 8" +
		" --tune 2 --enable-tf 0 --scd 0 --keyint -1 --lp 4 --pin 0" +
		" --color-primaries 1 --matrix-coefficients 1 --transfer-characteristics 1 --color-range 0"
	if got != want {
		t.Errorf("svt args\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildSvtAv1ArgsStandardDefinition(t *testing.T) {
	settings := &outputs.SvtAv1Settings{CRF: 20, Speed: 6, Profile: outputs.ProfileFilm}
	got := joined(buildSvtAv1Args(settings, dims(720, 480), 2))
	if !strings.Contains(got, "--color-primaries 6 --matrix-coefficients 6 --transfer-characteristics 6") {
		t.Errorf("sd svt args should carry smpte170m codes: %s", got)
	}
}

func TestBuildX264Args(t *testing.T) {
	settings := &outputs.X264Settings{CRF: 18, Profile: outputs.ProfileFilm}
	got := joined(buildX264Args(settings, dims(1920, 1080)))
	want := "--crf 18 --preset veryslow --bframes 5 --psy-rd 1.0:0.0 --deblock -3:-3" +
		" --merange 48 --rc-lookahead 96 --aq-mode 3 --aq-strength 0.8 --no-mbtree" +
		" -i 24 -I 240 --qcomp 0.75 --ipratio 1.30 --pbratio 1.20 --no-fast-pskip --no-dct-decimate" +
		" --colorprim bt709 --colormatrix bt709 --transfer bt709 --input-range limited --range limited" +
		" --output-depth 8"
	if got != want {
		t.Errorf("x264 args\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildX264ArgsAnime(t *testing.T) {
	settings := &outputs.X264Settings{CRF: 20, Profile: outputs.ProfileAnime}
	got := joined(buildX264Args(settings, dims(1280, 720)))
	for _, flag := range []string{
		"--bframes 8", "--psy-rd 0.7:0.0", "--deblock -2:-1", "--merange 32",
		"--aq-strength 0.7", "-i 12", "-I 360", "--qcomp 0.65",
	} {
		if !strings.Contains(got, flag) {
			t.Errorf("anime x264 args missing %q: %s", flag, got)
		}
	}
}

func TestBuildX264ArgsFast(t *testing.T) {
	settings := &outputs.X264Settings{CRF: 18, Profile: outputs.ProfileFast}
	got := joined(buildX264Args(settings, dims(720, 480)))
	for _, flag := range []string{"--preset faster", "--bframes 3", "--merange 24", "--colorprim smpte170m"} {
		if !strings.Contains(got, flag) {
			t.Errorf("fast x264 args missing %q: %s", flag, got)
		}
	}
}

func TestBuildX264ArgsCompat(t *testing.T) {
	settings := &outputs.X264Settings{CRF: 18, Profile: outputs.ProfileFilm, Compat: true}
	got := joined(buildX264Args(settings, dims(1920, 1080)))
	if !strings.HasSuffix(got, "--level 4.1 --vbv-maxrate 50000 --vbv-bufsize 78125") {
		t.Errorf("compat x264 args should end with vbv caps: %s", got)
	}
}

func TestBuildX264ArgsHighBitProfiles(t *testing.T) {
	settings := &outputs.X264Settings{CRF: 18, Profile: outputs.ProfileFilm}
	d := dims(1920, 1080)
	d.PixelFormat = media.PixelFormatYUV422
	if got := joined(buildX264Args(settings, d)); !strings.Contains(got, "--profile high422 --output-csp i422") {
		t.Errorf("yuv422 x264 args missing profile: %s", got)
	}
	d.PixelFormat = media.PixelFormatYUV444
	if got := joined(buildX264Args(settings, d)); !strings.Contains(got, "--profile high444 --output-csp i444") {
		t.Errorf("yuv444 x264 args missing profile: %s", got)
	}
}

func TestBuildX265Args(t *testing.T) {
	settings := &outputs.X265Settings{CRF: 18, Profile: outputs.ProfileFilm}
	d := dims(1920, 1080)
	d.BitDepth = 10
	got := joined(buildX265Args(settings, d, 6))
	want := "--crf 18 --preset slow --bframes 5 --ref 4 --keyint -1 --min-keyint 1 --no-scenecut" +
		" --limit-sao --deblock -2:-2 --psy-rd 1.5 --psy-rdoq 2.0 --qcomp 0.65" +
		" --aq-mode 3 --aq-strength 0.8 --cbqpoffs 0 --crqpoffs 0 --no-open-gop --no-cutree --fades" +
		" --colorprim bt709 --colormatrix bt709 --transfer bt709 --range limited" +
		" --output-depth 10 --frame-threads 6 --lookahead-threads 6 --y4m"
	if got != want {
		t.Errorf("x265 args\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildX265ArgsSAOTiers(t *testing.T) {
	d := dims(1920, 1080)
	high := joined(buildX265Args(&outputs.X265Settings{CRF: 22, Profile: outputs.ProfileFilm}, d, 4))
	if !strings.Contains(high, " --sao ") {
		t.Errorf("crf 22 should enable sao: %s", high)
	}
	low := joined(buildX265Args(&outputs.X265Settings{CRF: 16, Profile: outputs.ProfileFilm}, d, 4))
	if !strings.Contains(low, "--no-sao --no-strong-intra-smoothing") {
		t.Errorf("crf 16 should disable sao: %s", low)
	}
}

func TestBuildX265ArgsAnime(t *testing.T) {
	settings := &outputs.X265Settings{CRF: 19, Profile: outputs.ProfileAnime}
	got := joined(buildX265Args(settings, dims(1920, 1080), 4))
	for _, flag := range []string{
		"--bframes 8", "--ref 6", "--deblock -1:-1", "--psy-rd 1.0", "--psy-rdoq 1.0",
		"--cbqpoffs -2", "--crqpoffs -2",
	} {
		if !strings.Contains(got, flag) {
			t.Errorf("anime x265 args missing %q: %s", flag, got)
		}
	}
}

func TestBuildX265ArgsCompat(t *testing.T) {
	d := dims(1920, 1080)
	eight := joined(buildX265Args(&outputs.X265Settings{CRF: 18, Profile: outputs.ProfileFilm, Compat: true}, d, 4))
	if !strings.HasSuffix(eight, "--profile main --level-idc 5.1") {
		t.Errorf("8-bit compat should pin profile main: %s", eight)
	}
	d.BitDepth = 10
	ten := joined(buildX265Args(&outputs.X265Settings{CRF: 18, Profile: outputs.ProfileFilm, Compat: true}, d, 4))
	if !strings.HasSuffix(ten, "--profile main10 --level-idc 5.1") {
		t.Errorf("10-bit compat should pin profile main10: %s", ten)
	}
}

func TestVideoArgsRejectsCopy(t *testing.T) {
	_, err := VideoArgs(&outputs.CopySettings{}, dims(1920, 1080), Resources{Cores: 8, Workers: 2, Threads: 8})
	if err == nil {
		t.Fatal("VideoArgs(copy) should fail")
	}
}

func TestEncodeDimensions(t *testing.T) {
	d := dims(1920, 1080)
	bd := 10
	out := outputs.Output{
		Video:      &outputs.X264Settings{CRF: 18},
		BitDepth:   &bd,
		Resolution: &outputs.Resolution{Width: 1280, Height: 720},
	}
	got := EncodeDimensions(d, out)
	if got.Width != 1280 || got.Height != 720 || got.BitDepth != 10 {
		t.Errorf("EncodeDimensions = %dx%d bd %d, want 1280x720 bd 10", got.Width, got.Height, got.BitDepth)
	}
	if got.ColorSpace != d.ColorSpace {
		t.Errorf("color space changed from %q to %q", d.ColorSpace, got.ColorSpace)
	}
	plain := EncodeDimensions(d, outputs.Output{Video: &outputs.X264Settings{}})
	if plain != d {
		t.Errorf("EncodeDimensions without overrides = %+v, want %+v", plain, d)
	}
}
