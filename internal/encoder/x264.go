package encoder

import (
	"fmt"

	"spool/internal/media"
	"spool/internal/outputs"
)

// buildX264Args assembles the x264 argument list passed to av1an. Keyframe
// cadence scales with the frame rate; animation halves the minimum interval
// and stretches the maximum because of long static holds.
func buildX264Args(settings *outputs.X264Settings, dims media.VideoDimensions) []string {
	fps := dims.RoundedFPS()
	minKeyint := fps
	maxKeyint := fps * 10
	if settings.Profile.IsAnime() {
		minKeyint = fps / 2
		maxKeyint = fps * 15
	}

	preset := "veryslow"
	if settings.Profile == outputs.ProfileFast {
		preset = "faster"
	}

	var bframes int
	switch settings.Profile {
	case outputs.ProfileFilm, outputs.ProfileGrain:
		bframes = 5
	case outputs.ProfileAnime, outputs.ProfileAnimeDetailed, outputs.ProfileAnimeGrain:
		bframes = 8
	case outputs.ProfileFast:
		bframes = 3
	}

	psyRD := "1.0:0.0"
	deblock := "-3:-3"
	if settings.Profile.IsAnime() {
		psyRD = "0.7:0.0"
		deblock = "-2:-1"
	}

	merange := 24
	if dims.Width > 1440 {
		merange = 48
	} else if dims.Width > 1024 {
		merange = 32
	}

	var aqStrength string
	switch settings.Profile {
	case outputs.ProfileGrain:
		aqStrength = "0.9"
	case outputs.ProfileFilm, outputs.ProfileAnimeGrain:
		aqStrength = "0.8"
	default:
		aqStrength = "0.7"
	}

	var qcomp string
	switch settings.Profile {
	case outputs.ProfileFilm, outputs.ProfileGrain, outputs.ProfileFast:
		qcomp = "0.75"
	case outputs.ProfileAnimeGrain:
		qcomp = "0.7"
	default:
		qcomp = "0.65"
	}

	color := colorName(dims.ColorSpace)

	args := []string{
		"--crf", fmt.Sprint(settings.CRF),
		"--preset", preset,
		"--bframes", fmt.Sprint(bframes),
		"--psy-rd", psyRD,
		"--deblock", deblock,
		"--merange", fmt.Sprint(merange),
		"--rc-lookahead", "96",
		"--aq-mode", "3",
		"--aq-strength", aqStrength,
		"--no-mbtree",
		"-i", fmt.Sprint(minKeyint),
		"-I", fmt.Sprint(maxKeyint),
		"--qcomp", qcomp,
		"--ipratio", "1.30",
		"--pbratio", "1.20",
		"--no-fast-pskip",
		"--no-dct-decimate",
		"--colorprim", color,
		"--colormatrix", color,
		"--transfer", color,
		"--input-range", "limited",
		"--range", "limited",
		"--output-depth", fmt.Sprint(dims.BitDepth),
	}
	if settings.Compat {
		args = append(args, "--level", "4.1", "--vbv-maxrate", "50000", "--vbv-bufsize", "78125")
	}
	switch dims.PixelFormat {
	case media.PixelFormatYUV422:
		args = append(args, "--profile", "high422", "--output-csp", "i422")
	case media.PixelFormatYUV444:
		args = append(args, "--profile", "high444", "--output-csp", "i444")
	}
	return args
}
