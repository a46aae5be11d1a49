package encoder

import (
	"fmt"

	"spool/internal/media"
	"spool/internal/outputs"
)

// buildX265Args assembles the x265 argument list passed to av1an. Keyframe
// placement is disabled; av1an owns scene cuts and forces its own keyframes.
func buildX265Args(settings *outputs.X265Settings, dims media.VideoDimensions, threads int) []string {
	deblock := -2
	chromaOffset := 0
	if settings.Profile.IsAnime() {
		deblock = -1
		chromaOffset = -2
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

	var refFrames int
	switch settings.Profile {
	case outputs.ProfileFilm, outputs.ProfileGrain, outputs.ProfileAnimeGrain:
		refFrames = 4
	case outputs.ProfileAnime, outputs.ProfileAnimeDetailed:
		refFrames = 6
	case outputs.ProfileFast:
		refFrames = 3
	}

	// SAO smooths detail away, so it only stays on at quality levels where
	// ringing would be worse than the smoothing.
	var sao []string
	switch {
	case settings.CRF >= 22:
		sao = []string{"--sao"}
	case settings.CRF >= 17:
		sao = []string{"--limit-sao"}
	default:
		sao = []string{"--no-sao", "--no-strong-intra-smoothing"}
	}

	var psyRD string
	switch settings.Profile {
	case outputs.ProfileAnime, outputs.ProfileFast:
		psyRD = "1.0"
	case outputs.ProfileFilm, outputs.ProfileAnimeDetailed:
		psyRD = "1.5"
	case outputs.ProfileGrain, outputs.ProfileAnimeGrain:
		psyRD = "2.0"
	}

	var psyRDOQ string
	switch settings.Profile {
	case outputs.ProfileAnime, outputs.ProfileFast:
		psyRDOQ = "1.0"
	case outputs.ProfileAnimeDetailed:
		psyRDOQ = "1.5"
	case outputs.ProfileFilm, outputs.ProfileAnimeGrain:
		psyRDOQ = "2.0"
	case outputs.ProfileGrain:
		psyRDOQ = "4.0"
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

	color := colorName(dims.ColorSpace)

	args := []string{
		"--crf", fmt.Sprint(settings.CRF),
		"--preset", "slow",
		"--bframes", fmt.Sprint(bframes),
		"--ref", fmt.Sprint(refFrames),
		"--keyint", "-1",
		"--min-keyint", "1",
		"--no-scenecut",
	}
	args = append(args, sao...)
	args = append(args,
		"--deblock", fmt.Sprintf("%d:%d", deblock, deblock),
		"--psy-rd", psyRD,
		"--psy-rdoq", psyRDOQ,
		"--qcomp", "0.65",
		"--aq-mode", "3",
		"--aq-strength", aqStrength,
		"--cbqpoffs", fmt.Sprint(chromaOffset),
		"--crqpoffs", fmt.Sprint(chromaOffset),
		"--no-open-gop",
		"--no-cutree",
		"--fades",
		"--colorprim", color,
		"--colormatrix", color,
		"--transfer", color,
		"--range", "limited",
		"--output-depth", fmt.Sprint(dims.BitDepth),
		"--frame-threads", fmt.Sprint(threads),
		"--lookahead-threads", fmt.Sprint(threads),
		"--y4m",
	)
	if settings.Compat {
		profile := "main"
		if dims.BitDepth == 10 {
			profile = "main10"
		}
		args = append(args, "--profile", profile, "--level-idc", "5.1")
	}
	return args
}
