package encoder

import (
	"fmt"

	"spool/internal/media"
	"spool/internal/outputs"
)

// buildAomArgs assembles the aomenc argument list passed to av1an.
func buildAomArgs(settings *outputs.AomSettings, dims media.VideoDimensions, threads int) []string {
	tileCols, tileRows := tileBits(dims)
	primaries, transfer, matrix := aomColor(dims.ColorSpace)

	// The temporal filter smears fine detail, so the detailed animation
	// tunings back its strength off.
	arnrStrength := 3
	if settings.Profile == outputs.ProfileAnime || settings.Profile == outputs.ProfileAnimeDetailed {
		arnrStrength = 1
	}

	return []string{
		"-b", fmt.Sprint(dims.BitDepth),
		"--end-usage=q",
		"--min-q=1",
		"--lag-in-frames=64",
		fmt.Sprintf("--cpu-used=%d", settings.Speed),
		fmt.Sprintf("--cq-level=%d", settings.CRF),
		"--disable-kf",
		"--kf-max-dist=9999",
		"--enable-fwd-kf=0",
		"--sharpness=3",
		"--row-mt=0",
		fmt.Sprintf("--tile-columns=%d", tileCols),
		fmt.Sprintf("--tile-rows=%d", tileRows),
		"--arnr-maxframes=15",
		fmt.Sprintf("--arnr-strength=%d", arnrStrength),
		"--tune=ssim",
		"--enable-chroma-deltaq=1",
		"--disable-trellis-quant=0",
		"--enable-qm=1",
		"--qm-min=0",
		"--qm-max=8",
		"--quant-b-adapt=1",
		"--aq-mode=0",
		"--deltaq-mode=1",
		"--tune-content=psy",
		"--sb-size=dynamic",
		"--enable-dnl-denoising=0",
		fmt.Sprintf("--color-primaries=%s", primaries),
		fmt.Sprintf("--transfer-characteristics=%s", transfer),
		fmt.Sprintf("--matrix-coefficients=%s", matrix),
		fmt.Sprintf("--threads=%d", threads),
	}
}
