package encoder

import (
	"fmt"

	"spool/internal/media"
	"spool/internal/outputs"
)

// buildSvtAv1Args assembles the SvtAv1EncApp argument list passed to av1an.
// lp carries the per-worker core budget; av1an pins affinity separately.
func buildSvtAv1Args(settings *outputs.SvtAv1Settings, dims media.VideoDimensions, lp int) []string {
	tileCols, tileRows := tileBits(dims)
	primaries, transfer, matrix := svtColor(dims.ColorSpace)

	return []string{
		"--input-depth", fmt.Sprint(dims.BitDepth),
		"--scm", "0",
		"--preset", fmt.Sprint(settings.Speed),
		"--crf", fmt.Sprint(settings.CRF),
		"--film-grain-denoise", "0",
		"--tile-columns", fmt.Sprint(tileCols),
		"--tile-rows", fmt.Sprint(tileRows),
		"--rc", "0",
		"--enable-qm", "1",
		"--qm-min", "0",
		"--qm-max", "8",
		"--tune", "2",
		"--enable-tf", "0",
		"--scd", "0",
		"--keyint", "-1",
		"--lp", fmt.Sprint(lp),
		"--pin", "0",
		"--color-primaries", fmt.Sprint(primaries),
		"--matrix-coefficients", fmt.Sprint(matrix),
		"--transfer-characteristics", fmt.Sprint(transfer),
		"--color-range", "0",
	}
}
