package encoder

import (
	"fmt"

	"spool/internal/media"
	"spool/internal/outputs"
)

// buildRav1eArgs assembles the rav1e argument list passed to av1an. Scene
// detection and keyframe placement stay disabled; av1an owns both.
func buildRav1eArgs(settings *outputs.Rav1eSettings, dims media.VideoDimensions) []string {
	tileCols, tileRows := tileBits(dims)
	primaries, transfer, matrix := rav1eColor(dims.ColorSpace)

	return []string{
		"--speed", fmt.Sprint(settings.Speed),
		"--quantizer", fmt.Sprint(settings.CRF),
		"--tile-cols", fmt.Sprint(tileCols),
		"--tile-rows", fmt.Sprint(tileRows),
		"--primaries", primaries,
		"--matrix", matrix,
		"--transfer", transfer,
		"--range", "Limited",
		"--rdo-lookahead-frames", "25",
		"--no-scene-detection",
		"--keyint", "0",
	}
}
