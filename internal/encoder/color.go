package encoder

import "spool/internal/media"

// Each encoder spells the SDR colorimetry triplet its own way. Sources are
// tagged bt709 for HD and smpte170m for SD, always limited range.

// colorName is the spelling x264, x265, and the lossless x264-params use.
func colorName(cs media.ColorSpace) string {
	if cs == media.ColorSpaceSMPTE170M {
		return "smpte170m"
	}
	return "bt709"
}

// aomColor returns the aomenc primaries, transfer, and matrix names.
func aomColor(cs media.ColorSpace) (primaries, transfer, matrix string) {
	if cs == media.ColorSpaceSMPTE170M {
		return "smpte170", "bt601", "bt601"
	}
	return "bt709", "bt709", "bt709"
}

// svtColor returns the numeric H.273 codes SvtAv1EncApp expects.
func svtColor(cs media.ColorSpace) (primaries, transfer, matrix int) {
	if cs == media.ColorSpaceSMPTE170M {
		return 6, 6, 6
	}
	return 1, 1, 1
}

// rav1eColor returns the rav1e primaries, transfer, and matrix names.
func rav1eColor(cs media.ColorSpace) (primaries, transfer, matrix string) {
	if cs == media.ColorSpaceSMPTE170M {
		return "BT601", "BT601", "BT601"
	}
	return "BT709", "BT709", "BT709"
}
