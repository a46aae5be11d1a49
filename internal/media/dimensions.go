package media

import (
	"fmt"
	"math"
	"strings"
)

// PixelFormat is the chroma subsampling layout of a clip.
type PixelFormat string

// Supported pixel formats.
const (
	PixelFormatYUV420 PixelFormat = "yuv420"
	PixelFormatYUV422 PixelFormat = "yuv422"
	PixelFormatYUV444 PixelFormat = "yuv444"
)

// ParsePixelFormat maps a VapourSynth format name such as "YUV420P8" to its
// PixelFormat value. The trailing sample description is ignored; bit depth
// is reported separately.
func ParsePixelFormat(name string) (PixelFormat, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	switch {
	case strings.HasPrefix(name, "YUV420"):
		return PixelFormatYUV420, true
	case strings.HasPrefix(name, "YUV422"):
		return PixelFormatYUV422, true
	case strings.HasPrefix(name, "YUV444"):
		return PixelFormatYUV444, true
	}
	return "", false
}

// ColorSpace identifies the color matrix assumed for an encode.
type ColorSpace string

// Supported color spaces.
const (
	ColorSpaceBT709     ColorSpace = "bt709"
	ColorSpaceSMPTE170M ColorSpace = "smpte170m"
)

// ColorSpaceForHeight applies the SD/HD colorimetry convention: sources
// with fewer than 576 lines are treated as smpte170m, everything else as
// bt709.
func ColorSpaceForHeight(height int) ColorSpace {
	if height >= 576 {
		return ColorSpaceBT709
	}
	return ColorSpaceSMPTE170M
}

// VideoDimensions describes the clip a VapourSynth script produces.
type VideoDimensions struct {
	Width       int
	Height      int
	Frames      int
	FPSNum      int
	FPSDen      int
	PixelFormat PixelFormat
	ColorSpace  ColorSpace
	BitDepth    int
}

// FPS returns the frame rate as a float, or 0 for a zero denominator.
func (d VideoDimensions) FPS() float64 {
	if d.FPSDen == 0 {
		return 0
	}
	return float64(d.FPSNum) / float64(d.FPSDen)
}

// RoundedFPS returns the frame rate rounded to the nearest integer, the
// form keyframe interval and scene-length math work in.
func (d VideoDimensions) RoundedFPS() int {
	return int(math.Round(d.FPS()))
}

// FFmpegPixelFormat returns the pixel format string ffmpeg and av1an
// expect, such as "yuv420p" or "yuv420p10le".
func (d VideoDimensions) FFmpegPixelFormat() string {
	format := d.PixelFormat
	if format == "" {
		format = PixelFormatYUV420
	}
	if d.BitDepth == 0 || d.BitDepth == 8 {
		return fmt.Sprintf("%sp", format)
	}
	return fmt.Sprintf("%sp%dle", format, d.BitDepth)
}
