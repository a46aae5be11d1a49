package encoder

import (
	"testing"

	"spool/internal/media"
	"spool/internal/outputs"
)

func dims(w, h int) media.VideoDimensions {
	return media.VideoDimensions{
		Width:       w,
		Height:      h,
		Frames:      24000,
		FPSNum:      24000,
		FPSDen:      1001,
		PixelFormat: media.PixelFormatYUV420,
		ColorSpace:  media.ColorSpaceForHeight(h),
		BitDepth:    8,
	}
}

func TestTileBits(t *testing.T) {
	cases := []struct {
		w, h       int
		cols, rows int
	}{
		{1920, 1080, 0, 0},
		{1280, 720, 0, 0},
		{2560, 1440, 1, 0},
		{3840, 2160, 1, 1},
		{3840, 1600, 1, 1},
		{1998, 2100, 0, 1},
	}
	for _, tc := range cases {
		cols, rows := tileBits(dims(tc.w, tc.h))
		if cols != tc.cols || rows != tc.rows {
			t.Errorf("tileBits(%dx%d) = (%d, %d), want (%d, %d)", tc.w, tc.h, cols, rows, tc.cols, tc.rows)
		}
	}
}

func TestTileCount(t *testing.T) {
	cases := []struct {
		w, h  int
		tiles int
	}{
		{1920, 1080, 1},
		{2560, 1440, 2},
		{3840, 2160, 4},
		{3840, 1600, 4},
		{1280, 2400, 2},
	}
	for _, tc := range cases {
		if got := tileCount(dims(tc.w, tc.h)); got != tc.tiles {
			t.Errorf("tileCount(%dx%d) = %d, want %d", tc.w, tc.h, got, tc.tiles)
		}
	}
}

func TestPlanResources(t *testing.T) {
	aom := &outputs.AomSettings{CRF: 16, Speed: 4, Profile: outputs.ProfileFilm}
	x264 := &outputs.X264Settings{CRF: 18, Profile: outputs.ProfileFilm}
	x265 := &outputs.X265Settings{CRF: 18, Profile: outputs.ProfileFilm}

	cases := []struct {
		name     string
		video    outputs.VideoSettings
		w, h     int
		cores    int
		override int
		workers  int
		threads  int
	}{
		{"av1 hd", aom, 1920, 1080, 16, 0, 16, 4},
		{"av1 uhd", aom, 3840, 2160, 16, 0, 4, 8},
		{"x264 hd", x264, 1920, 1080, 16, 0, 4, 8},
		{"x265 uhd", x265, 3840, 2160, 16, 0, 1, 26},
		{"x264 small machine", x264, 1920, 1080, 2, 0, 1, 5},
		{"override", aom, 1920, 1080, 16, 8, 8, 5},
		{"override clamped", aom, 1920, 1080, 16, 32, 16, 4},
	}
	for _, tc := range cases {
		got := PlanResources(tc.video, dims(tc.w, tc.h), tc.cores, tc.override)
		if got.Workers != tc.workers || got.Threads != tc.threads {
			t.Errorf("%s: PlanResources = workers %d threads %d, want workers %d threads %d",
				tc.name, got.Workers, got.Threads, tc.workers, tc.threads)
		}
		if got.Cores != tc.cores {
			t.Errorf("%s: cores = %d, want %d", tc.name, got.Cores, tc.cores)
		}
	}
}

func TestResourcesAffinity(t *testing.T) {
	r := Resources{Cores: 16, Workers: 4}
	if got := r.Affinity(); got != 4 {
		t.Errorf("Affinity() = %d, want 4", got)
	}
}

func TestPlanResourcesDetectsCores(t *testing.T) {
	got := PlanResources(&outputs.X264Settings{}, dims(1920, 1080), 0, 0)
	if got.Cores < 1 || got.Workers < 1 || got.Threads < 1 {
		t.Errorf("PlanResources with autodetected cores = %+v, want all fields positive", got)
	}
	if got.Workers > got.Cores {
		t.Errorf("workers %d exceeds cores %d", got.Workers, got.Cores)
	}
}
