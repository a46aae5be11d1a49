package encoder

import (
	"math"
	"runtime"

	"spool/internal/media"
	"spool/internal/outputs"
)

// Resources describes how one encode splits the machine: how many av1an
// workers run in parallel and how many threads each worker may use.
type Resources struct {
	Cores   int
	Workers int
	Threads int
}

// Affinity is the core budget pinned to each worker.
func (r Resources) Affinity() int {
	if r.Workers < 1 {
		return r.Cores
	}
	return r.Cores / r.Workers
}

// PlanResources sizes av1an for the encoder and clip. AV1 encoders get one
// worker per projected tile group; x264 and x265 thread well internally, so
// they get a quarter as many workers. A workerOverride above zero pins the
// worker count, clamped to the core count.
func PlanResources(video outputs.VideoSettings, dims media.VideoDimensions, cores, workerOverride int) Resources {
	if cores < 1 {
		cores = runtime.NumCPU()
	}
	if cores < 1 {
		cores = 1
	}

	workers := workerOverride
	if workers > cores {
		workers = cores
	}
	if workers < 1 {
		workers = cores / tileCount(dims)
		if !isAV1(video) {
			workers /= 4
		}
		if workers < 1 {
			workers = 1
		}
	}

	threads := int(math.Ceil(float64(cores)/float64(workers)*1.5)) + 2
	if threads > 64 {
		threads = 64
	}

	return Resources{Cores: cores, Workers: workers, Threads: threads}
}

// tileBits returns the log2 tile split hints handed to the AV1 encoders.
func tileBits(dims media.VideoDimensions) (cols, rows int) {
	if dims.Width >= 2000 {
		cols = 1
	}
	if dims.Height >= 2000 || (dims.Height >= 1550 && dims.Width >= 3600) {
		rows = 1
	}
	return cols, rows
}

// tileCount is the tile estimate worker sizing divides the cores by.
func tileCount(dims media.VideoDimensions) int {
	cols, rows := 1, 1
	if dims.Width >= 2000 {
		cols = 2
	}
	if dims.Height >= 2000 || (dims.Height >= 1550 && dims.Width >= 3600) {
		rows = 2
	}
	return cols * rows
}

func isAV1(video outputs.VideoSettings) bool {
	switch video.(type) {
	case *outputs.AomSettings, *outputs.Rav1eSettings, *outputs.SvtAv1Settings:
		return true
	}
	return false
}
