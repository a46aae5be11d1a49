package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spool/internal/encoder"
	"spool/internal/history"
	"spool/internal/jobspec"
	"spool/internal/logging"
	"spool/internal/media"
	"spool/internal/outputs"
	"spool/internal/services"
)

// processScript takes one script through the whole pipeline: specification
// resolution, probe, the shared lossless intermediate, then one output
// build per resolved configuration. A failure before any output can be
// attempted records a single history row so the run ledger never loses a
// script.
func (r *Runner) processScript(ctx context.Context, log *slog.Logger, runID, script string, opts Options) error {
	ctx = services.WithSource(ctx, filepath.Base(script))
	log = logging.WithContext(ctx, log)

	spec := strings.TrimSpace(opts.Spec)
	if spec == "" {
		spec = strings.TrimSpace(r.cfg.Encoding.DefaultSpec)
	}

	outs, err := jobspec.Resolve(spec, script)
	if err != nil {
		err = services.Wrap(services.ErrValidation, "resolve", "", "resolve output specification", err)
		r.recordStub(ctx, log, runID, script, spec, err)
		return err
	}
	log.Info("processing script", logging.Int("outputs", len(outs)), logging.String("spec", spec))

	dims, err := media.ProbeScript(ctx, r.cfg.VspipeBinary(), script)
	if err != nil {
		err = services.Wrap(services.ErrExternalTool, "probe", "", "probe script", err)
		r.recordStub(ctx, log, runID, script, spec, err)
		return err
	}
	log.Info("probed script",
		logging.Int("width", dims.Width),
		logging.Int("height", dims.Height),
		logging.Int("frames", dims.Frames),
		logging.Float64("fps", dims.FPS()),
		logging.String("pixel_format", dims.FFmpegPixelFormat()),
	)

	source, err := media.SourceFile(script)
	if err != nil {
		err = services.Wrap(services.ErrValidation, "probe", "", "locate source media", err)
		r.recordStub(ctx, log, runID, script, spec, err)
		return err
	}

	// Outputs whose final container already matches the source are not
	// rebuilt; only the remaining ones decide whether the intermediate is
	// still needed.
	pending := make([]outputs.Output, 0, len(outs))
	for _, out := range outs {
		final := encoder.OutputPath(r.outputDir(opts), script, out)
		if frames, err := media.FrameCount(ctx, r.cfg.FFprobeBinary(), final); err == nil && frames == dims.Frames {
			log.Info("output already exists, skipping", logging.String(logging.FieldOutput, filepath.Base(final)))
			continue
		}
		pending = append(pending, out)
	}
	if len(pending) == 0 && !opts.LosslessOnly {
		return nil
	}

	needsLossless := opts.LosslessOnly
	if !opts.SkipLossless {
		for _, out := range pending {
			if _, ok := out.Video.(*outputs.CopySettings); !ok {
				needsLossless = true
				break
			}
		}
	}

	losslessPath := ""
	if needsLossless {
		losslessPath = encoder.LosslessPath(script)
		if err := r.ensureLossless(ctx, log, script, source, dims, losslessPath, opts); err != nil {
			r.recordStub(ctx, log, runID, script, spec, err)
			return err
		}
	}

	if opts.LosslessOnly {
		return r.recordLosslessOnly(ctx, log, runID, script, spec, source, losslessPath)
	}

	var (
		firstErr error
		failed   int
	)
	for _, out := range pending {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrInterrupted, "encode", "", "script interrupted", ctx.Err())
		}
		if err := r.produceOutput(ctx, log, runID, script, spec, source, dims, out, losslessPath, opts); err != nil {
			if errors.Is(err, services.ErrInterrupted) {
				return err
			}
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d outputs failed: %w", failed, len(pending), firstErr)
	}

	if needsLossless && !r.keepLossless(opts) {
		if err := os.Remove(losslessPath); err == nil {
			log.Debug("removed lossless intermediate", logging.String("path", losslessPath))
		}
	}
	return nil
}

// produceOutput builds one resolved output end to end and records it as a
// history job: video reused or encoded, audio tracks, subtitle tracks, then
// the final mux.
func (r *Runner) produceOutput(ctx context.Context, log *slog.Logger, runID, script, spec, source string, dims media.VideoDimensions, out outputs.Output, losslessPath string, opts Options) error {
	job, err := r.store.Begin(ctx, runID, script, spec)
	if err != nil {
		return services.Wrap(nil, "history", "", "record job", err)
	}

	final := encoder.OutputPath(r.outputDir(opts), script, out)
	job.OutputPath = final
	job.Encoder = out.Video.EncoderName()
	if st, err := os.Stat(source); err == nil {
		job.SourceBytes = st.Size()
	}
	if err := r.store.Update(ctx, job); err != nil {
		log.Warn("record job", logging.Error(err))
	}

	log = log.With(
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldOutput, filepath.Base(final)),
		logging.String(logging.FieldEncoder, job.Encoder),
	)

	start := time.Now()
	if err := r.buildOutput(ctx, log, script, source, dims, out, losslessPath, final, opts); err != nil {
		log.Error("output failed", logging.Error(err))
		if ferr := r.store.Finish(ctx, job, services.FailureStatus(err), err.Error()); ferr != nil {
			log.Warn("record job", logging.Error(ferr))
		}
		return err
	}

	if st, err := os.Stat(final); err == nil {
		job.OutputBytes = st.Size()
	}
	if err := r.store.Finish(ctx, job, history.StatusCompleted, ""); err != nil {
		log.Warn("record job", logging.Error(err))
	}
	log.Info("output completed",
		logging.Duration("duration", time.Since(start).Round(time.Second)),
		logging.Int64("bytes", job.OutputBytes),
	)
	return nil
}

// buildOutput runs the stages that materialize one output file.
func (r *Runner) buildOutput(ctx context.Context, log *slog.Logger, script, source string, dims media.VideoDimensions, out outputs.Output, losslessPath, final string, opts Options) error {
	encDims := encoder.EncodeDimensions(dims, out)
	for _, warning := range encoder.DimensionWarnings(encDims) {
		log.Warn(warning)
	}

	videoPath, err := r.buildVideo(ctx, log, script, source, dims, encDims, out, losslessPath, opts)
	if err != nil {
		return err
	}

	audioInputs, err := r.buildAudioTracks(ctx, log, script, source, out)
	if err != nil {
		return err
	}

	subtitleInputs, extracted, err := r.buildSubtitleTracks(ctx, log, script, source, out)
	if err != nil {
		return err
	}

	if err := r.mux(ctx, log, final, videoPath, audioInputs, subtitleInputs, out); err != nil {
		return err
	}

	r.cleanupWork(log, videoPath, audioInputs, extracted)
	return nil
}

// buildVideo materializes the encoded or copied video stream for one
// output. A finished work file from an earlier run is reused when its frame
// count matches the source exactly; av1an's own resume data covers partial
// ones.
func (r *Runner) buildVideo(ctx context.Context, log *slog.Logger, script, source string, dims, encDims media.VideoDimensions, out outputs.Output, losslessPath string, opts Options) (string, error) {
	videoPath := encoder.VideoWorkPath(r.cfg.Paths.StagingDir, script, out)

	if frames, err := media.FrameCount(ctx, r.cfg.FFprobeBinary(), videoPath); err == nil && frames == dims.Frames {
		log.Info("encoded video already exists, reusing", logging.String("path", videoPath))
		return videoPath, nil
	}

	if _, ok := out.Video.(*outputs.CopySettings); ok {
		log.Info("copying source video stream")
		cmd := encoder.Command{Binary: r.cfg.FFmpegBinary(), Args: encoder.BuildExtractVideoArgs(source, videoPath)}
		if err := r.tools.Run(ctx, cmd); err != nil {
			return "", services.Wrap(services.ErrExternalTool, "video", "", "extract video stream", err)
		}
		return videoPath, nil
	}

	input := losslessPath
	if opts.SkipLossless || input == "" {
		input = script
	}
	args, err := encoder.BuildAv1anArgs(out.Video, encDims, input, videoPath, encoder.Av1anOptions{
		Workers:        r.cfg.Encoding.Workers,
		ForceKeyframes: opts.ForceKeyframes,
		ScaleTo:        out.Resolution,
	})
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "video", "", "assemble av1an arguments", err)
	}
	log.Info("encoding video", logging.String("input", filepath.Base(input)))
	if err := r.tools.Run(ctx, encoder.Command{Binary: r.cfg.Av1anBinary(), Args: args}); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "video", "", "encode video", err)
	}

	frames, err := media.FrameCount(ctx, r.cfg.FFprobeBinary(), videoPath)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "video", "", "verify encoded video", err)
	}
	if frames != dims.Frames {
		return "", services.Wrap(services.ErrExternalTool, "video", "", fmt.Sprintf("encoded video has %d frames, expected %d", frames, dims.Frames), nil)
	}
	return videoPath, nil
}

// buildAudioTracks encodes every selected audio track into a standalone
// intermediate. A specification that names no tracks keeps the source's
// first track.
func (r *Runner) buildAudioTracks(ctx context.Context, log *slog.Logger, script, source string, out outputs.Output) ([]encoder.MuxInput, error) {
	tracks := out.AudioTracks
	if len(tracks) == 0 {
		tracks = []outputs.Track{{Source: outputs.VideoTrack{Index: 0}, Enabled: true}}
	}

	inputs := make([]encoder.MuxInput, 0, len(tracks))
	for i, track := range tracks {
		input := source
		index := 0
		switch src := track.Source.(type) {
		case outputs.VideoTrack:
			index = src.Index
		case outputs.ExternalTrack:
			input = src.Path
		}

		channels := 0
		if out.Audio.Encoder.UsesBitrate() {
			probed, err := media.AudioChannels(ctx, r.cfg.FFprobeBinary(), input)
			if err != nil {
				return nil, services.Wrap(services.ErrExternalTool, "audio", "", "count audio channels", err)
			}
			channels = probed
		}

		audioPath := encoder.AudioWorkPath(r.cfg.Paths.StagingDir, script, out, i)
		log.Info("encoding audio track", logging.Int("track", i), logging.String("codec", string(out.Audio.Encoder)))
		cmd := encoder.Command{Binary: r.cfg.FFmpegBinary(), Args: encoder.BuildAudioArgs(input, index, out.Audio, out.AudioNormalize, channels, audioPath)}
		if err := r.tools.Run(ctx, cmd); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "audio", "", fmt.Sprintf("encode audio track %d", i), err)
		}
		inputs = append(inputs, encoder.MuxInput{Path: audioPath, Track: track})
	}
	return inputs, nil
}

// buildSubtitleTracks prepares mux inputs for the selected subtitle tracks.
// Container tracks are extracted into intermediates so the mux can address
// each input at track zero; external files are muxed where they sit.
func (r *Runner) buildSubtitleTracks(ctx context.Context, log *slog.Logger, script, source string, out outputs.Output) ([]encoder.MuxInput, []string, error) {
	inputs := make([]encoder.MuxInput, 0, len(out.SubtitleTracks))
	var extracted []string
	for i, track := range out.SubtitleTracks {
		switch src := track.Source.(type) {
		case outputs.VideoTrack:
			subPath := encoder.SubtitleWorkPath(r.cfg.Paths.StagingDir, script, out, i)
			log.Info("extracting subtitle track", logging.Int("track", src.Index))
			cmd := encoder.Command{Binary: r.cfg.FFmpegBinary(), Args: encoder.BuildSubtitleExtractArgs(source, src.Index, subPath)}
			if err := r.tools.Run(ctx, cmd); err != nil {
				return nil, nil, services.Wrap(services.ErrExternalTool, "subtitles", "", fmt.Sprintf("extract subtitle track %d", src.Index), err)
			}
			inputs = append(inputs, encoder.MuxInput{Path: subPath, Track: track})
			extracted = append(extracted, subPath)
		case outputs.ExternalTrack:
			inputs = append(inputs, encoder.MuxInput{Path: src.Path, Track: track})
		}
	}
	return inputs, extracted, nil
}

// mux combines the prepared intermediates into the final container.
// mkvmerge writes matroska; mp4 falls to ffmpeg because mkvmerge does not
// write it.
func (r *Runner) mux(ctx context.Context, log *slog.Logger, final, videoPath string, audio, subtitles []encoder.MuxInput, out outputs.Output) error {
	log.Info("muxing output", logging.String("container", out.Extension))
	var cmd encoder.Command
	if out.Extension == "mp4" {
		cmd = encoder.Command{Binary: r.cfg.FFmpegBinary(), Args: encoder.BuildFFmpegMuxArgs(final, videoPath, audio, subtitles)}
	} else {
		cmd = encoder.Command{Binary: r.cfg.MkvmergeBinary(), Args: encoder.BuildMkvmergeArgs(final, videoPath, audio, subtitles)}
	}
	if err := r.tools.Run(ctx, cmd); err != nil {
		return services.Wrap(services.ErrExternalTool, "mux", "", "mux tracks", err)
	}
	return nil
}

// ensureLossless produces the shared lossless intermediate for a script,
// reusing a previous run's file when its frame count still matches the
// probe closely enough.
func (r *Runner) ensureLossless(ctx context.Context, log *slog.Logger, script, source string, dims media.VideoDimensions, losslessPath string, opts Options) error {
	if frames, err := media.FrameCount(ctx, r.cfg.FFprobeBinary(), losslessPath); err == nil {
		if encoder.FrameCountWithin(frames, dims.Frames) {
			log.Info("lossless intermediate already exists, reusing", logging.String("path", losslessPath))
			return nil
		}
		log.Warn("existing lossless intermediate has wrong frame count, recreating",
			logging.Int("frames", frames), logging.Int("expected", dims.Frames))
	}

	log.Info("creating lossless intermediate", logging.String("path", losslessPath))
	info := encoder.Command{Binary: r.cfg.VspipeBinary(), Args: encoder.BuildVspipeInfoArgs(script)}
	if err := r.tools.Run(ctx, info); err != nil {
		return services.Wrap(services.ErrExternalTool, "lossless", "", "print script info", err)
	}

	lopts := encoder.LosslessOptions{Slow: r.cfg.Encoding.SlowLossless}
	if opts.CopyAudioToLossless {
		lopts.CopyAudioFrom = source
	}
	producer := encoder.Command{Binary: r.cfg.VspipeBinary(), Args: encoder.BuildVspipeY4MArgs(script)}
	consumer := encoder.Command{Binary: r.cfg.FFmpegBinary(), Args: encoder.BuildLosslessArgs(dims, losslessPath, lopts)}
	if err := r.tools.RunPipe(ctx, producer, consumer); err != nil {
		return services.Wrap(services.ErrExternalTool, "lossless", "", "encode lossless intermediate", err)
	}

	frames, err := media.FrameCount(ctx, r.cfg.FFprobeBinary(), losslessPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "lossless", "", "verify lossless intermediate", err)
	}
	if !encoder.FrameCountWithin(frames, dims.Frames) {
		return services.Wrap(services.ErrExternalTool, "lossless", "", fmt.Sprintf("incomplete lossless encode: %d frames, expected %d", frames, dims.Frames), nil)
	}
	log.Info("lossless intermediate ready", logging.Int("frames", frames))
	return nil
}

// recordLosslessOnly closes out a lossless-only script with one completed
// job pointing at the intermediate.
func (r *Runner) recordLosslessOnly(ctx context.Context, log *slog.Logger, runID, script, spec, source, losslessPath string) error {
	job, err := r.store.Begin(ctx, runID, script, spec)
	if err != nil {
		return services.Wrap(nil, "history", "", "record job", err)
	}
	job.OutputPath = losslessPath
	job.Encoder = "lossless"
	if st, err := os.Stat(source); err == nil {
		job.SourceBytes = st.Size()
	}
	if st, err := os.Stat(losslessPath); err == nil {
		job.OutputBytes = st.Size()
	}
	if err := r.store.Finish(ctx, job, history.StatusCompleted, ""); err != nil {
		log.Warn("record job", logging.Error(err))
	}
	return nil
}

// recordStub writes a single history row for a script that failed before
// any output could be attempted.
func (r *Runner) recordStub(ctx context.Context, log *slog.Logger, runID, script, spec string, cause error) {
	job, err := r.store.Begin(ctx, runID, script, spec)
	if err != nil {
		log.Warn("record job", logging.Error(err))
		return
	}
	if err := r.store.Finish(ctx, job, services.FailureStatus(cause), cause.Error()); err != nil {
		log.Warn("record job", logging.Error(err))
	}
}

// cleanupWork drops the per-output intermediates once the final container
// exists. The shared lossless file is the caller's to remove because later
// outputs may still need it.
func (r *Runner) cleanupWork(log *slog.Logger, videoPath string, audio []encoder.MuxInput, extracted []string) {
	paths := []string{videoPath}
	for _, in := range audio {
		paths = append(paths, in.Path)
	}
	paths = append(paths, extracted...)
	for _, path := range paths {
		if err := os.Remove(path); err == nil {
			log.Debug("removed intermediate", logging.String("path", path))
		}
	}
}

func (r *Runner) keepLossless(opts Options) bool {
	return opts.KeepLossless || r.cfg.Encoding.KeepLossless
}

func (r *Runner) outputDir(opts Options) string {
	if strings.TrimSpace(opts.OutputDir) != "" {
		return opts.OutputDir
	}
	return r.cfg.Paths.OutputDir
}
