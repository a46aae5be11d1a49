package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"spool/internal/jobspec"
	"spool/internal/media"
	"spool/internal/outputs"
)

func newInspectCommand(app *appState) *cobra.Command {
	var formats string
	var asJSON bool
	var probe bool

	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Resolve a specification or probe a media file",
		Long: `Resolve --formats into the outputs it would produce, without encoding
anything. Track clauses referencing external files need PATH to point at
the script they would encode with. With --probe, run ffprobe against PATH
and show its streams instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			if probe {
				if path == "" {
					return errors.New("--probe requires a media path")
				}
				cfg, err := app.ensureConfig()
				if err != nil {
					return err
				}
				result, err := media.Inspect(cmd.Context(), cfg.FFprobeBinary(), path)
				if err != nil {
					return err
				}
				if asJSON {
					_, err := cmd.OutOrStdout().Write(append(result.RawJSON(), '\n'))
					return err
				}
				renderProbe(cmd.OutOrStdout(), result)
				return nil
			}

			source := path
			if source == "" {
				source = "source.vpy"
			}
			resolved, err := jobspec.Resolve(formats, source)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, resolved)
			}
			renderOutputs(cmd.OutOrStdout(), resolved)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formats, "formats", "f", "", "Output specification to resolve")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	cmd.Flags().BoolVar(&probe, "probe", false, "Probe a media file with ffprobe instead of resolving a specification")

	return cmd
}

func renderOutputs(out io.Writer, resolved []outputs.Output) {
	columns := []tableColumn{
		{Title: "#", Right: true},
		{Title: "Encoder"},
		{Title: "CRF", Right: true},
		{Title: "Speed", Right: true},
		{Title: "Profile"},
		{Title: "Grain", Right: true},
		{Title: "Ext"},
		{Title: "Depth"},
		{Title: "Resolution"},
		{Title: "Audio"},
		{Title: "Tracks"},
	}
	rows := make([][]string, 0, len(resolved))
	for i, output := range resolved {
		rows = append(rows, outputRow(i+1, output))
	}
	fmt.Fprintln(out, renderTable(columns, rows))
}

func outputRow(number int, out outputs.Output) []string {
	crf, speed, profile, grain := "-", "-", "-", "-"
	switch s := out.Video.(type) {
	case *outputs.AomSettings:
		crf, speed, profile, grain = strconv.Itoa(s.CRF), strconv.Itoa(s.Speed), string(s.Profile), strconv.Itoa(s.Grain)
	case *outputs.Rav1eSettings:
		crf, speed, profile, grain = strconv.Itoa(s.CRF), strconv.Itoa(s.Speed), string(s.Profile), strconv.Itoa(s.Grain)
	case *outputs.SvtAv1Settings:
		crf, speed, profile, grain = strconv.Itoa(s.CRF), strconv.Itoa(s.Speed), string(s.Profile), strconv.Itoa(s.Grain)
	case *outputs.X264Settings:
		crf, profile = strconv.Itoa(s.CRF), string(s.Profile)
	case *outputs.X265Settings:
		crf, profile = strconv.Itoa(s.CRF), string(s.Profile)
	}

	depth := "source"
	if out.BitDepth != nil {
		depth = strconv.Itoa(*out.BitDepth)
	}
	resolution := "source"
	if out.Resolution != nil {
		resolution = fmt.Sprintf("%dx%d", out.Resolution.Width, out.Resolution.Height)
	}

	return []string{
		strconv.Itoa(number),
		out.Video.EncoderName(),
		crf,
		speed,
		profile,
		grain,
		out.Extension,
		depth,
		resolution,
		audioSummary(out),
		trackSummary(out),
	}
}

func audioSummary(out outputs.Output) string {
	summary := string(out.Audio.Encoder)
	if out.Audio.Encoder.UsesBitrate() {
		summary += fmt.Sprintf(" %dk/ch", out.Audio.KbpsPerChannel)
	}
	if out.AudioNormalize {
		summary += " +loudnorm"
	}
	return summary
}

func trackSummary(out outputs.Output) string {
	var parts []string
	if len(out.AudioTracks) > 0 {
		parts = append(parts, "at="+joinTracks(out.AudioTracks))
	}
	if len(out.SubtitleTracks) > 0 {
		parts = append(parts, "st="+joinTracks(out.SubtitleTracks))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func joinTracks(tracks []outputs.Track) string {
	rendered := make([]string, 0, len(tracks))
	for _, track := range tracks {
		rendered = append(rendered, track.String())
	}
	return strings.Join(rendered, "|")
}

func renderProbe(out io.Writer, result media.Result) {
	fmt.Fprintf(out, "Container: %s\n", result.Format.FormatName)
	if seconds := result.DurationSeconds(); seconds > 0 {
		fmt.Fprintf(out, "Duration:  %.1fs\n", seconds)
	}
	if size := result.SizeBytes(); size > 0 {
		fmt.Fprintf(out, "Size:      %s\n", formatBytes(size))
	}
	if rate := result.BitRate(); rate > 0 {
		fmt.Fprintf(out, "Bitrate:   %d kb/s\n", rate/1000)
	}

	columns := []tableColumn{
		{Title: "#", Right: true},
		{Title: "Type"},
		{Title: "Codec"},
		{Title: "Detail"},
	}
	rows := make([][]string, 0, len(result.Streams))
	for _, stream := range result.Streams {
		rows = append(rows, []string{
			strconv.Itoa(stream.Index),
			stream.CodecType,
			stream.CodecName,
			streamDetail(stream),
		})
	}
	fmt.Fprintln(out, renderTable(columns, rows))
}

func streamDetail(stream media.Stream) string {
	switch strings.ToLower(stream.CodecType) {
	case "video":
		detail := fmt.Sprintf("%dx%d", stream.Width, stream.Height)
		if stream.PixFmt != "" {
			detail += " " + stream.PixFmt
		}
		return detail
	case "audio":
		detail := fmt.Sprintf("%d ch", stream.Channels)
		if stream.ChannelLayout != "" {
			detail += " " + stream.ChannelLayout
		}
		if stream.SampleRate != "" {
			detail += " @ " + stream.SampleRate + " Hz"
		}
		return detail
	default:
		return "-"
	}
}
