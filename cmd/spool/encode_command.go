package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"spool/internal/history"
	"spool/internal/workflow"
)

func newEncodeCommand(app *appState) *cobra.Command {
	var opts workflow.Options
	var workers int
	var failFast bool

	cmd := &cobra.Command{
		Use:   "encode [path]",
		Short: "Encode the scripts under a path",
		Long: `Encode every VapourSynth script reachable from PATH (one .vpy file or a
directory tree; default "."). The output set comes from --formats, a
semicolon-separated list of output clauses, for example:

  enc=x265 q=20 p=film; enc=copy
  enc=aom q=30 s=6 g=12 at=1|ac3-e st=2-f

An empty specification produces one x264 crf 18 mkv with the audio copied.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "."
			if len(args) == 1 {
				input = args[0]
			}

			cfg, err := app.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Encoding.Workers = workers
			}
			if cmd.Flags().Changed("fail-fast") {
				cfg.Workflow.FailFast = failFast
			}

			logger, err := app.logger()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runner := workflow.NewRunner(cfg, store, logger)
			summary, err := runner.Run(cmd.Context(), input, opts)
			if summary != nil {
				printRunSummary(cmd.OutOrStdout(), summary)
			}
			if err != nil {
				return err
			}
			if summary != nil && summary.Failed > 0 {
				return fmt.Errorf("%d of %d scripts failed", summary.Failed,
					summary.Processed+summary.Failed+summary.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Spec, "formats", "f", "", "Output specification (overrides encoding.default_spec)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Directory for finished outputs")
	cmd.Flags().StringVar(&opts.ForceKeyframes, "force-keyframes", "", "Comma-separated frames av1an must cut keyframes at")
	cmd.Flags().BoolVar(&opts.KeepLossless, "keep-lossless", false, "Keep lossless intermediates after a successful encode")
	cmd.Flags().BoolVar(&opts.LosslessOnly, "lossless-only", false, "Stop each script after its lossless intermediate")
	cmd.Flags().BoolVar(&opts.SkipLossless, "skip-lossless", false, "Feed av1an the script directly, skipping the lossless step")
	cmd.Flags().BoolVar(&opts.CopyAudioToLossless, "copy-audio", false, "Carry the source's first audio track into the lossless intermediate")
	cmd.Flags().IntVar(&workers, "workers", 0, "Override the derived av1an worker count")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop the batch at the first failed script")

	return cmd
}

func printRunSummary(out io.Writer, summary *workflow.Summary) {
	fmt.Fprintf(out, "Run %s: %d processed, %d failed, %d skipped in %s\n",
		summary.RunID,
		summary.Processed,
		summary.Failed,
		summary.Skipped,
		summary.Duration.Round(time.Second),
	)
}
