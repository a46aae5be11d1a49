package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spool/internal/history"
	"spool/internal/workflow"
)

func newWatchCommand(app *appState) *cobra.Command {
	var opts workflow.Options

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and encode scripts as they appear",
		Long: `Run an encode pass over DIR (default "."), then keep watching it and
rescan whenever .vpy files are added or rewritten. Scripts whose outputs
already exist are skipped, so rescans only pick up new work. Stop with
Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			cfg, err := app.ensureConfig()
			if err != nil {
				return err
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
			return runner.Watch(cmd.Context(), dir, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Spec, "formats", "f", "", "Output specification (overrides encoding.default_spec)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "Directory for finished outputs")
	cmd.Flags().BoolVar(&opts.KeepLossless, "keep-lossless", false, "Keep lossless intermediates after a successful encode")
	cmd.Flags().BoolVar(&opts.LosslessOnly, "lossless-only", false, "Stop each script after its lossless intermediate")
	cmd.Flags().BoolVar(&opts.SkipLossless, "skip-lossless", false, "Feed av1an the script directly, skipping the lossless step")
	cmd.Flags().BoolVar(&opts.CopyAudioToLossless, "copy-audio", false, "Carry the source's first audio track into the lossless intermediate")

	return cmd
}
