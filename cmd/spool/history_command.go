package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spool/internal/history"
)

func newHistoryCommand(app *appState) *cobra.Command {
	var limit int
	var statusFilters []string
	var runID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent encode jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]history.Status, 0, len(statusFilters))
			for _, raw := range statusFilters {
				status, ok := history.ParseStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q (valid: %s)", raw, statusNames())
				}
				statuses = append(statuses, status)
			}

			return app.withStore(func(store *history.Store) error {
				var jobs []*history.Job
				var err error
				if trimmed := strings.TrimSpace(runID); trimmed != "" {
					jobs, err = store.JobsByRun(cmd.Context(), trimmed)
				} else {
					jobs, err = store.Recent(cmd.Context(), limit, statuses...)
				}
				if err != nil {
					return err
				}

				if asJSON {
					views := make([]jobView, 0, len(jobs))
					for _, job := range jobs {
						views = append(views, newJobView(job))
					}
					return writeJSON(cmd, views)
				}

				out := cmd.OutOrStdout()
				if len(jobs) == 0 {
					fmt.Fprintln(out, "No history recorded")
					return nil
				}
				columns := []tableColumn{
					{Title: "ID", Right: true},
					{Title: "Source"},
					{Title: "Encoder"},
					{Title: "Status"},
					{Title: "Duration", Right: true},
					{Title: "Size", Right: true},
					{Title: "Finished"},
				}
				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, historyRow(job))
				}
				fmt.Fprintln(out, renderTable(columns, rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum jobs to list (0 = all)")
	cmd.Flags().StringSliceVarP(&statusFilters, "status", "s", nil, "Filter by job status (repeatable)")
	cmd.Flags().StringVar(&runID, "run", "", "List only the jobs of one batch run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")

	cmd.AddCommand(newHistoryShowCommand(app))
	cmd.AddCommand(newHistoryClearCommand(app))

	return cmd
}

func newHistoryShowCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field of one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}

			return app.withStore(func(store *history.Store) error {
				job, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %d not found", id)
				}

				out := cmd.OutOrStdout()
				detail := func(label, value string) {
					if value != "" {
						fmt.Fprintf(out, "  %-13s %s\n", label+":", value)
					}
				}
				detail("ID", strconv.FormatInt(job.ID, 10))
				detail("Run", job.RunID)
				detail("Source", job.Source)
				detail("Spec", job.Spec)
				detail("Output", job.OutputPath)
				detail("Encoder", job.Encoder)
				detail("Status", string(job.Status))
				detail("Started", job.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				if job.FinishedAt != nil {
					detail("Finished", fmt.Sprintf("%s (%s)",
						job.FinishedAt.Local().Format("2006-01-02 15:04:05"),
						formatJobDuration(job.Duration())))
				}
				if job.SourceBytes > 0 {
					detail("Source size", formatBytes(job.SourceBytes))
				}
				if job.OutputBytes > 0 {
					size := formatBytes(job.OutputBytes)
					if job.SourceBytes > 0 {
						size += fmt.Sprintf(" (%.1f%% of source)", 100*float64(job.OutputBytes)/float64(job.SourceBytes))
					}
					detail("Output size", size)
				}
				detail("Error", job.ErrorMsg)
				return nil
			})
		},
	}
}

func newHistoryClearCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all history rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d history rows\n", removed)
				return nil
			})
		},
	}
}

func historyRow(job *history.Job) []string {
	output := "-"
	if job.OutputPath != "" {
		output = formatBytes(job.OutputBytes)
	}
	duration := "-"
	if d := job.Duration(); d > 0 {
		duration = formatJobDuration(d)
	}
	finished := "-"
	if job.FinishedAt != nil {
		finished = formatWhen(*job.FinishedAt)
	}
	encoder := job.Encoder
	if encoder == "" {
		encoder = "-"
	}
	return []string{
		strconv.FormatInt(job.ID, 10),
		filepath.Base(job.Source),
		encoder,
		string(job.Status),
		duration,
		output,
		finished,
	}
}

// jobView is the JSON rendering of a history row.
type jobView struct {
	ID          int64   `json:"id"`
	RunID       string  `json:"run_id"`
	Source      string  `json:"source"`
	Spec        string  `json:"spec,omitempty"`
	OutputPath  string  `json:"output_path,omitempty"`
	Encoder     string  `json:"encoder,omitempty"`
	Status      string  `json:"status"`
	Error       string  `json:"error,omitempty"`
	SourceBytes int64   `json:"source_bytes,omitempty"`
	OutputBytes int64   `json:"output_bytes,omitempty"`
	CreatedAt   string  `json:"created_at"`
	FinishedAt  *string `json:"finished_at,omitempty"`
	Seconds     float64 `json:"seconds,omitempty"`
}

func newJobView(job *history.Job) jobView {
	view := jobView{
		ID:          job.ID,
		RunID:       job.RunID,
		Source:      job.Source,
		Spec:        job.Spec,
		OutputPath:  job.OutputPath,
		Encoder:     job.Encoder,
		Status:      string(job.Status),
		Error:       job.ErrorMsg,
		SourceBytes: job.SourceBytes,
		OutputBytes: job.OutputBytes,
		CreatedAt:   job.CreatedAt.UTC().Format(time.RFC3339),
	}
	if job.FinishedAt != nil {
		finished := job.FinishedAt.UTC().Format(time.RFC3339)
		view.FinishedAt = &finished
		view.Seconds = job.Duration().Seconds()
	}
	return view
}

func statusNames() string {
	statuses := history.Statuses()
	names := make([]string, 0, len(statuses))
	for _, status := range statuses {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}
