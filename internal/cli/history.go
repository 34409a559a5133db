package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GustavoCosta/typewriter/internal/db"
	"github.com/GustavoCosta/typewriter/internal/models"
)

var historyLimit int

const prefixSearchLimit = 500

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum rows to show")
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded runs, or the actions of one run",
	Long: `Show runs recorded with 'play --record' (or history.enabled in the config).
With a run ID (or its first characters) the run's action events are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		runs := db.NewRunRepository(database)
		if len(args) == 0 {
			items, err := runs.List(ctx, historyLimit)
			if err != nil {
				return err
			}
			if IsJSONOutput() || IsJSONLOutput() {
				return WriteOutput(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet. Use 'typewriter play --record'.")
				return nil
			}
			return writeTable(cmd.OutOrStdout(), []string{"ID", "SCRIPT", "STATUS", "ACTIONS", "STARTED", "DURATION"}, runRows(items))
		}

		run, err := findRun(ctx, runs, args[0])
		if err != nil {
			return err
		}
		eventsRepo := db.NewEventRepository(database)
		items, err := eventsRepo.ListByRun(ctx, run.ID, historyLimit)
		if err != nil {
			return err
		}
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), map[string]any{
				"run":    run,
				"events": items,
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run %s  %s  %s\n\n", run.ID, run.Script, formatRunStatus(run.Status))
		return writeTable(out, []string{"TIME", "EVENT", "KIND", "TICKS", "TEXT"}, eventRows(items))
	},
}

// findRun resolves a full run ID or a unique prefix of one.
func findRun(ctx context.Context, runs *db.RunRepository, id string) (*models.Run, error) {
	if run, err := runs.Get(ctx, id); err == nil {
		return run, nil
	}

	items, err := runs.List(ctx, prefixSearchLimit)
	if err != nil {
		return nil, err
	}
	var match *models.Run
	for _, item := range items {
		if strings.HasPrefix(item.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("run id %q is ambiguous", id)
			}
			match = item
		}
	}
	if match == nil {
		return nil, fmt.Errorf("run %q: %w", id, db.ErrRunNotFound)
	}
	return match, nil
}

func runRows(items []*models.Run) [][]string {
	rows := make([][]string, 0, len(items))
	for _, run := range items {
		duration := "-"
		if run.FinishedAt != nil {
			duration = formatDuration(run.FinishedAt.Sub(run.StartedAt))
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.Script,
			formatRunStatus(run.Status),
			strconv.Itoa(run.Actions),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
		})
	}
	return rows
}

func eventRows(items []*models.Event) [][]string {
	rows := make([][]string, 0, len(items))
	for _, event := range items {
		kind, ticks, text := "-", "-", ""
		var payload models.ActionPayload
		if strings.HasPrefix(string(event.Type), "action.") && json.Unmarshal(event.Payload, &payload) == nil {
			kind = payload.Kind
			ticks = strconv.Itoa(payload.Ticks)
			text = strconv.Quote(truncate(payload.Text, 40))
		}
		rows = append(rows, []string{
			event.Timestamp.Local().Format("15:04:05.000"),
			string(event.Type),
			kind,
			ticks,
			text,
		})
	}
	return rows
}
