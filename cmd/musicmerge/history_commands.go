package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"musicmerge/internal/history"
	"musicmerge/internal/merge"
)

const historyTimeLayout = "2006-01-02 15:04:05"

var errHistoryDisabled = errors.New("run history is disabled (history.enabled = false)")

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent merge runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return errHistoryDisabled
				}
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No merge runs recorded")
					return nil
				}
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format(historyTimeLayout),
						statusLabel(string(run.Status), colorize),
						strconv.Itoa(run.Records),
						strconv.Itoa(run.Masters),
						run.Duration().Round(time.Millisecond).String(),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Run", "Started", "Status", "Records", "Masters", "Duration"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	historyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its per-plugin outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return errHistoryDisabled
				}
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", strings.TrimSpace(args[0]))
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				writeSection(out, "Run "+shortID(run.ID), colorize)
				fmt.Fprintln(out, renderField("ID", run.ID))
				fmt.Fprintln(out, renderField("Started", run.StartedAt.Local().Format(historyTimeLayout)))
				fmt.Fprintln(out, renderField("Duration", run.Duration().Round(time.Millisecond).String()))
				fmt.Fprintln(out, renderField("Game", run.Game))
				fmt.Fprintln(out, renderField("Status", statusLabel(string(run.Status), colorize)))
				if run.Error != "" {
					fmt.Fprintln(out, renderField("Error", run.Error))
				}
				fmt.Fprintln(out, renderField("Output", run.OutputPath))
				fmt.Fprintln(out, renderField("Records", strconv.Itoa(run.Records)))
				fmt.Fprintln(out, renderField("Log", run.LogPath))

				if len(run.Plugins) == 0 {
					return nil
				}
				fmt.Fprintln(out)
				rows := make([][]string, 0, len(run.Plugins))
				for _, p := range run.Plugins {
					rows = append(rows, []string{
						p.Name,
						outcomeLabel(merge.Outcome(p.Outcome), colorize),
						strconv.Itoa(p.Records),
						strconv.Itoa(p.NewRecords),
						strconv.Itoa(p.AddedTracks),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Plugin", "Outcome", "Records", "New", "Added Tracks"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return fmt.Errorf("--keep must not be negative")
			}
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return errHistoryDisabled
				}
				removed, err := store.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 50, "Number of recent runs to keep")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
