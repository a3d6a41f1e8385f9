package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"musicmerge/internal/config"
	"musicmerge/internal/game"
	"musicmerge/internal/history"
	"musicmerge/internal/logging"
	"musicmerge/internal/merge"
)

// pathList is a fixed load order given on the command line.
type pathList []string

func (p pathList) Paths() ([]string, error) { return p, nil }

type mergeTarget struct {
	order  merge.LoadOrder
	game   string
	output string
}

// resolveMergeTarget picks the load order and output path. Explicit plugin
// paths bypass plugins.txt; the output then defaults to output.dir or the
// directory of the first plugin.
func resolveMergeTarget(cfg *config.Config, args []string, outputFlag string) (*mergeTarget, error) {
	target := &mergeTarget{game: cfg.Game.Name}

	var dataDir string
	if len(args) > 0 {
		paths := make(pathList, 0, len(args))
		for _, arg := range args {
			expanded, err := config.ExpandPath(arg)
			if err != nil {
				return nil, fmt.Errorf("resolve plugin path %q: %w", arg, err)
			}
			paths = append(paths, expanded)
		}
		target.order = paths
		dataDir = filepath.Dir(paths[0])
	} else {
		order, err := game.FromConfig(cfg)
		if err != nil {
			return nil, err
		}
		target.order = order
		target.game = order.Game.String()
		dataDir = order.DataDir
	}

	if out := strings.TrimSpace(outputFlag); out != "" {
		expanded, err := config.ExpandPath(out)
		if err != nil {
			return nil, fmt.Errorf("resolve --output: %w", err)
		}
		target.output = expanded
	} else {
		target.output = cfg.OutputPath(dataDir)
	}
	return target, nil
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var dryRun bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "merge [plugin...]",
		Short: "Merge music records from the load order into the patch plugin",
		Long: `Merge reads every plugin in the load order, unions the track lists of
music records that share an editor id, and writes the result as a patch
plugin. With plugin arguments the given files are merged in argument order
instead of the configured load order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := history.NewRunID()
			cfg, session, err := ctx.startSession(runID)
			if err != nil {
				return err
			}
			defer session.Close()
			cmd.SetContext(logging.WithRunID(cmd.Context(), runID))
			logger := logging.WithContext(cmd.Context(), logging.NewComponentLogger(session.Logger, "cli"))

			pluginOpts, err := ctx.pluginOptions()
			if err != nil {
				return err
			}

			started := time.Now().UTC()
			target, err := resolveMergeTarget(cfg, args, outputFlag)
			if err != nil {
				return err
			}

			merger := merge.New(session.Logger,
				merge.WithAuthor(cfg.Output.Author),
				merge.WithDescription(cfg.Output.Description),
				merge.WithFoldEditorIDCase(cfg.Merge.FoldEditorIDCase),
				merge.WithPluginOptions(pluginOpts...),
			)
			logger.Info("merge started",
				logging.String("game", target.game),
				logging.String("output", target.output),
				logging.Bool("dry_run", dryRun),
			)

			var report *merge.Report
			if dryRun {
				report, err = dryRunMerge(merger, target)
			} else {
				report, err = merger.RunLoadOrder(target.order, target.output)
			}

			if !dryRun {
				run := &history.Run{
					ID:         runID,
					StartedAt:  started,
					Game:       target.game,
					OutputPath: target.output,
					LogPath:    session.LogPath,
				}
				run.ApplyReport(report, err)
				run.FinishedAt = time.Now().UTC()
				recordRun(ctx, cmd, run, logger)
			}
			if err != nil {
				logger.Error("merge failed", logging.Error(err))
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, newMergeSummary(runID, target.output, dryRun, report))
			}
			printMergeReport(cmd, target.output, dryRun, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the patch to this path instead of the configured location")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Merge without writing the patch or recording history")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the merge report as JSON")
	return cmd
}

func dryRunMerge(merger *merge.Merger, target *mergeTarget) (*merge.Report, error) {
	paths, err := target.order.Paths()
	if err != nil {
		return nil, &merge.Error{Op: merge.OpLoadOrder, Err: err}
	}
	_, report, err := merger.Merge(paths, filepath.Base(target.output))
	return report, err
}

func recordRun(ctx *commandContext, cmd *cobra.Command, run *history.Run, logger *slog.Logger) {
	err := ctx.withHistory(func(store *history.Store) error {
		if store == nil {
			return nil
		}
		return store.Record(cmd.Context(), run)
	})
	if err != nil {
		logger.Warn("run history not recorded", logging.Error(err))
	}
}

type mergeSummary struct {
	RunID   string             `json:"run_id"`
	Output  string             `json:"output"`
	DryRun  bool               `json:"dry_run"`
	Records int                `json:"records"`
	Masters []string           `json:"masters"`
	Plugins []mergeSummaryItem `json:"plugins"`
}

type mergeSummaryItem struct {
	Name        string `json:"name"`
	Outcome     string `json:"outcome"`
	Records     int    `json:"records"`
	NewRecords  int    `json:"new_records"`
	AddedTracks int    `json:"added_tracks"`
}

func newMergeSummary(runID, output string, dryRun bool, report *merge.Report) mergeSummary {
	summary := mergeSummary{
		RunID:   runID,
		Output:  output,
		DryRun:  dryRun,
		Records: report.Records,
		Masters: append([]string{}, report.Masters...),
		Plugins: make([]mergeSummaryItem, 0, len(report.Entries)),
	}
	for _, e := range report.Entries {
		summary.Plugins = append(summary.Plugins, mergeSummaryItem{
			Name:        e.Name,
			Outcome:     string(e.Outcome),
			Records:     e.Records,
			NewRecords:  e.NewRecords,
			AddedTracks: e.AddedTracks,
		})
	}
	return summary
}

func printMergeReport(cmd *cobra.Command, output string, dryRun bool, report *merge.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	rows := make([][]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		rows = append(rows, []string{
			e.Name,
			outcomeLabel(e.Outcome, colorize),
			strconv.Itoa(e.Records),
			strconv.Itoa(e.NewRecords),
			strconv.Itoa(e.AddedTracks),
		})
	}
	if len(rows) > 0 {
		fmt.Fprint(out, renderTable(
			[]string{"Plugin", "Outcome", "Records", "New", "Added Tracks"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
		))
	}

	contributors := report.Count(merge.OutcomeContributed)
	if dryRun {
		fmt.Fprintf(out, "Dry run: %d music records from %d plugins would be written to %s\n", report.Records, contributors, output)
		return
	}
	fmt.Fprintf(out, "Wrote %d music records from %d plugins to %s\n", report.Records, contributors, output)
	if missing := report.Count(merge.OutcomeMissing); missing > 0 {
		fmt.Fprintf(out, "%d plugins listed in the load order were not found\n", missing)
	}
}
