package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"musicmerge/internal/game"
)

type loadOrderEntry struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Present  bool   `json:"present"`
}

func newLoadOrderCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "load-order",
		Short: "Show the resolved load order and which plugins exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			order, err := game.FromConfig(cfg)
			if err != nil {
				return err
			}
			paths, err := order.Paths()
			if err != nil {
				return err
			}

			entries := make([]loadOrderEntry, 0, len(paths))
			for i, path := range paths {
				_, statErr := os.Stat(path)
				if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
					return fmt.Errorf("inspect %s: %w", path, statErr)
				}
				entries = append(entries, loadOrderEntry{
					Position: i + 1,
					Name:     filepath.Base(path),
					Path:     path,
					Present:  statErr == nil,
				})
			}

			if jsonOutput {
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			writeSection(out, "Load Order", colorize)
			fmt.Fprintln(out, renderField("Game", order.Game.String()))
			fmt.Fprintln(out, renderField("Data dir", order.DataDir))
			fmt.Fprintln(out, renderField("plugins.txt", order.PluginsFile))
			fmt.Fprintln(out)

			if len(entries) == 0 {
				fmt.Fprintln(out, "Load order is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				present := yesNo(e.Present)
				if !e.Present {
					present = paint(ansiYellow, present, colorize)
				}
				rows = append(rows, []string{strconv.Itoa(e.Position), e.Name, present})
			}
			fmt.Fprint(out, renderTable([]string{"#", "Plugin", "Present"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the load order as JSON")
	return cmd
}
