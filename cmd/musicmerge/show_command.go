package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"musicmerge/internal/config"
	"musicmerge/internal/game"
	"musicmerge/internal/plugin"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var showTracks bool

	cmd := &cobra.Command{
		Use:   "show <plugin>",
		Short: "Show a plugin's header and music records",
		Long: `Show decodes one plugin file. A bare file name that does not exist in the
working directory is looked up in the game data directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := ctx.pluginOptions()
			if err != nil {
				return err
			}
			path, err := resolvePluginArg(cfg, args[0])
			if err != nil {
				return err
			}
			p, err := plugin.ReadFile(path, opts...)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if jsonOutput {
				return writeJSON(cmd, newPluginView(p))
			}
			printPlugin(cmd, p, showTracks)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the decoded plugin as JSON")
	cmd.Flags().BoolVar(&showTracks, "tracks", false, "List every track form id")
	return cmd
}

func resolvePluginArg(cfg *config.Config, arg string) (string, error) {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return path, nil
	}
	if strings.ContainsAny(arg, `/\`) {
		return path, nil
	}
	g, err := game.Parse(cfg.Game.Name)
	if err != nil {
		return path, nil
	}
	dataDir, err := game.ResolveDataDir(cfg.Game, g)
	if err != nil {
		return path, nil
	}
	return filepath.Join(dataDir, arg), nil
}

type pluginView struct {
	Path         string      `json:"path"`
	Version      float32     `json:"version"`
	RecordCount  int32       `json:"record_count"`
	NextObjectID string      `json:"next_object_id"`
	Author       string      `json:"author"`
	Description  string      `json:"description"`
	Masters      []string    `json:"masters"`
	Overrides    []string    `json:"overrides,omitempty"`
	Music        []musicView `json:"music"`
}

type musicView struct {
	FormID       string   `json:"form_id"`
	EditorID     string   `json:"editor_id"`
	Flags        uint32   `json:"flags"`
	Priority     uint16   `json:"priority"`
	Ducking      uint16   `json:"ducking"`
	FadeDuration float32  `json:"fade_duration"`
	Tracks       []string `json:"tracks"`
}

func formIDs(ids []uint32) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, plugin.FormatFormID(id))
	}
	return out
}

func newPluginView(p *plugin.Plugin) pluginView {
	view := pluginView{
		Path:         p.Path,
		Version:      p.Version,
		RecordCount:  p.RecordCount,
		NextObjectID: plugin.FormatFormID(p.NextObjectID),
		Author:       p.Author,
		Description:  p.Description,
		Masters:      append([]string{}, p.Masters...),
		Music:        make([]musicView, 0, len(p.Music)),
	}
	if len(p.Overrides) > 0 {
		view.Overrides = formIDs(p.Overrides)
	}
	for _, m := range p.Music {
		view.Music = append(view.Music, musicView{
			FormID:       plugin.FormatFormID(m.FormID),
			EditorID:     m.EditorID,
			Flags:        m.Flags,
			Priority:     m.Priority,
			Ducking:      m.Ducking,
			FadeDuration: m.FadeDuration,
			Tracks:       formIDs(m.TrackIDs),
		})
	}
	return view
}

func printPlugin(cmd *cobra.Command, p *plugin.Plugin, showTracks bool) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	writeSection(out, p.Name, colorize)
	fmt.Fprintln(out, renderField("Path", p.Path))
	fmt.Fprintln(out, renderField("Version", strconv.FormatFloat(float64(p.Version), 'g', -1, 32)))
	fmt.Fprintln(out, renderField("Records", strconv.Itoa(int(p.RecordCount))))
	fmt.Fprintln(out, renderField("Next object id", plugin.FormatFormID(p.NextObjectID)))
	fmt.Fprintln(out, renderField("Author", p.Author))
	fmt.Fprintln(out, renderField("Description", p.Description))
	fmt.Fprintln(out, renderField("Masters", strings.Join(p.Masters, ", ")))
	if len(p.Overrides) > 0 {
		fmt.Fprintln(out, renderField("Overrides", strconv.Itoa(len(p.Overrides))))
	}
	fmt.Fprintln(out)

	if len(p.Music) == 0 {
		fmt.Fprintln(out, "No music records")
		return
	}

	rows := make([][]string, 0, len(p.Music))
	for _, m := range p.Music {
		tracks := strconv.Itoa(len(m.TrackIDs))
		if showTracks {
			tracks = strings.Join(formIDs(m.TrackIDs), " ")
		}
		rows = append(rows, []string{
			plugin.FormatFormID(m.FormID),
			m.EditorID,
			strconv.Itoa(int(m.Priority)),
			strconv.Itoa(int(m.Ducking)),
			strconv.FormatFloat(float64(m.FadeDuration), 'g', -1, 32),
			tracks,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
	if showTracks {
		aligns[5] = alignLeft
	}
	fmt.Fprint(out, renderTable(
		[]string{"Form ID", "Editor ID", "Priority", "Ducking", "Fade", "Tracks"},
		rows,
		aligns,
	))
}
