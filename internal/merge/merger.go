package merge

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"musicmerge/internal/logging"
	"musicmerge/internal/plugin"
)

const (
	// DefaultAuthor is written into the patch header when none is configured.
	DefaultAuthor = "ESMusicMerger"

	// firstObjectID is the next-object-id of a plugin that has allocated no
	// form ids of its own.
	firstObjectID = 0x800
)

// LoadOrder supplies plugin paths in the order the game loads them.
type LoadOrder interface {
	Paths() ([]string, error)
}

// Option customizes a Merger.
type Option func(*Merger)

// WithAuthor sets the patch header author.
func WithAuthor(author string) Option {
	return func(m *Merger) {
		if author = strings.TrimSpace(author); author != "" {
			m.author = author
		}
	}
}

// WithDescription sets a fixed patch description instead of the generated
// "Collection of music from N plugins".
func WithDescription(desc string) Option {
	return func(m *Merger) {
		m.description = strings.TrimSpace(desc)
	}
}

// WithFoldEditorIDCase matches editor ids case-insensitively.
func WithFoldEditorIDCase(fold bool) Option {
	return func(m *Merger) {
		m.foldCase = fold
	}
}

// WithPluginOptions passes codec options to every decode and the final encode.
func WithPluginOptions(opts ...plugin.Option) Option {
	return func(m *Merger) {
		m.pluginOpts = append(m.pluginOpts, opts...)
	}
}

// Merger aggregates music records across a load order.
type Merger struct {
	logger      *slog.Logger
	author      string
	description string
	foldCase    bool
	pluginOpts  []plugin.Option
}

// New returns a Merger logging to logger (nil discards logs).
func New(logger *slog.Logger, opts ...Option) *Merger {
	m := &Merger{
		logger: logging.NewComponentLogger(logger, "merge"),
		author: DefaultAuthor,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// RunLoadOrder resolves order and merges it into outputPath.
func (m *Merger) RunLoadOrder(order LoadOrder, outputPath string) (*Report, error) {
	paths, err := order.Paths()
	if err != nil {
		return nil, &Error{Op: OpLoadOrder, Err: err}
	}
	return m.Run(paths, outputPath)
}

// Run merges paths and writes the patch to outputPath, replacing any
// previous patch. A patch is written even when no plugin supplies music, so
// a stale patch never outlives the mods it was built from.
func (m *Merger) Run(paths []string, outputPath string) (*Report, error) {
	out, report, err := m.Merge(paths, filepath.Base(outputPath))
	if err != nil {
		return report, err
	}
	out.Path = outputPath
	if report.Records == 0 {
		logging.WarnWithContext(m.logger, "no plugin in the load order defines music; writing an empty patch", "merge_empty",
			logging.String("output", outputPath),
			logging.String(logging.FieldImpact, "the patch carries no music records"),
		)
	}
	opts := append([]plugin.Option{plugin.WithLogger(m.logger)}, m.pluginOpts...)
	if err := plugin.WriteFile(outputPath, out, opts...); err != nil {
		return report, &Error{Path: outputPath, Op: writeOp(err), Err: err}
	}
	report.Output = outputPath
	m.logger.Info("patch written",
		logging.String("output", outputPath),
		logging.Int("records", report.Records),
		logging.Int("masters", len(report.Masters)),
	)
	return report, nil
}

// writeOp distinguishes an encode failure from a filesystem one.
func writeOp(err error) string {
	if _, ok := plugin.AsFormatError(err); ok || errors.Is(err, plugin.ErrUnsupportedVersion) {
		return OpEncode
	}
	return OpWrite
}

// Merge decodes paths in order and returns the patch plugin. A path whose
// file name equals outputName is skipped so a previous patch never feeds
// itself. Missing files are skipped; any other read or decode failure aborts
// the merge and no plugin is returned.
func (m *Merger) Merge(paths []string, outputName string) (*plugin.Plugin, *Report, error) {
	agg := newAggregate(outputName, m.foldCase)
	report := &Report{Entries: make([]Entry, 0, len(paths))}
	opts := append([]plugin.Option{plugin.WithLogger(m.logger)}, m.pluginOpts...)

	for _, path := range paths {
		name := filepath.Base(path)
		entry := Entry{Path: path, Name: name}
		log := m.logger.With(logging.String(logging.FieldPlugin, name))

		if strings.EqualFold(name, outputName) {
			entry.Outcome = OutcomeSkippedOutput
			report.Entries = append(report.Entries, entry)
			log.Debug("skipping previous patch")
			continue
		}

		p, err := plugin.ReadFile(path, opts...)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				entry.Outcome = OutcomeMissing
				report.Entries = append(report.Entries, entry)
				logging.WarnWithContext(log, "plugin not found; skipped", "plugin_missing",
					logging.String("path", path),
					logging.String(logging.FieldImpact, "music from this plugin is not merged"),
				)
				continue
			}
			op := OpOpen
			if _, ok := plugin.AsFormatError(err); ok {
				op = OpDecode
			}
			return nil, report, &Error{Path: path, Op: op, Err: err}
		}

		entry.Records = len(p.Music)
		if entry.Records == 0 {
			entry.Outcome = OutcomeNoMusic
			report.Entries = append(report.Entries, entry)
			log.Debug("plugin has no music records")
			continue
		}

		entry.Outcome = OutcomeContributed
		entry.NewRecords, entry.AddedTracks = agg.add(p, log)
		report.Entries = append(report.Entries, entry)
		log.Info("plugin merged",
			logging.Int("records", entry.Records),
			logging.Int("new_records", entry.NewRecords),
			logging.Int("added_tracks", entry.AddedTracks),
		)
	}

	out := agg.plugin(m.author, m.description)
	report.Masters = append([]string(nil), out.Masters...)
	report.Records = len(out.Music)
	return out, report, nil
}

// aggregate accumulates masters and music across contributing plugins.
type aggregate struct {
	outputName   string
	masters      []string
	seenMasters  map[string]struct{}
	music        []plugin.MusicTrack
	byEditorID   map[string]int
	ownerOfForm  map[uint32]string
	contributors int
	key          func(string) string
}

func newAggregate(outputName string, foldCase bool) *aggregate {
	a := &aggregate{
		outputName:  outputName,
		seenMasters: make(map[string]struct{}),
		byEditorID:  make(map[string]int),
		ownerOfForm: make(map[uint32]string),
		key:         func(s string) string { return s },
	}
	if foldCase {
		caser := cases.Fold()
		a.key = caser.String
	}
	return a
}

// addMaster appends name unless it is already listed. Plugin file names are
// matched case-insensitively, as the game does.
func (a *aggregate) addMaster(name string) {
	if name == "" || strings.EqualFold(name, a.outputName) {
		return
	}
	k := strings.ToLower(name)
	if _, ok := a.seenMasters[k]; ok {
		return
	}
	a.seenMasters[k] = struct{}{}
	a.masters = append(a.masters, name)
}

// add merges p's music and returns the number of editor ids it introduced
// and the number of track ids it added to existing records.
func (a *aggregate) add(p *plugin.Plugin, log *slog.Logger) (newRecords, addedTracks int) {
	a.contributors++
	for _, master := range p.Masters {
		a.addMaster(master)
	}
	a.addMaster(p.Name)

	for _, track := range p.Music {
		k := a.key(track.EditorID)
		if idx, ok := a.byEditorID[k]; ok {
			existing := &a.music[idx]
			for _, id := range track.TrackIDs {
				if existing.AddTrackID(id) {
					addedTracks++
				}
			}
			continue
		}

		if owner, clash := a.ownerOfForm[track.FormID]; clash {
			logging.WarnWithContext(log, "form id already used by another editor id", "form_id_collision",
				logging.FormID("form_id", track.FormID),
				logging.String("editor_id", track.EditorID),
				logging.String("existing_editor_id", owner),
				logging.String(logging.FieldImpact, "the game keeps only one of the two records"),
			)
		} else {
			a.ownerOfForm[track.FormID] = track.EditorID
		}

		adopted := track
		// Duplicate ids inside one source record collapse on adoption.
		adopted.TrackIDs = make([]uint32, 0, len(track.TrackIDs))
		for _, id := range track.TrackIDs {
			adopted.AddTrackID(id)
		}
		a.byEditorID[k] = len(a.music)
		a.music = append(a.music, adopted)
		newRecords++
	}
	return newRecords, addedTracks
}

func (a *aggregate) plugin(author, description string) *plugin.Plugin {
	out := plugin.New(a.outputName)
	out.Version = plugin.VersionSkyrim
	out.NextObjectID = firstObjectID
	out.Author = author
	out.Description = description
	if out.Description == "" {
		out.Description = fmt.Sprintf("Collection of music from %d plugins", a.contributors)
	}
	out.Masters = append([]string(nil), a.masters...)
	out.Music = a.music
	out.RecordCount = int32(len(a.music))
	return out
}
