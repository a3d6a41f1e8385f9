package merge_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"musicmerge/internal/merge"
	"musicmerge/internal/plugin"
	"musicmerge/internal/testsupport"
)

const patchName = "music_merge_patch.esp"

type fixture struct {
	t   *testing.T
	dir string
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, dir: t.TempDir()}
}

func (f *fixture) plugin(name string, masters []string, tracks ...testsupport.Music) string {
	return testsupport.WritePlugin(f.t, f.dir, name, testsupport.MusicPlugin(masters, tracks...))
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.dir, name)
}

func TestMergeUnionsTracksByEditorID(t *testing.T) {
	f := newFixture(t)
	paths := []string{
		f.plugin("Skyrim.esm", nil, testsupport.Music{FormID: 0x100, EditorID: "MUSCombat", Priority: 20, Tracks: []uint32{1, 2}}),
		f.plugin("A.esp", []string{"Skyrim.esm"},
			testsupport.Music{FormID: 0x100, EditorID: "MUSCombat", Priority: 99, Tracks: []uint32{2, 3}},
			testsupport.Music{FormID: 0x900, EditorID: "MUSTavern", Fade: 2.5, Tracks: []uint32{7, 7, 8}},
		),
		f.plugin("B.esp", []string{"Skyrim.esm", "Dawnguard.esm"},
			testsupport.Music{FormID: 0x100, EditorID: "MUSCombat", Tracks: []uint32{4, 1}},
		),
	}

	out, report, err := merge.New(nil).Merge(paths, patchName)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	want := []plugin.MusicTrack{
		{FormID: 0x100, EditorID: "MUSCombat", Priority: 20, TrackIDs: []uint32{1, 2, 3, 4}},
		{FormID: 0x900, EditorID: "MUSTavern", FadeDuration: 2.5, TrackIDs: []uint32{7, 8}},
	}
	if !reflect.DeepEqual(out.Music, want) {
		t.Fatalf("music = %+v\nwant %+v", out.Music, want)
	}
	if out.RecordCount != 2 || report.Records != 2 {
		t.Fatalf("record count = %d (report %d), want 2", out.RecordCount, report.Records)
	}
	if out.Version != plugin.VersionSkyrim {
		t.Fatalf("version = %g", out.Version)
	}
	if out.Author != merge.DefaultAuthor || out.Description != "Collection of music from 3 plugins" {
		t.Fatalf("author/description = %q/%q", out.Author, out.Description)
	}

	counts := make([][2]int, 0, len(report.Entries))
	for _, e := range report.Entries {
		counts = append(counts, [2]int{e.NewRecords, e.AddedTracks})
	}
	if !reflect.DeepEqual(counts, [][2]int{{1, 0}, {1, 1}, {0, 1}}) {
		t.Fatalf("new/added counts = %v", counts)
	}
}

func TestMergeMasterOrder(t *testing.T) {
	f := newFixture(t)
	track := func(id uint32, edid string) testsupport.Music {
		return testsupport.Music{FormID: id, EditorID: edid, Tracks: []uint32{id}}
	}
	paths := []string{
		f.plugin("Skyrim.esm", nil, track(1, "MUSA")),
		f.plugin("Update.esm", []string{"Skyrim.esm"}),
		f.plugin("A.esp", []string{"Skyrim.esm", "Update.esm"}, track(2, "MUSB"), track(3, "MUSC1"), track(4, "MUSD")),
		f.plugin("B.esp", []string{"skyrim.esm", "Dawnguard.esm"}, track(5, "MUSE")),
	}

	out, report, err := merge.New(nil).Merge(paths, patchName)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	// Update.esm has no music, so it only appears because A.esp needs it.
	want := []string{"Skyrim.esm", "Update.esm", "A.esp", "Dawnguard.esm", "B.esp"}
	if !reflect.DeepEqual(out.Masters, want) {
		t.Fatalf("masters = %v, want %v", out.Masters, want)
	}
	if !reflect.DeepEqual(report.Masters, want) {
		t.Fatalf("report masters = %v", report.Masters)
	}
	if got := report.Contributors(); !reflect.DeepEqual(got, []string{"Skyrim.esm", "A.esp", "B.esp"}) {
		t.Fatalf("contributors = %v", got)
	}
}

func TestMergeReportOutcomes(t *testing.T) {
	f := newFixture(t)
	paths := []string{
		f.plugin("Skyrim.esm", nil, testsupport.Music{FormID: 1, EditorID: "MUSA", Tracks: []uint32{1}}),
		f.path("Gone.esp"),
		f.plugin("Quiet.esp", []string{"Skyrim.esm"}),
		f.plugin(patchName, []string{"Skyrim.esm"}, testsupport.Music{FormID: 2, EditorID: "MUSStale", Tracks: []uint32{2}}),
	}

	out, report, err := merge.New(nil).Merge(paths, patchName)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	var outcomes []merge.Outcome
	for _, e := range report.Entries {
		outcomes = append(outcomes, e.Outcome)
	}
	want := []merge.Outcome{merge.OutcomeContributed, merge.OutcomeMissing, merge.OutcomeNoMusic, merge.OutcomeSkippedOutput}
	if !reflect.DeepEqual(outcomes, want) {
		t.Fatalf("outcomes = %v, want %v", outcomes, want)
	}
	if report.Count(merge.OutcomeMissing) != 1 || report.Count(merge.OutcomeContributed) != 1 {
		t.Fatalf("unexpected counts in %+v", report.Entries)
	}
	if len(out.Music) != 1 || out.Music[0].EditorID != "MUSA" {
		t.Fatalf("previous patch leaked into the merge: %+v", out.Music)
	}
	if !reflect.DeepEqual(out.Masters, []string{"Skyrim.esm"}) {
		t.Fatalf("masters = %v", out.Masters)
	}
}

func TestMergeAbortsOnUnsupportedVersion(t *testing.T) {
	f := newFixture(t)
	bad := testsupport.WritePlugin(t, f.dir, "Future.esp", testsupport.Header(2.0, 0, 0))
	paths := []string{
		f.plugin("A.esp", nil, testsupport.Music{FormID: 1, EditorID: "MUSA", Tracks: []uint32{1}}),
		bad,
		f.plugin("B.esp", nil, testsupport.Music{FormID: 2, EditorID: "MUSB", Tracks: []uint32{2}}),
	}

	out, _, err := merge.New(nil).Merge(paths, patchName)
	if err == nil {
		t.Fatal("expected merge to fail")
	}
	if out != nil {
		t.Fatalf("failed merge returned a plugin: %+v", out)
	}
	var mergeErr *merge.Error
	if !errors.As(err, &mergeErr) || mergeErr.Path != bad || mergeErr.Op != merge.OpDecode {
		t.Fatalf("error = %#v", err)
	}
	if !errors.Is(err, merge.ErrDecode) || !errors.Is(err, plugin.ErrUnsupportedVersion) {
		t.Fatalf("error %v not classified as a decode failure", err)
	}
	if errors.Is(err, merge.ErrOutput) {
		t.Fatal("decode failure must not match ErrOutput")
	}

	output := f.path(patchName)
	if _, err := merge.New(nil).Run(paths, output); !errors.Is(err, merge.ErrDecode) {
		t.Fatalf("Run error = %v", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("failed run left an output file: %v", err)
	}
}

func TestMergeFoldsEditorIDCase(t *testing.T) {
	f := newFixture(t)
	paths := []string{
		f.plugin("A.esp", nil, testsupport.Music{FormID: 1, EditorID: "MUSDungeon", Tracks: []uint32{1}}),
		f.plugin("B.esp", nil, testsupport.Music{FormID: 1, EditorID: "musdungeon", Tracks: []uint32{2}}),
	}

	tests := []struct {
		fold    bool
		records int
	}{
		{false, 2},
		{true, 1},
	}
	for _, tc := range tests {
		out, _, err := merge.New(nil, merge.WithFoldEditorIDCase(tc.fold)).Merge(paths, patchName)
		if err != nil {
			t.Fatalf("Merge(fold=%v): %v", tc.fold, err)
		}
		if len(out.Music) != tc.records {
			t.Fatalf("fold=%v merged %d records, want %d", tc.fold, len(out.Music), tc.records)
		}
	}

	out, _, _ := merge.New(nil, merge.WithFoldEditorIDCase(true)).Merge(paths, patchName)
	if out.Music[0].EditorID != "MUSDungeon" || !reflect.DeepEqual(out.Music[0].TrackIDs, []uint32{1, 2}) {
		t.Fatalf("folded record = %+v", out.Music[0])
	}
}

func TestRunWritesPatch(t *testing.T) {
	f := newFixture(t)
	paths := []string{
		f.plugin("A.esp", []string{"Skyrim.esm"}, testsupport.Music{FormID: 0x123, EditorID: "MUSExplore", Tracks: []uint32{10, 11}}),
	}
	output := f.path(patchName)

	report, err := merge.New(nil,
		merge.WithAuthor("Tester"),
		merge.WithDescription("Custom"),
	).Run(paths, output)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Output != output {
		t.Fatalf("report output = %q", report.Output)
	}

	p, err := plugin.ReadFile(output)
	if err != nil {
		t.Fatalf("read patch: %v", err)
	}
	if p.Author != "Tester" || p.Description != "Custom" {
		t.Fatalf("author/description = %q/%q", p.Author, p.Description)
	}
	if !reflect.DeepEqual(p.Masters, []string{"Skyrim.esm", "A.esp"}) {
		t.Fatalf("masters = %v", p.Masters)
	}
	if len(p.Music) != 1 || !reflect.DeepEqual(p.Music[0].TrackIDs, []uint32{10, 11}) {
		t.Fatalf("music = %+v", p.Music)
	}
	if _, err := os.Stat(output + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("lock file left behind: %v", err)
	}

	// A second run reads the first patch from the load order and skips it.
	report, err = merge.New(nil).Run(append(paths, output), output)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if report.Count(merge.OutcomeSkippedOutput) != 1 || report.Records != 1 {
		t.Fatalf("second run report = %+v", report)
	}
}

func TestRunWritesEmptyPatchWithoutMusic(t *testing.T) {
	f := newFixture(t)
	output := f.path(patchName)

	report, err := merge.New(nil).Run([]string{f.plugin("A.esp", nil)}, output)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Records != 0 {
		t.Fatalf("records = %d", report.Records)
	}
	p, err := plugin.ReadFile(output)
	if err != nil {
		t.Fatalf("read patch: %v", err)
	}
	if len(p.Music) != 0 || len(p.Masters) != 0 || p.Description != "Collection of music from 0 plugins" {
		t.Fatalf("unexpected empty patch %+v", p)
	}
}

type staticOrder struct {
	paths []string
	err   error
}

func (o staticOrder) Paths() ([]string, error) { return o.paths, o.err }

func TestRunLoadOrder(t *testing.T) {
	f := newFixture(t)
	output := f.path(patchName)

	_, err := merge.New(nil).RunLoadOrder(staticOrder{err: errors.New("plugins.txt unreadable")}, output)
	if !errors.Is(err, merge.ErrLoadOrder) {
		t.Fatalf("error = %v, want ErrLoadOrder", err)
	}

	order := staticOrder{paths: []string{f.plugin("A.esp", nil, testsupport.Music{FormID: 1, EditorID: "MUSA", Tracks: []uint32{1}})}}
	report, err := merge.New(nil).RunLoadOrder(order, output)
	if err != nil {
		t.Fatalf("RunLoadOrder: %v", err)
	}
	if report.Records != 1 {
		t.Fatalf("records = %d", report.Records)
	}
}

func TestRunReportsOutputErrors(t *testing.T) {
	f := newFixture(t)
	paths := []string{f.plugin("A.esp", nil, testsupport.Music{FormID: 1, EditorID: "MUSA", Tracks: []uint32{1}})}
	output := filepath.Join(f.dir, "missing-dir", patchName)

	_, err := merge.New(nil).Run(paths, output)
	if !errors.Is(err, merge.ErrOutput) {
		t.Fatalf("error = %v, want ErrOutput", err)
	}
	var mergeErr *merge.Error
	if !errors.As(err, &mergeErr) || mergeErr.Op != merge.OpWrite || mergeErr.Path != output {
		t.Fatalf("error = %#v", err)
	}
}
