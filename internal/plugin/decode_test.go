package plugin_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"strings"
	"testing"

	"musicmerge/internal/plugin"
	"musicmerge/internal/testsupport"
)

var (
	combatTrack = testsupport.Music{
		FormID:   0x0001A2B3,
		EditorID: "MUSCombatBoss",
		Flags:    0x2,
		Priority: 10,
		Ducking:  25,
		Fade:     1.5,
		Tracks:   []uint32{0x100, 0x101},
	}
	dungeonTrack = testsupport.Music{
		FormID:   0x0001A2B4,
		EditorID: "MUSDungeon",
		Priority: 50,
		Tracks:   []uint32{0x200},
	}
)

func decode(t *testing.T, data []byte, opts ...plugin.Option) *plugin.Plugin {
	t.Helper()
	p, err := plugin.Decode(bytes.NewReader(data), opts...)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return p
}

func TestDecodeMusicPlugin(t *testing.T) {
	data := testsupport.MusicPlugin([]string{"Skyrim.esm", "Update.esm"}, combatTrack, dungeonTrack)

	p := decode(t, data)

	if p.Version != plugin.VersionSkyrim {
		t.Fatalf("version = %g", p.Version)
	}
	if p.RecordCount != 2 || p.NextObjectID != 0x800 {
		t.Fatalf("unexpected HEDR values: count=%d next=%X", p.RecordCount, p.NextObjectID)
	}
	if p.Author != "tester" || p.Description != "" {
		t.Fatalf("unexpected author/description %q/%q", p.Author, p.Description)
	}
	if want := []string{"Skyrim.esm", "Update.esm"}; !reflect.DeepEqual(p.Masters, want) {
		t.Fatalf("masters = %v, want %v", p.Masters, want)
	}
	if len(p.Music) != 2 {
		t.Fatalf("decoded %d music records, want 2", len(p.Music))
	}
	want := plugin.MusicTrack{
		FormID:       0x0001A2B3,
		EditorID:     "MUSCombatBoss",
		Flags:        0x2,
		Priority:     10,
		Ducking:      25,
		FadeDuration: 1.5,
		TrackIDs:     []uint32{0x100, 0x101},
	}
	if !reflect.DeepEqual(p.Music[0], want) {
		t.Fatalf("first record = %+v, want %+v", p.Music[0], want)
	}
	if p.Music[1].EditorID != "MUSDungeon" || p.Music[1].Priority != 50 {
		t.Fatalf("second record = %+v", p.Music[1])
	}
}

func TestDecodeHeaderOnly(t *testing.T) {
	p := decode(t, testsupport.MusicPlugin(nil))
	if len(p.Music) != 0 || len(p.Masters) != 0 {
		t.Fatalf("expected empty plugin, got %+v", p)
	}
}

func TestDecodeOblivionVersion(t *testing.T) {
	p := decode(t, testsupport.Header(plugin.VersionOblivion, 0, 0))
	if p.Version != plugin.VersionOblivion {
		t.Fatalf("version = %g", p.Version)
	}
}

func TestDecodeOpaqueHeaderFields(t *testing.T) {
	data := testsupport.Header(plugin.VersionSkyrim, 0, 0,
		testsupport.Subrecord("ONAM", testsupport.Uint32s(0x10, 0x20, 0x30)),
		testsupport.Subrecord("INTV", testsupport.Uint32s(7)),
		testsupport.Subrecord("INCC", testsupport.Uint32s(9)),
	)

	p := decode(t, data)

	if !reflect.DeepEqual(p.Overrides, []uint32{0x10, 0x20, 0x30}) {
		t.Fatalf("overrides = %v", p.Overrides)
	}
	if p.IntV != 7 || p.IncC != 9 {
		t.Fatalf("intv/incc = %d/%d", p.IntV, p.IncC)
	}
}

func TestDecodeZStringDeclaredLengths(t *testing.T) {
	// CNAM with a zero length must be scanned up to its terminator.
	searched := append([]byte("CNAM\x00\x00"), testsupport.ZString("Scanned Author")...)

	tests := []struct {
		name   string
		fields [][]byte
		author string
		desc   string
	}{
		{
			name:   "length one is empty",
			fields: [][]byte{testsupport.Subrecord("CNAM", []byte{0}), testsupport.Subrecord("SNAM", testsupport.ZString("d"))},
			author: "",
			desc:   "d",
		},
		{
			name:   "length zero searches for terminator",
			fields: [][]byte{searched, testsupport.Subrecord("SNAM", testsupport.ZString("after"))},
			author: "Scanned Author",
			desc:   "after",
		},
		{
			name:   "length zero with immediate terminator",
			fields: [][]byte{[]byte("CNAM\x00\x00\x00"), testsupport.Subrecord("SNAM", testsupport.ZString("x"))},
			author: "",
			desc:   "x",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := decode(t, testsupport.Header(plugin.VersionSkyrim, 0, 0, tc.fields...))
			if p.Author != tc.author || p.Description != tc.desc {
				t.Fatalf("author/desc = %q/%q, want %q/%q", p.Author, p.Description, tc.author, tc.desc)
			}
		})
	}
}

func TestDecodeLengthEscape(t *testing.T) {
	long := strings.Repeat("m", 70000)
	data := testsupport.Header(plugin.VersionSkyrim, 0, 0,
		testsupport.EscapedSubrecord("SNAM", testsupport.ZString(long)),
		testsupport.Subrecord("CNAM", testsupport.ZString("after escape")),
	)

	p := decode(t, data)

	if p.Description != long {
		t.Fatalf("escaped description has %d bytes, want %d", len(p.Description), len(long))
	}
	if p.Author != "after escape" {
		t.Fatalf("escape leaked into the next field: author = %q", p.Author)
	}
}

func TestDecodeEscapedRecordField(t *testing.T) {
	ids := make([]uint32, 20000)
	for i := range ids {
		ids[i] = uint32(i)
	}
	pnam := binary.LittleEndian.AppendUint16(binary.LittleEndian.AppendUint16(nil, 1), 2)
	rec := testsupport.Record("MUSC", 0x42,
		testsupport.Subrecord("EDID", testsupport.ZString("MUSHuge")),
		testsupport.Subrecord("FNAM", testsupport.Uint32s(0)),
		testsupport.Subrecord("PNAM", pnam),
		testsupport.Subrecord("WNAM", testsupport.Uint32s(0)),
		testsupport.EscapedSubrecord("TNAM", testsupport.Uint32s(ids...)),
	)
	data := append(testsupport.Header(plugin.VersionSkyrim, 1, 0), testsupport.Group("MUSC", rec)...)

	p := decode(t, data)

	if len(p.Music) != 1 || !reflect.DeepEqual(p.Music[0].TrackIDs, ids) {
		t.Fatalf("escaped TNAM not decoded: %d records", len(p.Music))
	}
}

func TestDecodeSkipsUnregisteredGroups(t *testing.T) {
	weapon := testsupport.Record("WEAP", 0x99, testsupport.Subrecord("EDID", testsupport.ZString("IronSword")))
	data := testsupport.Header(plugin.VersionSkyrim, 3, 0)
	data = append(data, testsupport.Group("WEAP", weapon)...)
	data = append(data, testsupport.Group("MUSC", combatTrack.Bytes())...)
	data = append(data, testsupport.Group("ARMO")...)

	p := decode(t, data)

	if len(p.Music) != 1 || p.Music[0].EditorID != "MUSCombatBoss" {
		t.Fatalf("unexpected music after skipped groups: %+v", p.Music)
	}
}

func TestDecodeSkipsUnmodeledSubrecords(t *testing.T) {
	extra := testsupport.Record("MUSC", 0x5,
		testsupport.Subrecord("EDID", testsupport.ZString("MUSExtra")),
		testsupport.Subrecord("FNAM", testsupport.Uint32s(0)),
		testsupport.Subrecord("PNAM", testsupport.Uint32s(0)),
		testsupport.Subrecord("WNAM", testsupport.Uint32s(0)),
		testsupport.Subrecord("TNAM", testsupport.Uint32s(1)),
		testsupport.Subrecord("CITC", testsupport.Uint32s(0)),
	)
	data := append(testsupport.Header(plugin.VersionSkyrim, 2, 0), testsupport.Group("MUSC", extra, dungeonTrack.Bytes())...)

	p := decode(t, data)

	if len(p.Music) != 2 || p.Music[0].EditorID != "MUSExtra" || p.Music[1].EditorID != "MUSDungeon" {
		t.Fatalf("unexpected records: %+v", p.Music)
	}
}

func TestDecodeStopsAtTrailingData(t *testing.T) {
	data := testsupport.MusicPlugin(nil, combatTrack)
	data = append(data, []byte("JUNKtrailing bytes")...)

	p := decode(t, data)

	if len(p.Music) != 1 {
		t.Fatalf("expected records before trailing data, got %d", len(p.Music))
	}
}

func TestDecodeWindows1252Text(t *testing.T) {
	data := testsupport.Header(plugin.VersionSkyrim, 0, 0,
		testsupport.Subrecord("CNAM", []byte("Caf\xe9\x00")),
	)

	p := decode(t, data, plugin.WithTextEncoding(plugin.Windows1252))
	if p.Author != "Café" {
		t.Fatalf("author = %q, want Café", p.Author)
	}

	_, err := plugin.Decode(bytes.NewReader(data))
	if !errors.Is(err, plugin.ErrInvalidText) {
		t.Fatalf("utf-8 decode error = %v, want ErrInvalidText", err)
	}
}

func withGroupLength(group []byte, length uint32) []byte {
	out := append([]byte(nil), group...)
	binary.LittleEndian.PutUint32(out[4:8], length)
	return out
}

func TestDecodeFormatErrors(t *testing.T) {
	header := testsupport.Header(plugin.VersionSkyrim, 0, 0)
	valid := testsupport.MusicPlugin(nil, combatTrack)

	wrongFirst := testsupport.Record("MUSC", 1,
		testsupport.Subrecord("FNAM", testsupport.Uint32s(0)),
	)
	shortFlags := testsupport.Record("MUSC", 1,
		testsupport.Subrecord("EDID", testsupport.ZString("MUSShort")),
		testsupport.Subrecord("FNAM", []byte{1, 2}),
	)
	badMagic := append([]byte("TES3"), valid[4:]...)
	noHedr := append(append([]byte(nil), valid[:24]...), testsupport.Subrecord("CNAM", testsupport.ZString("x"))...)

	tests := []struct {
		name   string
		data   []byte
		want   error
		verify func(*testing.T, *plugin.FormatError)
	}{
		{
			name: "bad magic",
			data: badMagic,
			want: plugin.ErrBadMagic,
			verify: func(t *testing.T, fe *plugin.FormatError) {
				if fe.Offset != 0 || fe.Found != plugin.NewTag("TES3") {
					t.Fatalf("unexpected error detail %+v", fe)
				}
			},
		},
		{
			name: "missing HEDR",
			data: noHedr,
			want: plugin.ErrUnexpectedField,
			verify: func(t *testing.T, fe *plugin.FormatError) {
				if fe.Expected != plugin.NewTag("HEDR") || fe.Found != plugin.NewTag("CNAM") {
					t.Fatalf("unexpected error detail %+v", fe)
				}
			},
		},
		{
			name: "unsupported version",
			data: testsupport.Header(2.0, 0, 0),
			want: plugin.ErrUnsupportedVersion,
			verify: func(t *testing.T, fe *plugin.FormatError) {
				if fe.Version != 2.0 || fe.Offset != 30 {
					t.Fatalf("unexpected error detail %+v", fe)
				}
			},
		},
		{
			name: "unknown header field",
			data: append(append([]byte(nil), header...), testsupport.Subrecord("ZZZZ", []byte{1})...),
			want: plugin.ErrUnknownField,
			verify: func(t *testing.T, fe *plugin.FormatError) {
				if fe.Tag != plugin.NewTag("ZZZZ") || fe.Offset != int64(len(header)) {
					t.Fatalf("unexpected error detail %+v", fe)
				}
			},
		},
		{
			name: "record field out of order",
			data: append(append([]byte(nil), header...), testsupport.Group("MUSC", wrongFirst)...),
			want: plugin.ErrUnexpectedField,
			verify: func(t *testing.T, fe *plugin.FormatError) {
				if fe.Expected != plugin.NewTag("EDID") || fe.Found != plugin.NewTag("FNAM") {
					t.Fatalf("unexpected error detail %+v", fe)
				}
			},
		},
		{
			name: "record type differs from group label",
			data: append(append([]byte(nil), header...), testsupport.Group("MUSC", testsupport.Record("WEAP", 1))...),
			want: plugin.ErrUnexpectedField,
		},
		{
			name: "nested group type",
			data: append(append([]byte(nil), header...), testsupport.GroupOfType("MUSC", 1, combatTrack.Bytes())...),
			want: plugin.ErrUnsupportedGroup,
			verify: func(t *testing.T, fe *plugin.FormatError) {
				if fe.GroupType != 1 {
					t.Fatalf("group type = %d", fe.GroupType)
				}
			},
		},
		{
			name: "group shorter than its header",
			data: append(append([]byte(nil), header...), withGroupLength(testsupport.Group("MUSC"), 10)...),
			want: plugin.ErrBadGroupLength,
		},
		{
			name: "group length ends inside a record",
			data: append(append([]byte(nil), header...), withGroupLength(testsupport.Group("MUSC", combatTrack.Bytes(), dungeonTrack.Bytes()), 24+30)...),
			want: plugin.ErrBadGroupLength,
		},
		{
			name: "fixed field too short",
			data: append(append([]byte(nil), header...), testsupport.Group("MUSC", shortFlags)...),
			want: plugin.ErrBadFieldLength,
		},
		{
			name: "truncated record",
			data: valid[:len(valid)-3],
			want: plugin.ErrTruncatedStream,
		},
		{
			name: "truncated header",
			data: valid[:10],
			want: plugin.ErrTruncatedStream,
		},
		{
			name: "empty input",
			data: nil,
			want: plugin.ErrTruncatedStream,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := plugin.Decode(bytes.NewReader(tc.data))
			if err == nil {
				t.Fatalf("expected error, decoded %+v", p)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			fe, ok := plugin.AsFormatError(err)
			if !ok {
				t.Fatalf("expected *FormatError in chain, got %T", err)
			}
			if tc.verify != nil {
				tc.verify(t, fe)
			}
		})
	}
}
