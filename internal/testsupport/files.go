package testsupport

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// The helpers below assemble plugin bytes by hand, independent of the
// encoder, so decoder tests do not depend on the code they check.

// Subrecord frames content under a four-character tag with a 16-bit length.
func Subrecord(tag string, content []byte) []byte {
	out := make([]byte, 0, 6+len(content))
	out = append(out, tag[:4]...)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(content)))
	return append(out, content...)
}

// EscapedSubrecord frames content behind an XXXX length escape.
func EscapedSubrecord(tag string, content []byte) []byte {
	out := Subrecord("XXXX", binary.LittleEndian.AppendUint32(nil, uint32(len(content))))
	out = append(out, tag[:4]...)
	out = binary.LittleEndian.AppendUint16(out, 0)
	return append(out, content...)
}

// ZString returns s followed by a NUL terminator.
func ZString(s string) []byte {
	return append([]byte(s), 0)
}

// Uint32s packs values little-endian.
func Uint32s(values ...uint32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return out
}

// Master returns a MAST subrecord and its DATA trailer.
func Master(name string) []byte {
	return append(Subrecord("MAST", ZString(name)), Subrecord("DATA", make([]byte, 8))...)
}

// Header returns the TES4 header with HEDR followed by fields.
func Header(version float32, records int32, nextID uint32, fields ...[]byte) []byte {
	hedr := binary.LittleEndian.AppendUint32(nil, math.Float32bits(version))
	hedr = binary.LittleEndian.AppendUint32(hedr, uint32(records))
	hedr = binary.LittleEndian.AppendUint32(hedr, nextID)

	var body bytes.Buffer
	body.Write(Subrecord("HEDR", hedr))
	for _, f := range fields {
		body.Write(f)
	}

	var out bytes.Buffer
	out.WriteString("TES4")
	out.Write(binary.LittleEndian.AppendUint32(nil, uint32(body.Len())))
	out.Write(make([]byte, 12)) // flags, form id, version control
	out.Write(binary.LittleEndian.AppendUint16(nil, 44))
	out.Write(make([]byte, 2))
	out.Write(body.Bytes())
	return out.Bytes()
}

// Record returns a record of type typ whose Size covers subrecords.
func Record(typ string, formID uint32, subrecords ...[]byte) []byte {
	data := bytes.Join(subrecords, nil)
	out := make([]byte, 0, 24+len(data))
	out = append(out, typ[:4]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = binary.LittleEndian.AppendUint32(out, formID)
	out = binary.LittleEndian.AppendUint32(out, 0)
	out = binary.LittleEndian.AppendUint16(out, 0)
	out = binary.LittleEndian.AppendUint16(out, 0)
	return append(out, data...)
}

// Music describes one MUSC record fixture.
type Music struct {
	FormID   uint32
	EditorID string
	Flags    uint32
	Priority uint16
	Ducking  uint16
	Fade     float32
	Tracks   []uint32
}

// Bytes encodes m as a MUSC record.
func (m Music) Bytes() []byte {
	pnam := binary.LittleEndian.AppendUint16(nil, m.Priority)
	pnam = binary.LittleEndian.AppendUint16(pnam, m.Ducking)
	return Record("MUSC", m.FormID,
		Subrecord("EDID", ZString(m.EditorID)),
		Subrecord("FNAM", Uint32s(m.Flags)),
		Subrecord("PNAM", pnam),
		Subrecord("WNAM", binary.LittleEndian.AppendUint32(nil, math.Float32bits(m.Fade))),
		Subrecord("TNAM", Uint32s(m.Tracks...)),
	)
}

// GroupOfType returns a group with an explicit group type.
func GroupOfType(label string, groupType int32, records ...[]byte) []byte {
	body := bytes.Join(records, nil)
	out := make([]byte, 0, 24+len(body))
	out = append(out, "GRUP"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(24+len(body)))
	out = append(out, label[:4]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(groupType))
	out = append(out, make([]byte, 8)...)
	return append(out, body...)
}

// Group returns a top-level (type 0) group holding records.
func Group(label string, records ...[]byte) []byte {
	return GroupOfType(label, 0, records...)
}

// MusicPlugin assembles a 1.7 plugin with the given masters and a single
// MUSC group, or no groups when tracks is empty.
func MusicPlugin(masters []string, tracks ...Music) []byte {
	fields := [][]byte{
		Subrecord("CNAM", ZString("tester")),
		Subrecord("SNAM", ZString("")),
	}
	for _, m := range masters {
		fields = append(fields, Master(m))
	}
	out := Header(1.7, int32(len(tracks)), 0x800, fields...)
	if len(tracks) == 0 {
		return out
	}
	records := make([][]byte, 0, len(tracks))
	for _, m := range tracks {
		records = append(records, m.Bytes())
	}
	return append(out, Group("MUSC", records...)...)
}

// WritePlugin writes data to dir/name and returns the path.
func WritePlugin(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
