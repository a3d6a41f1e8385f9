package plugin

import (
	"fmt"
	"path/filepath"
	"slices"
)

// Tag is a four-character record, group, or subrecord type code.
type Tag [4]byte

// NewTag converts a four-character string into a Tag. Shorter strings are
// zero padded and longer strings truncated.
func NewTag(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

func (t Tag) String() string {
	for _, b := range t {
		if b < 0x20 || b > 0x7e {
			return fmt.Sprintf("0x%X", t[:])
		}
	}
	return string(t[:])
}

// FormatFormID renders a form id the way editing tools display it.
func FormatFormID(id uint32) string {
	return fmt.Sprintf("%08X", id)
}

// Supported format versions stored in HEDR.
const (
	VersionSkyrim   float32 = 1.7
	VersionOblivion float32 = 0.94
)

// Plugin is the in-memory model of one plugin file.
type Plugin struct {
	Path string
	Name string

	Version      float32
	RecordCount  int32
	NextObjectID uint32
	Author       string
	Description  string

	// Masters lists the plugins this one depends on, in load order.
	Masters []string
	// Overrides lists form ids of records this plugin overrides (ONAM).
	Overrides []uint32

	// IntV and IncC are opaque header values retained verbatim.
	IntV uint32
	IncC uint32

	Music []MusicTrack
}

// New returns an empty plugin identified by path.
func New(path string) *Plugin {
	p := &Plugin{Path: path}
	if path != "" {
		p.Name = filepath.Base(path)
	}
	return p
}

// HasMaster reports whether name is already listed as a master.
func (p *Plugin) HasMaster(name string) bool {
	return slices.Contains(p.Masters, name)
}

// AddMaster appends name to the master list unless it is already present.
// It reports whether the list changed.
func (p *Plugin) AddMaster(name string) bool {
	if name == "" || p.HasMaster(name) {
		return false
	}
	p.Masters = append(p.Masters, name)
	return true
}

// RecordHeader is the fixed 24-byte header preceding every record.
type RecordHeader struct {
	Type     Tag
	Size     uint32
	Flags    uint32
	FormID   uint32
	Revision uint32
	Version  uint16
	Unknown  uint16
}

// MusicTrack is a MUSC record: a music type that selects among track records.
type MusicTrack struct {
	FormID       uint32
	EditorID     string
	Flags        uint32
	Priority     uint16
	Ducking      uint16
	FadeDuration float32
	TrackIDs     []uint32
}

// HasTrackID reports whether id is already referenced by the record.
func (m *MusicTrack) HasTrackID(id uint32) bool {
	return slices.Contains(m.TrackIDs, id)
}

// AddTrackID appends id unless the record already references it.
func (m *MusicTrack) AddTrackID(id uint32) bool {
	if m.HasTrackID(id) {
		return false
	}
	m.TrackIDs = append(m.TrackIDs, id)
	return true
}
