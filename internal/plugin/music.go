package plugin

import "fmt"

var (
	// TagMUSC is the music type record and group label.
	TagMUSC = NewTag("MUSC")

	tagEDID = NewTag("EDID")
	tagFNAM = NewTag("FNAM")
	tagPNAM = NewTag("PNAM")
	tagWNAM = NewTag("WNAM")
	tagTNAM = NewTag("TNAM")
)

var musicSchema = Schema{
	{Tag: tagEDID, Kind: FieldZString},
	{Tag: tagFNAM, Kind: FieldUint32},
	{Tag: tagPNAM, Kind: FieldUint16Pair},
	{Tag: tagWNAM, Kind: FieldFloat32},
	{Tag: tagTNAM, Kind: FieldUint32Array},
}

// MusicCodec decodes and encodes MUSC records into Plugin.Music.
type MusicCodec struct{}

func (MusicCodec) Type() Tag { return TagMUSC }

func (MusicCodec) Schema() Schema { return musicSchema }

func (MusicCodec) DecodeRecord(p *Plugin, rec RawRecord) error {
	if len(rec.Fields) != len(musicSchema) {
		return fmt.Errorf("MUSC %08X: %d fields, want %d", rec.Header.FormID, len(rec.Fields), len(musicSchema))
	}
	f := rec.Fields
	p.Music = append(p.Music, MusicTrack{
		FormID:       rec.Header.FormID,
		EditorID:     f[0].Text,
		Flags:        f[1].Uint32,
		Priority:     f[2].Pair[0],
		Ducking:      f[2].Pair[1],
		FadeDuration: f[3].Float32,
		TrackIDs:     f[4].Uint32s,
	})
	return nil
}

func (MusicCodec) EncodeRecords(p *Plugin) ([]RawRecord, error) {
	out := make([]RawRecord, 0, len(p.Music))
	for _, m := range p.Music {
		if m.EditorID == "" {
			return nil, fmt.Errorf("MUSC %08X: empty editor id", m.FormID)
		}
		out = append(out, RawRecord{
			Header: RecordHeader{Type: TagMUSC, FormID: m.FormID},
			Fields: []Field{
				TextField(tagEDID, m.EditorID),
				Uint32Field(tagFNAM, m.Flags),
				PairField(tagPNAM, m.Priority, m.Ducking),
				Float32Field(tagWNAM, m.FadeDuration),
				Uint32ArrayField(tagTNAM, m.TrackIDs),
			},
		})
	}
	return out, nil
}
