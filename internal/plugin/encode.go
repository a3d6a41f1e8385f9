package plugin

import (
	"errors"
	"fmt"
	"io"

	"musicmerge/internal/logging"
)

// formVersion is the record form version written into the TES4 header.
const formVersion = 44

// Encode serializes p to w. The whole file is built in memory first so that
// nothing is written when p cannot be encoded.
func Encode(w io.Writer, p *Plugin, opts ...Option) error {
	data, err := Marshal(p, opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write plugin: %w", err)
	}
	return nil
}

// Marshal returns the encoded form of p.
func Marshal(p *Plugin, opts ...Option) ([]byte, error) {
	if p == nil {
		return nil, errors.New("encode plugin: nil plugin")
	}
	if p.Version != VersionSkyrim && p.Version != VersionOblivion {
		return nil, fmt.Errorf("encode plugin: %w: %g", ErrUnsupportedVersion, p.Version)
	}
	o := buildOptions(opts)
	out := newFieldWriter(o.text)

	header, err := encodeHeaderFields(out.child(), p)
	if err != nil {
		return nil, fmt.Errorf("encode plugin header: %w", err)
	}
	out.tag(tagTES4)
	out.uint32(uint32(header.Len()))
	out.uint32(0) // flags
	out.uint32(0) // form id
	out.uint32(0) // version control
	out.uint16(formVersion)
	out.uint16(0)
	out.raw(header.Bytes())

	for _, codec := range o.registry.Codecs() {
		records, err := codec.EncodeRecords(p)
		if err != nil {
			return nil, fmt.Errorf("encode %s records: %w", codec.Type(), err)
		}
		if len(records) == 0 {
			continue
		}
		group, err := encodeGroup(out.child(), codec, records)
		if err != nil {
			return nil, fmt.Errorf("encode %s group: %w", codec.Type(), err)
		}
		out.raw(group.Bytes())
		o.logger.Debug("encoded group",
			logging.String("label", codec.Type().String()),
			logging.Int("records", len(records)),
			logging.Int("bytes", group.Len()),
		)
	}
	return out.Bytes(), nil
}

func encodeHeaderFields(w *fieldWriter, p *Plugin) (*fieldWriter, error) {
	hedr := make([]byte, 0, hedrSize)
	hedr = appendFloat32(hedr, p.Version)
	hedr = appendUint32(hedr, uint32(p.RecordCount))
	hedr = appendUint32(hedr, p.NextObjectID)
	w.subrecord(tagHEDR, hedr)

	if err := w.zstring(tagCNAM, p.Author); err != nil {
		return nil, fmt.Errorf("author: %w", err)
	}
	if err := w.zstring(tagSNAM, p.Description); err != nil {
		return nil, fmt.Errorf("description: %w", err)
	}
	for _, master := range p.Masters {
		if err := w.zstring(tagMAST, master); err != nil {
			return nil, fmt.Errorf("master %q: %w", master, err)
		}
		w.subrecord(tagDATA, make([]byte, 8))
	}
	if len(p.Overrides) > 0 {
		onam := make([]byte, 0, len(p.Overrides)*4)
		for _, id := range p.Overrides {
			onam = appendUint32(onam, id)
		}
		w.subrecord(tagONAM, onam)
	}
	if p.IntV != 0 {
		w.subrecord(tagINTV, appendUint32(nil, p.IntV))
	}
	if p.IncC != 0 {
		w.subrecord(tagINCC, appendUint32(nil, p.IncC))
	}
	return w, nil
}

func encodeGroup(w *fieldWriter, codec RecordCodec, records []RawRecord) (*fieldWriter, error) {
	body := w.child()
	for _, rec := range records {
		data := w.child()
		if err := codec.Schema().write(data, rec.Fields); err != nil {
			return nil, fmt.Errorf("record %s: %w", FormatFormID(rec.Header.FormID), err)
		}
		hdr := rec.Header
		hdr.Type = codec.Type()
		hdr.Size = uint32(data.Len())
		body.recordHeader(hdr)
		body.raw(data.Bytes())
	}

	w.tag(tagGRUP)
	w.uint32(uint32(groupHeaderSize + body.Len()))
	w.tag(codec.Type())
	w.int32(0)
	// stamp, unknown, version, unknown
	for i := 0; i < 4; i++ {
		w.uint16(0)
	}
	w.raw(body.Bytes())
	return w, nil
}
