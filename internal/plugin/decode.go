package plugin

import (
	"fmt"
	"io"
	"log/slog"

	"musicmerge/internal/logging"
)

// Decode parses a complete plugin from r in one forward pass.
func Decode(r io.Reader, opts ...Option) (*Plugin, error) {
	o := buildOptions(opts)
	d := &decoder{
		r:        newFieldReader(r, o.text),
		registry: o.registry,
		logger:   o.logger,
		plugin:   New(""),
	}
	if err := d.decode(); err != nil {
		return nil, err
	}
	return d.plugin, nil
}

type decoder struct {
	r        *fieldReader
	registry *Registry
	logger   *slog.Logger
	plugin   *Plugin
}

func (d *decoder) decode() error {
	if err := d.header(); err != nil {
		return err
	}
	next, done, err := d.headerFields()
	if err != nil || done {
		return err
	}
	for next == tagGRUP {
		if err := d.group(); err != nil {
			return err
		}
		eof, err := d.r.atEOF()
		if err != nil || eof {
			return err
		}
		if next, err = d.r.tag(); err != nil {
			return err
		}
	}
	d.logger.Warn("trailing data after last group ignored",
		logging.String("tag", next.String()),
		logging.Int64("offset", d.r.off-4),
	)
	return nil
}

func (d *decoder) header() error {
	magic, err := d.r.tag()
	if err != nil {
		return err
	}
	if magic != tagTES4 {
		return &FormatError{Kind: KindBadMagic, Offset: 0, Found: magic}
	}
	if err := d.r.skip(headerReservedSize); err != nil {
		return err
	}

	start := d.r.off
	t, err := d.r.tag()
	if err != nil {
		return err
	}
	if t != tagHEDR {
		return &FormatError{Kind: KindUnexpectedField, Offset: start, Expected: tagHEDR, Found: t}
	}
	length, err := d.r.uint16()
	if err != nil {
		return err
	}
	if length != hedrSize {
		d.logger.Warn("HEDR has unusual length; reading fixed fields anyway",
			logging.Int("length", int(length)),
			logging.Int("expected", hedrSize),
		)
	}

	p := d.plugin
	versionOffset := d.r.off
	if p.Version, err = d.r.float32(); err != nil {
		return err
	}
	if p.RecordCount, err = d.r.int32(); err != nil {
		return err
	}
	if p.NextObjectID, err = d.r.uint32(); err != nil {
		return err
	}
	if p.Version != VersionSkyrim && p.Version != VersionOblivion {
		return &FormatError{Kind: KindUnsupportedVersion, Offset: versionOffset, Version: p.Version}
	}
	return nil
}

// headerFields consumes the TES4 subrecords after HEDR. It returns the tag
// that ended the header (GRUP), or done when the stream ended cleanly.
func (d *decoder) headerFields() (Tag, bool, error) {
	p := d.plugin
	for {
		eof, err := d.r.atEOF()
		if err != nil {
			return Tag{}, false, err
		}
		if eof {
			return Tag{}, true, nil
		}

		start := d.r.off
		t, err := d.r.tag()
		if err != nil {
			return Tag{}, false, err
		}
		if t == tagGRUP {
			return t, false, nil
		}
		length, err := d.r.length()
		if err != nil {
			return Tag{}, false, err
		}

		switch t {
		case tagMAST:
			name, err := d.r.zstring(length)
			if err != nil {
				return Tag{}, false, err
			}
			p.Masters = append(p.Masters, name)
			err = d.r.skip(masterDataSize)
			if err != nil {
				return Tag{}, false, err
			}
		case tagXXXX:
			err = d.r.escape(length)
		case tagCNAM:
			p.Author, err = d.r.zstring(length)
		case tagSNAM:
			p.Description, err = d.r.zstring(length)
		case tagINTV:
			p.IntV, err = d.r.uint32()
		case tagINCC:
			p.IncC, err = d.r.uint32()
		case tagONAM:
			var ids []uint32
			ids, err = d.r.uint32s(length)
			p.Overrides = append(p.Overrides, ids...)
		default:
			return Tag{}, false, &FormatError{Kind: KindUnknownField, Offset: start, Tag: t}
		}
		if err != nil {
			return Tag{}, false, err
		}
	}
}

// group decodes one group whose GRUP tag has already been read.
func (d *decoder) group() error {
	start := d.r.off - 4
	declared, err := d.r.uint32()
	if err != nil {
		return err
	}
	label, err := d.r.tag()
	if err != nil {
		return err
	}
	groupType, err := d.r.int32()
	if err != nil {
		return err
	}
	// stamp, unknown, version, unknown
	if err := d.r.skip(8); err != nil {
		return err
	}
	if declared < groupHeaderSize {
		return &FormatError{Kind: KindBadGroupLength, Offset: start, Tag: label}
	}
	if groupType != 0 {
		return &FormatError{Kind: KindUnsupportedGroup, Offset: start, GroupType: groupType}
	}

	body := int64(declared) - groupHeaderSize
	codec, ok := d.registry.Lookup(label)
	if !ok {
		d.logger.Debug("skipping group",
			logging.String("label", label.String()),
			logging.Int64("bytes", body),
		)
		return d.r.skip(body)
	}

	end := d.r.off + body
	for d.r.off < end {
		if err := d.record(codec, label); err != nil {
			return err
		}
	}
	if d.r.off != end {
		return &FormatError{Kind: KindBadGroupLength, Offset: start, Tag: label}
	}
	return nil
}

func (d *decoder) record(codec RecordCodec, label Tag) error {
	start := d.r.off
	hdr, err := d.r.recordHeader()
	if err != nil {
		return err
	}
	if hdr.Type != label {
		return &FormatError{Kind: KindUnexpectedField, Offset: start, Expected: label, Found: hdr.Type}
	}

	dataStart := d.r.off
	fields, err := codec.Schema().read(d.r)
	if err != nil {
		return err
	}
	consumed := d.r.off - dataStart
	switch {
	case consumed < int64(hdr.Size):
		// Subrecords beyond the schema are not modeled.
		if err := d.r.skip(int64(hdr.Size) - consumed); err != nil {
			return err
		}
	case consumed > int64(hdr.Size):
		d.logger.Warn("record size smaller than its subrecords",
			logging.String("type", hdr.Type.String()),
			logging.String("form_id", FormatFormID(hdr.FormID)),
			logging.Int64("declared", int64(hdr.Size)),
			logging.Int64("actual", consumed),
		)
	}

	if err := codec.DecodeRecord(d.plugin, RawRecord{Header: hdr, Fields: fields}); err != nil {
		return fmt.Errorf("decode %s record at offset %d: %w", hdr.Type, start, err)
	}
	return nil
}
