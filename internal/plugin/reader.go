package plugin

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var (
	tagTES4 = NewTag("TES4")
	tagHEDR = NewTag("HEDR")
	tagMAST = NewTag("MAST")
	tagDATA = NewTag("DATA")
	tagXXXX = NewTag("XXXX")
	tagCNAM = NewTag("CNAM")
	tagSNAM = NewTag("SNAM")
	tagINTV = NewTag("INTV")
	tagINCC = NewTag("INCC")
	tagONAM = NewTag("ONAM")
	tagGRUP = NewTag("GRUP")
)

const (
	// headerReservedSize is the span between the TES4 magic and HEDR.
	headerReservedSize = 20
	hedrSize           = 12
	// masterDataSize is the DATA subrecord trailing each MAST: tag, length, uint64.
	masterDataSize   = 14
	groupHeaderSize  = 24
	recordHeaderSize = 24
	// subrecordHeaderSize is a tag plus the 16-bit declared length.
	subrecordHeaderSize = 6
	maxSubrecordLength  = math.MaxUint16
)

// fieldReader is a forward-only reader over the plugin byte stream. It tracks
// the absolute offset for error reporting and group accounting, and holds the
// pending XXXX length escape.
type fieldReader struct {
	br   *bufio.Reader
	off  int64
	text TextEncoding

	escaped bool
	escLen  uint32
}

func newFieldReader(r io.Reader, text TextEncoding) *fieldReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	if text == nil {
		text = UTF8
	}
	return &fieldReader{br: br, text: text}
}

func (r *fieldReader) truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &FormatError{Kind: KindTruncatedStream, Offset: r.off, Err: io.ErrUnexpectedEOF}
	}
	return err
}

// atEOF reports whether the stream has no bytes left.
func (r *fieldReader) atEOF() (bool, error) {
	_, err := r.br.Peek(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

func (r *fieldReader) read(buf []byte) error {
	n, err := io.ReadFull(r.br, buf)
	r.off += int64(n)
	if err != nil {
		return r.truncated(err)
	}
	return nil
}

// readN reads n bytes without trusting n for a single up-front allocation,
// since escaped lengths come straight from the file.
func (r *fieldReader) readN(n int64) ([]byte, error) {
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r.br, n)
	r.off += copied
	if err != nil {
		return nil, r.truncated(err)
	}
	return buf.Bytes(), nil
}

func (r *fieldReader) skip(n int64) error {
	if n <= 0 {
		return nil
	}
	skipped, err := io.CopyN(io.Discard, r.br, n)
	r.off += skipped
	if err != nil {
		return r.truncated(err)
	}
	return nil
}

func (r *fieldReader) tag() (Tag, error) {
	var t Tag
	err := r.read(t[:])
	return t, err
}

func (r *fieldReader) uint16() (uint16, error) {
	var b [2]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (r *fieldReader) uint32() (uint32, error) {
	var b [4]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (r *fieldReader) int32() (int32, error) {
	v, err := r.uint32()
	return int32(v), err
}

func (r *fieldReader) float32() (float32, error) {
	v, err := r.uint32()
	return math.Float32frombits(v), err
}

// length reads a subrecord's 16-bit declared length, substituting a pending
// XXXX escape exactly once.
func (r *fieldReader) length() (uint32, error) {
	declared, err := r.uint16()
	if err != nil {
		return 0, err
	}
	if r.escaped {
		r.escaped = false
		return r.escLen, nil
	}
	return uint32(declared), nil
}

// escape records the true length carried by an XXXX subrecord body.
func (r *fieldReader) escape(declared uint32) error {
	start := r.off
	v, err := r.uint32()
	if err != nil {
		return err
	}
	if declared > 4 {
		if err := r.skip(int64(declared) - 4); err != nil {
			return err
		}
	} else if declared < 4 && declared != 0 {
		return &FormatError{Kind: KindBadFieldLength, Offset: start, Tag: tagXXXX}
	}
	r.escaped = true
	r.escLen = v
	return nil
}

// subrecord reads the next subrecord header, transparently consuming any XXXX
// escapes that precede it.
func (r *fieldReader) subrecord() (Tag, uint32, error) {
	for {
		t, err := r.tag()
		if err != nil {
			return Tag{}, 0, err
		}
		n, err := r.length()
		if err != nil {
			return Tag{}, 0, err
		}
		if t != tagXXXX {
			return t, n, nil
		}
		if err := r.escape(n); err != nil {
			return Tag{}, 0, err
		}
	}
}

// zstring decodes a length-prefixed, NUL-terminated string. A declared
// length of zero means the terminator has to be searched for.
func (r *fieldReader) zstring(length uint32) (string, error) {
	start := r.off
	var raw []byte
	if length > 0 {
		b, err := r.readN(int64(length) - 1)
		if err != nil {
			return "", err
		}
		raw = b
		if err := r.skip(1); err != nil {
			return "", err
		}
	} else {
		b, err := r.br.ReadBytes(0)
		r.off += int64(len(b))
		if err != nil {
			return "", r.truncated(err)
		}
		raw = b[:len(b)-1]
	}
	s, err := r.text.DecodeText(raw)
	if err != nil {
		return "", &FormatError{Kind: KindInvalidText, Offset: start, Err: err}
	}
	return s, nil
}

func (r *fieldReader) uint32s(length uint32) ([]uint32, error) {
	count := int(length / 4)
	raw, err := r.readN(int64(count) * 4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	if err := r.skip(int64(length % 4)); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *fieldReader) recordHeader() (RecordHeader, error) {
	var raw [recordHeaderSize]byte
	if err := r.read(raw[:]); err != nil {
		return RecordHeader{}, err
	}
	var h RecordHeader
	copy(h.Type[:], raw[0:4])
	h.Size = binary.LittleEndian.Uint32(raw[4:8])
	h.Flags = binary.LittleEndian.Uint32(raw[8:12])
	h.FormID = binary.LittleEndian.Uint32(raw[12:16])
	h.Revision = binary.LittleEndian.Uint32(raw[16:20])
	h.Version = binary.LittleEndian.Uint16(raw[20:22])
	h.Unknown = binary.LittleEndian.Uint16(raw[22:24])
	return h, nil
}
