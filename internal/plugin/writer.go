package plugin

import (
	"bytes"
	"encoding/binary"
	"math"
)

// fieldWriter accumulates encoded output. Callers build nested content in
// child writers first so every length is taken from the bytes it frames.
type fieldWriter struct {
	buf  bytes.Buffer
	text TextEncoding
}

func newFieldWriter(text TextEncoding) *fieldWriter {
	if text == nil {
		text = UTF8
	}
	return &fieldWriter{text: text}
}

func (w *fieldWriter) child() *fieldWriter {
	return newFieldWriter(w.text)
}

func (w *fieldWriter) Len() int { return w.buf.Len() }

func (w *fieldWriter) Bytes() []byte { return w.buf.Bytes() }

func (w *fieldWriter) tag(t Tag) { w.buf.Write(t[:]) }

func (w *fieldWriter) uint16(v uint16) { w.buf.Write(appendUint16(nil, v)) }

func (w *fieldWriter) uint32(v uint32) { w.buf.Write(appendUint32(nil, v)) }

func (w *fieldWriter) int32(v int32) { w.uint32(uint32(v)) }

func (w *fieldWriter) float32(v float32) { w.buf.Write(appendFloat32(nil, v)) }

func (w *fieldWriter) raw(b []byte) { w.buf.Write(b) }

// subrecord frames content under tag. Content too long for the 16-bit length
// field is preceded by an XXXX subrecord carrying the true length, and the
// declared length is written as zero.
func (w *fieldWriter) subrecord(t Tag, content []byte) {
	if len(content) > maxSubrecordLength {
		w.tag(tagXXXX)
		w.uint16(4)
		w.uint32(uint32(len(content)))
		w.tag(t)
		w.uint16(0)
	} else {
		w.tag(t)
		w.uint16(uint16(len(content)))
	}
	w.raw(content)
}

// zstringContent encodes s with its terminator.
func (w *fieldWriter) zstringContent(s string) ([]byte, error) {
	b, err := w.text.EncodeText(s)
	if err != nil {
		return nil, &FormatError{Kind: KindInvalidText, Err: err}
	}
	out := make([]byte, 0, len(b)+1)
	out = append(out, b...)
	return append(out, 0), nil
}

func (w *fieldWriter) zstring(t Tag, s string) error {
	content, err := w.zstringContent(s)
	if err != nil {
		return err
	}
	w.subrecord(t, content)
	return nil
}

func (w *fieldWriter) recordHeader(h RecordHeader) {
	w.tag(h.Type)
	w.uint32(h.Size)
	w.uint32(h.Flags)
	w.uint32(h.FormID)
	w.uint32(h.Revision)
	w.uint16(h.Version)
	w.uint16(h.Unknown)
}

func appendUint16(b []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(b, v)
}

func appendUint32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

func appendFloat32(b []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
}
