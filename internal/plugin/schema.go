package plugin

import "fmt"

// FieldKind selects how a subrecord payload is interpreted.
type FieldKind uint8

const (
	// FieldZString is NUL-terminated text.
	FieldZString FieldKind = iota + 1
	// FieldUint32 is a single little-endian uint32.
	FieldUint32
	// FieldUint16Pair is two little-endian uint16 values.
	FieldUint16Pair
	// FieldFloat32 is a single little-endian IEEE-754 float.
	FieldFloat32
	// FieldUint32Array is a packed array of uint32; its count is length/4.
	FieldUint32Array
)

func (k FieldKind) String() string {
	switch k {
	case FieldZString:
		return "zstring"
	case FieldUint32:
		return "uint32"
	case FieldUint16Pair:
		return "uint16x2"
	case FieldFloat32:
		return "float32"
	case FieldUint32Array:
		return "uint32[]"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// fixedWidth returns the payload width for fixed-size kinds.
func (k FieldKind) fixedWidth() (uint32, bool) {
	switch k {
	case FieldUint32, FieldUint16Pair, FieldFloat32:
		return 4, true
	default:
		return 0, false
	}
}

// FieldSpec names one mandatory subrecord of a record schema.
type FieldSpec struct {
	Tag  Tag
	Kind FieldKind
}

// Schema is the ordered list of subrecords every record of a type carries.
type Schema []FieldSpec

// Field is one decoded subrecord. Only the value matching Kind is set.
type Field struct {
	Tag  Tag
	Kind FieldKind

	Text    string
	Uint32  uint32
	Pair    [2]uint16
	Float32 float32
	Uint32s []uint32
}

// TextField builds a zstring field.
func TextField(tag Tag, s string) Field {
	return Field{Tag: tag, Kind: FieldZString, Text: s}
}

// Uint32Field builds a uint32 field.
func Uint32Field(tag Tag, v uint32) Field {
	return Field{Tag: tag, Kind: FieldUint32, Uint32: v}
}

// PairField builds a field of two uint16 values.
func PairField(tag Tag, a, b uint16) Field {
	return Field{Tag: tag, Kind: FieldUint16Pair, Pair: [2]uint16{a, b}}
}

// Float32Field builds a float field.
func Float32Field(tag Tag, v float32) Field {
	return Field{Tag: tag, Kind: FieldFloat32, Float32: v}
}

// Uint32ArrayField builds a packed uint32 array field.
func Uint32ArrayField(tag Tag, v []uint32) Field {
	return Field{Tag: tag, Kind: FieldUint32Array, Uint32s: v}
}

// read decodes the subrecords of one record in schema order.
func (s Schema) read(r *fieldReader) ([]Field, error) {
	fields := make([]Field, 0, len(s))
	for _, spec := range s {
		start := r.off
		tag, length, err := r.subrecord()
		if err != nil {
			return nil, err
		}
		if tag != spec.Tag {
			return nil, &FormatError{Kind: KindUnexpectedField, Offset: start, Expected: spec.Tag, Found: tag}
		}
		field, err := readField(r, spec, length, start)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func readField(r *fieldReader, spec FieldSpec, length uint32, start int64) (Field, error) {
	field := Field{Tag: spec.Tag, Kind: spec.Kind}
	if width, ok := spec.Kind.fixedWidth(); ok && length < width {
		return field, &FormatError{Kind: KindBadFieldLength, Offset: start, Tag: spec.Tag}
	}

	var err error
	switch spec.Kind {
	case FieldZString:
		field.Text, err = r.zstring(length)
		return field, err
	case FieldUint32Array:
		field.Uint32s, err = r.uint32s(length)
		return field, err
	case FieldUint32:
		field.Uint32, err = r.uint32()
	case FieldUint16Pair:
		if field.Pair[0], err = r.uint16(); err == nil {
			field.Pair[1], err = r.uint16()
		}
	case FieldFloat32:
		field.Float32, err = r.float32()
	default:
		return field, fmt.Errorf("schema field %s: unsupported kind %s", spec.Tag, spec.Kind)
	}
	if err != nil {
		return field, err
	}
	// Declared lengths longer than the fixed width carry trailing bytes this
	// schema does not model.
	width, _ := spec.Kind.fixedWidth()
	return field, r.skip(int64(length) - int64(width))
}

// write emits fields after checking them against the schema.
func (s Schema) write(w *fieldWriter, fields []Field) error {
	if len(fields) != len(s) {
		return fmt.Errorf("record has %d fields, schema requires %d", len(fields), len(s))
	}
	for i, spec := range s {
		field := fields[i]
		if field.Tag != spec.Tag || field.Kind != spec.Kind {
			return fmt.Errorf("field %d is %s %s, schema requires %s %s", i, field.Tag, field.Kind, spec.Tag, spec.Kind)
		}
		if err := writeField(w, field); err != nil {
			return fmt.Errorf("field %s: %w", field.Tag, err)
		}
	}
	return nil
}

func writeField(w *fieldWriter, field Field) error {
	var content []byte
	switch field.Kind {
	case FieldZString:
		b, err := w.zstringContent(field.Text)
		if err != nil {
			return err
		}
		content = b
	case FieldUint32:
		content = appendUint32(nil, field.Uint32)
	case FieldUint16Pair:
		content = appendUint16(appendUint16(nil, field.Pair[0]), field.Pair[1])
	case FieldFloat32:
		content = appendFloat32(nil, field.Float32)
	case FieldUint32Array:
		content = make([]byte, 0, len(field.Uint32s)*4)
		for _, v := range field.Uint32s {
			content = appendUint32(content, v)
		}
	default:
		return fmt.Errorf("unsupported kind %s", field.Kind)
	}
	w.subrecord(field.Tag, content)
	return nil
}
