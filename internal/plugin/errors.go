package plugin

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a structural violation found while decoding.
type ErrorKind int

const (
	KindBadMagic ErrorKind = iota + 1
	KindUnsupportedVersion
	KindUnknownField
	KindUnexpectedField
	KindUnsupportedGroup
	KindInvalidText
	KindTruncatedStream
	KindBadGroupLength
	KindBadFieldLength
)

// Sentinels matched by errors.Is against a *FormatError of the same kind.
var (
	ErrBadMagic           = errors.New("bad magic")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrUnknownField       = errors.New("unknown field")
	ErrUnexpectedField    = errors.New("unexpected field")
	ErrUnsupportedGroup   = errors.New("unsupported group")
	ErrInvalidText        = errors.New("invalid text")
	ErrTruncatedStream    = errors.New("truncated stream")
	ErrBadGroupLength     = errors.New("bad group length")
	ErrBadFieldLength     = errors.New("bad field length")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindBadMagic:
		return ErrBadMagic
	case KindUnsupportedVersion:
		return ErrUnsupportedVersion
	case KindUnknownField:
		return ErrUnknownField
	case KindUnexpectedField:
		return ErrUnexpectedField
	case KindUnsupportedGroup:
		return ErrUnsupportedGroup
	case KindInvalidText:
		return ErrInvalidText
	case KindTruncatedStream:
		return ErrTruncatedStream
	case KindBadGroupLength:
		return ErrBadGroupLength
	case KindBadFieldLength:
		return ErrBadFieldLength
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// FormatError reports a framing rule violated at a byte offset of the input.
type FormatError struct {
	Kind   ErrorKind
	Offset int64

	// Tag is the offending tag for KindUnknownField and KindBadFieldLength.
	Tag Tag
	// Expected and Found describe a KindUnexpectedField mismatch.
	Expected Tag
	Found    Tag
	// Version is the rejected HEDR version for KindUnsupportedVersion.
	Version float32
	// GroupType is the rejected group type for KindUnsupportedGroup.
	GroupType int32

	Err error
}

func (e *FormatError) Error() string {
	var detail string
	switch e.Kind {
	case KindBadMagic:
		detail = fmt.Sprintf("expected %s magic, found %s", tagTES4, e.Found)
	case KindUnsupportedVersion:
		detail = fmt.Sprintf("version %g (want %g or %g)", e.Version, VersionSkyrim, VersionOblivion)
	case KindUnknownField:
		detail = fmt.Sprintf("tag %s", e.Tag)
	case KindUnexpectedField:
		detail = fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
	case KindUnsupportedGroup:
		detail = fmt.Sprintf("group type %d (only top level groups are supported)", e.GroupType)
	case KindBadFieldLength:
		detail = fmt.Sprintf("tag %s", e.Tag)
	}
	msg := fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
	if detail != "" {
		msg += ": " + detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// AsFormatError extracts a *FormatError from err's chain.
func AsFormatError(err error) (*FormatError, bool) {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
