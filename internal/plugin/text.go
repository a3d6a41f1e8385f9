package plugin

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// TextEncoding converts zstring payloads between file bytes and Go strings.
type TextEncoding interface {
	Name() string
	DecodeText(b []byte) (string, error)
	EncodeText(s string) ([]byte, error)
}

var (
	// UTF8 accepts only well-formed UTF-8 payloads.
	UTF8 TextEncoding = utf8Encoding{}
	// Windows1252 is the code page the vanilla game files are authored in.
	Windows1252 TextEncoding = charmapEncoding{name: "windows-1252", enc: charmap.Windows1252}
)

var errEmbeddedNul = errors.New("text contains a NUL byte")

// LookupTextEncoding resolves a configured encoding name.
func LookupTextEncoding(name string) (TextEncoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "windows-1252", "cp1252":
		return Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported text encoding %q", name)
	}
}

type utf8Encoding struct{}

func (utf8Encoding) Name() string { return "utf-8" }

func (utf8Encoding) DecodeText(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.New("invalid UTF-8")
	}
	return string(b), nil
}

func (utf8Encoding) EncodeText(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errors.New("invalid UTF-8")
	}
	if strings.IndexByte(s, 0) >= 0 {
		return nil, errEmbeddedNul
	}
	return []byte(s), nil
}

type charmapEncoding struct {
	name string
	enc  encoding.Encoding
}

func (c charmapEncoding) Name() string { return c.name }

func (c charmapEncoding) DecodeText(b []byte) (string, error) {
	out, _, err := transform.Bytes(c.enc.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", c.name, err)
	}
	return string(out), nil
}

func (c charmapEncoding) EncodeText(s string) ([]byte, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, errEmbeddedNul
	}
	out, _, err := transform.String(c.enc.NewEncoder(), s)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.name, err)
	}
	return []byte(out), nil
}
