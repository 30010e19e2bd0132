package write

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/arthur-debert/plugs/pkg/config"
	"github.com/arthur-debert/plugs/pkg/errors"
)

// encoderFor returns the encoding named by name or one of its aliases.
func encoderFor(name string) (encoding.Encoding, error) {
	switch config.NormalizeEncoding(name) {
	case "utf-8":
		return encoding.Nop, nil
	case "latin1":
		return charmap.ISO8859_1, nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	}
	return nil, errors.Newf(errors.ErrPlugInvalid, "unsupported encoding %q", name).
		WithDetail("plug", Name).
		WithDetail("supported", config.Encodings)
}

// encode converts UTF-8 contents to enc. Characters enc cannot represent
// fail the write.
func encode(enc encoding.Encoding, contents string) ([]byte, error) {
	if enc == encoding.Nop {
		return []byte(contents), nil
	}
	return enc.NewEncoder().Bytes([]byte(contents))
}
