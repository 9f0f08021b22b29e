package fetch

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeBody turns a response body into text. Valid UTF-8 is used as is;
// anything else is read as ISO-8859-1, which maps every byte to a rune.
// A leading byte order mark is removed in both cases.
func DecodeBody(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b), nil
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", newError(KindDecode, "decode", err)
	}
	return string(out), nil
}
