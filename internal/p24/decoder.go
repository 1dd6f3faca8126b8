package p24

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// TextDecoder turns a raw trnVerify body into UTF-8 text.
type TextDecoder interface {
	Decode(raw []byte) (string, error)
}

// Latin2Decoder decodes ISO-8859-2, the charset P24 answers with.
type Latin2Decoder struct{}

func (Latin2Decoder) Decode(raw []byte) (string, error) {
	out, err := charmap.ISO8859_2.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode iso-8859-2: %w", err)
	}
	return string(out), nil
}

// UTF8Decoder passes the body through unchanged.
type UTF8Decoder struct{}

func (UTF8Decoder) Decode(raw []byte) (string, error) {
	return string(raw), nil
}
