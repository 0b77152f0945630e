package process

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	gperrors "github.com/mrz1836/gitpulse/internal/errors"
)

// Supported encoding names besides WHATWG labels.
const (
	// EncodingUTF8 decodes output as UTF-8, replacing invalid sequences.
	EncodingUTF8 = "utf8"

	// EncodingBinary leaves output undecoded in Result.Stdout.
	EncodingBinary = "binary"
)

type decoder struct {
	binary bool
	enc    encoding.Encoding
}

// decoderFor resolves an encoding name. Empty means UTF-8.
func decoderFor(name string) (decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf-8":
		return decoder{}, nil
	case EncodingBinary, "buffer":
		return decoder{binary: true}, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return decoder{}, fmt.Errorf("%q: %w", name, gperrors.ErrUnsupportedEncoding)
	}
	return decoder{enc: enc}, nil
}

func (d decoder) decode(raw []byte) (string, error) {
	switch {
	case d.binary:
		return "", nil
	case d.enc == nil:
		if utf8.Valid(raw) {
			return string(raw), nil
		}
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), nil
	}

	out, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode output: %w", err)
	}
	return string(out), nil
}

// ValidateEncoding reports whether name is a supported output encoding.
func ValidateEncoding(name string) error {
	_, err := decoderFor(name)
	return err
}

// IsBinary reports whether name selects undecoded output.
func IsBinary(name string) bool {
	d, err := decoderFor(name)
	return err == nil && d.binary
}

// Decode converts raw output to text using the named encoding.
func Decode(raw []byte, name string) (string, error) {
	d, err := decoderFor(name)
	if err != nil {
		return "", err
	}
	if d.binary {
		return string(raw), nil
	}
	return d.decode(raw)
}
