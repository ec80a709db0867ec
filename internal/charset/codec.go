package charset

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
)

// EncodeError reports content that cannot be represented in the
// requested encoding, or a request for an encoding the codec layer
// does not recognize. Either way the save must fail rather than
// silently corrupt the file.
type EncodeError struct {
	Encoding string
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode content as %s, saving as utf-8 is recommended: %v", e.Encoding, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// lookup resolves an encoding name against the WHATWG label index.
// The index has no label for "cp932", which is the Shift-JIS
// superset x/text ships as japanese.ShiftJIS.
func lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
	if key == "cp932" {
		return japanese.ShiftJIS, nil
	}
	return htmlindex.Get(key)
}

// Decode converts raw bytes in the named encoding to a UTF-8 string.
// Decoding is lenient: byte sequences invalid in the source encoding
// come out as U+FFFD instead of failing. The only error is an
// unrecognized encoding name.
func Decode(raw []byte, name string) (string, error) {
	enc, err := lookup(name)
	if err != nil {
		return "", fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode as %s: %w", name, err)
	}
	return string(out), nil
}

// Encode converts a UTF-8 string to bytes in the named encoding.
// Encoding is strict: any character the target encoding cannot
// represent fails the whole operation with an EncodeError, as does an
// unrecognized encoding name.
func Encode(text, name string) ([]byte, error) {
	enc, err := lookup(name)
	if err != nil {
		return nil, &EncodeError{Encoding: name, Err: err}
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, &EncodeError{Encoding: name, Err: err}
	}
	return out, nil
}
