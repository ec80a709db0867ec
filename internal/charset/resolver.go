// Package charset resolves and converts the character encodings of
// remote text files.
//
// Resolution follows a strict priority chain: an encoding declared
// inside the content wins over the statistical detector, which wins
// over the utf-8 default. Decoding is always lenient and encoding is
// always strict: a file that reaches the editor may contain
// replacement characters, but a save never silently corrupts one.
package charset

import "github.com/saintfish/chardet"

// DefaultEncoding is the end of the resolution chain.
const DefaultEncoding = "utf-8"

// Source says which rule of the resolution chain picked the encoding.
type Source string

const (
	SourceDeclared Source = "declared"
	SourceDetected Source = "detected"
	SourceDefault  Source = "default"
)

// Decision is a resolved canonical encoding name and where it came
// from. Computed once per read and not persisted.
type Decision struct {
	Encoding string
	Source   Source
}

// The detector holds no per-call state, so one instance serves all
// requests.
var detector = chardet.NewTextDetector()

// Resolve decides the encoding of raw text bytes: an embedded
// declaration wins, then the statistical detector's best guess, then
// DefaultEncoding. The winning name is canonicalized through the
// alias table. Empty content has nothing to detect and goes straight
// to the default.
func Resolve(raw []byte) Decision {
	if len(raw) == 0 {
		return Decision{Encoding: DefaultEncoding, Source: SourceDefault}
	}
	if declared, ok := DeclaredEncoding(raw); ok {
		return Decision{Encoding: Canonicalize(declared), Source: SourceDeclared}
	}
	if best, err := detector.DetectBest(raw); err == nil && best.Charset != "" {
		return Decision{Encoding: Canonicalize(best.Charset), Source: SourceDetected}
	}
	return Decision{Encoding: DefaultEncoding, Source: SourceDefault}
}

// DecodeText resolves the encoding of raw and decodes it in one step.
// It cannot fail: if the resolved name turns out to be unknown to the
// codec layer, the bytes are decoded as utf-8 instead and the
// decision reports that. Undecodable byte sequences surface as
// replacement characters, never as errors.
func DecodeText(raw []byte) (string, Decision) {
	decision := Resolve(raw)
	text, err := Decode(raw, decision.Encoding)
	if err != nil {
		text, _ = Decode(raw, DefaultEncoding)
		decision = Decision{Encoding: DefaultEncoding, Source: SourceDefault}
	}
	return text, decision
}
