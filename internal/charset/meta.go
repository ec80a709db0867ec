package charset

import (
	"regexp"
	"strings"
)

// declarationWindow is how far into a document an embedded charset
// declaration is looked for. Declarations live in the head of a
// document; scanning further buys nothing and costs on large files.
const declarationWindow = 4096

var (
	// <meta charset="..."> and its unquoted variants.
	charsetAttrRe = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([^"'\s;>]+)`)
	// <meta http-equiv="Content-Type" content="text/html; charset=...">
	charsetContentRe = regexp.MustCompile(`(?i)content=["'][^"']*charset=([^"'\s;]+)`)
)

// DeclaredEncoding scans the head of raw for an embedded charset
// declaration and returns its lowercased name. The window is read as
// best-effort ASCII: non-ASCII bytes are dropped before matching, so
// the scan works on content whose own encoding is still unknown. The
// charset attribute form wins over the http-equiv form.
func DeclaredEncoding(raw []byte) (string, bool) {
	head := raw
	if len(head) > declarationWindow {
		head = head[:declarationWindow]
	}

	var b strings.Builder
	b.Grow(len(head))
	for _, c := range head {
		if c < 0x80 {
			b.WriteByte(c)
		}
	}
	snippet := b.String()

	if m := charsetAttrRe.FindStringSubmatch(snippet); m != nil {
		return strings.ToLower(strings.TrimSpace(m[1])), true
	}
	if m := charsetContentRe.FindStringSubmatch(snippet); m != nil {
		return strings.ToLower(strings.TrimSpace(m[1])), true
	}
	return "", false
}
