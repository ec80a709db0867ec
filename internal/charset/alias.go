package charset

import "strings"

// encodingAliases maps the charset names that show up in real-world
// HTML to the canonical name the codec layer works with. Legacy
// Japanese sites declare the Shift-JIS family under half a dozen
// spellings; all of them mean the Windows code page 932 superset.
var encodingAliases = map[string]string{
	"shift-jis": "cp932",
	"shiftjis":  "cp932",
	"sjis":      "cp932",
	"eucjp":     "euc-jp",
}

// Canonicalize maps an encoding name to its canonical form. Lookup is
// case-insensitive and treats hyphens and underscores as equivalent,
// so "Shift_JIS", "shift-jis" and "SJIS" all canonicalize to "cp932".
// A name without an alias entry is returned unchanged; the codec
// layer decides downstream whether it is usable.
func Canonicalize(name string) string {
	key := strings.ToLower(strings.ReplaceAll(name, "_", "-"))
	if canonical, ok := encodingAliases[key]; ok {
		return canonical
	}
	return name
}
