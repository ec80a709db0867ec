package ftp

import (
	"mime"
	"path"
	"strings"
)

// textExtensions is the closed set of extensions the editor treats as
// text. Everything else moves as opaque binary.
var textExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".css":  true,
	".js":   true,
	".json": true,
	".xml":  true,
	".txt":  true,
	".csv":  true,
	".svg":  true,
	".md":   true,
	".php":  true,
}

// IsTextPath classifies a path as text or binary by its extension.
func IsTextPath(p string) bool {
	return textExtensions[strings.ToLower(path.Ext(p))]
}

// ContentType guesses the MIME type from the extension, without
// parameters. Returns "" when the extension is unknown.
func ContentType(p string) string {
	ct := mime.TypeByExtension(strings.ToLower(path.Ext(p)))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
