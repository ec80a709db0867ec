package ftp

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalidPath means a user-supplied path tried to escape the
// configured root.
var ErrInvalidPath = errors.New("invalid path")

// Sanitize normalizes a user-supplied path and anchors it under root.
// Separators are unified, "." and ".." segments are collapsed with
// pure string semantics, and the path is treated as root-relative no
// matter how many leading slashes it carries. The traversal check
// runs on the normalized form; checking the raw input instead would
// be bypassable with segments like "a/../..".
func Sanitize(userPath, root string) (string, error) {
	p := strings.ReplaceAll(userPath, "\\", "/")
	p = strings.TrimLeft(p, "/")
	normalized := path.Clean(p)

	if normalized == ".." || strings.HasPrefix(normalized, "../") || strings.Contains(normalized, "/../") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, userPath)
	}

	base := strings.TrimRight(root, "/")
	if normalized == "." {
		return base + "/", nil
	}
	return base + "/" + normalized, nil
}
