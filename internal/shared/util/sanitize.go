package util

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFileName keeps the base name and replaces every character outside
// [a-zA-Z0-9._-] with an underscore.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "\\", "/")
	s = filepath.Base(s)
	if s == "" || s == "." || s == "/" || s == ".." {
		return "", errors.New("invalid file name")
	}
	return unsafeFileChars.ReplaceAllString(s, "_"), nil
}
