package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxFileNameBytes keeps rendered names well under common filesystem limits.
const maxFileNameBytes = 180

var errInvalidFileName = errors.New("invalid file name")

// SanitizeFileName turns a rendered document name into a single safe path
// segment. Separators, reserved characters and control characters become
// "_", whitespace runs collapse to one space, and long names are shortened
// while keeping the extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errInvalidFileName
	}

	var sb strings.Builder
	space := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case r < 0x20 || r == 0x7f || strings.ContainsRune(`/\:*?"<>|`, r):
			r = '_'
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	s := sb.String()
	if s == "" || strings.Trim(s, "._ ") == "" {
		return "", errInvalidFileName
	}
	// A bare extension such as ".md" is a hidden file, not a document name.
	if strings.Trim(strings.TrimSuffix(s, path.Ext(s)), "._ ") == "" {
		return "", errInvalidFileName
	}
	return truncateName(s), nil
}

func truncateName(s string) string {
	if len(s) <= maxFileNameBytes {
		return s
	}
	ext := path.Ext(s)
	if len(ext) > 16 {
		ext = ""
	}
	base := s[:maxFileNameBytes-len(ext)]
	for !utf8.ValidString(base) {
		base = base[:len(base)-1]
	}
	return strings.TrimRight(base, " ") + ext
}
