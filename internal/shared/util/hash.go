package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const maxSlugLen = 48

// NamespaceKey returns a stable, path-safe directory name for a storage
// namespace such as a template id: a readable slug plus a short digest so
// distinct namespaces never collide.
func NamespaceKey(ns string) string {
	sum := sha256.Sum256([]byte(ns))
	digest := hex.EncodeToString(sum[:6])

	var sb strings.Builder
	for _, r := range strings.ToLower(ns) {
		if sb.Len() >= maxSlugLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('-')
		}
	}
	slug := strings.Trim(sb.String(), "-_")
	if slug == "" {
		return digest
	}
	return slug + "-" + digest
}
