package object

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

var typesByExt = map[string]string{
	".md":       "text/markdown; charset=utf-8",
	".markdown": "text/markdown; charset=utf-8",
	".json":     "application/json",
	".yaml":     "application/yaml",
	".yml":      "application/yaml",
}

// Sniff determines the content type of an upload. Known document extensions
// win; anything else falls back to content sniffing of the first 512 bytes.
// The returned reader yields the full original stream.
func Sniff(fileName string, r io.Reader) (string, io.Reader, error) {
	var head [512]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("read sniff: %w", err)
	}
	body := io.MultiReader(bytes.NewReader(head[:n]), r)

	if t, ok := typesByExt[strings.ToLower(path.Ext(fileName))]; ok {
		return t, body, nil
	}
	return http.DetectContentType(head[:n]), body, nil
}
