// Package resolutions archives generated documents and exposes the engine over HTTP.
package resolutions

import "time"

// MarkdownContentType is recorded for every archived document.
const MarkdownContentType = "text/markdown; charset=utf-8"

// Resolution is the archive record of one generated document.
type Resolution struct {
	ID              string
	TemplateID      string
	TemplateVersion string
	ResolutionID    string
	Title           string
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	CreatedAt       time.Time
}
