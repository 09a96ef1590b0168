package resolutions

import (
	"time"

	"resolution-backend/internal/templates"
)

// AnswersRequest carries the user's field values.
type AnswersRequest struct {
	Values map[string]any `json:"values"`
}

// GenerateRequest asks for a new document.
type GenerateRequest struct {
	TemplateID string         `json:"templateId"`
	Values     map[string]any `json:"values"`
}

// TemplateSummary is the list form of a template.
type TemplateSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Version    string `json:"version"`
	TypeTag    string `json:"typeTag"`
	FieldCount int    `json:"fieldCount"`
}

// ValidateResponse reports the validation messages in field order.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// PreviewResponse is the rendered text of a document.
type PreviewResponse struct {
	ResolutionID string `json:"resolutionId,omitempty"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	FileName     string `json:"fileName"`
}

// DocumentResponse is the outward-facing representation of an archived document.
type DocumentResponse struct {
	DocumentID      string    `json:"documentId"`
	TemplateID      string    `json:"templateId"`
	TemplateVersion string    `json:"templateVersion"`
	ResolutionID    string    `json:"resolutionId"`
	Title           string    `json:"title"`
	FileName        string    `json:"fileName"`
	MimeType        string    `json:"mimeType"`
	SizeBytes       int64     `json:"sizeBytes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// GenerateResponse is returned by POST /documents.
type GenerateResponse struct {
	DocumentResponse
	Body string `json:"body"`
}

func toSummary(tpl *templates.Template) TemplateSummary {
	return TemplateSummary{
		ID:         tpl.ID,
		Name:       tpl.Name,
		Version:    tpl.Version,
		TypeTag:    tpl.TypeTag,
		FieldCount: len(tpl.Fields),
	}
}

func toResponse(rec Resolution) DocumentResponse {
	return DocumentResponse{
		DocumentID:      rec.ID,
		TemplateID:      rec.TemplateID,
		TemplateVersion: rec.TemplateVersion,
		ResolutionID:    rec.ResolutionID,
		Title:           rec.Title,
		FileName:        rec.FileName,
		MimeType:        rec.MimeType,
		SizeBytes:       rec.SizeBytes,
		CreatedAt:       rec.CreatedAt,
	}
}
