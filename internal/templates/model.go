// Package templates defines the declarative document schema and loads it from disk.
package templates

import "resolution-backend/internal/values"

// Field types understood by the engine. Types outside this list are accepted
// and treated as plain values.
const (
	TypeText        = "text"
	TypeMultiline   = "multiline"
	TypeDate        = "date"
	TypeMoney       = "money"
	TypeNumber      = "number"
	TypeBoolean     = "boolean"
	TypeEnum        = "enum"
	TypeMultiselect = "multiselect"
	TypeEntity      = "entity"
	TypeSigner      = "signer"
	TypeComputed    = "computed"
	TypeList        = "list"
)

// ResolutionIDField is the field the compute stage writes.
const ResolutionIDField = "resolutionId"

// ComputeGenerateResolutionID names the only supported compute function.
const ComputeGenerateResolutionID = "generateResolutionId"

// DefaultFileNamePattern is used when a template omits fileNamePattern.
const DefaultFileNamePattern = "{{resolutionId}}.md"

// Template is an immutable document kind loaded once from a schema file.
type Template struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Version         string   `json:"version" yaml:"version"`
	TypeTag         string   `json:"typeTag" yaml:"typeTag"`
	FileNamePattern string   `json:"fileNamePattern,omitempty" yaml:"fileNamePattern"`
	Fields          []Field  `json:"fields" yaml:"fields"`
	Document        Document `json:"document" yaml:"document"`
}

// Document holds the raw title and body template strings.
type Document struct {
	Title  string `json:"title" yaml:"title"`
	BodyMD string `json:"bodyMd" yaml:"bodyMd"`
}

// Field is one input slot of a template.
type Field struct {
	ID          string      `json:"id" yaml:"id"`
	Label       string      `json:"label" yaml:"label"`
	Type        string      `json:"type" yaml:"type"`
	Required    bool        `json:"required,omitempty" yaml:"required"`
	MinItems    int         `json:"minItems,omitempty" yaml:"minItems"`
	Options     []string    `json:"options,omitempty" yaml:"options"`
	Placeholder string      `json:"placeholder,omitempty" yaml:"placeholder"`
	Help        string      `json:"help,omitempty" yaml:"help"`
	VisibleIf   *Condition  `json:"visibleIf,omitempty" yaml:"visibleIf"`
	Validate    *Validation `json:"validate,omitempty" yaml:"validate"`
	Compute     *Compute    `json:"compute,omitempty" yaml:"compute"`
}

// Condition gates a field's visibility on another field's value.
// Exactly one of Includes or Equals is expected to be set.
type Condition struct {
	Field    string        `json:"field" yaml:"field"`
	Includes *string       `json:"includes,omitempty" yaml:"includes"`
	Equals   *values.Value `json:"equals,omitempty" yaml:"equals"`
}

// Validation holds cross-field rules.
type Validation struct {
	NotEqualField   string `json:"notEqualField,omitempty" yaml:"notEqualField"`
	NotEqualMessage string `json:"notEqualMessage,omitempty" yaml:"notEqualMessage"`
	GTEField        string `json:"gteField,omitempty" yaml:"gteField"`
	GTEMessage      string `json:"gteMessage,omitempty" yaml:"gteMessage"`
}

// Compute describes how a derived field is produced.
type Compute struct {
	Fn           string `json:"fn" yaml:"fn"`
	EntityIDPath string `json:"entityIdPath" yaml:"entityIdPath"`
	DatePath     string `json:"datePath" yaml:"datePath"`
}

// Meta returns the metadata exposed to templates through $template.
func (t *Template) Meta() values.Meta {
	return values.Meta{ID: t.ID, Name: t.Name, Version: t.Version, TypeTag: t.TypeTag}
}

// FieldByID returns the field with the given id.
func (t *Template) FieldByID(id string) (Field, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// LabelFor returns the label of a field id, falling back to the id itself.
func (t *Template) LabelFor(id string) string {
	if f, ok := t.FieldByID(id); ok && f.Label != "" {
		return f.Label
	}
	return id
}

// FileName returns the configured file name pattern or the default.
func (t *Template) FileName() string {
	if t.FileNamePattern == "" {
		return DefaultFileNamePattern
	}
	return t.FileNamePattern
}
