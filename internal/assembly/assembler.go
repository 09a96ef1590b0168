// Package assembly drives a template through validation, computed fields and
// rendering to produce a finished document.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resolution-backend/internal/entities"
	"resolution-backend/internal/render"
	"resolution-backend/internal/rules"
	"resolution-backend/internal/shared/telemetry"
	"resolution-backend/internal/shared/util"
	"resolution-backend/internal/templates"
	"resolution-backend/internal/values"
)

// Stage names the assembly state reported in logs.
type Stage string

const (
	StageValidating Stage = "validating"
	StageComputing  Stage = "computing"
	StageRendering  Stage = "rendering"
)

const fallbackFileName = "resolution.md"

// Sequencer mints resolution identifiers.
type Sequencer interface {
	GenerateResolutionID(ctx context.Context, entityID string, date time.Time, typeTag string) (string, error)
}

// Directory resolves entity references.
type Directory interface {
	Get(ctx context.Context, id string) (entities.Entity, error)
}

// Document is the output of a successful assembly.
type Document struct {
	Title        string
	Body         string
	FileName     string
	ResolutionID string
	// Values is the completed store the document was rendered from.
	Values *values.Store
}

// Assembler runs templates against user answers. Entities may be nil, in
// which case entity fields are rendered from whatever the caller supplied.
type Assembler struct {
	Sequence Sequencer
	Entities Directory
}

// New constructs an Assembler.
func New(seq Sequencer, dir Directory) *Assembler {
	return &Assembler{Sequence: seq, Entities: dir}
}

// Validate returns every failing rule message for the visible fields.
func (a *Assembler) Validate(tpl *templates.Template, store *values.Store) []string {
	return rules.Validate(tpl, store)
}

// Generate validates, computes derived fields and renders. The caller's store
// is never modified. On a validation failure the error is a *ValidationError
// and the sequence is not touched.
func (a *Assembler) Generate(ctx context.Context, tpl *templates.Template, store *values.Store) (Document, error) {
	logStage(tpl, StageValidating)
	if msgs := rules.Validate(tpl, store); len(msgs) > 0 {
		telemetry.Info("assembly.failed", map[string]any{
			"template_id": tpl.ID,
			"stage":       string(StageValidating),
			"errors":      len(msgs),
		})
		return Document{}, &ValidationError{Messages: msgs}
	}

	logStage(tpl, StageComputing)
	work := store.Clone()
	if err := a.resolveEntities(ctx, tpl, work); err != nil {
		return Document{}, a.fail(tpl, StageComputing, err)
	}
	if err := a.compute(ctx, tpl, work); err != nil {
		return Document{}, a.fail(tpl, StageComputing, err)
	}

	logStage(tpl, StageRendering)
	return renderDocument(tpl, work), nil
}

// Preview renders without validating or computing, so no identifier is
// minted. Entity references are still resolved.
func (a *Assembler) Preview(ctx context.Context, tpl *templates.Template, store *values.Store) (Document, error) {
	work := store.Clone()
	if err := a.resolveEntities(ctx, tpl, work); err != nil {
		return Document{}, err
	}
	return renderDocument(tpl, work), nil
}

func (a *Assembler) fail(tpl *templates.Template, stage Stage, err error) error {
	telemetry.Error("assembly.failed", map[string]any{
		"template_id": tpl.ID,
		"stage":       string(stage),
		"error":       err.Error(),
	})
	return err
}

func logStage(tpl *templates.Template, stage Stage) {
	telemetry.Debug("assembly."+string(stage), map[string]any{
		"template_id":      tpl.ID,
		"template_version": tpl.Version,
	})
}

// resolveEntities replaces entity ids with directory records for visible
// entity fields. Unknown ids are left untouched.
func (a *Assembler) resolveEntities(ctx context.Context, tpl *templates.Template, store *values.Store) error {
	if a.Entities == nil {
		return nil
	}
	for _, f := range tpl.Fields {
		if f.Type != templates.TypeEntity || !rules.IsVisible(store, f) {
			continue
		}
		v, ok := store.Lookup(f.ID)
		if !ok {
			continue
		}
		id, isString := v.AsString()
		id = strings.TrimSpace(id)
		if !isString || id == "" {
			continue
		}
		e, err := a.Entities.Get(ctx, id)
		if err != nil {
			if errors.Is(err, entities.ErrNotFound) {
				continue
			}
			return fmt.Errorf("resolve entity %s: %w", id, err)
		}
		store.Set(f.ID, e.ToValue())
	}
	return nil
}

func (a *Assembler) compute(ctx context.Context, tpl *templates.Template, store *values.Store) error {
	f, ok := tpl.FieldByID(templates.ResolutionIDField)
	if !ok || f.Compute == nil {
		return nil
	}
	if f.Compute.Fn != templates.ComputeGenerateResolutionID {
		return fmt.Errorf("%w: %q", ErrUnknownCompute, f.Compute.Fn)
	}
	if a.Sequence == nil {
		return errors.New("assembly: no sequence service configured")
	}

	entityID, err := entityIDAt(store, f.Compute.EntityIDPath)
	if err != nil {
		return err
	}
	date, err := dateAt(store, f.Compute.DatePath)
	if err != nil {
		return err
	}

	id, err := a.Sequence.GenerateResolutionID(ctx, entityID, date, tpl.TypeTag)
	if err != nil {
		return err
	}
	store.Set(templates.ResolutionIDField, values.String(id))
	return nil
}

// entityIDAt reads the entity id at path. A path such as "entity.id" also
// accepts an unresolved string id stored at "entity".
func entityIDAt(store *values.Store, path string) (string, error) {
	v, err := store.Get(path)
	if err != nil {
		parent, ok := strings.CutSuffix(path, ".id")
		pv, found := store.Lookup(parent)
		if !ok || !found || pv.Kind() != values.KindString {
			return "", fmt.Errorf("%w: entity id at %q: %v", ErrComputeInput, path, err)
		}
		v = pv
	}
	if id, ok := v.Field("id"); ok {
		v = id
	}
	text := strings.TrimSpace(v.Text())
	if text == "" {
		return "", fmt.Errorf("%w: entity id at %q is empty", ErrComputeInput, path)
	}
	return text, nil
}

func dateAt(store *values.Store, path string) (time.Time, error) {
	v, err := store.Get(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date at %q: %v", ErrComputeInput, path, err)
	}
	d, ok := util.ParseCalendarDate(v.Text())
	if !ok {
		return time.Time{}, fmt.Errorf("%w: date at %q is not a calendar date", ErrComputeInput, path)
	}
	return d, nil
}

// renderDocument renders title, body and file name each against its own
// copy of the store.
func renderDocument(tpl *templates.Template, store *values.Store) Document {
	doc := Document{
		Title:  render.Render(tpl.Document.Title, store.Clone()),
		Body:   render.Render(tpl.Document.BodyMD, store.Clone()),
		Values: store,
	}
	if v, ok := store.Lookup(templates.ResolutionIDField); ok {
		doc.ResolutionID = v.Text()
	}
	doc.FileName = fileName(tpl, store)
	return doc
}

func fileName(tpl *templates.Template, store *values.Store) string {
	for _, pattern := range []string{tpl.FileName(), templates.DefaultFileNamePattern} {
		if name, err := util.SanitizeFileName(render.Render(pattern, store.Clone())); err == nil {
			return name
		}
	}
	return fallbackFileName
}
