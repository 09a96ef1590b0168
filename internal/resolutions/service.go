package resolutions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resolution-backend/internal/assembly"
	"resolution-backend/internal/entities"
	"resolution-backend/internal/sequence"
	"resolution-backend/internal/shared/metrics"
	"resolution-backend/internal/shared/storage/object"
	"resolution-backend/internal/shared/telemetry"
	"resolution-backend/internal/templates"
	"resolution-backend/internal/values"
)

// Service contains business logic for generating and archiving documents.
type Service struct {
	Templates       *templates.Registry
	Entities        entities.Repo
	Assembler       *assembly.Assembler
	Sequence        *sequence.Service
	Store           object.ObjectStore
	Repo            Repo
	StorageProvider string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Generated bundles the archive record with the rendered text.
type Generated struct {
	Record   Resolution
	Document assembly.Document
}

// Template returns a loaded template by id.
func (s *Service) Template(id string) (*templates.Template, error) {
	return s.Templates.Get(strings.TrimSpace(id))
}

// ListTemplates returns every loaded template ordered by id.
func (s *Service) ListTemplates() []*templates.Template {
	return s.Templates.List()
}

// Validate runs the validation stage only.
func (s *Service) Validate(ctx context.Context, templateID string, answers map[string]any) ([]string, error) {
	tpl, store, err := s.prepare(templateID, answers)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Assembler.Validate(tpl, store), nil
}

// Preview renders the document without minting an identifier or archiving it.
func (s *Service) Preview(ctx context.Context, templateID string, answers map[string]any) (assembly.Document, error) {
	tpl, store, err := s.prepare(templateID, answers)
	if err != nil {
		return assembly.Document{}, err
	}
	return s.Assembler.Preview(ctx, tpl, store)
}

// Generate assembles the document, stores the markdown and records it.
func (s *Service) Generate(ctx context.Context, templateID string, answers map[string]any) (Generated, error) {
	tpl, store, err := s.prepare(templateID, answers)
	if err != nil {
		return Generated{}, err
	}

	start := time.Now()
	doc, err := s.Assembler.Generate(ctx, tpl, store)
	metrics.ObserveRenderDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		if _, ok := assembly.AsValidation(err); ok {
			metrics.IncValidationFailed()
		} else {
			metrics.IncGenerationFailed()
		}
		return Generated{}, err
	}

	rec, err := s.archive(ctx, tpl, doc)
	if err != nil {
		metrics.IncGenerationFailed()
		telemetry.Error("document.archive_failed", map[string]any{
			"template_id":   tpl.ID,
			"resolution_id": doc.ResolutionID,
			"error":         err.Error(),
		})
		return Generated{}, err
	}

	metrics.IncDocumentsGenerated()
	telemetry.Info("document.generated", map[string]any{
		"document_id":   rec.ID,
		"template_id":   rec.TemplateID,
		"resolution_id": rec.ResolutionID,
		"size_bytes":    rec.SizeBytes,
	})
	return Generated{Record: rec, Document: doc}, nil
}

func (s *Service) archive(ctx context.Context, tpl *templates.Template, doc assembly.Document) (Resolution, error) {
	if s.Store == nil || s.Repo == nil {
		return Resolution{}, errors.New("missing dependencies")
	}
	content := Markdown(doc)
	storageKey, size, _, err := s.Store.Save(ctx, tpl.ID, doc.FileName, bytes.NewReader(content))
	if err != nil {
		return Resolution{}, fmt.Errorf("store document: %w", err)
	}

	provider := s.StorageProvider
	if provider == "" {
		provider = "local"
	}
	rec := Resolution{
		ID:              uuid.NewString(),
		TemplateID:      tpl.ID,
		TemplateVersion: tpl.Version,
		ResolutionID:    doc.ResolutionID,
		Title:           doc.Title,
		FileName:        doc.FileName,
		MimeType:        MarkdownContentType,
		SizeBytes:       size,
		StorageProvider: provider,
		StorageKey:      storageKey,
		CreatedAt:       s.now(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		return Resolution{}, fmt.Errorf("record document: %w", err)
	}
	return rec, nil
}

// Markdown is the archived form of a document.
func Markdown(doc assembly.Document) []byte {
	return []byte("# " + doc.Title + "\n\n" + doc.Body)
}

// Get returns an archive record.
func (s *Service) Get(ctx context.Context, id string) (Resolution, error) {
	if strings.TrimSpace(id) == "" {
		return Resolution{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns archive records newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Resolution, error) {
	return s.Repo.List(ctx, limit, offset)
}

// Open returns the record and a reader over its stored markdown.
func (s *Service) Open(ctx context.Context, id string) (Resolution, io.ReadCloser, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return Resolution{}, nil, err
	}
	rc, err := s.Store.Open(ctx, rec.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Resolution{}, nil, ErrNotFound
		}
		return Resolution{}, nil, err
	}
	return rec, rc, nil
}

// Register returns the current sequence counters.
func (s *Service) Register() []sequence.Entry {
	if s.Sequence == nil {
		return []sequence.Entry{}
	}
	return s.Sequence.Snapshot().Entries()
}

// ListEntities returns the entity directory.
func (s *Service) ListEntities(ctx context.Context) ([]entities.Entity, error) {
	if s.Entities == nil {
		return []entities.Entity{}, nil
	}
	return s.Entities.List(ctx)
}

// GetEntity returns one directory record.
func (s *Service) GetEntity(ctx context.Context, id string) (entities.Entity, error) {
	if s.Entities == nil {
		return entities.Entity{}, entities.ErrNotFound
	}
	return s.Entities.Get(ctx, id)
}

func (s *Service) prepare(templateID string, answers map[string]any) (*templates.Template, *values.Store, error) {
	tpl, err := s.Template(templateID)
	if err != nil {
		return nil, nil, err
	}
	store, err := values.FromMap(tpl.Meta(), answers)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return tpl, store, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
