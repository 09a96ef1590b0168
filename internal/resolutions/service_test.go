package resolutions

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolution-backend/internal/assembly"
	"resolution-backend/internal/entities"
	"resolution-backend/internal/sequence"
	"resolution-backend/internal/shared/storage/object"
	localstore "resolution-backend/internal/shared/storage/object/local"
	"resolution-backend/internal/templates"
)

type brokenObjects struct{ object.ObjectStore }

func (brokenObjects) Save(context.Context, string, string, io.Reader) (string, int64, string, error) {
	return "", 0, "", errors.New("bucket offline")
}

type brokenRegister struct{}

func (brokenRegister) Load(context.Context) (sequence.Register, error) { return sequence.Register{}, nil }
func (brokenRegister) Save(context.Context, sequence.Register) error {
	return errors.New("read-only filesystem")
}

func newService(t *testing.T, store object.ObjectStore, reg sequence.Store) *Service {
	t.Helper()
	tpl, err := templates.LoadFile("../templates/testdata/shareholder_distribution.yaml")
	require.NoError(t, err)

	dir := entities.NewMemoryRepo(entities.Entity{ID: "SHOLD", LegalName: "Summit Holdings LLC", Jurisdiction: "Delaware"})
	seq := sequence.NewService(context.Background(), reg)
	return &Service{
		Templates: templates.NewRegistry(tpl),
		Entities:  dir,
		Assembler: assembly.New(seq, dir),
		Sequence:  seq,
		Store:     store,
		Repo:      NewMemoryRepo(),
		Now:       func() time.Time { return time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC) },
	}
}

func validValues() map[string]any {
	return map[string]any{
		"entity":            "SHOLD",
		"effectiveDate":     "2025-03-01",
		"recordDate":        "2025-03-15",
		"actionType":        "written consent",
		"totalAmount":       1500,
		"distributionKinds": []any{"cash"},
		"recipients":        []any{map[string]any{"name": "Ada Park", "percent": 100}},
		"secretary":         map[string]any{"id": "s1", "name": "Cara Lin"},
		"chair":             map[string]any{"id": "c1", "name": "Dev Shah"},
	}
}

func TestServiceGenerateArchivesMarkdown(t *testing.T) {
	svc := newService(t, localstore.New(t.TempDir()), sequence.NewMemoryStore())
	ctx := context.Background()

	out, err := svc.Generate(ctx, "shareholder_distribution", validValues())
	require.NoError(t, err)

	rec := out.Record
	assert.Equal(t, "SHOLD-2025-01-RES-DIST", rec.ResolutionID)
	assert.Equal(t, "1.2", rec.TemplateVersion)
	assert.Equal(t, MarkdownContentType, rec.MimeType)
	assert.Equal(t, "local", rec.StorageProvider)
	assert.Equal(t, time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC), rec.CreatedAt)
	assert.Equal(t, int64(len(Markdown(out.Document))), rec.SizeBytes)

	got, rc, err := svc.Open(ctx, rec.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, strings.HasPrefix(string(body), "# Summit Holdings LLC Resolution SHOLD-2025-01-RES-DIST\n\n"))

	assert.Equal(t, []sequence.Entry{{EntityID: "SHOLD", Year: 2025, Counter: 1}}, svc.Register())
}

func TestServiceGenerateUnknownTemplate(t *testing.T) {
	svc := newService(t, localstore.New(t.TempDir()), sequence.NewMemoryStore())

	_, err := svc.Generate(context.Background(), "missing", validValues())
	assert.ErrorIs(t, err, templates.ErrNotFound)
}

func TestServiceArchiveFailureConsumesID(t *testing.T) {
	svc := newService(t, brokenObjects{}, sequence.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Generate(ctx, "shareholder_distribution", validValues())
	require.Error(t, err)

	recs, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 1, svc.Sequence.Snapshot()[sequence.Key{EntityID: "SHOLD", Year: 2025}])
}

func TestServiceRegisterSaveFailure(t *testing.T) {
	svc := newService(t, localstore.New(t.TempDir()), brokenRegister{})

	_, err := svc.Generate(context.Background(), "shareholder_distribution", validValues())
	assert.ErrorIs(t, err, sequence.ErrPersistence)
}

func TestServiceValidationFailure(t *testing.T) {
	reg := sequence.NewMemoryStore()
	svc := newService(t, localstore.New(t.TempDir()), reg)

	values := validValues()
	delete(values, "entity")
	_, err := svc.Generate(context.Background(), "shareholder_distribution", values)

	msgs, ok := assembly.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Entity is required."}, msgs)
	assert.Zero(t, reg.Saves())
}

func TestServiceOpenMissingObject(t *testing.T) {
	svc := newService(t, localstore.New(t.TempDir()), sequence.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, svc.Repo.Create(ctx, Resolution{ID: "doc-1", StorageKey: "gone/file.md"}))

	_, _, err := svc.Open(ctx, "doc-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.Open(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
