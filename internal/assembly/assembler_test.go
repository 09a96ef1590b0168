package assembly

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolution-backend/internal/entities"
	"resolution-backend/internal/sequence"
	"resolution-backend/internal/templates"
	"resolution-backend/internal/values"
)

type recordingSequencer struct {
	calls []string
	err   error
	inner *sequence.Service
}

func newRecordingSequencer() *recordingSequencer {
	return &recordingSequencer{inner: sequence.NewService(context.Background(), sequence.NewMemoryStore())}
}

func (r *recordingSequencer) GenerateResolutionID(ctx context.Context, entityID string, date time.Time, typeTag string) (string, error) {
	r.calls = append(r.calls, entityID+"@"+date.Format("2006-01-02")+"/"+typeTag)
	if r.err != nil {
		return "", r.err
	}
	return r.inner.GenerateResolutionID(ctx, entityID, date, typeTag)
}

func loadTemplate(t *testing.T) *templates.Template {
	t.Helper()
	tpl, err := templates.LoadFile("../templates/testdata/shareholder_distribution.yaml")
	require.NoError(t, err)
	return tpl
}

func directory() *entities.MemoryRepo {
	return entities.NewMemoryRepo(entities.Entity{
		ID:           "SHOLD",
		LegalName:    "Summit Holdings LLC",
		Jurisdiction: "Delaware",
	})
}

func validAnswers() map[string]any {
	return map[string]any{
		"entity":              "SHOLD",
		"effectiveDate":       "2025-03-01",
		"recordDate":          "2025-03-15",
		"actionType":          "meeting",
		"meetingLocation":     "the Wilmington office",
		"totalAmount":         250000,
		"distributionKinds":   []any{"cash", "property"},
		"propertyDescription": "Parcel 12, Kent County",
		"recipients": []any{
			map[string]any{"name": "Ada Park", "percent": 60},
			map[string]any{"name": "Ben Ortiz", "percent": 40},
		},
		"secretary": map[string]any{"id": "s1", "name": "Cara Lin"},
		"chair":     map[string]any{"id": "c1", "name": "Dev Shah"},
	}
}

func storeFor(t *testing.T, tpl *templates.Template, raw map[string]any) *values.Store {
	t.Helper()
	s, err := values.FromMap(tpl.Meta(), raw)
	require.NoError(t, err)
	return s
}

func TestGenerateProducesDocument(t *testing.T) {
	tpl := loadTemplate(t)
	seq := newRecordingSequencer()
	a := New(seq, directory())

	doc, err := a.Generate(context.Background(), tpl, storeFor(t, tpl, validAnswers()))
	require.NoError(t, err)

	assert.Equal(t, "SHOLD-2025-01-RES-DIST", doc.ResolutionID)
	assert.Equal(t, "Summit Holdings LLC Resolution SHOLD-2025-01-RES-DIST", doc.Title)
	assert.Equal(t, "SHOLD-2025-01-RES-DIST Distribution.md", doc.FileName)
	assert.Equal(t, []string{"SHOLD@2025-03-01/DIST"}, seq.calls)

	for _, want := range []string{
		"**Summit Holdings LLC** (a Delaware entity)",
		"Resolution No. SHOLD-2025-01-RES-DIST, effective March 1, 2025.",
		"acting by the Wilmington office",
		"distribution of $250,000.00",
		"as of March 15, 2025",
		"Parcel 12, Kent County",
		"| Ada Park | 60.00% |",
		"| Ben Ortiz | 40.00% |",
		"Kind: DIST",
		"Dev Shah, Chair",
		"Cara Lin, Secretary",
	} {
		assert.Contains(t, doc.Body, want)
	}
}

func TestGenerateSecondCallAdvancesSequence(t *testing.T) {
	tpl := loadTemplate(t)
	a := New(newRecordingSequencer(), directory())

	_, err := a.Generate(context.Background(), tpl, storeFor(t, tpl, validAnswers()))
	require.NoError(t, err)
	doc, err := a.Generate(context.Background(), tpl, storeFor(t, tpl, validAnswers()))
	require.NoError(t, err)
	assert.Equal(t, "SHOLD-2025-02-RES-DIST", doc.ResolutionID)
}

func TestGenerateLeavesCallerStoreUntouched(t *testing.T) {
	tpl := loadTemplate(t)
	a := New(newRecordingSequencer(), directory())
	store := storeFor(t, tpl, validAnswers())

	_, err := a.Generate(context.Background(), tpl, store)
	require.NoError(t, err)

	_, has := store.Lookup("resolutionId")
	assert.False(t, has)
	entity, _ := store.Lookup("entity")
	assert.Equal(t, values.String("SHOLD"), entity)
}

func TestGenerateValidationFailureSkipsSequence(t *testing.T) {
	tpl := loadTemplate(t)
	seq := newRecordingSequencer()
	a := New(seq, directory())

	answers := validAnswers()
	answers["recordDate"] = "2025-02-01"
	delete(answers, "meetingLocation")
	answers["chair"] = answers["secretary"]

	_, err := a.Generate(context.Background(), tpl, storeFor(t, tpl, answers))
	require.Error(t, err)

	msgs, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{
		"Record date cannot precede the effective date.",
		"Meeting Location is required.",
		"The chair and the secretary must be different people.",
	}, msgs)
	assert.Empty(t, seq.calls)
}

func TestHiddenFieldsAreNotValidated(t *testing.T) {
	tpl := loadTemplate(t)
	a := New(newRecordingSequencer(), directory())

	answers := validAnswers()
	answers["actionType"] = "written consent"
	delete(answers, "meetingLocation")
	answers["distributionKinds"] = []any{"cash"}
	delete(answers, "propertyDescription")

	doc, err := a.Generate(context.Background(), tpl, storeFor(t, tpl, answers))
	require.NoError(t, err)
	assert.Contains(t, doc.Body, "acting by written consent")
	assert.NotContains(t, doc.Body, "property described")
}

func TestGenerateUnknownEntityUsesRawID(t *testing.T) {
	tpl := loadTemplate(t)
	a := New(newRecordingSequencer(), entities.NewMemoryRepo())

	doc, err := a.Generate(context.Background(), tpl, storeFor(t, tpl, validAnswers()))
	require.NoError(t, err)
	assert.Equal(t, "SHOLD-2025-01-RES-DIST", doc.ResolutionID)
	assert.Equal(t, " Resolution SHOLD-2025-01-RES-DIST", doc.Title)
}

func TestGenerateComputeErrors(t *testing.T) {
	tpl := loadTemplate(t)

	t.Run("unparseable date", func(t *testing.T) {
		seq := newRecordingSequencer()
		answers := validAnswers()
		answers["effectiveDate"] = "next spring"
		answers["recordDate"] = "later"

		_, err := New(seq, directory()).Generate(context.Background(), tpl, storeFor(t, tpl, answers))
		assert.ErrorIs(t, err, ErrComputeInput)
		assert.Empty(t, seq.calls)
	})

	t.Run("unknown function", func(t *testing.T) {
		custom := *tpl
		custom.Fields = append([]templates.Field(nil), tpl.Fields...)
		for i := range custom.Fields {
			if custom.Fields[i].ID == templates.ResolutionIDField {
				c := *custom.Fields[i].Compute
				c.Fn = "randomId"
				custom.Fields[i].Compute = &c
			}
		}
		_, err := New(newRecordingSequencer(), directory()).Generate(context.Background(), &custom, storeFor(t, &custom, validAnswers()))
		assert.ErrorIs(t, err, ErrUnknownCompute)
	})

	t.Run("persistence failure", func(t *testing.T) {
		seq := newRecordingSequencer()
		seq.err = sequence.ErrPersistence
		_, err := New(seq, directory()).Generate(context.Background(), tpl, storeFor(t, tpl, validAnswers()))
		assert.True(t, errors.Is(err, sequence.ErrPersistence))
	})
}

func TestPreviewDoesNotMintIDs(t *testing.T) {
	tpl := loadTemplate(t)
	seq := newRecordingSequencer()
	a := New(seq, directory())

	answers := validAnswers()
	delete(answers, "totalAmount")

	doc, err := a.Preview(context.Background(), tpl, storeFor(t, tpl, answers))
	require.NoError(t, err)
	assert.Empty(t, seq.calls)
	assert.Equal(t, "Summit Holdings LLC Resolution ", doc.Title)
	assert.Equal(t, "Distribution.md", doc.FileName)
	assert.True(t, strings.HasPrefix(doc.Body, "**Summit Holdings LLC**"))

	bare := &templates.Template{ID: "bare", Document: templates.Document{Title: "Bare"}}
	doc, err = New(nil, nil).Preview(context.Background(), bare, values.NewStore(bare.Meta()))
	require.NoError(t, err)
	assert.Equal(t, "resolution.md", doc.FileName)
}

func TestValidateOnly(t *testing.T) {
	tpl := loadTemplate(t)
	a := New(nil, nil)

	assert.Empty(t, a.Validate(tpl, storeFor(t, tpl, validAnswers())))

	msgs := a.Validate(tpl, storeFor(t, tpl, map[string]any{}))
	assert.Contains(t, msgs, "Entity is required.")
	assert.Contains(t, msgs, "Recipients is required.")
	assert.NotContains(t, msgs, "Meeting Location is required.")
}
