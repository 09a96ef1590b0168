package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolution-backend/internal/templates"
	"resolution-backend/internal/values"
)

func strPtr(s string) *string { return &s }

func valPtr(v values.Value) *values.Value { return &v }

func storeOf(t *testing.T, raw map[string]any) *values.Store {
	t.Helper()
	s, err := values.FromMap(values.Meta{TypeTag: "T"}, raw)
	require.NoError(t, err)
	return s
}

func TestIsVisible(t *testing.T) {
	s := storeOf(t, map[string]any{
		"kinds":  []any{"cash", "property"},
		"mode":   "meeting",
		"active": true,
		"count":  3.0,
	})

	tests := []struct {
		name string
		cond *templates.Condition
		want bool
	}{
		{name: "no condition", cond: nil, want: true},
		{name: "includes hit", cond: &templates.Condition{Field: "kinds", Includes: strPtr("property")}, want: true},
		{name: "includes miss", cond: &templates.Condition{Field: "kinds", Includes: strPtr("stock")}, want: false},
		{name: "includes on scalar", cond: &templates.Condition{Field: "mode", Includes: strPtr("meeting")}, want: false},
		{name: "includes absent", cond: &templates.Condition{Field: "nope", Includes: strPtr("x")}, want: false},
		{name: "equals string", cond: &templates.Condition{Field: "mode", Equals: valPtr(values.String("meeting"))}, want: true},
		{name: "equals string miss", cond: &templates.Condition{Field: "mode", Equals: valPtr(values.String("consent"))}, want: false},
		{name: "equals bool", cond: &templates.Condition{Field: "active", Equals: valPtr(values.Bool(true))}, want: true},
		{name: "equals number", cond: &templates.Condition{Field: "count", Equals: valPtr(values.Number(3))}, want: true},
		{name: "type mismatch", cond: &templates.Condition{Field: "active", Equals: valPtr(values.String("true"))}, want: false},
		{name: "equals absent", cond: &templates.Condition{Field: "nope", Equals: valPtr(values.Bool(false))}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsVisible(s, templates.Field{ID: "f", VisibleIf: tt.cond})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(values.Null()))
	assert.True(t, IsEmpty(values.String("   ")))
	assert.True(t, IsEmpty(values.Array()))
	assert.True(t, IsEmpty(values.Object(nil)))
	assert.False(t, IsEmpty(values.String("x")))
	assert.False(t, IsEmpty(values.Number(0)))
	assert.False(t, IsEmpty(values.Bool(false)))
	assert.False(t, IsEmpty(values.Array(values.String("a"))))
}

func TestValidateRequired(t *testing.T) {
	tpl := &templates.Template{Fields: []templates.Field{
		{ID: "name", Label: "Name", Required: true},
		{ID: "location", Label: "Location", Required: true, VisibleIf: &templates.Condition{Field: "mode", Equals: valPtr(values.String("meeting"))}},
	}}

	errs := Validate(tpl, storeOf(t, map[string]any{"mode": "consent", "name": " "}))
	assert.Equal(t, []string{"Name is required."}, errs)

	errs = Validate(tpl, storeOf(t, map[string]any{"mode": "meeting", "name": "Tom"}))
	assert.Equal(t, []string{"Location is required."}, errs)

	errs = Validate(tpl, storeOf(t, map[string]any{"mode": "meeting", "name": "Tom", "location": "HQ"}))
	assert.Empty(t, errs)
}

func TestValidateMinItems(t *testing.T) {
	tpl := &templates.Template{Fields: []templates.Field{
		{ID: "recipients", Label: "Recipients", Required: true, MinItems: 2},
	}}

	errs := Validate(tpl, storeOf(t, map[string]any{"recipients": []any{}}))
	assert.Equal(t, []string{"Recipients is required."}, errs)

	errs = Validate(tpl, storeOf(t, map[string]any{"recipients": []any{map[string]any{"name": "A"}}}))
	assert.Equal(t, []string{"Recipients requires at least 2 entries."}, errs)

	errs = Validate(tpl, storeOf(t, map[string]any{"recipients": []any{"A", "B"}}))
	assert.Empty(t, errs)
}

func TestValidateNotEqualField(t *testing.T) {
	tpl := &templates.Template{Fields: []templates.Field{
		{ID: "secretary", Label: "Secretary"},
		{ID: "chair", Label: "Chair", Validate: &templates.Validation{NotEqualField: "secretary"}},
	}}

	errs := Validate(tpl, storeOf(t, map[string]any{
		"secretary": map[string]any{"id": "p1", "name": "Ann"},
		"chair":     map[string]any{"id": "p1", "name": "Ann B."},
	}))
	assert.Equal(t, []string{"Chair must differ from Secretary"}, errs)

	errs = Validate(tpl, storeOf(t, map[string]any{
		"secretary": map[string]any{"id": "p1"},
		"chair":     map[string]any{"id": "p2"},
	}))
	assert.Empty(t, errs)

	errs = Validate(tpl, storeOf(t, map[string]any{"secretary": "Ann", "chair": "Ann"}))
	assert.Equal(t, []string{"Chair must differ from Secretary"}, errs)

	errs = Validate(tpl, storeOf(t, map[string]any{"chair": "Ann"}))
	assert.Empty(t, errs)

	errs = Validate(tpl, storeOf(t, map[string]any{"secretary": "", "chair": ""}))
	assert.Empty(t, errs, "two blank answers are left to the required rule")

	errs = Validate(tpl, storeOf(t, map[string]any{"secretary": []any{}, "chair": []any{}}))
	assert.Empty(t, errs)

	tpl.Fields[1].Validate.NotEqualMessage = "Pick two people."
	errs = Validate(tpl, storeOf(t, map[string]any{"secretary": "Ann", "chair": "Ann"}))
	assert.Equal(t, []string{"Pick two people."}, errs)
}

func TestValidateGTEField(t *testing.T) {
	tpl := &templates.Template{Fields: []templates.Field{
		{ID: "a", Label: "A", Validate: &templates.Validation{GTEField: "b"}},
		{ID: "b", Label: "B"},
	}}

	tests := []struct {
		name string
		a, b string
		want []string
	}{
		{name: "before", a: "2025-01-01", b: "2025-02-01", want: []string{"A must be on/after B"}},
		{name: "after", a: "2025-02-01", b: "2025-01-01", want: nil},
		{name: "same day ignores time", a: "2025-02-01T01:00:00Z", b: "2025-02-01T23:00:00Z", want: nil},
		{name: "a empty", a: "", b: "2025-01-01", want: nil},
		{name: "b empty", a: "2025-01-01", b: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tpl, storeOf(t, map[string]any{"a": tt.a, "b": tt.b}))
			assert.Equal(t, tt.want, errs)
		})
	}

	tpl.Fields[0].Validate.GTEMessage = "Too early."
	errs := Validate(tpl, storeOf(t, map[string]any{"a": "2025-01-01", "b": "2025-02-01"}))
	assert.Equal(t, []string{"Too early."}, errs)
}

func TestValidateAccumulatesAcrossFields(t *testing.T) {
	tpl := &templates.Template{Fields: []templates.Field{
		{ID: "x", Label: "X", Required: true},
		{ID: "y", Label: "Y", Required: true},
		{ID: "z", Label: "Z", Required: true, VisibleIf: &templates.Condition{Field: "x", Equals: valPtr(values.String("show"))}},
	}}
	errs := Validate(tpl, storeOf(t, map[string]any{}))
	assert.Equal(t, []string{"X is required.", "Y is required."}, errs)
}
