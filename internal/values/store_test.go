package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStore(t *testing.T) *Store {
	t.Helper()
	s, err := FromMap(Meta{ID: "dist", TypeTag: "DIST"}, map[string]any{
		"name":   "Tom",
		"amount": 1250.5,
		"active": true,
		"entity": map[string]any{
			"id": "SHOLD",
			"address": map[string]any{
				"city": "Wilmington",
			},
		},
		"items": []any{
			map[string]any{"name": "A"},
			map[string]any{"name": "B"},
		},
	})
	require.NoError(t, err)
	return s
}

func TestStoreGetReturnsInsertedValues(t *testing.T) {
	s := sampleStore(t)

	tests := []struct {
		path string
		want Value
	}{
		{"name", String("Tom")},
		{"amount", Number(1250.5)},
		{"active", Bool(true)},
		{"entity.id", String("SHOLD")},
		{"entity.address.city", String("Wilmington")},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := s.Get(tt.path)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "got %v", got.Any())
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := sampleStore(t)

	for _, path := range []string{"nope", "entity.nope", "entity.address.zip", ""} {
		_, err := s.Get(path)
		assert.ErrorIs(t, err, ErrMissing, path)
	}
}

func TestStoreGetTypeMismatch(t *testing.T) {
	s := sampleStore(t)

	_, err := s.Get("name.first")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = s.Get("items.0")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestStoreTemplateShortcut(t *testing.T) {
	s := sampleStore(t)

	v, err := s.Get("$template.typeTag")
	require.NoError(t, err)
	assert.Equal(t, "DIST", v.Text())

	v, err = s.Get("$template.id")
	require.NoError(t, err)
	assert.Equal(t, "dist", v.Text())

	v, err = s.Get("$template.anything.else")
	require.NoError(t, err)
	assert.Equal(t, "DIST", v.Text())
}

func TestStoreSetWritesTopLevelKey(t *testing.T) {
	s := NewStore(Meta{})
	s.Set("resolutionId", String("X-1"))

	v, ok := s.Lookup("resolutionId")
	require.True(t, ok)
	assert.Equal(t, "X-1", v.Text())

	s.Set("a.b", String("literal"))
	_, ok = s.Lookup("a.b")
	assert.False(t, ok, "dotted keys are not traversable")
}

func TestStoreCloneIsIndependent(t *testing.T) {
	s := sampleStore(t)
	c := s.Clone()

	entity, _ := c.Lookup("entity")
	fields, _ := entity.AsObject()
	fields["id"] = String("CHANGED")
	c.Set("name", String("Jerry"))

	orig, _ := s.Lookup("entity.id")
	assert.Equal(t, "SHOLD", orig.Text())
	name, _ := s.Lookup("name")
	assert.Equal(t, "Tom", name.Text())
}

func TestStoreChildBindsThis(t *testing.T) {
	s := sampleStore(t)
	child := s.Child(Object(map[string]Value{"name": String("A")}))

	v, ok := child.Lookup("this.name")
	require.True(t, ok)
	assert.Equal(t, "A", v.Text())

	_, ok = s.Lookup("this")
	assert.False(t, ok)

	outer, ok := child.Lookup("name")
	require.True(t, ok)
	assert.Equal(t, "Tom", outer.Text())
}

func TestValueText(t *testing.T) {
	assert.Equal(t, "1500", Number(1500).Text())
	assert.Equal(t, "12.5", Number(12.5).Text())
	assert.Equal(t, "false", Bool(false).Text())
	assert.Equal(t, "a, b", Array(String("a"), String("b")).Text())
	assert.Equal(t, "", Object(nil).Text())
	assert.Equal(t, "", Null().Text())
}

func TestValueJSON(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"a":[1,"x",true,null]}`), &v))

	a, ok := v.Field("a")
	require.True(t, ok)
	items, ok := a.AsArray()
	require.True(t, ok)
	require.Len(t, items, 4)
	assert.Equal(t, KindNumber, items[0].Kind())
	assert.Equal(t, KindNull, items[3].Kind())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,"x",true,null]}`, string(out))
}

func TestEqualIsKindStrict(t *testing.T) {
	assert.False(t, Equal(String("1"), Number(1)))
	assert.False(t, Equal(Bool(true), String("true")))
	assert.True(t, Equal(Array(Number(1)), Array(Number(1))))
	assert.True(t, Equal(Null(), Null()))
}
