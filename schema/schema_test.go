package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	s, err := ParseJSON([]byte(`{
		"type": "record",
		"name": "Point",
		"fields": [
			{"name": "x", "type": "double"},
			{"name": "tags", "type": {"type": "array", "items": "string"}},
			{"name": "extra", "type": ["null", {"type": "map", "values": "long"}]}
		]
	}`))
	require.NoError(t, err)

	expected := NewRecord("Point",
		NewField("x", Primitive(Double)),
		NewField("tags", NewArray(Primitive(String))),
		NewField("extra", NewUnion(Primitive(Null), NewMap(Primitive(Long)))),
	)
	if !s.Equal(expected) {
		t.Fatalf("unexpected schema %s", s)
	}
	assert.Equal(t, []string{"x", "tags", "extra"}, s.FieldNames())
	assert.True(t, s.Fields[2].Schema.IsNullable())
	assert.False(t, s.Fields[0].Schema.IsNullable())
}

func TestRoundTrip(t *testing.T) {
	in := `{"type":"record","name":"Out","fields":[{"name":"a","type":["int","null"]},{"name":"b","type":{"items":"boolean","type":"array"}}]}`
	s, err := ParseJSON([]byte(in))
	require.NoError(t, err)

	again, err := ParseJSON([]byte(s.String()))
	require.NoError(t, err)
	assert.True(t, s.Equal(again))
	assert.Equal(t, "Out", again.Name)
}

func TestNamedReferences(t *testing.T) {
	p := NewParser()
	_, err := p.Parse([]byte(`{"type": "record", "name": "Inner", "fields": [{"name": "v", "type": "int"}]}`))
	require.NoError(t, err)

	outer, err := p.Parse([]byte(`{"type": "record", "name": "Outer", "fields": [{"name": "i", "type": "Inner"}]}`))
	require.NoError(t, err)
	assert.Equal(t, Record, outer.Fields[0].Schema.Type)
	assert.Equal(t, "Inner", outer.Fields[0].Schema.Name)

	_, err = ParseJSON([]byte(`"Inner"`))
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestParseErrors(t *testing.T) {
	cases := map[string]error{
		`{"type": "array"}`: ErrInvalidSchema,
		`{"type": "map"}`:   ErrInvalidSchema,
		`{"name": "x"}`:     ErrInvalidSchema,
		`"decimal"`:         ErrUnknownType,
		`42`:                ErrInvalidSchema,
		`{"type": "record", "name": "R", "fields": [{"name": "a", "type": "int"}, {"name": "a", "type": "int"}]}`: ErrInvalidSchema,
	}
	for in, expected := range cases {
		_, err := ParseJSON([]byte(in))
		if !errors.Is(err, expected) {
			t.Fatalf("%s: expected %v, got %v", in, expected, err)
		}
	}
}

func TestEqual(t *testing.T) {
	a := NewRecord("A", NewField("x", Primitive(Int)))
	b := NewRecord("B", NewField("x", Primitive(Int)))
	c := NewRecord("A", NewField("y", Primitive(Int)))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, Nullable(Primitive(Int)).Equal(NewUnion(Primitive(Null), Primitive(Int))))
	assert.False(t, NewArray(Primitive(Int)).Equal(NewArray(Primitive(Long))))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "mapping map to double", Summary(NewMap(Primitive(Double)), Primitive(Double)))
	assert.Equal(t, "mapping record to union", Summary(NewRecord("R"), Nullable(Primitive(Long))))
}
