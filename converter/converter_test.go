package converter

import (
	"errors"
	"testing"

	"github.com/danthegoodman1/icescore/schema"
	"github.com/danthegoodman1/icescore/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	boolS   = schema.Primitive(schema.Boolean)
	intS    = schema.Primitive(schema.Int)
	longS   = schema.Primitive(schema.Long)
	floatS  = schema.Primitive(schema.Float)
	doubleS = schema.Primitive(schema.Double)
	stringS = schema.Primitive(schema.String)
)

func TestResolveNullable(t *testing.T) {
	r := NewRegistry()

	s, err := r.ResolveNullable(schema.Nullable(intS))
	require.NoError(t, err)
	assert.Equal(t, schema.Int, s.Type)

	s, err = r.ResolveNullable(stringS)
	require.NoError(t, err)
	assert.Same(t, stringS, s)

	_, err = r.ResolveNullable(schema.NewUnion(intS, stringS, schema.Primitive(schema.Null)))
	assert.True(t, errors.Is(err, ErrUnsupportedUnionShape))

	_, err = r.ResolveNullable(schema.NewUnion(schema.Primitive(schema.Null)))
	assert.True(t, errors.Is(err, ErrNullOnlyUnion))

	_, err = r.ResolveNullable(schema.NewUnion(schema.Nullable(intS)))
	assert.True(t, errors.Is(err, ErrUnsupportedUnionShape))
}

func TestColumnTypeFor(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		s  *schema.Schema
		ct table.ColumnType
	}{
		{boolS, table.BooleanType},
		{intS, table.IntegerType},
		{longS, table.LongType},
		{floatS, table.DoubleType},
		{doubleS, table.DoubleType},
		{schema.Nullable(stringS), table.StringType},
		{schema.NewArray(schema.Nullable(longS)), table.ListOf(table.LongType)},
		{schema.NewArray(schema.NewArray(doubleS)), table.ListOf(table.ListOf(table.DoubleType))},
	}
	for _, c := range cases {
		ct, err := r.ColumnTypeFor(c.s)
		require.NoError(t, err, c.s.String())
		assert.True(t, c.ct.Equal(ct), "%s: expected %s got %s", c.s, c.ct, ct)
	}

	_, err := r.ColumnTypeFor(schema.NewMap(intS))
	assert.True(t, errors.Is(err, ErrNoConverterRegistered))
}

func TestSchemaForNeverFloat(t *testing.T) {
	r := NewRegistry()
	s, err := r.SchemaFor(table.DoubleType)
	require.NoError(t, err)
	inner, nullable, err := Unwrap(s)
	require.NoError(t, err)
	assert.True(t, nullable)
	assert.Equal(t, schema.Double, inner.Type)

	s, err = r.SchemaFor(table.ListOf(table.IntegerType))
	require.NoError(t, err)
	inner, _, err = Unwrap(s)
	require.NoError(t, err)
	assert.Equal(t, schema.Array, inner.Type)
	assert.True(t, inner.Items.Equal(schema.Nullable(intS)))

	_, err = r.SchemaFor(table.ColumnType{Kind: table.KindInvalid})
	assert.True(t, errors.Is(err, ErrNoConverterRegistered))
}

func TestRoundTrip(t *testing.T) {
	r := NewRegistry()
	cases := []struct {
		s *schema.Schema
		v any
	}{
		{boolS, true},
		{intS, int32(-7)},
		{longS, int64(1) << 40},
		{doubleS, 3.25},
		{stringS, "hey"},
		{schema.NewArray(longS), []any{int64(1), int64(2)}},
		{schema.NewArray(schema.Nullable(stringS)), []any{"a", nil}},
	}
	for _, c := range cases {
		ct, err := r.ColumnTypeFor(c.s)
		require.NoError(t, err)
		out, err := r.OutputConverter(c.s)
		require.NoError(t, err)
		in, err := r.InputConverter(ct, c.s)
		require.NoError(t, err)

		cell, err := out(c.v)
		require.NoError(t, err)
		back, err := in(cell)
		require.NoError(t, err)
		assert.Equal(t, c.v, back, c.s.String())

		again, err := out(back)
		require.NoError(t, err)
		assert.Equal(t, cell, again)
	}
}

func TestFloatIsOneWay(t *testing.T) {
	r := NewRegistry()
	out, err := r.OutputConverter(floatS)
	require.NoError(t, err)
	cell, err := out(float32(1.5))
	require.NoError(t, err)
	assert.Equal(t, 1.5, cell.Value())

	in, err := r.InputConverter(table.DoubleType, schema.Nullable(floatS))
	require.NoError(t, err)
	_, err = in(cell)
	assert.True(t, errors.Is(err, ErrOneWayConversionUnsupported))

	// missing still maps to null
	v, err := in(table.Missing())
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMissingAndNull(t *testing.T) {
	r := NewRegistry()

	in, err := r.InputConverter(table.IntegerType, schema.Nullable(intS))
	require.NoError(t, err)
	v, err := in(table.Missing())
	require.NoError(t, err)
	assert.Nil(t, v)

	in, err = r.InputConverter(table.IntegerType, intS)
	require.NoError(t, err)
	_, err = in(table.Missing())
	assert.True(t, errors.Is(err, ErrMissingValue))

	out, err := r.OutputConverter(schema.Nullable(stringS))
	require.NoError(t, err)
	c, err := out(nil)
	require.NoError(t, err)
	assert.True(t, c.IsMissing())

	out, err = r.OutputConverter(stringS)
	require.NoError(t, err)
	_, err = out(nil)
	assert.True(t, errors.Is(err, ErrMissingValue))
}

func TestWideningInput(t *testing.T) {
	r := NewRegistry()

	in, err := r.InputConverter(table.IntegerType, doubleS)
	require.NoError(t, err)
	v, err := in(table.ValueOf(int32(3)))
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	in, err = r.InputConverter(table.BooleanType, longS)
	require.NoError(t, err)
	v, err = in(table.ValueOf(true))
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = r.InputConverter(table.DoubleType, intS)
	assert.True(t, errors.Is(err, ErrIncompatibleColumn))

	_, err = r.InputConverter(table.StringType, doubleS)
	assert.True(t, errors.Is(err, ErrIncompatibleColumn))
}

func TestLayoutFromSchema(t *testing.T) {
	r := NewRegistry()

	rec := schema.NewRecord("Out",
		schema.NewField("a", schema.Nullable(longS)),
		schema.NewField("b", schema.NewArray(stringS)),
	)
	layout, ok, err := r.LayoutFromSchema(rec, "Prediction")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, layout.ColumnNames())
	assert.True(t, layout.Column(1).Type.Equal(table.ListOf(table.StringType)))

	layout, ok, err = r.LayoutFromSchema(schema.Nullable(doubleS), "Prediction")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Prediction"}, layout.ColumnNames())

	_, ok, err = r.LayoutFromSchema(schema.NewMap(longS), "Prediction")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSchemaFromLayout(t *testing.T) {
	r := NewRegistry()
	layout := table.MustLayout(
		table.Column{Name: "x", Type: table.IntegerType},
		table.Column{Name: "y", Type: table.ListOf(table.DoubleType)},
	)
	s, err := r.SchemaFromLayout(layout)
	require.NoError(t, err)
	require.Equal(t, schema.Record, s.Type)
	assert.Equal(t, []string{"x", "y"}, s.FieldNames())
	for _, f := range s.Fields {
		assert.True(t, f.Schema.IsNullable(), f.Name)
	}

	// schema and layout describe each other
	back, ok, err := r.LayoutFromSchema(s, "Prediction")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, layout.Equal(back))
}

func TestIsApplicableRecord(t *testing.T) {
	r := NewRegistry()
	s := schema.NewRecord("In",
		schema.NewField("x", schema.Nullable(doubleS)),
		schema.NewField("y", stringS),
	)
	base := []table.Column{
		{Name: "x", Type: table.IntegerType},
		{Name: "y", Type: table.StringType},
	}

	ok, err := r.IsApplicable(s, table.MustLayout(base...))
	require.NoError(t, err)
	assert.True(t, ok)

	// an unrelated column never changes the answer
	for _, extra := range []table.ColumnType{table.BooleanType, table.StringType, table.ListOf(table.LongType)} {
		ok, err = r.IsApplicable(s, table.MustLayout(append(base, table.Column{Name: "z", Type: extra})...))
		require.NoError(t, err)
		assert.True(t, ok)
	}

	// removing a field's column always fails
	ok, err = r.IsApplicable(s, table.MustLayout(base[1:]...))
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = r.IsApplicable(s, table.MustLayout(base[:1]...))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.IsApplicable(s, table.MustLayout(
		table.Column{Name: "x", Type: table.StringType},
		table.Column{Name: "y", Type: table.StringType},
	))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsApplicableMapAndScalar(t *testing.T) {
	r := NewRegistry()
	m := schema.NewMap(schema.Nullable(doubleS))

	ok, err := r.IsApplicable(m, table.MustLayout(
		table.Column{Name: "a", Type: table.DoubleType},
		table.Column{Name: "b", Type: table.LongType},
	))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsApplicable(m, table.MustLayout(
		table.Column{Name: "a", Type: table.DoubleType},
		table.Column{Name: "s", Type: table.StringType},
	))
	require.NoError(t, err)
	assert.False(t, ok)

	layout := table.MustLayout(
		table.Column{Name: "s", Type: table.StringType},
		table.Column{Name: "n", Type: table.LongType},
	)
	ok, err = r.IsApplicable(longS, layout)
	require.NoError(t, err)
	assert.True(t, ok)
	idx, err := r.FirstCompatibleColumn(longS, layout)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	ok, err = r.IsApplicable(boolS, layout)
	require.NoError(t, err)
	assert.False(t, ok)
}
