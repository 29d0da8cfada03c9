package table

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	l, err := NewLayout(Column{Name: "a", Type: LongType}, Column{Name: "b", Type: ListOf(StringType)})
	require.NoError(t, err)
	assert.Equal(t, 2, l.NumColumns())
	assert.Equal(t, 1, l.ColumnIndex("b"))
	assert.Equal(t, -1, l.ColumnIndex("c"))
	assert.Equal(t, []string{"a", "b"}, l.ColumnNames())
	assert.True(t, l.Equal(MustLayout(Column{Name: "a", Type: LongType}, Column{Name: "b", Type: ListOf(StringType)})))
	assert.False(t, l.Equal(MustLayout(Column{Name: "a", Type: LongType}, Column{Name: "b", Type: ListOf(LongType)})))

	_, err = NewLayout(Column{Name: "a", Type: LongType}, Column{Name: "a", Type: DoubleType})
	assert.True(t, errors.Is(err, ErrDuplicateColumn))
}

func TestParseColumnType(t *testing.T) {
	for _, name := range []string{"boolean", "int", "long", "double", "string", "list(long)", "list(list(string))"} {
		ct, err := ParseColumnType(name)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, name, ct.String())
	}
	for _, name := range []string{"list", "list()", "decimal", ""} {
		_, err := ParseColumnType(name)
		assert.True(t, errors.Is(err, ErrUnknownColumnType), name)
	}
}

func TestConvertibleTo(t *testing.T) {
	assert.True(t, BooleanType.ConvertibleTo(DoubleType))
	assert.True(t, IntegerType.ConvertibleTo(LongType))
	assert.True(t, LongType.ConvertibleTo(DoubleType))
	assert.False(t, DoubleType.ConvertibleTo(LongType))
	assert.False(t, StringType.ConvertibleTo(DoubleType))
	assert.False(t, LongType.ConvertibleTo(IntegerType))
	assert.True(t, ListOf(IntegerType).ConvertibleTo(ListOf(DoubleType)))
	assert.False(t, ListOf(DoubleType).ConvertibleTo(ListOf(IntegerType)))
	assert.False(t, ListOf(DoubleType).ConvertibleTo(DoubleType))
}

func TestContainer(t *testing.T) {
	c := NewContainer(MustLayout(Column{Name: "a", Type: LongType}))
	require.NoError(t, c.AddRow(NewRow("Row0", ValueOf(int64(1)))))
	err := c.AddRow(NewRow("Row1", ValueOf(int64(1)), Missing()))
	assert.True(t, errors.Is(err, ErrRowWidth))
	assert.Equal(t, 1, c.Size())

	tbl := c.Close()
	assert.Equal(t, 1, tbl.NumRows())
	assert.True(t, errors.Is(c.AddRow(NewRow("Row2", Missing())), ErrContainerClosed))

	d := NewContainer(MustLayout(Column{Name: "a", Type: LongType}))
	require.NoError(t, d.AddRow(NewRow("Row0", Missing())))
	d.Discard()
	assert.Equal(t, 0, d.Size())
	assert.True(t, errors.Is(d.AddRow(NewRow("Row1", Missing())), ErrContainerClosed))
}

func TestCellFromJSON(t *testing.T) {
	c, err := CellFromJSON(IntegerType, 3.0)
	require.NoError(t, err)
	assert.Equal(t, int32(3), c.Value())

	c, err = CellFromJSON(LongType, float64(1<<40))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), c.Value())

	c, err = CellFromJSON(DoubleType, nil)
	require.NoError(t, err)
	assert.True(t, c.IsMissing())

	c, err = CellFromJSON(ListOf(DoubleType), []any{1.5, nil})
	require.NoError(t, err)
	assert.Equal(t, []any{1.5, nil}, c.JSONValue())

	_, err = CellFromJSON(IntegerType, 1.5)
	assert.True(t, errors.Is(err, ErrJSONValue))
	_, err = CellFromJSON(IntegerType, float64(1<<40))
	assert.True(t, errors.Is(err, ErrJSONValue))
	_, err = CellFromJSON(StringType, 1.0)
	assert.True(t, errors.Is(err, ErrJSONValue))
	_, err = CellFromJSON(ListOf(LongType), []any{"x"})
	assert.True(t, errors.Is(err, ErrJSONValue))
}

func TestCellFromJSONLongBounds(t *testing.T) {
	// 2^63 rounds to a float64 that no int64 can hold
	_, err := CellFromJSON(LongType, math.Ldexp(1, 63))
	assert.True(t, errors.Is(err, ErrJSONValue))

	c, err := CellFromJSON(LongType, -math.Ldexp(1, 63))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), c.Value())
}

func TestSpecs(t *testing.T) {
	specs := []ColumnSpec{{Name: "a", Type: "int"}, {Name: "b", Type: "list(double)"}}
	l, err := LayoutFromSpecs(specs)
	require.NoError(t, err)
	assert.Equal(t, specs, l.Specs())

	row := NewRow("Row0", ValueOf(int32(2)), Missing())
	assert.Equal(t, map[string]any{"a": int32(2), "b": nil}, row.Map(l))
	assert.Equal(t, []any{int32(2), nil}, row.JSONValues())
}
