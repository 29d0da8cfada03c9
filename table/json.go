package table

import (
	"errors"
	"fmt"
	"math"
)

// ColumnSpec is the wire form of a Column, e.g. {"Name": "x", "Type": "list(long)"}.
type ColumnSpec struct {
	Name string `validate:"required"`
	Type string `validate:"required"`
}

var ErrJSONValue = errors.New("JSON value does not fit column type")

func LayoutFromSpecs(specs []ColumnSpec) (Layout, error) {
	cols := make([]Column, len(specs))
	for i, s := range specs {
		ct, err := ParseColumnType(s.Type)
		if err != nil {
			return Layout{}, fmt.Errorf("error parsing type of column %q: %w", s.Name, err)
		}
		cols[i] = Column{Name: s.Name, Type: ct}
	}
	return NewLayout(cols...)
}

func (l Layout) Specs() []ColumnSpec {
	specs := make([]ColumnSpec, len(l.columns))
	for i, c := range l.columns {
		specs[i] = ColumnSpec{Name: c.Name, Type: c.Type.String()}
	}
	return specs
}

// CellFromJSON coerces a decoded JSON value (float64, string, bool, []any or
// nil) into a cell of type ct. nil becomes a missing cell.
func CellFromJSON(ct ColumnType, v any) (Cell, error) {
	if v == nil {
		return Missing(), nil
	}
	switch ct.Kind {
	case KindBoolean:
		if b, ok := v.(bool); ok {
			return ValueOf(b), nil
		}
	case KindInteger:
		if f, ok := toFloat(v); ok && f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
			return ValueOf(int32(f)), nil
		}
	case KindLong:
		if i, ok := v.(int64); ok {
			return ValueOf(i), nil
		}
		if f, ok := toFloat(v); ok && f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return ValueOf(int64(f)), nil
		}
	case KindDouble:
		if f, ok := toFloat(v); ok {
			return ValueOf(f), nil
		}
	case KindString:
		if s, ok := v.(string); ok {
			return ValueOf(s), nil
		}
	case KindList:
		arr, ok := v.([]any)
		if !ok || ct.Elem == nil {
			break
		}
		cells := make([]Cell, len(arr))
		for i, item := range arr {
			c, err := CellFromJSON(*ct.Elem, item)
			if err != nil {
				return Cell{}, fmt.Errorf("error in list element %d: %w", i, err)
			}
			cells[i] = c
		}
		return ValueOf(cells), nil
	}
	return Cell{}, fmt.Errorf("%w: %v (%T) as %s", ErrJSONValue, v, v, ct)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// JSONValue is the inverse of CellFromJSON: nil for missing cells, []any for lists.
func (c Cell) JSONValue() any {
	if !c.present {
		return nil
	}
	if cells, ok := c.value.([]Cell); ok {
		out := make([]any, len(cells))
		for i, item := range cells {
			out[i] = item.JSONValue()
		}
		return out
	}
	return c.value
}

// JSONValues returns the row's cells as JSON values in column order.
func (r Row) JSONValues() []any {
	out := make([]any, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.JSONValue()
	}
	return out
}

// Map returns the row keyed by column name, with missing cells as nil.
func (r Row) Map(l Layout) map[string]any {
	m := make(map[string]any, len(r.Cells))
	for i, c := range r.Cells {
		m[l.Column(i).Name] = c.JSONValue()
	}
	return m
}
