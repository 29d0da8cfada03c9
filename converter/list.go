package converter

import (
	"fmt"

	"github.com/danthegoodman1/icescore/schema"
	"github.com/danthegoodman1/icescore/table"
)

// listConverter maps array schemas onto list columns, delegating elements
// back to the registry.
type listConverter struct{}

func NewListConverter() Converter { return listConverter{} }

func (listConverter) SchemaType() schema.Type { return schema.Array }
func (listConverter) ColumnKind() table.Kind  { return table.KindList }
func (listConverter) OneWay() bool            { return false }

func (listConverter) ColumnType(s *schema.Schema, r *Registry) (table.ColumnType, error) {
	elem, err := r.ColumnTypeFor(s.Items)
	if err != nil {
		return table.ColumnType{}, fmt.Errorf("error in list element: %w", err)
	}
	return table.ListOf(elem), nil
}

func (listConverter) Schema(ct table.ColumnType, r *Registry) (*schema.Schema, error) {
	if ct.Elem == nil {
		return nil, fmt.Errorf("%w: list column without element type", ErrNoConverterRegistered)
	}
	items, err := r.SchemaFor(*ct.Elem)
	if err != nil {
		return nil, fmt.Errorf("error in list element: %w", err)
	}
	return schema.NewArray(items), nil
}

func (listConverter) Accepts(ct table.ColumnType, target *schema.Schema, r *Registry) (bool, error) {
	if ct.Kind != table.KindList {
		return false, nil
	}
	if ct.Elem == nil {
		return true, nil
	}
	return r.Compatible(*ct.Elem, target.Items)
}

func (listConverter) NewInputFunc(ct table.ColumnType, target *schema.Schema, r *Registry) (InputFunc, error) {
	if ct.Kind != table.KindList || ct.Elem == nil {
		return nil, fmt.Errorf("%w: %s to %s", ErrIncompatibleColumn, ct, target.Type)
	}
	elem, err := r.InputConverter(*ct.Elem, target.Items)
	if err != nil {
		return nil, fmt.Errorf("error in list element: %w", err)
	}
	return func(c table.Cell) (any, error) {
		cells, ok := c.Value().([]table.Cell)
		if !ok {
			return nil, fmt.Errorf("%w: expected list cell, got %T", ErrUnexpectedValue, c.Value())
		}
		out := make([]any, len(cells))
		for i, item := range cells {
			v, err := elem(item)
			if err != nil {
				return nil, fmt.Errorf("error in list element %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}, nil
}

func (listConverter) NewOutputFunc(s *schema.Schema, r *Registry) (OutputFunc, error) {
	elem, err := r.OutputConverter(s.Items)
	if err != nil {
		return nil, fmt.Errorf("error in list element: %w", err)
	}
	return func(v any) (table.Cell, error) {
		arr, ok := v.([]any)
		if !ok {
			return table.Cell{}, fmt.Errorf("%w: expected array result, got %T", ErrUnexpectedValue, v)
		}
		cells := make([]table.Cell, len(arr))
		for i, item := range arr {
			c, err := elem(item)
			if err != nil {
				return table.Cell{}, fmt.Errorf("error in list element %d: %w", i, err)
			}
			cells[i] = c
		}
		return table.ValueOf(cells), nil
	}, nil
}
