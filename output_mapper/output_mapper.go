package output_mapper

import (
	"fmt"

	"github.com/danthegoodman1/icescore/converter"
	"github.com/danthegoodman1/icescore/schema"
	"github.com/danthegoodman1/icescore/scoring"
	"github.com/danthegoodman1/icescore/table"
	"github.com/danthegoodman1/icescore/utils"
)

type (
	// Fixed converts results of a schema with a static layout: records become
	// one cell per field, scalars a single cell.
	Fixed struct {
		schema  *schema.Schema
		layout  table.Layout
		convert func(any) ([]table.Cell, error)
	}

	// Dynamic caches map results and derives the layout from the union of
	// their keys once every result is in.
	Dynamic struct {
		valueType table.ColumnType
		convert   converter.OutputFunc
		keys      *KeyAccumulator
		results   []cachedResult
		byKey     map[string]int
	}

	cachedResult struct {
		key   string
		cells map[string]table.Cell
	}
)

var (
	ErrUnsupportedNestedComposite = utils.PermError("Nested Map and Record types are currently not supported")
	ErrNotDynamic                 = utils.PermError("output schema has a static layout")
)

// NewFixed returns ok == false when s is a map schema and needs NewDynamic.
func NewFixed(reg *converter.Registry, s *schema.Schema, defaultColumn string) (*Fixed, bool, error) {
	layout, ok, err := reg.LayoutFromSchema(s, defaultColumn)
	if err != nil || !ok {
		return nil, false, err
	}
	f := &Fixed{schema: s, layout: layout}

	if s.Type == schema.Record {
		convs := make([]converter.OutputFunc, len(s.Fields))
		for i, field := range s.Fields {
			conv, err := reg.OutputConverter(field.Schema)
			if err != nil {
				return nil, false, fmt.Errorf("error building converter for field %q: %w", field.Name, err)
			}
			convs[i] = conv
		}
		f.convert = func(result any) ([]table.Cell, error) {
			rec, ok := result.(*scoring.Record)
			if !ok {
				return nil, fmt.Errorf("%w: expected record result, got %T", converter.ErrUnexpectedValue, result)
			}
			if rec.NumFields() != len(convs) {
				return nil, fmt.Errorf("%w: record has %d fields, schema has %d", converter.ErrSchemaLayoutMismatch, rec.NumFields(), len(convs))
			}
			cells := make([]table.Cell, len(convs))
			for i, conv := range convs {
				c, err := conv(rec.At(i))
				if err != nil {
					return nil, fmt.Errorf("error converting field %q: %w", s.Fields[i].Name, err)
				}
				cells[i] = c
			}
			return cells, nil
		}
		return f, true, nil
	}

	conv, err := reg.OutputConverter(s)
	if err != nil {
		return nil, false, err
	}
	f.convert = func(result any) ([]table.Cell, error) {
		c, err := conv(result)
		if err != nil {
			return nil, err
		}
		return []table.Cell{c}, nil
	}
	return f, true, nil
}

func (f *Fixed) Layout() table.Layout { return f.layout }

// Row converts one result into an output row with the given key.
func (f *Fixed) Row(key string, result any) (table.Row, error) {
	cells, err := f.convert(result)
	if err != nil {
		return table.Row{}, fmt.Errorf("error converting result for row %q: %w", key, err)
	}
	return table.NewRow(key, cells...), nil
}

func NewDynamic(reg *converter.Registry, s *schema.Schema) (*Dynamic, error) {
	if s.Type != schema.Map {
		return nil, fmt.Errorf("%w: %s", ErrNotDynamic, s.Type)
	}
	inner, err := reg.ResolveNullable(s.Values)
	if err != nil {
		return nil, err
	}
	if inner.Type == schema.Map || inner.Type == schema.Record {
		return nil, ErrUnsupportedNestedComposite
	}
	ct, err := reg.ColumnTypeFor(s.Values)
	if err != nil {
		return nil, err
	}
	conv, err := reg.OutputConverter(s.Values)
	if err != nil {
		return nil, err
	}
	return &Dynamic{
		valueType: ct,
		convert:   conv,
		keys:      NewKeyAccumulator(),
		byKey:     make(map[string]int),
	}, nil
}

// Add converts and caches one map result. A result for a row key that was
// already added replaces the earlier one in place, and the keys only it
// contributed are dropped from the layout.
func (d *Dynamic) Add(key string, result any) error {
	m, ok := result.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: expected map result for row %q, got %T", converter.ErrUnexpectedValue, key, result)
	}
	cells := make(map[string]table.Cell, len(m))
	for k, v := range m {
		c, err := d.convert(v)
		if err != nil {
			return fmt.Errorf("error converting key %q of row %q: %w", k, key, err)
		}
		cells[k] = c
	}
	cr := cachedResult{key: key, cells: cells}
	if i, exists := d.byKey[key]; exists {
		d.results[i] = cr
		d.rebuildKeys()
		return nil
	}
	d.keys.writeCells(cells)
	d.byKey[key] = len(d.results)
	d.results = append(d.results, cr)
	return nil
}

// rebuildKeys replays the cached results so first-seen order is kept.
func (d *Dynamic) rebuildKeys() {
	d.keys = NewKeyAccumulator()
	for _, cr := range d.results {
		d.keys.writeCells(cr.cells)
	}
}

func (d *Dynamic) Size() int { return len(d.results) }

// Layout has one column per accumulated key, all of the value type.
func (d *Dynamic) Layout() table.Layout {
	keys := d.keys.Keys()
	cols := make([]table.Column, len(keys))
	for i, k := range keys {
		cols[i] = table.Column{Name: k, Type: d.valueType}
	}
	// keys are unique
	return table.MustLayout(cols...)
}

// Rows returns the cached results in insertion order, filling keys a result
// did not contain with missing cells.
func (d *Dynamic) Rows() []table.Row {
	keys := d.keys.Keys()
	rows := make([]table.Row, len(d.results))
	for i, cr := range d.results {
		cells := make([]table.Cell, len(keys))
		for j, k := range keys {
			if c, ok := cr.cells[k]; ok {
				cells[j] = c
			} else {
				cells[j] = table.Missing()
			}
		}
		rows[i] = table.NewRow(cr.key, cells...)
	}
	return rows
}

// Reset drops every cached result.
func (d *Dynamic) Reset() {
	d.results = nil
	d.byKey = make(map[string]int)
	d.keys = NewKeyAccumulator()
}
