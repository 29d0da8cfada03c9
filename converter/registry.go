package converter

import (
	"fmt"
	"sync"

	"github.com/danthegoodman1/icescore/schema"
	"github.com/danthegoodman1/icescore/table"
)

// Registry looks converters up by schema type and by column kind. One-way
// converters are only reachable by schema type.
type Registry struct {
	mu           sync.RWMutex
	bySchemaType map[schema.Type]Converter
	byColumnKind map[table.Kind]Converter
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process wide registry with the built-in converters.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry returns a registry with the built-in converters.
func NewRegistry() *Registry {
	r := &Registry{
		bySchemaType: make(map[schema.Type]Converter),
		byColumnKind: make(map[table.Kind]Converter),
	}
	// Register any new converters here
	r.Register(NewBooleanConverter())
	r.Register(NewDoubleConverter())
	r.Register(NewFloatConverter())
	r.Register(NewIntConverter())
	r.Register(NewListConverter())
	r.Register(NewLongConverter())
	r.Register(NewStringConverter())
	return r
}

func (r *Registry) Register(c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !c.OneWay() {
		r.byColumnKind[c.ColumnKind()] = c
	}
	r.bySchemaType[c.SchemaType()] = c
}

// ResolveNullable unwraps a nullable union to its single non-null branch.
// Other schemas are returned as they are.
func (r *Registry) ResolveNullable(s *schema.Schema) (*schema.Schema, error) {
	inner, _, err := Unwrap(s)
	return inner, err
}

// Unwrap is ResolveNullable that also reports whether s admits null.
func Unwrap(s *schema.Schema) (inner *schema.Schema, nullable bool, err error) {
	if s.Type != schema.Union {
		return s, s.Type == schema.Null, nil
	}
	for _, b := range s.Branches {
		switch {
		case b.Type == schema.Null:
			nullable = true
		case inner != nil || b.Type == schema.Union:
			return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedUnionShape, s)
		default:
			inner = b
		}
	}
	if inner == nil {
		return nil, false, fmt.Errorf("%w: %s", ErrNullOnlyUnion, s)
	}
	return inner, nullable, nil
}

func (r *Registry) forSchema(s *schema.Schema) (Converter, error) {
	r.mu.RLock()
	conv, ok := r.bySchemaType[s.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: for schema type %s", ErrNoConverterRegistered, s.Type)
	}
	return conv, nil
}

func (r *Registry) forColumn(ct table.ColumnType) (Converter, error) {
	r.mu.RLock()
	conv, ok := r.byColumnKind[ct.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: for column type %s", ErrNoConverterRegistered, ct)
	}
	return conv, nil
}

func (r *Registry) ColumnTypeFor(s *schema.Schema) (table.ColumnType, error) {
	inner, err := r.ResolveNullable(s)
	if err != nil {
		return table.ColumnType{}, err
	}
	conv, err := r.forSchema(inner)
	if err != nil {
		return table.ColumnType{}, err
	}
	return conv.ColumnType(inner, r)
}

// SchemaFor returns the nullable schema for values of a column type, since
// any cell may be missing.
func (r *Registry) SchemaFor(ct table.ColumnType) (*schema.Schema, error) {
	conv, err := r.forColumn(ct)
	if err != nil {
		return nil, err
	}
	s, err := conv.Schema(ct, r)
	if err != nil {
		return nil, err
	}
	return schema.Nullable(s), nil
}

// Compatible reports whether a column of type ct can be read as target.
func (r *Registry) Compatible(ct table.ColumnType, target *schema.Schema) (bool, error) {
	inner, err := r.ResolveNullable(target)
	if err != nil {
		return false, err
	}
	conv, err := r.forSchema(inner)
	if err != nil {
		return false, err
	}
	return conv.Accepts(ct, inner, r)
}

// InputConverter builds the cell to scoring value function for one column.
func (r *Registry) InputConverter(ct table.ColumnType, target *schema.Schema) (InputFunc, error) {
	inner, nullable, err := Unwrap(target)
	if err != nil {
		return nil, err
	}
	conv, err := r.forSchema(inner)
	if err != nil {
		return nil, err
	}
	f, err := conv.NewInputFunc(ct, inner, r)
	if err != nil {
		return nil, err
	}
	return func(c table.Cell) (any, error) {
		if c.IsMissing() {
			if nullable {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrMissingValue, target)
		}
		return f(c)
	}, nil
}

// OutputConverter builds the scoring value to cell function for one schema.
func (r *Registry) OutputConverter(s *schema.Schema) (OutputFunc, error) {
	inner, nullable, err := Unwrap(s)
	if err != nil {
		return nil, err
	}
	conv, err := r.forSchema(inner)
	if err != nil {
		return nil, err
	}
	f, err := conv.NewOutputFunc(inner, r)
	if err != nil {
		return nil, err
	}
	return func(v any) (table.Cell, error) {
		if v == nil {
			if nullable {
				return table.Missing(), nil
			}
			return table.Cell{}, fmt.Errorf("%w: %s", ErrMissingValue, s)
		}
		return f(v)
	}, nil
}

// LayoutFromSchema derives the output layout of a schema. Records produce one
// column per field, scalars a single column named defaultColumn. Maps have no
// static layout and return ok == false.
func (r *Registry) LayoutFromSchema(s *schema.Schema, defaultColumn string) (layout table.Layout, ok bool, err error) {
	switch s.Type {
	case schema.Record:
		cols := make([]table.Column, len(s.Fields))
		for i, f := range s.Fields {
			ct, err := r.ColumnTypeFor(f.Schema)
			if err != nil {
				return table.Layout{}, false, fmt.Errorf("error in field %q: %w", f.Name, err)
			}
			cols[i] = table.Column{Name: f.Name, Type: ct}
		}
		layout, err = table.NewLayout(cols...)
		return layout, err == nil, err
	case schema.Map:
		return table.Layout{}, false, nil
	default:
		ct, err := r.ColumnTypeFor(s)
		if err != nil {
			return table.Layout{}, false, err
		}
		layout, err = table.NewLayout(table.Column{Name: defaultColumn, Type: ct})
		return layout, err == nil, err
	}
}

// SchemaFromLayout describes a table layout as a record with one nullable
// field per column.
func (r *Registry) SchemaFromLayout(layout table.Layout) (*schema.Schema, error) {
	fields := make([]schema.Field, layout.NumColumns())
	for i := 0; i < layout.NumColumns(); i++ {
		col := layout.Column(i)
		s, err := r.SchemaFor(col.Type)
		if err != nil {
			return nil, fmt.Errorf("error in column %q: %w", col.Name, err)
		}
		fields[i] = schema.NewField(col.Name, s)
	}
	return schema.NewRecord("Input", fields...), nil
}

// IsApplicable checks whether an engine with the given input schema can read
// rows of layout. Record fields need a same named compatible column, map
// schemas need every column compatible with the value schema and scalars need
// at least one compatible column.
func (r *Registry) IsApplicable(s *schema.Schema, layout table.Layout) (bool, error) {
	switch s.Type {
	case schema.Record:
		for _, f := range s.Fields {
			idx := layout.ColumnIndex(f.Name)
			if idx < 0 {
				return false, nil
			}
			ok, err := r.Compatible(layout.Column(idx).Type, f.Schema)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case schema.Map:
		for i := 0; i < layout.NumColumns(); i++ {
			ok, err := r.Compatible(layout.Column(i).Type, s.Values)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	default:
		idx, err := r.FirstCompatibleColumn(s, layout)
		return idx >= 0, err
	}
}

// FirstCompatibleColumn returns the index of the first column that can be
// read as s, or -1.
func (r *Registry) FirstCompatibleColumn(s *schema.Schema, layout table.Layout) (int, error) {
	for i := 0; i < layout.NumColumns(); i++ {
		ok, err := r.Compatible(layout.Column(i).Type, s)
		if err != nil {
			return -1, err
		}
		if ok {
			return i, nil
		}
	}
	return -1, nil
}
