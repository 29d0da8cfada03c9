package converter

import (
	"fmt"

	"github.com/danthegoodman1/icescore/schema"
	"github.com/danthegoodman1/icescore/table"
)

// primitiveConverter covers every scalar schema type. read widens a native
// cell value into the scoring value, write narrows nothing and only maps a
// scoring value onto its native cell value.
type primitiveConverter struct {
	schemaType schema.Type
	kind       table.Kind
	oneWay     bool
	read       func(v any) (any, bool)
	write      func(v any) (any, bool)
}

func (p *primitiveConverter) SchemaType() schema.Type { return p.schemaType }
func (p *primitiveConverter) ColumnKind() table.Kind  { return p.kind }
func (p *primitiveConverter) OneWay() bool            { return p.oneWay }

func (p *primitiveConverter) ColumnType(*schema.Schema, *Registry) (table.ColumnType, error) {
	return table.ColumnType{Kind: p.kind}, nil
}

func (p *primitiveConverter) Schema(table.ColumnType, *Registry) (*schema.Schema, error) {
	return schema.Primitive(p.schemaType), nil
}

func (p *primitiveConverter) Accepts(ct table.ColumnType, _ *schema.Schema, _ *Registry) (bool, error) {
	return ct.ConvertibleToKind(p.kind), nil
}

func (p *primitiveConverter) NewInputFunc(ct table.ColumnType, _ *schema.Schema, _ *Registry) (InputFunc, error) {
	if !ct.ConvertibleToKind(p.kind) {
		return nil, fmt.Errorf("%w: %s to %s", ErrIncompatibleColumn, ct, p.schemaType)
	}
	if p.oneWay {
		return func(table.Cell) (any, error) {
			return nil, fmt.Errorf("%w: %s column to %s", ErrOneWayConversionUnsupported, ct, p.schemaType)
		}, nil
	}
	return func(c table.Cell) (any, error) {
		v, ok := p.read(c.Value())
		if !ok {
			return nil, fmt.Errorf("%w: cannot read %v (%T) as %s", ErrUnexpectedValue, c.Value(), c.Value(), p.schemaType)
		}
		return v, nil
	}, nil
}

func (p *primitiveConverter) NewOutputFunc(*schema.Schema, *Registry) (OutputFunc, error) {
	return func(v any) (table.Cell, error) {
		native, ok := p.write(v)
		if !ok {
			return table.Cell{}, fmt.Errorf("%w: expected %s result, got %T", ErrUnexpectedValue, p.schemaType, v)
		}
		return table.ValueOf(native), nil
	}, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func NewBooleanConverter() Converter {
	return &primitiveConverter{
		schemaType: schema.Boolean,
		kind:       table.KindBoolean,
		read: func(v any) (any, bool) {
			b, ok := v.(bool)
			return b, ok
		},
		write: func(v any) (any, bool) {
			b, ok := v.(bool)
			return b, ok
		},
	}
}

func NewIntConverter() Converter {
	return &primitiveConverter{
		schemaType: schema.Int,
		kind:       table.KindInteger,
		read: func(v any) (any, bool) {
			switch n := v.(type) {
			case int32:
				return n, true
			case bool:
				return int32(boolToInt(n)), true
			}
			return nil, false
		},
		write: func(v any) (any, bool) {
			n, ok := v.(int32)
			return n, ok
		},
	}
}

func NewLongConverter() Converter {
	return &primitiveConverter{
		schemaType: schema.Long,
		kind:       table.KindLong,
		read: func(v any) (any, bool) {
			switch n := v.(type) {
			case int64:
				return n, true
			case int32:
				return int64(n), true
			case bool:
				return boolToInt(n), true
			}
			return nil, false
		},
		write: func(v any) (any, bool) {
			n, ok := v.(int64)
			return n, ok
		},
	}
}

func NewDoubleConverter() Converter {
	return &primitiveConverter{
		schemaType: schema.Double,
		kind:       table.KindDouble,
		read: func(v any) (any, bool) {
			switch n := v.(type) {
			case float64:
				return n, true
			case int64:
				return float64(n), true
			case int32:
				return float64(n), true
			case bool:
				return float64(boolToInt(n)), true
			}
			return nil, false
		},
		write: func(v any) (any, bool) {
			f, ok := v.(float64)
			return f, ok
		},
	}
}

// NewFloatConverter is one-way: there is no 32-bit float column kind, so
// float results are widened into double columns and never read back.
func NewFloatConverter() Converter {
	return &primitiveConverter{
		schemaType: schema.Float,
		kind:       table.KindDouble,
		oneWay:     true,
		write: func(v any) (any, bool) {
			f, ok := v.(float32)
			return float64(f), ok
		},
	}
}

func NewStringConverter() Converter {
	return &primitiveConverter{
		schemaType: schema.String,
		kind:       table.KindString,
		read: func(v any) (any, bool) {
			s, ok := v.(string)
			return s, ok
		},
		write: func(v any) (any, bool) {
			s, ok := v.(string)
			return s, ok
		},
	}
}
