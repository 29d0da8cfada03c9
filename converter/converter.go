package converter

import (
	"github.com/danthegoodman1/icescore/schema"
	"github.com/danthegoodman1/icescore/table"
	"github.com/danthegoodman1/icescore/utils"
)

type (
	// InputFunc turns a cell into a scoring value.
	InputFunc func(table.Cell) (any, error)

	// OutputFunc turns a scoring value into a cell.
	OutputFunc func(any) (table.Cell, error)

	// Converter binds one schema type to one column kind. Converters only see
	// present values and non-union schemas, the Registry handles null and
	// missing.
	Converter interface {
		SchemaType() schema.Type
		ColumnKind() table.Kind
		// OneWay converters only map schema to column. They are never used to
		// derive a schema from a column type, and reading a column value into
		// their schema type fails.
		OneWay() bool

		ColumnType(s *schema.Schema, r *Registry) (table.ColumnType, error)
		Schema(ct table.ColumnType, r *Registry) (*schema.Schema, error)
		// Accepts reports whether a column of type ct can be read as target.
		Accepts(ct table.ColumnType, target *schema.Schema, r *Registry) (bool, error)

		NewInputFunc(ct table.ColumnType, target *schema.Schema, r *Registry) (InputFunc, error)
		NewOutputFunc(s *schema.Schema, r *Registry) (OutputFunc, error)
	}
)

var (
	ErrUnsupportedUnionShape       = utils.PermError("only unions of null and exactly one other type are supported")
	ErrNullOnlyUnion               = utils.PermError("unions only consisting of null are not supported")
	ErrNoConverterRegistered       = utils.PermError("no converter registered")
	ErrOneWayConversionUnsupported = utils.PermError("converter only supports schema to column conversion")
	ErrSchemaLayoutMismatch        = utils.PermError("schema is not applicable to the table layout")
	ErrIncompatibleColumn          = utils.PermError("column type cannot be converted to schema type")

	// ErrMissingValue is a missing cell or null value where the schema is not nullable.
	ErrMissingValue = utils.PermError("missing value for non-nullable schema")
	// ErrUnexpectedValue is a native value of the wrong Go type.
	ErrUnexpectedValue = utils.PermError("unexpected value type")
)
