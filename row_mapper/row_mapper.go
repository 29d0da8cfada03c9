package row_mapper

import (
	"fmt"

	"github.com/danthegoodman1/icescore/converter"
	"github.com/danthegoodman1/icescore/gologger"
	"github.com/danthegoodman1/icescore/schema"
	"github.com/danthegoodman1/icescore/scoring"
	"github.com/danthegoodman1/icescore/table"
	"github.com/danthegoodman1/icescore/utils"
)

type (
	// Options come from outside the engine, e.g. request settings.
	Options struct {
		// InputColumn pre-selects the column for scalar input schemas.
		InputColumn string
	}

	// RowMapper assembles one scoring input per row. It is built once per
	// execution, before the first row is read.
	RowMapper struct {
		apply func(table.Row) (any, error)

		// InputColumn is the column a scalar schema reads from, empty otherwise.
		InputColumn string
		// Notices are advisory messages about choices made while building.
		Notices []string
	}
)

var (
	ErrNoCompatibleColumn = utils.PermError("no compatible column found in input table")

	logger = gologger.NewLogger()
)

// New selects the input assembly by schema shape: a record of the named
// columns, a map of every column, or the single selected column.
func New(reg *converter.Registry, s *schema.Schema, layout table.Layout, opts Options) (*RowMapper, error) {
	switch s.Type {
	case schema.Record:
		return newRecordMapper(reg, s, layout)
	case schema.Map:
		return newMapMapper(reg, s, layout)
	default:
		return newScalarMapper(reg, s, layout, opts)
	}
}

func (m *RowMapper) Apply(row table.Row) (any, error) {
	return m.apply(row)
}

func newRecordMapper(reg *converter.Registry, s *schema.Schema, layout table.Layout) (*RowMapper, error) {
	indexes := make([]int, len(s.Fields))
	convs := make([]converter.InputFunc, len(s.Fields))
	for i, f := range s.Fields {
		idx := layout.ColumnIndex(f.Name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: no column for field %q", converter.ErrSchemaLayoutMismatch, f.Name)
		}
		conv, err := reg.InputConverter(layout.Column(idx).Type, f.Schema)
		if err != nil {
			return nil, fmt.Errorf("error building converter for field %q: %w", f.Name, err)
		}
		indexes[i] = idx
		convs[i] = conv
	}
	return &RowMapper{
		apply: func(row table.Row) (any, error) {
			rec := scoring.NewRecord(s)
			for i, idx := range indexes {
				v, err := convs[i](row.Cell(idx))
				if err != nil {
					return nil, fmt.Errorf("error converting field %q of row %q: %w", s.Fields[i].Name, row.Key, err)
				}
				rec.SetAt(i, v)
			}
			return rec, nil
		},
	}, nil
}

func newMapMapper(reg *converter.Registry, s *schema.Schema, layout table.Layout) (*RowMapper, error) {
	names := layout.ColumnNames()
	convs := make([]converter.InputFunc, len(names))
	for i := range names {
		conv, err := reg.InputConverter(layout.Column(i).Type, s.Values)
		if err != nil {
			return nil, fmt.Errorf("error building converter for column %q: %w", names[i], err)
		}
		convs[i] = conv
	}
	return &RowMapper{
		apply: func(row table.Row) (any, error) {
			m := make(map[string]any, len(names))
			for i, name := range names {
				v, err := convs[i](row.Cell(i))
				if err != nil {
					return nil, fmt.Errorf("error converting column %q of row %q: %w", name, row.Key, err)
				}
				m[name] = v
			}
			return m, nil
		},
	}, nil
}

func newScalarMapper(reg *converter.Registry, s *schema.Schema, layout table.Layout, opts Options) (*RowMapper, error) {
	m := &RowMapper{InputColumn: opts.InputColumn}
	idx := -1
	if m.InputColumn != "" {
		idx = layout.ColumnIndex(m.InputColumn)
		if idx < 0 {
			return nil, fmt.Errorf("%w: input column %q is not in the table", converter.ErrSchemaLayoutMismatch, m.InputColumn)
		}
	} else {
		var err error
		idx, err = reg.FirstCompatibleColumn(s, layout)
		if err != nil {
			return nil, err
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: for type %s", ErrNoCompatibleColumn, s)
		}
		m.InputColumn = layout.Column(idx).Name
		notice := fmt.Sprintf("The scoring engine requires a single value as input. Using first matching column: %q", m.InputColumn)
		logger.Warn().Str("column", m.InputColumn).Msg(notice)
		m.Notices = append(m.Notices, notice)
	}

	conv, err := reg.InputConverter(layout.Column(idx).Type, s)
	if err != nil {
		if utils.IsPermanent(err) && opts.InputColumn != "" {
			return nil, fmt.Errorf("%w: column %q: %s", ErrNoCompatibleColumn, m.InputColumn, err.Error())
		}
		return nil, err
	}
	m.apply = func(row table.Row) (any, error) {
		v, err := conv(row.Cell(idx))
		if err != nil {
			return nil, fmt.Errorf("error converting column %q of row %q: %w", m.InputColumn, row.Key, err)
		}
		return v, nil
	}
	return m, nil
}
