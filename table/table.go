package table

import (
	"errors"
	"fmt"
)

type (
	Column struct {
		Name string
		Type ColumnType
	}

	// Layout is an ordered set of uniquely named columns.
	Layout struct {
		columns []Column
		index   map[string]int
	}

	// Cell is either missing or holds a native value matching its column:
	// bool, int32, int64, float64, string or []Cell.
	Cell struct {
		value   any
		present bool
	}

	Row struct {
		Key   string
		Cells []Cell
	}

	Table struct {
		Layout Layout
		Rows   []Row
	}
)

var (
	ErrDuplicateColumn   = errors.New("duplicate column name")
	ErrUnknownColumnType = errors.New("unknown column type")
	ErrRowWidth          = errors.New("row width does not match layout")
	ErrContainerClosed   = errors.New("container is closed")
)

func NewLayout(cols ...Column) (Layout, error) {
	l := Layout{columns: make([]Column, 0, len(cols)), index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if _, exists := l.index[c.Name]; exists {
			return Layout{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		l.index[c.Name] = len(l.columns)
		l.columns = append(l.columns, c)
	}
	return l, nil
}

// MustLayout is NewLayout for statically known layouts.
func MustLayout(cols ...Column) Layout {
	l, err := NewLayout(cols...)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Layout) NumColumns() int { return len(l.columns) }

func (l Layout) Column(i int) Column { return l.columns[i] }

func (l Layout) Columns() []Column {
	out := make([]Column, len(l.columns))
	copy(out, l.columns)
	return out
}

// ColumnIndex returns -1 when name is not in the layout.
func (l Layout) ColumnIndex(name string) int {
	i, ok := l.index[name]
	if !ok {
		return -1
	}
	return i
}

func (l Layout) ColumnNames() []string {
	names := make([]string, len(l.columns))
	for i, c := range l.columns {
		names[i] = c.Name
	}
	return names
}

func (l Layout) Equal(o Layout) bool {
	if len(l.columns) != len(o.columns) {
		return false
	}
	for i := range l.columns {
		if l.columns[i].Name != o.columns[i].Name || !l.columns[i].Type.Equal(o.columns[i].Type) {
			return false
		}
	}
	return true
}

func Missing() Cell { return Cell{} }

func ValueOf(v any) Cell { return Cell{value: v, present: true} }

func (c Cell) IsMissing() bool { return !c.present }

// Value is nil for missing cells.
func (c Cell) Value() any { return c.value }

func (c Cell) String() string {
	if !c.present {
		return "?"
	}
	return fmt.Sprint(c.value)
}

func NewRow(key string, cells ...Cell) Row {
	return Row{Key: key, Cells: cells}
}

func (r Row) Cell(i int) Cell { return r.Cells[i] }

func (t *Table) NumRows() int { return len(t.Rows) }
