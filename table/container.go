package table

import "fmt"

// Container collects the rows of one output table. It is owned by a single
// execution and is either closed into a Table or discarded.
type Container struct {
	layout Layout
	rows   []Row
	closed bool
}

func NewContainer(layout Layout) *Container {
	return &Container{layout: layout}
}

func (c *Container) Layout() Layout { return c.layout }

func (c *Container) AddRow(r Row) error {
	if c.closed {
		return ErrContainerClosed
	}
	if len(r.Cells) != c.layout.NumColumns() {
		return fmt.Errorf("%w: row %q has %d cells, layout has %d columns", ErrRowWidth, r.Key, len(r.Cells), c.layout.NumColumns())
	}
	c.rows = append(c.rows, r)
	return nil
}

func (c *Container) Size() int { return len(c.rows) }

// Close hands the collected rows over as a Table.
func (c *Container) Close() *Table {
	c.closed = true
	t := &Table{Layout: c.layout, Rows: c.rows}
	c.rows = nil
	return t
}

// Discard drops all rows, used on cancellation and failures.
func (c *Container) Discard() {
	c.closed = true
	c.rows = nil
}
