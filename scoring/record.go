package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danthegoodman1/icescore/schema"
)

var ErrUnknownField = errors.New("unknown record field")

// Record is a record instance with one value slot per field of its schema,
// in declaration order.
type Record struct {
	schema *schema.Schema
	values []any
}

func NewRecord(s *schema.Schema) *Record {
	return &Record{schema: s, values: make([]any, len(s.Fields))}
}

func (r *Record) Schema() *schema.Schema { return r.schema }

func (r *Record) NumFields() int { return len(r.values) }

func (r *Record) FieldNames() []string { return r.schema.FieldNames() }

func (r *Record) index(name string) int {
	for i, f := range r.schema.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (r *Record) Put(name string, v any) error {
	i := r.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	r.values[i] = v
	return nil
}

func (r *Record) Get(name string) (any, bool) {
	i := r.index(name)
	if i < 0 {
		return nil, false
	}
	return r.values[i], true
}

func (r *Record) At(i int) any { return r.values[i] }

func (r *Record) SetAt(i int, v any) { r.values[i] = v }

func (r *Record) String() string {
	parts := make([]string, len(r.values))
	for i, f := range r.schema.Fields {
		parts[i] = fmt.Sprintf("%s: %v", f.Name, r.values[i])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
