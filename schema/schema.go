package schema

import (
	"fmt"
	"strings"
)

type (
	// Type tags one variant of a Schema.
	Type uint8

	// Schema is an immutable, Avro-like shape description. Exactly the fields
	// belonging to Type are set: Items for Array, Values for Map, Fields for
	// Record and Branches for Union.
	Schema struct {
		Type     Type
		Name     string
		Items    *Schema
		Values   *Schema
		Fields   []Field
		Branches []*Schema
	}

	Field struct {
		Name   string
		Schema *Schema
	}
)

const (
	Invalid Type = iota
	Null
	Boolean
	Int
	Long
	Float
	Double
	String
	Array
	Map
	Record
	Union
)

var typeNames = map[Type]string{
	Null:    "null",
	Boolean: "boolean",
	Int:     "int",
	Long:    "long",
	Float:   "float",
	Double:  "double",
	String:  "string",
	Array:   "array",
	Map:     "map",
	Record:  "record",
	Union:   "union",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// IsPrimitive is true for the scalar types, null included.
func (t Type) IsPrimitive() bool {
	return t >= Null && t <= String
}

var primitives = map[Type]*Schema{}

func init() {
	for t := Null; t <= String; t++ {
		primitives[t] = &Schema{Type: t}
	}
}

// Primitive returns the shared schema for a scalar type.
func Primitive(t Type) *Schema {
	s, ok := primitives[t]
	if !ok {
		panic(fmt.Sprintf("%s is not a primitive type", t))
	}
	return s
}

func NewArray(items *Schema) *Schema {
	return &Schema{Type: Array, Items: items}
}

func NewMap(values *Schema) *Schema {
	return &Schema{Type: Map, Values: values}
}

func NewRecord(name string, fields ...Field) *Schema {
	return &Schema{Type: Record, Name: name, Fields: fields}
}

func NewField(name string, s *Schema) Field {
	return Field{Name: name, Schema: s}
}

// NewUnion keeps the branches as given. Shape validation happens when the
// union is resolved, not here.
func NewUnion(branches ...*Schema) *Schema {
	return &Schema{Type: Union, Branches: branches}
}

// Nullable is the union of inner and null.
func Nullable(inner *Schema) *Schema {
	return NewUnion(inner, Primitive(Null))
}

// IsNullable reports whether s is a union with a null branch.
func (s *Schema) IsNullable() bool {
	if s.Type != Union {
		return false
	}
	for _, b := range s.Branches {
		if b.Type == Null {
			return true
		}
	}
	return false
}

// Field returns the named record field.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Equal compares two schemas structurally. Record names are ignored.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Type != o.Type {
		return false
	}
	switch s.Type {
	case Array:
		return s.Items.Equal(o.Items)
	case Map:
		return s.Values.Equal(o.Values)
	case Record:
		if len(s.Fields) != len(o.Fields) {
			return false
		}
		for i := range s.Fields {
			if s.Fields[i].Name != o.Fields[i].Name || !s.Fields[i].Schema.Equal(o.Fields[i].Schema) {
				return false
			}
		}
		return true
	case Union:
		if len(s.Branches) != len(o.Branches) {
			return false
		}
		for i := range s.Branches {
			if !s.Branches[i].Equal(o.Branches[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Summary describes a scoring engine's signature, e.g. "mapping record to double".
func Summary(input, output *Schema) string {
	var sb strings.Builder
	sb.WriteString("mapping ")
	sb.WriteString(input.Type.String())
	sb.WriteString(" to ")
	sb.WriteString(output.Type.String())
	return sb.String()
}
