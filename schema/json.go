package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidSchema = errors.New("invalid schema")
	ErrUnknownType   = errors.New("unknown schema type")
)

var typesByName = map[string]Type{}

func init() {
	for t, n := range typeNames {
		typesByName[n] = t
	}
}

type jsonField struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type jsonSchema struct {
	Type   json.RawMessage `json:"type"`
	Name   string          `json:"name,omitempty"`
	Items  json.RawMessage `json:"items,omitempty"`
	Values json.RawMessage `json:"values,omitempty"`
	Fields []jsonField     `json:"fields,omitempty"`
}

// ParseJSON parses an Avro JSON schema. Named records may be referenced by
// name after their definition.
func ParseJSON(b []byte) (*Schema, error) {
	p := parser{named: map[string]*Schema{}}
	return p.parse(b)
}

type parser struct {
	named map[string]*Schema
}

// Parser parses several schemas that share named types, like the input and
// output of one document.
type Parser struct {
	p parser
}

func NewParser() *Parser {
	return &Parser{p: parser{named: map[string]*Schema{}}}
}

func (p *Parser) Parse(b []byte) (*Schema, error) {
	return p.p.parse(b)
}

func (p *parser) parse(b []byte) (*Schema, error) {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("error in json.Unmarshal: %w", err)
	}
	switch v := raw.(type) {
	case string:
		return p.lookup(v)
	case []any:
		var branches []json.RawMessage
		if err := json.Unmarshal(b, &branches); err != nil {
			return nil, fmt.Errorf("error in json.Unmarshal of union: %w", err)
		}
		u := &Schema{Type: Union}
		for _, br := range branches {
			s, err := p.parse(br)
			if err != nil {
				return nil, err
			}
			u.Branches = append(u.Branches, s)
		}
		return u, nil
	case map[string]any:
		return p.parseObject(b)
	default:
		return nil, fmt.Errorf("%w: unexpected JSON %s", ErrInvalidSchema, string(b))
	}
}

func (p *parser) lookup(name string) (*Schema, error) {
	if t, ok := typesByName[name]; ok && t.IsPrimitive() {
		return Primitive(t), nil
	}
	if s, ok := p.named[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

func (p *parser) parseObject(b []byte) (*Schema, error) {
	var js jsonSchema
	if err := json.Unmarshal(b, &js); err != nil {
		return nil, fmt.Errorf("error in json.Unmarshal: %w", err)
	}
	if len(js.Type) == 0 {
		return nil, fmt.Errorf("%w: object without type", ErrInvalidSchema)
	}
	var typeName string
	if err := json.Unmarshal(js.Type, &typeName); err != nil {
		// {"type": {...}} and {"type": [...]} wrap another schema
		return p.parse(js.Type)
	}
	switch typeName {
	case "array":
		if len(js.Items) == 0 {
			return nil, fmt.Errorf("%w: array without items", ErrInvalidSchema)
		}
		items, err := p.parse(js.Items)
		if err != nil {
			return nil, err
		}
		return NewArray(items), nil
	case "map":
		if len(js.Values) == 0 {
			return nil, fmt.Errorf("%w: map without values", ErrInvalidSchema)
		}
		values, err := p.parse(js.Values)
		if err != nil {
			return nil, err
		}
		return NewMap(values), nil
	case "record":
		rec := NewRecord(js.Name)
		if js.Name != "" {
			p.named[js.Name] = rec
		}
		seen := map[string]bool{}
		for _, f := range js.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("%w: record %q has a field without name", ErrInvalidSchema, js.Name)
			}
			if seen[f.Name] {
				return nil, fmt.Errorf("%w: record %q has duplicate field %q", ErrInvalidSchema, js.Name, f.Name)
			}
			seen[f.Name] = true
			fs, err := p.parse(f.Type)
			if err != nil {
				return nil, fmt.Errorf("error parsing field %q: %w", f.Name, err)
			}
			rec.Fields = append(rec.Fields, NewField(f.Name, fs))
		}
		return rec, nil
	default:
		return p.lookup(typeName)
	}
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	switch s.Type {
	case Array:
		return json.Marshal(map[string]any{"type": "array", "items": s.Items})
	case Map:
		return json.Marshal(map[string]any{"type": "map", "values": s.Values})
	case Record:
		fields := make([]map[string]any, len(s.Fields))
		for i, f := range s.Fields {
			fields[i] = map[string]any{"name": f.Name, "type": f.Schema}
		}
		name := s.Name
		if name == "" {
			name = "Record"
		}
		// keys are emitted sorted by encoding/json, so build the object by hand
		// to keep type first
		nameJSON, _ := json.Marshal(name)
		fieldsJSON, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		return []byte(`{"type":"record","name":` + string(nameJSON) + `,"fields":` + string(fieldsJSON) + `}`), nil
	case Union:
		return json.Marshal(s.Branches)
	default:
		if !s.Type.IsPrimitive() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownType, s.Type)
		}
		return json.Marshal(s.Type.String())
	}
}

// String renders s as Avro JSON.
func (s *Schema) String() string {
	b, err := s.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", err)
	}
	return string(b)
}
