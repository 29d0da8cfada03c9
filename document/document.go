package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danthegoodman1/icescore/schema"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Document struct {
	Name   string
	Input  *schema.Schema
	Output *schema.Schema
	// Raw is the whole document as JSON, YAML documents included.
	Raw json.RawMessage
}

var (
	ErrMissingSchema      = errors.New("document is missing a schema")
	ErrUnknownFormat      = errors.New("unknown document format")
	ErrUnreadableDocument = errors.New("document cannot be loaded as JSON or YAML")
)

// Load reads a document with "input" and "output" schemas. An empty format
// tries JSON first and falls back to YAML.
func Load(r io.Reader, format string) (*Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error in io.ReadAll: %w", err)
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		return FromJSON(b)
	case FormatYAML, "yml":
		return FromYAML(b)
	case "":
		doc, jsonErr := FromJSON(b)
		if jsonErr == nil || errors.Is(jsonErr, ErrMissingSchema) {
			return doc, jsonErr
		}
		doc, err := FromYAML(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnreadableDocument, err.Error())
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func FromJSON(b []byte) (*Document, error) {
	var raw struct {
		Name   string          `json:"name"`
		Input  json.RawMessage `json:"input"`
		Output json.RawMessage `json:"output"`
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("error decoding JSON document: %w", err)
	}
	if len(raw.Input) == 0 || string(raw.Input) == "null" {
		return nil, fmt.Errorf("%w: input", ErrMissingSchema)
	}
	if len(raw.Output) == 0 || string(raw.Output) == "null" {
		return nil, fmt.Errorf("%w: output", ErrMissingSchema)
	}

	p := schema.NewParser()
	in, err := p.Parse(raw.Input)
	if err != nil {
		return nil, fmt.Errorf("error parsing input schema: %w", err)
	}
	out, err := p.Parse(raw.Output)
	if err != nil {
		return nil, fmt.Errorf("error parsing output schema: %w", err)
	}
	return &Document{Name: raw.Name, Input: in, Output: out, Raw: json.RawMessage(b)}, nil
}

// FromYAML converts the YAML document to JSON first.
func FromYAML(b []byte) (*Document, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("error in yaml.Unmarshal: %w", err)
	}
	j, err := json.Marshal(jsonCompatible(v))
	if err != nil {
		return nil, fmt.Errorf("error in json.Marshal: %w", err)
	}
	return FromJSON(j)
}

// jsonCompatible rewrites map[any]any nodes, which yaml produces for
// non-string keys, into map[string]any.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = jsonCompatible(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = jsonCompatible(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = jsonCompatible(item)
		}
		return t
	default:
		return v
	}
}

// Summary reads like "mapping record to double".
func (d *Document) Summary() string {
	return schema.Summary(d.Input, d.Output)
}
