package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/danthegoodman1/icescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonDoc = `{
  "name": "scorer",
  "input": {"type": "record", "name": "Input", "fields": [
    {"name": "x", "type": ["double", "null"]},
    {"name": "tags", "type": {"type": "array", "items": "string"}}
  ]},
  "output": "Input",
  "action": [{"+": [1, 2]}]
}`

const yamlDoc = `
name: scorer
input:
  type: map
  values: double
output: double
action:
  - input
`

func TestLoadJSON(t *testing.T) {
	doc, err := Load(strings.NewReader(jsonDoc), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "scorer", doc.Name)
	require.Equal(t, schema.Record, doc.Input.Type)
	assert.Equal(t, []string{"x", "tags"}, doc.Input.FieldNames())
	// named types are shared between input and output
	assert.Same(t, doc.Input, doc.Output)
	assert.Equal(t, "mapping record to record", doc.Summary())
}

func TestLoadYAML(t *testing.T) {
	doc, err := Load(strings.NewReader(yamlDoc), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, schema.Map, doc.Input.Type)
	assert.Equal(t, schema.Double, doc.Input.Values.Type)
	assert.Equal(t, schema.Double, doc.Output.Type)
	assert.Contains(t, string(doc.Raw), `"action"`)
}

func TestLoadAutoDetect(t *testing.T) {
	doc, err := Load(strings.NewReader(jsonDoc), "")
	require.NoError(t, err)
	assert.Equal(t, schema.Record, doc.Input.Type)

	doc, err = Load(strings.NewReader(yamlDoc), "")
	require.NoError(t, err)
	assert.Equal(t, schema.Map, doc.Input.Type)

	_, err = Load(strings.NewReader("{{{"), "")
	assert.True(t, errors.Is(err, ErrUnreadableDocument))
}

func TestMissingSchema(t *testing.T) {
	_, err := Load(strings.NewReader(`{"input": "double"}`), "")
	assert.True(t, errors.Is(err, ErrMissingSchema))

	_, err = Load(strings.NewReader("output: double\n"), FormatYAML)
	assert.True(t, errors.Is(err, ErrMissingSchema))

	_, err = Load(strings.NewReader(`{}`), "xml")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}
