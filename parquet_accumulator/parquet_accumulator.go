package parquet_accumulator

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/danthegoodman1/icescore/table"
	"github.com/xitongsys/parquet-go/writer"
)

type (
	ParquetSchemaAccumulator struct {
		schema ParquetSchema
		// columns maps each layout column to its parquet field name
		columns []string
	}

	ParquetSchema struct {
		TagStructs SchemaTag        `json:"-,omitempty"`
		Fields     []*ParquetSchema `json:",omitempty"`
	}

	ParquetJSONSchema struct {
		Tag    string               `json:",omitempty"`
		Fields []*ParquetJSONSchema `json:",omitempty"`
	}

	SchemaTag struct {
		Name           string         `json:"name,omitempty"`
		Type           string         `json:"type,omitempty"`
		ConvertedType  string         `json:"convertedtype,omitempty"`
		RepetitionType RepetitionType `json:"repetitiontype,omitempty"`
		Encoding       string         `json:"encoding,omitempty"`
	}

	RepetitionType string
)

var (
	Optional RepetitionType = "OPTIONAL"
	Required RepetitionType = "REQUIRED"
)

func NewParquetAccumulator() ParquetSchemaAccumulator {
	return ParquetSchemaAccumulator{
		schema: ParquetSchema{
			TagStructs: SchemaTag{
				Name:           "parquet_go_root",
				RepetitionType: Required,
			},
		},
	}
}

// FromLayout accumulates every column of layout in order.
func FromLayout(layout table.Layout) (ParquetSchemaAccumulator, error) {
	pa := NewParquetAccumulator()
	for _, col := range layout.Columns() {
		if err := pa.AddColumn(col); err != nil {
			return pa, err
		}
	}
	return pa, nil
}

// AddColumn appends one optional field. Column names are rewritten into
// parquet field names, made unique with a numeric suffix when needed.
func (pa *ParquetSchemaAccumulator) AddColumn(col table.Column) error {
	name := fieldName(col.Name)
	base := name
	for i := 1; pa.fieldExists(name); i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	s, err := pa.getParquetSchema(name, col.Type)
	if err != nil {
		return fmt.Errorf("error in column %q: %w", col.Name, err)
	}
	pa.schema.Fields = append(pa.schema.Fields, s)
	pa.columns = append(pa.columns, name)
	return nil
}

// fieldName keeps letters, digits and underscores and upper cases the first
// rune, parquet-go derives Go struct field names from it.
func fieldName(col string) string {
	var sb strings.Builder
	for _, r := range col {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	name := sb.String()
	if name == "" || !unicode.IsLetter([]rune(name)[0]) {
		name = "C" + name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func (pa *ParquetSchemaAccumulator) getParquetSchema(name string, ct table.ColumnType) (*ParquetSchema, error) {
	schema := &ParquetSchema{
		TagStructs: SchemaTag{
			Name:           name,
			RepetitionType: Optional,
		},
	}
	switch ct.Kind {
	case table.KindBoolean:
		schema.TagStructs.Type = "BOOLEAN"
	case table.KindInteger:
		schema.TagStructs.Type = "INT32"
	case table.KindLong:
		schema.TagStructs.Type = "INT64"
	case table.KindDouble:
		schema.TagStructs.Type = "DOUBLE"
	case table.KindString:
		schema.TagStructs.Type = "BYTE_ARRAY"
		schema.TagStructs.ConvertedType = "UTF8"
		schema.TagStructs.Encoding = "PLAIN"
	case table.KindList:
		if ct.Elem == nil {
			return nil, fmt.Errorf("%w: list without element type", table.ErrUnknownColumnType)
		}
		elem, err := pa.getParquetSchema("Element", *ct.Elem)
		if err != nil {
			return nil, err
		}
		schema.TagStructs.Type = "LIST"
		schema.Fields = append(schema.Fields, elem)
	default:
		return nil, fmt.Errorf("%w: %s", table.ErrUnknownColumnType, ct)
	}
	return schema, nil
}

func (pa *ParquetSchemaAccumulator) fieldExists(fieldName string) (exists bool) {
	for _, field := range pa.schema.Fields {
		if field.TagStructs.Name == fieldName {
			return true
		}
	}
	return
}

func (pa *ParquetSchemaAccumulator) GetColumnNames() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.TagStructs.Name)
	}
	return cols
}

func (ps *ParquetSchema) GetType() string {
	switch ps.TagStructs.Type {
	case "BOOLEAN":
		return table.KindBoolean.String()
	case "INT32":
		return table.KindInteger.String()
	case "INT64":
		return table.KindLong.String()
	case "DOUBLE":
		return table.KindDouble.String()
	case "BYTE_ARRAY":
		return table.KindString.String()
	case "LIST":
		return fmt.Sprintf("list(%s)", ps.Fields[0].GetType())
	default:
		return "unknown"
	}
}

// GetColumnTypes returns the column type names in field order, e.g. `long` or `list(string)`
func (pa *ParquetSchemaAccumulator) GetColumnTypes() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.GetType())
	}
	return cols
}

// ToParquetJSONSchema recursively converts
func (ps *ParquetSchema) ToParquetJSONSchema() *ParquetJSONSchema {
	var tagArr []string
	if ps.TagStructs.Type != "" {
		tagArr = append(tagArr, "type="+ps.TagStructs.Type)
	}
	if ps.TagStructs.ConvertedType != "" {
		tagArr = append(tagArr, "convertedtype="+ps.TagStructs.ConvertedType)
	}
	if ps.TagStructs.Encoding != "" {
		tagArr = append(tagArr, "encoding="+ps.TagStructs.Encoding)
	}
	if ps.TagStructs.Name != "" {
		tagArr = append(tagArr, "name="+ps.TagStructs.Name)
	}
	if string(ps.TagStructs.RepetitionType) != "" {
		tagArr = append(tagArr, "repetitiontype="+string(ps.TagStructs.RepetitionType))
	}
	var fields []*ParquetJSONSchema
	for _, field := range ps.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	return &ParquetJSONSchema{
		Tag:    strings.Join(tagArr, ", "),
		Fields: fields,
	}
}

// GetSchemaString returns the JSON formatted schema string
func (pa *ParquetSchemaAccumulator) GetSchemaString() (string, error) {
	var fields []*ParquetJSONSchema
	for _, field := range pa.schema.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	pjs := ParquetJSONSchema{
		Tag:    "name=parquet_go_root, repetitiontype=REQUIRED",
		Fields: fields,
	}

	b, err := json.Marshal(pjs)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}

// RowJSON renders a row as a JSON object keyed by parquet field name.
// Missing cells are left out.
func (pa *ParquetSchemaAccumulator) RowJSON(row table.Row) (string, error) {
	if len(row.Cells) != len(pa.columns) {
		return "", fmt.Errorf("%w: row %q", table.ErrRowWidth, row.Key)
	}
	m := make(map[string]any, len(pa.columns))
	for i, c := range row.Cells {
		if c.IsMissing() {
			continue
		}
		m[pa.columns[i]] = c.JSONValue()
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}

// WriteTable encodes t as one parquet file into w.
func WriteTable(w io.Writer, t *table.Table, parallelism int64) error {
	pa, err := FromLayout(t.Layout)
	if err != nil {
		return fmt.Errorf("error in FromLayout: %w", err)
	}
	parquetSchema, err := pa.GetSchemaString()
	if err != nil {
		return fmt.Errorf("error in GetSchemaString: %w", err)
	}
	pw, err := writer.NewJSONWriterFromWriter(parquetSchema, w, parallelism)
	if err != nil {
		return fmt.Errorf("error in writer.NewJSONWriterFromWriter: %w", err)
	}
	for _, row := range t.Rows {
		s, err := pa.RowJSON(row)
		if err != nil {
			return err
		}
		if err = pw.Write(s); err != nil {
			return fmt.Errorf("error writing row %q: %w", row.Key, err)
		}
	}
	if err = pw.WriteStop(); err != nil {
		return fmt.Errorf("error in WriteStop: %w", err)
	}
	return nil
}
