package http_server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danthegoodman1/gojsonutils"
	"github.com/danthegoodman1/icescore/table"
)

var (
	ErrNotFlatMap = errors.New("not a flat map")
	ErrNotJSONRow = errors.New("line was not a JSON object")
)

// decodeRows builds the input table. Nested objects are flattened so a
// column named "a.b" reads {"a": {"b": ...}}. Row keys are Row0, Row1, ...
func decodeRows(layout table.Layout, rows []map[string]any, rowsString *string) (*table.Table, error) {
	t := &table.Table{Layout: layout}
	add := func(raw map[string]any) error {
		flat, err := gojsonutils.Flatten(raw, nil)
		if err != nil {
			return fmt.Errorf("error flattening JSON map: %w", err)
		}
		flatMap, ok := flat.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %+v", ErrNotFlatMap, flat)
		}
		row, err := rowFromJSON(layout, fmt.Sprintf("Row%d", len(t.Rows)), flatMap)
		if err != nil {
			return err
		}
		t.Rows = append(t.Rows, row)
		return nil
	}

	if rowsString != nil {
		ndJSONScanner := bufio.NewScanner(strings.NewReader(*rowsString))
		ndJSONScanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for ndJSONScanner.Scan() {
			line := strings.TrimSpace(ndJSONScanner.Text())
			if line == "" {
				continue
			}
			var raw any
			if err := json.Unmarshal([]byte(line), &raw); err != nil {
				return nil, fmt.Errorf("error in json.Unmarshal: %w", err)
			}
			jsonMap, ok := raw.(map[string]any)
			if !ok {
				return nil, ErrNotJSONRow
			}
			if err := add(jsonMap); err != nil {
				return nil, err
			}
		}
		if err := ndJSONScanner.Err(); err != nil {
			return nil, fmt.Errorf("error scanning rows: %w", err)
		}
	}
	for _, raw := range rows {
		if err := add(raw); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func rowFromJSON(layout table.Layout, key string, m map[string]any) (table.Row, error) {
	cells := make([]table.Cell, layout.NumColumns())
	for i, col := range layout.Columns() {
		c, err := table.CellFromJSON(col.Type, m[col.Name])
		if err != nil {
			return table.Row{}, fmt.Errorf("error in column %q of %s: %w", col.Name, key, err)
		}
		cells[i] = c
	}
	return table.NewRow(key, cells...), nil
}

// encodeRows renders output rows as JSON arrays in column order.
func encodeRows(t *table.Table) (keys []string, rows [][]any) {
	keys = make([]string, len(t.Rows))
	rows = make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		keys[i] = r.Key
		rows[i] = r.JSONValues()
	}
	return keys, rows
}
