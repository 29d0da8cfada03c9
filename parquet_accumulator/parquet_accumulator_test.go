package parquet_accumulator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danthegoodman1/icescore/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func TestGetSchemaString(t *testing.T) {
	a, err := FromLayout(table.MustLayout(
		table.Column{Name: "colA", Type: table.StringType},
		table.Column{Name: "colB", Type: table.DoubleType},
		table.Column{Name: "colC", Type: table.ListOf(table.StringType)},
		table.Column{Name: "n", Type: table.LongType},
	))
	if err != nil {
		t.Fatal(err)
	}

	schemaString, err := a.GetSchemaString()
	if err != nil {
		t.Fatal(err)
	}
	if schemaString != `{"Tag":"name=parquet_go_root, repetitiontype=REQUIRED","Fields":[{"Tag":"type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN, name=ColA, repetitiontype=OPTIONAL"},{"Tag":"type=DOUBLE, name=ColB, repetitiontype=OPTIONAL"},{"Tag":"type=LIST, name=ColC, repetitiontype=OPTIONAL","Fields":[{"Tag":"type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN, name=Element, repetitiontype=OPTIONAL"}]},{"Tag":"type=INT64, name=N, repetitiontype=OPTIONAL"}]}` {
		t.Log(schemaString)
		t.Fatal("got incorrect schema string")
	}
	assert.Equal(t, []string{"string", "double", "list(string)", "long"}, a.GetColumnTypes())
}

func TestFieldNames(t *testing.T) {
	a, err := FromLayout(table.MustLayout(
		table.Column{Name: ">=10", Type: table.LongType},
		table.Column{Name: "0-1", Type: table.LongType},
		table.Column{Name: "__1", Type: table.LongType},
		table.Column{Name: "a.b", Type: table.BooleanType},
		table.Column{Name: "A_b", Type: table.BooleanType},
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"C__10", "C0_1", "C__1", "A_b", "A_b_1"}, a.GetColumnNames())
}

func TestRowJSON(t *testing.T) {
	layout := table.MustLayout(
		table.Column{Name: "a", Type: table.IntegerType},
		table.Column{Name: "b", Type: table.ListOf(table.DoubleType)},
	)
	a, err := FromLayout(layout)
	require.NoError(t, err)

	s, err := a.RowJSON(table.NewRow("r1", table.Missing(), table.ValueOf([]table.Cell{table.ValueOf(1.5)})))
	require.NoError(t, err)
	assert.JSONEq(t, `{"B": [1.5]}`, s)

	_, err = a.RowJSON(table.NewRow("r2", table.Missing()))
	assert.ErrorIs(t, err, table.ErrRowWidth)
}

func TestFullCycle(t *testing.T) {
	tbl := &table.Table{
		Layout: table.MustLayout(
			table.Column{Name: "label", Type: table.StringType},
			table.Column{Name: "score", Type: table.DoubleType},
			table.Column{Name: "count", Type: table.LongType},
		),
		Rows: []table.Row{
			table.NewRow("Row0", table.ValueOf("cat"), table.ValueOf(0.9), table.ValueOf(int64(3))),
			table.NewRow("Row1", table.ValueOf("dog"), table.Missing(), table.ValueOf(int64(1))),
		},
	}

	fileName := filepath.Join(t.TempDir(), "temp.parquet")
	f, err := os.Create(fileName)
	if err != nil {
		t.Fatal(err)
	}
	if err = WriteTable(f, tbl, 4); err != nil {
		t.Fatal(err)
	}
	f.Close()

	a, err := FromLayout(tbl.Layout)
	require.NoError(t, err)
	parquetSchema, err := a.GetSchemaString()
	require.NoError(t, err)

	fr, err := local.NewLocalFileReader(fileName)
	if err != nil {
		t.Fatal("Can't open file", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, parquetSchema, 4)
	if err != nil {
		t.Fatal("Can't create parquet reader", err)
	}
	defer pr.ReadStop()

	assert.Equal(t, int64(2), pr.GetNumRows())
}
