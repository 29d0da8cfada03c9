package datastore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danthegoodman1/icescore/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskWriteTable(t *testing.T) {
	root := t.TempDir()
	dds, err := NewDiskDataStore(root, 2)
	require.NoError(t, err)

	tbl := &table.Table{
		Layout: table.MustLayout(table.Column{Name: "Prediction", Type: table.DoubleType}),
		Rows: []table.Row{
			table.NewRow("r0", table.ValueOf(1.0)),
			table.NewRow("r1", table.Missing()),
		},
	}
	name, err := dds.WriteTable(context.Background(), "ns/label=a", tbl)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "ns/label=a/"))
	assert.True(t, strings.HasSuffix(name, ".parquet"))

	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	other, err := dds.WriteTable(context.Background(), "ns/label=a", tbl)
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
	require.NoError(t, dds.Shutdown(context.Background()))
}

func TestWriteTableStaysInRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "a", "root")
	dds, err := NewDiskDataStore(root, 2)
	require.NoError(t, err)

	tbl := &table.Table{Layout: table.MustLayout(table.Column{Name: "x", Type: table.LongType})}
	for _, dir := range []string{"../escaped", "ns=a/../../../escaped", "/abs", `ns\..\..\escaped`} {
		_, err := dds.WriteTable(context.Background(), dir, tbl)
		assert.ErrorIs(t, err, ErrPathOutsideRoot, dir)
	}
	entries, err := os.ReadDir(filepath.Join(parent, "a"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "root", entries[0].Name())

	name, err := FileName("")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".parquet"))
	assert.False(t, strings.Contains(name, "/"))
}
