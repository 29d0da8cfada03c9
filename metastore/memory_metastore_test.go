package metastore

import (
	"context"
	"testing"

	"github.com/danthegoodman1/icescore/part"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMetaStore(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryMetaStore()

	require.NoError(t, ms.RecordParts(ctx, []part.Part{
		{ID: "p1", Namespace: "a", RowCount: 2},
		{ID: "p2", Namespace: "a", RowCount: 3},
		{ID: "p3", Namespace: "b"},
	}))

	parts, err := ms.ListParts(ctx, "a")
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "p1", parts[0].ID)
	assert.False(t, parts[0].CreatedAt.IsZero())

	parts, err = ms.ListParts(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, parts)

	err = ms.RecordParts(ctx, []part.Part{{ID: "p4", Namespace: "a"}, {ID: "p5"}})
	assert.ErrorIs(t, err, ErrNoNamespace)
	parts, _ = ms.ListParts(ctx, "a")
	assert.Len(t, parts, 2, "a failed batch records nothing")
}
