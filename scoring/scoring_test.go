package scoring

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/danthegoodman1/icescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, RegisterBuiltins(c))
	assert.True(t, errors.Is(c.Register("sum", NewSumEngine), ErrEngineExists))

	_, err := c.New("nope")
	assert.True(t, errors.Is(err, ErrEngineNotFound))

	a, err := c.New("sum")
	require.NoError(t, err)
	b, err := c.New("sum")
	require.NoError(t, err)
	if a == b {
		t.Fatal("expected a fresh engine per call")
	}

	infos := c.List()
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	assert.Equal(t, []string{"echo", "histogram", "sum", "tokenize"}, names)
	assert.Equal(t, "mapping map to double", infos[2].Summary)
	assert.Equal(t, "direct", infos[2].Method)

	b2, err := json.Marshal(infos[0])
	require.NoError(t, err)
	assert.Contains(t, string(b2), `"Input":{"type":"record","name":"Value"`)
}

func TestRecord(t *testing.T) {
	s := schema.NewRecord("R", schema.NewField("a", schema.Primitive(schema.Int)), schema.NewField("b", schema.Primitive(schema.String)))
	r := NewRecord(s)
	assert.Equal(t, 2, r.NumFields())
	require.NoError(t, r.Put("b", "x"))
	assert.True(t, errors.Is(r.Put("c", 1), ErrUnknownField))

	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	assert.Nil(t, r.At(0))
	_, ok = r.Get("c")
	assert.False(t, ok)
	assert.Equal(t, "{a: <nil>, b: x}", r.String())
}

func TestBuiltins(t *testing.T) {
	sum := NewSumEngine()
	out, err := sum.Action(map[string]any{"a": 1.0, "b": nil, "c": 2.5})
	require.NoError(t, err)
	assert.Equal(t, 3.5, out)

	hist := NewHistogramEngine()
	out, err = hist.Action(map[string]any{"a": -1.0, "b": 0.5, "c": 0.2, "d": 12.0})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"<0": int64(1), "0-1": int64(2), ">=10": int64(1)}, out)

	tok := NewTokenizeEngine().(Emitter)
	var got []string
	tok.SetEmit(func(v any) {
		rec := v.(*Record)
		s, _ := rec.Get("token")
		got = append(got, s.(string))
	})
	in := NewRecord(tokenizeInput)
	in.SetAt(0, " hello  world ")
	res, err := tok.Action(in)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, []string{"hello", "world"}, got)
	assert.Equal(t, MethodEmit, tok.Method())

	_, err = sum.Action("not a map")
	assert.Error(t, err)
}

func TestFuncLifecycle(t *testing.T) {
	var calls []string
	f := &Func{
		Input:  schema.Primitive(schema.Double),
		Output: schema.Primitive(schema.Double),
		Init:   func() error { calls = append(calls, "begin"); return nil },
		Apply: func(v any) (any, error) {
			calls = append(calls, "action")
			return v, nil
		},
		Finish: func() error { calls = append(calls, "end"); return nil },
	}
	require.NoError(t, f.Begin())
	_, err := f.Action(1.0)
	require.NoError(t, err)
	require.NoError(t, f.End())
	assert.Equal(t, []string{"begin", "action", "end"}, calls)

	bare := &Func{Apply: func(v any) (any, error) { return v, nil }}
	assert.NoError(t, bare.Begin())
	assert.NoError(t, bare.End())
}
