package scoring

import (
	"fmt"
	"strings"

	"github.com/danthegoodman1/icescore/schema"
)

// RegisterBuiltins adds the engines that ship with the server.
func RegisterBuiltins(c *Catalog) error {
	builtins := map[string]Factory{
		"sum":       NewSumEngine,
		"tokenize":  NewTokenizeEngine,
		"histogram": NewHistogramEngine,
		"echo":      NewEchoEngine,
	}
	for name, f := range builtins {
		if err := c.Register(name, f); err != nil {
			return fmt.Errorf("error registering %s: %w", name, err)
		}
	}
	return nil
}

// NewSumEngine adds up the non-null values of a map.
func NewSumEngine() Engine {
	return &Func{
		Input:  schema.NewMap(schema.Nullable(schema.Primitive(schema.Double))),
		Output: schema.Primitive(schema.Double),
		Apply: func(input any) (any, error) {
			m, ok := input.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("sum: expected map input, got %T", input)
			}
			var total float64
			for _, v := range m {
				if f, ok := v.(float64); ok {
					total += f
				}
			}
			return total, nil
		},
	}
}

var (
	tokenizeInput  = schema.NewRecord("Text", schema.NewField("text", schema.Nullable(schema.Primitive(schema.String))))
	tokenizeOutput = schema.NewRecord("Token",
		schema.NewField("token", schema.Primitive(schema.String)),
		schema.NewField("position", schema.Primitive(schema.Int)),
	)
)

// NewTokenizeEngine emits one record per whitespace separated token.
func NewTokenizeEngine() Engine {
	return &EmitterFunc{
		Input:  tokenizeInput,
		Output: tokenizeOutput,
		Apply: func(input any, emit EmitFunc) error {
			rec, ok := input.(*Record)
			if !ok {
				return fmt.Errorf("tokenize: expected record input, got %T", input)
			}
			text, _ := rec.Get("text")
			s, ok := text.(string)
			if !ok {
				return nil
			}
			for i, tok := range strings.Fields(s) {
				out := NewRecord(tokenizeOutput)
				out.SetAt(0, tok)
				out.SetAt(1, int32(i))
				emit(out)
			}
			return nil
		},
	}
}

func bucket(f float64) string {
	switch {
	case f < 0:
		return "<0"
	case f < 1:
		return "0-1"
	case f < 10:
		return "1-10"
	default:
		return ">=10"
	}
}

// NewHistogramEngine counts a row's values per bucket. Only buckets with at
// least one value appear in the result.
func NewHistogramEngine() Engine {
	return &Func{
		Input:  schema.NewMap(schema.Nullable(schema.Primitive(schema.Double))),
		Output: schema.NewMap(schema.Primitive(schema.Long)),
		Apply: func(input any) (any, error) {
			m, ok := input.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("histogram: expected map input, got %T", input)
			}
			counts := map[string]any{}
			for _, v := range m {
				f, ok := v.(float64)
				if !ok {
					continue
				}
				b := bucket(f)
				n, _ := counts[b].(int64)
				counts[b] = n + 1
			}
			return counts, nil
		},
	}
}

var echoSchema = schema.NewRecord("Value", schema.NewField("value", schema.Nullable(schema.Primitive(schema.Double))))

// NewEchoEngine returns its input record unchanged.
func NewEchoEngine() Engine {
	return &Func{
		Input:  echoSchema,
		Output: echoSchema,
		Apply: func(input any) (any, error) {
			return input, nil
		},
	}
}
