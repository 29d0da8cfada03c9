package scoring

import (
	"github.com/danthegoodman1/icescore/schema"
)

type (
	// Method is declared statically by every engine.
	Method uint8

	// EmitFunc receives one result. It is only valid for the duration of the
	// Action call it is invoked from.
	EmitFunc func(result any)

	// Engine is a stateful scoring function. Values crossing the boundary are
	// shaped by the declared schemas: bool, int32, int64, float32, float64,
	// string, []any, map[string]any, *Record, or nil for null.
	Engine interface {
		InputSchema() *schema.Schema
		OutputSchema() *schema.Schema
		Method() Method
		Begin() error
		// Action returns the result in MethodDirect mode. In MethodEmit mode the
		// return value is ignored and results are delivered via the emit callback.
		Action(input any) (any, error)
		End() error
	}

	// Emitter is implemented by MethodEmit engines.
	Emitter interface {
		Engine
		// SetEmit installs the callback, nil clears it.
		SetEmit(EmitFunc)
	}
)

const (
	MethodDirect Method = iota
	MethodEmit
)

func (m Method) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodEmit:
		return "emit"
	default:
		return "unknown"
	}
}
