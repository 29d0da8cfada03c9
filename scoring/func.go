package scoring

import (
	"github.com/danthegoodman1/icescore/schema"
)

type (
	// Func adapts Go closures to a MethodDirect Engine. Init and Finish are
	// optional.
	Func struct {
		Input, Output *schema.Schema
		Init          func() error
		Apply         func(input any) (any, error)
		Finish        func() error
	}

	// EmitterFunc adapts Go closures to a MethodEmit Engine. Apply may call
	// emit any number of times before returning.
	EmitterFunc struct {
		Input, Output *schema.Schema
		Init          func() error
		Apply         func(input any, emit EmitFunc) error
		Finish        func() error

		emit EmitFunc
	}
)

var (
	_ Engine  = (*Func)(nil)
	_ Emitter = (*EmitterFunc)(nil)
)

func (f *Func) InputSchema() *schema.Schema  { return f.Input }
func (f *Func) OutputSchema() *schema.Schema { return f.Output }
func (f *Func) Method() Method               { return MethodDirect }

func (f *Func) Begin() error {
	if f.Init == nil {
		return nil
	}
	return f.Init()
}

func (f *Func) Action(input any) (any, error) { return f.Apply(input) }

func (f *Func) End() error {
	if f.Finish == nil {
		return nil
	}
	return f.Finish()
}

func (f *EmitterFunc) InputSchema() *schema.Schema  { return f.Input }
func (f *EmitterFunc) OutputSchema() *schema.Schema { return f.Output }
func (f *EmitterFunc) Method() Method               { return MethodEmit }
func (f *EmitterFunc) SetEmit(e EmitFunc)           { f.emit = e }

func (f *EmitterFunc) Begin() error {
	if f.Init == nil {
		return nil
	}
	return f.Init()
}

func (f *EmitterFunc) Action(input any) (any, error) {
	emit := f.emit
	if emit == nil {
		// results without a listener are dropped
		emit = func(any) {}
	}
	return nil, f.Apply(input, emit)
}

func (f *EmitterFunc) End() error {
	if f.Finish == nil {
		return nil
	}
	return f.Finish()
}
