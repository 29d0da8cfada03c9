package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/danthegoodman1/icescore/converter"
	"github.com/danthegoodman1/icescore/gologger"
	"github.com/danthegoodman1/icescore/output_mapper"
	"github.com/danthegoodman1/icescore/row_mapper"
	"github.com/danthegoodman1/icescore/scoring"
	"github.com/danthegoodman1/icescore/table"
	"github.com/danthegoodman1/icescore/utils"
	"github.com/rs/zerolog"
)

type (
	State uint8

	Options struct {
		// InputColumn pre-selects the column read by scalar input schemas.
		InputColumn string
		// OutputColumn names the single column of scalar output schemas,
		// DefaultOutputColumn when empty.
		OutputColumn string
		// Progress is called once per row with the fraction of rows started.
		Progress func(fraction float64)
	}

	Stats struct {
		RowsIn     int
		RowsOut    int
		DurationMS int64
	}

	Result struct {
		ExecutionID string
		Table       *table.Table
		// InputColumn is the column a scalar input schema was read from.
		InputColumn string
		Notices     []string
		// Dynamic is true when the output layout came from the union of map keys.
		Dynamic bool
		Stats   Stats
	}

	// sink is where converted results go, either streamed into a container or
	// cached for the second pass.
	sink interface {
		consume(key string, result any) error
		close() (*table.Table, error)
		discard()
	}
)

const (
	Idle State = iota
	Initialized
	Running
	Finalized
	Closed
)

const DefaultOutputColumn = "Prediction"

var (
	ErrCancelled         = utils.PermError("execution cancelled")
	ErrEmitOutsideAction = utils.PermError("emit called outside of an action")
	ErrNotAnEmitter      = utils.PermError("engine declares emit method but cannot take an emit callback")
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Finalized:
		return "finalized"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// OutputLayout returns the static output layout of a schema, or ok == false
// when the layout depends on the results (map schemas).
func OutputLayout(reg *converter.Registry, e scoring.Engine, outputColumn string) (layout table.Layout, ok bool, err error) {
	if outputColumn == "" {
		outputColumn = DefaultOutputColumn
	}
	return reg.LayoutFromSchema(e.OutputSchema(), outputColumn)
}

// IsApplicable reports whether e can score rows of layout.
func IsApplicable(reg *converter.Registry, e scoring.Engine, layout table.Layout) (bool, error) {
	return reg.IsApplicable(e.InputSchema(), layout)
}

// Execute runs e over every row of in, in order. Begin and End bracket the
// rows exactly once. Any failure aborts the whole execution and no partial
// table is returned. Engines implementing io.Closer are closed on every exit.
func Execute(ctx context.Context, reg *converter.Registry, e scoring.Engine, in *table.Table, opts Options) (*Result, error) {
	x := &execution{
		id:    utils.GenRandomID("exe_"),
		reg:   reg,
		eng:   e,
		in:    in,
		opts:  opts,
		state: Idle,
	}
	l := zerolog.Ctx(ctx).With().Str(string(gologger.ExecutionIDKey), x.id).Logger()
	x.logger = &l

	if closer, ok := e.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				x.logger.Error().Err(err).Msg("error closing scoring engine")
			}
		}()
	}

	res, err := x.run(ctx)
	x.transition(Closed)
	if err != nil {
		return nil, err
	}
	return res, nil
}

type execution struct {
	id     string
	reg    *converter.Registry
	eng    scoring.Engine
	in     *table.Table
	opts   Options
	state  State
	logger *zerolog.Logger

	rowMapper *row_mapper.RowMapper
	sink      sink
	dynamic   bool

	inAction bool
	emitted  int
	emitErr  error
}

func (x *execution) transition(to State) {
	x.logger.Debug().Str("from", x.state.String()).Str("to", to.String()).Msg("execution state change")
	x.state = to
}

// setup builds every per-execution closure before the engine is touched, so
// configuration errors never reach Begin.
func (x *execution) setup() error {
	ok, err := x.reg.IsApplicable(x.eng.InputSchema(), x.in.Layout)
	if err != nil {
		return fmt.Errorf("error in IsApplicable: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: engine input %s, table columns %v", converter.ErrSchemaLayoutMismatch, x.eng.InputSchema(), x.in.Layout.ColumnNames())
	}

	x.rowMapper, err = row_mapper.New(x.reg, x.eng.InputSchema(), x.in.Layout, row_mapper.Options{InputColumn: x.opts.InputColumn})
	if err != nil {
		return fmt.Errorf("error building row mapper: %w", err)
	}

	outputColumn := x.opts.OutputColumn
	if outputColumn == "" {
		outputColumn = DefaultOutputColumn
	}
	fixed, ok, err := output_mapper.NewFixed(x.reg, x.eng.OutputSchema(), outputColumn)
	if err != nil {
		return fmt.Errorf("error building output mapper: %w", err)
	}
	if ok {
		x.sink = &streamSink{mapper: fixed, container: table.NewContainer(fixed.Layout())}
		return nil
	}
	dyn, err := output_mapper.NewDynamic(x.reg, x.eng.OutputSchema())
	if err != nil {
		return fmt.Errorf("error building dynamic output mapper: %w", err)
	}
	x.sink = &cacheSink{mapper: dyn}
	x.dynamic = true
	return nil
}

func (x *execution) run(ctx context.Context) (*Result, error) {
	s := time.Now()
	if err := x.setup(); err != nil {
		return nil, err
	}

	var emitter scoring.Emitter
	if x.eng.Method() == scoring.MethodEmit {
		var ok bool
		emitter, ok = x.eng.(scoring.Emitter)
		if !ok {
			return nil, ErrNotAnEmitter
		}
		emitter.SetEmit(x.emit)
		defer emitter.SetEmit(nil)
	}

	if err := x.eng.Begin(); err != nil {
		x.sink.discard()
		return nil, fmt.Errorf("error in Begin: %w", err)
	}
	x.transition(Initialized)

	total := x.in.NumRows()
	x.transition(Running)
	for i, row := range x.in.Rows {
		if err := ctx.Err(); err != nil {
			x.logger.Debug().Int("row", i).Msg("execution cancelled")
			x.sink.discard()
			return nil, fmt.Errorf("%w: %s", ErrCancelled, err.Error())
		}
		if x.opts.Progress != nil {
			x.opts.Progress(float64(i) / float64(total))
		}
		if err := x.processRow(row, emitter != nil); err != nil {
			x.sink.discard()
			return nil, err
		}
	}

	if x.emitErr != nil {
		x.sink.discard()
		return nil, x.emitErr
	}
	if err := x.eng.End(); err != nil {
		x.sink.discard()
		return nil, fmt.Errorf("error in End: %w", err)
	}
	if x.emitErr != nil {
		x.sink.discard()
		return nil, x.emitErr
	}
	x.transition(Finalized)
	if x.opts.Progress != nil {
		x.opts.Progress(1)
	}

	out, err := x.sink.close()
	if err != nil {
		return nil, err
	}
	res := &Result{
		ExecutionID: x.id,
		Table:       out,
		InputColumn: x.rowMapper.InputColumn,
		Notices:     x.rowMapper.Notices,
		Dynamic:     x.dynamic,
		Stats: Stats{
			RowsIn:     total,
			RowsOut:    out.NumRows(),
			DurationMS: time.Since(s).Milliseconds(),
		},
	}
	x.logger.Debug().Int("rowsIn", res.Stats.RowsIn).Int("rowsOut", res.Stats.RowsOut).Int64("durationMS", res.Stats.DurationMS).Msg("execution finished")
	return res, nil
}

func (x *execution) processRow(row table.Row, emitMode bool) error {
	if x.emitErr != nil {
		return x.emitErr
	}
	input, err := x.rowMapper.Apply(row)
	if err != nil {
		return err
	}

	x.inAction = true
	result, err := x.eng.Action(input)
	x.inAction = false
	if err != nil {
		return fmt.Errorf("error in Action for row %q: %w", row.Key, err)
	}
	if emitMode {
		return x.emitErr
	}
	return x.sink.consume(row.Key, result)
}

// emit is installed as the engine's callback. Emitted results are keyed
// Row0, Row1, ... across the whole execution.
func (x *execution) emit(result any) {
	if !x.inAction {
		x.logger.Error().Msg(ErrEmitOutsideAction.Error())
		if x.emitErr == nil {
			x.emitErr = ErrEmitOutsideAction
		}
		return
	}
	if x.emitErr != nil {
		return
	}
	key := fmt.Sprintf("Row%d", x.emitted)
	x.emitted++
	if err := x.sink.consume(key, result); err != nil {
		x.emitErr = err
	}
}

type streamSink struct {
	mapper    *output_mapper.Fixed
	container *table.Container
}

func (s *streamSink) consume(key string, result any) error {
	row, err := s.mapper.Row(key, result)
	if err != nil {
		return err
	}
	return s.container.AddRow(row)
}

func (s *streamSink) close() (*table.Table, error) { return s.container.Close(), nil }

func (s *streamSink) discard() { s.container.Discard() }

type cacheSink struct {
	mapper *output_mapper.Dynamic
}

func (s *cacheSink) consume(key string, result any) error {
	return s.mapper.Add(key, result)
}

// close is the second pass: the layout is only known once every result is
// cached.
func (s *cacheSink) close() (*table.Table, error) {
	c := table.NewContainer(s.mapper.Layout())
	for _, row := range s.mapper.Rows() {
		if err := c.AddRow(row); err != nil {
			c.Discard()
			return nil, fmt.Errorf("error in AddRow: %w", err)
		}
	}
	s.mapper.Reset()
	return c.Close(), nil
}

func (s *cacheSink) discard() { s.mapper.Reset() }

// IsCancelled reports whether err came from cooperative cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
