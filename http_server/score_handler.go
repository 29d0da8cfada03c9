package http_server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/danthegoodman1/icescore/datastore"
	"github.com/danthegoodman1/icescore/engine"
	"github.com/danthegoodman1/icescore/part"
	"github.com/danthegoodman1/icescore/partitioner"
	"github.com/danthegoodman1/icescore/scoring"
	"github.com/danthegoodman1/icescore/table"
	"github.com/danthegoodman1/icescore/utils"
	"github.com/rs/zerolog"
)

type (
	ScoreReqBody struct {
		Columns []table.ColumnSpec `validate:"dive"`
		// Line-delimited JSON (NDJSON)
		RowsString *string
		// Array of JSON
		Rows []map[string]any

		// InputColumn pre-selects the column for engines taking a single value.
		InputColumn string
		// OutputColumn names the column of engines returning a single value.
		OutputColumn string

		// Persist writes the output as parquet below ns={Namespace}.
		Persist     bool
		Namespace   string `validate:"required_if=Persist true,excludesall=/\\"`
		Partitioner []partitioner.PartitionPlan
	}

	ScoreStats struct {
		RowsIn   int
		RowsOut  int
		NumFiles int
		TimeMS   int64
	}

	ScoreResponse struct {
		ExecutionID string
		Columns     []table.ColumnSpec
		RowKeys     []string
		Rows        [][]any
		Notices     []string
		InputColumn string `json:",omitempty"`
		Dynamic     bool
		Stats       ScoreStats
		Files       []string
	}
)

var ErrNoDataStore = utils.PermError("no datastore configured")

func (s *HTTPServer) ScoreHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), s.ScoreTimeout)
	defer cancel()
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	var reqBody ScoreReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if reqBody.Persist && (s.DataStore == nil || s.MetaStore == nil) {
		return c.String(http.StatusBadRequest, ErrNoDataStore.Error())
	}

	layout, err := table.LayoutFromSpecs(reqBody.Columns)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	in, err := decodeRows(layout, reqBody.Rows, reqBody.RowsString)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	name := c.Param("name")
	e, err := s.Catalog.New(name)
	if errors.Is(err, scoring.ErrEngineNotFound) {
		return c.String(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return c.InternalError(err, "error creating engine")
	}

	outputColumn := reqBody.OutputColumn
	if outputColumn == "" {
		outputColumn = s.DefaultOutputColumn
	}
	res, err := engine.Execute(ctx, s.Registry, e, in, engine.Options{
		InputColumn:  reqBody.InputColumn,
		OutputColumn: outputColumn,
		Progress:     progressLogger(logger, name),
	})
	if err != nil {
		return c.ExecutionError(ctx, err, "error executing engine")
	}

	var files []string
	if reqBody.Persist {
		files, err = s.persist(ctx, name, reqBody.Namespace, reqBody.Partitioner, res)
		if isPersistRequestError(err) {
			return c.String(http.StatusBadRequest, err.Error())
		}
		if err != nil {
			return c.InternalError(err, "error persisting output")
		}
	}

	keys, rows := encodeRows(res.Table)
	return c.JSON(http.StatusOK, ScoreResponse{
		ExecutionID: res.ExecutionID,
		Columns:     res.Table.Layout.Specs(),
		RowKeys:     keys,
		Rows:        rows,
		Notices:     utils.ArrayOrEmpty(res.Notices),
		InputColumn: res.InputColumn,
		Dynamic:     res.Dynamic,
		Stats: ScoreStats{
			RowsIn:   res.Stats.RowsIn,
			RowsOut:  res.Stats.RowsOut,
			NumFiles: len(files),
			TimeMS:   time.Since(start).Milliseconds(),
		},
		Files: utils.ArrayOrEmpty(files),
	})
}

// persist writes one parquet file per output partition and records them in
// the run log.
func (s *HTTPServer) persist(ctx context.Context, engineName, namespace string, plans []partitioner.PartitionPlan, res *engine.Result) ([]string, error) {
	paths, rows, err := partitioner.RowPartitions(res.Table, plans)
	if err != nil {
		return nil, fmt.Errorf("error in RowPartitions: %w", err)
	}

	var files []string
	var parts []part.Part
	for _, partition := range paths {
		t := &table.Table{Layout: res.Table.Layout, Rows: rows[partition]}
		dir := path.Join("ns="+namespace, partition)
		file, err := s.DataStore.WriteTable(ctx, dir, t)
		if err != nil {
			return nil, fmt.Errorf("error writing partition %q: %w", partition, err)
		}
		files = append(files, file)
		parts = append(parts, part.Part{
			ID:          utils.GenKSortedID("prt_"),
			ExecutionID: res.ExecutionID,
			Engine:      engineName,
			Namespace:   namespace,
			Partition:   partition,
			Path:        file,
			RowCount:    int64(t.NumRows()),
			Columns:     t.Layout.ColumnNames(),
		})
	}
	if err := s.MetaStore.RecordParts(ctx, parts); err != nil {
		return nil, fmt.Errorf("error in RecordParts: %w", err)
	}
	return files, nil
}

// isPersistRequestError is true for partitioning errors caused by the request.
func isPersistRequestError(err error) bool {
	for _, target := range []error{
		partitioner.ErrFuncNotFound,
		partitioner.ErrMissingArgs,
		partitioner.ErrMissingColumns,
		partitioner.ErrInvalidColumnType,
		partitioner.ErrInvalidName,
		datastore.ErrPathOutsideRoot,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// progressLogger logs every tenth of the rows at debug level.
func progressLogger(logger *zerolog.Logger, engineName string) func(float64) {
	next := 0.1
	return func(f float64) {
		if f < next {
			return
		}
		for next <= f {
			next += 0.1
		}
		logger.Debug().Str("engine", engineName).Float64("progress", f).Msg("scoring progress")
	}
}
