package part

import "time"

type (
	// Part is one parquet file written for a scoring execution. An execution
	// writes one part per partition of its output.
	Part struct {
		ID          string
		ExecutionID string
		Engine      string
		Namespace   string
		// Partition is the key=value/... path the rows were grouped by, empty
		// when the output was not partitioned.
		Partition string
		Path      string
		RowCount  int64
		Columns   []string
		CreatedAt time.Time
	}
)
