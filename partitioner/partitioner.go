package partitioner

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danthegoodman1/icescore/table"
)

type (
	PartitionPlan struct {
		Func string
		Args []string
		As   string
	}

	PartitionFunc func(row map[string]any, args []string) (string, error)
)

var (
	Functions = make(map[string]PartitionFunc)

	ErrFuncNotFound = errors.New("partition function not found")

	ErrMissingArgs       = errors.New("missing args")
	ErrMissingColumns    = errors.New("missing one or more columns specified in args")
	ErrInvalidColumnType = errors.New("invalid column type")
	ErrInvalidName       = errors.New("invalid partition name")
)

// NullPartition is the identity partition value of missing cells.
const NullPartition = "__null__"

func init() {
	RegisterFunctions()
}

// RegisterFunctions fills Functions. Time functions take a column holding an
// RFC3339 millisecond string or epoch milliseconds, or "now()".
func RegisterFunctions() {
	Functions["identity"] = func(row map[string]any, args []string) (string, error) {
		if len(args) == 0 {
			return "", ErrMissingArgs
		}
		value, exists := row[args[0]]
		if !exists {
			return "", ErrMissingColumns
		}
		switch v := value.(type) {
		case nil:
			return NullPartition, nil
		case string:
			// values become one path segment
			return url.PathEscape(v), nil
		case bool, int32, int64:
			return fmt.Sprint(v), nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		default:
			return "", ErrInvalidColumnType
		}
	}
	Functions["toDay"] = func(row map[string]any, args []string) (string, error) {
		t, err := parseTimeFuncfunc(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTimeFunc: %w", err)
		}

		return fmt.Sprint(t.Day()), nil
	}
	Functions["toMonth"] = func(row map[string]any, args []string) (string, error) {
		t, err := parseTimeFuncfunc(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTimeFunc: %w", err)
		}

		return fmt.Sprint(t.Month()), nil
	}
	Functions["toYear"] = func(row map[string]any, args []string) (string, error) {
		t, err := parseTimeFuncfunc(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTimeFunc: %w", err)
		}

		return fmt.Sprint(t.Year()), nil
	}
	Functions["toYearDay"] = func(row map[string]any, args []string) (string, error) {
		t, err := parseTimeFuncfunc(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTimeFunc: %w", err)
		}

		return fmt.Sprint(t.YearDay()), nil
	}
	Functions["toYearWeek"] = func(row map[string]any, args []string) (string, error) {
		t, err := parseTimeFuncfunc(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTimeFunc: %w", err)
		}

		return fmt.Sprint(t.ISOWeek()), nil
	}
	Functions["toWeekDay"] = func(row map[string]any, args []string) (string, error) {
		t, err := parseTimeFuncfunc(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTimeFunc: %w", err)
		}

		return fmt.Sprint(t.Weekday()), nil
	}
}

func GetRowPartition(row map[string]any, partitioners []PartitionPlan) (string, error) {
	var finalParts []string
	for _, partFunc := range partitioners {
		if !ValidName(partFunc.As) {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, partFunc.As)
		}
		f, ok := Functions[partFunc.Func]
		if !ok {
			return "", ErrFuncNotFound
		}

		s, err := f(row, partFunc.Args)
		if err != nil {
			return "", fmt.Errorf("error processing partition function %s: %w", partFunc.Func, err)
		}
		finalParts = append(finalParts, fmt.Sprintf("%s=%s", partFunc.As, s))
	}
	return strings.Join(finalParts, "/"), nil
}

// ValidName reports whether s can be used as a single path segment.
func ValidName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, "/\\")
}

// RowPartitions groups the rows of t by partition path, keeping first-seen
// partition order and row order within each partition.
func RowPartitions(t *table.Table, partitioners []PartitionPlan) (paths []string, rows map[string][]table.Row, err error) {
	rows = map[string][]table.Row{}
	for _, row := range t.Rows {
		p, err := GetRowPartition(row.Map(t.Layout), partitioners)
		if err != nil {
			return nil, nil, fmt.Errorf("error partitioning row %q: %w", row.Key, err)
		}
		if _, exists := rows[p]; !exists {
			paths = append(paths, p)
		}
		rows[p] = append(rows[p], row)
	}
	return paths, rows, nil
}

func parseTimeFuncfunc(row map[string]any, args []string) (t time.Time, err error) {
	if len(args) == 0 {
		err = ErrMissingArgs
		return
	}

	key := args[0]

	if key == "now()" {
		t = time.Now()
	} else {
		value, exists := row[key]
		if !exists {
			err = ErrMissingColumns
			return
		}

		switch v := value.(type) {
		case string:
			// We have a datetime like YYYY-MM-DDTHH:mm:ss.sssZ
			t, err = time.Parse("2006-01-02T15:04:05.000Z", v)
			if err != nil {
				err = fmt.Errorf("error in time.Parse for string: %w", err)
				return
			}
		case float64:
			// JSON numbers arrive as floats
			t = time.UnixMilli(int64(v))
		case int64:
			t = time.UnixMilli(v)
		case int32:
			t = time.UnixMilli(int64(v))
		default:
			err = ErrInvalidColumnType
			return
		}
	}
	return
}
