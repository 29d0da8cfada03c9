package datastore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/danthegoodman1/icescore/gologger"
	"github.com/danthegoodman1/icescore/table"
	"github.com/danthegoodman1/icescore/utils"
)

var (
	logger = gologger.NewLogger()

	ErrUnknownDataStore = errors.New("unknown datastore")
	ErrPathOutsideRoot  = errors.New("path leaves the datastore root")
)

type (
	DataStore interface {
		// WriteTable writes t as one parquet file below dir and returns the
		// file's location.
		WriteTable(ctx context.Context, dir string, t *table.Table) (string, error)

		Shutdown(ctx context.Context) error
	}
)

// FromEnv picks the datastore named by the DATASTORE env var.
func FromEnv() (DataStore, error) {
	logger.Debug().Str("datastore", utils.DATASTORE).Msg("creating datastore")
	switch utils.DATASTORE {
	case "disk":
		return NewDiskDataStore(utils.DISK_DATASTORE_PATH, utils.PARQUET_WRITER_PARALLELISM)
	case "s3":
		return NewS3DataStore(utils.PARQUET_WRITER_PARALLELISM)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataStore, utils.DATASTORE)
	}
}

// FileName is a k-sortable parquet file name below dir. dir must be relative
// and stay below the datastore root once cleaned.
func FileName(dir string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(dir, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrPathOutsideRoot, dir)
	}
	return path.Join(clean, utils.GenKSortedID("")+".parquet"), nil
}
