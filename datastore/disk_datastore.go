package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danthegoodman1/icescore/parquet_accumulator"
	"github.com/danthegoodman1/icescore/table"
	"github.com/rs/zerolog"
	"github.com/xitongsys/parquet-go-source/local"
)

type (
	DiskDataStore struct {
		rootPath    string
		parallelism int64
	}
)

func NewDiskDataStore(rootPath string, parallelism int64) (*DiskDataStore, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	dds := &DiskDataStore{
		rootPath:    rootPath,
		parallelism: parallelism,
	}

	return dds, nil
}

func (dds *DiskDataStore) WriteTable(ctx context.Context, dir string, t *table.Table) (string, error) {
	logger := zerolog.Ctx(ctx)
	name, err := FileName(dir)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(dds.rootPath, filepath.FromSlash(name))
	if rel, err := filepath.Rel(dds.rootPath, fullPath); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathOutsideRoot, name)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("error in os.MkdirAll: %w", err)
	}

	fw, err := local.NewLocalFileWriter(fullPath)
	if err != nil {
		return "", fmt.Errorf("error in local.NewLocalFileWriter: %w", err)
	}
	err = parquet_accumulator.WriteTable(fw, t, dds.parallelism)
	if closeErr := fw.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("error closing file: %w", closeErr)
	}
	if err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("error in WriteTable: %w", err)
	}
	logger.Debug().Str("path", fullPath).Int("rows", t.NumRows()).Msg("wrote parquet file")
	return name, nil
}

func (dds *DiskDataStore) Shutdown(context.Context) error {
	return nil
}
