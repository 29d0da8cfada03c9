package datastore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/danthegoodman1/icescore/parquet_accumulator"
	"github.com/danthegoodman1/icescore/s3_helper"
	"github.com/danthegoodman1/icescore/table"
)

type (
	// S3DataStore encodes each table in memory and uploads it in one go.
	S3DataStore struct {
		cfg         s3_helper.Config
		uploader    *s3manager.Uploader
		parallelism int64
	}
)

func NewS3DataStore(parallelism int64) (*S3DataStore, error) {
	cfg := s3_helper.EnvConfig()
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: S3_BUCKET_NAME is not set", ErrUnknownDataStore)
	}
	uploader, err := s3_helper.NewUploader(cfg)
	if err != nil {
		return nil, fmt.Errorf("error in NewUploader: %w", err)
	}
	return &S3DataStore{cfg: cfg, uploader: uploader, parallelism: parallelism}, nil
}

func (s *S3DataStore) WriteTable(ctx context.Context, dir string, t *table.Table) (string, error) {
	name, err := FileName(dir)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := parquet_accumulator.WriteTable(&buf, t, s.parallelism); err != nil {
		return "", fmt.Errorf("error in WriteTable: %w", err)
	}
	_, err = s3_helper.WriteBytesToS3(ctx, s.uploader, s.cfg.Bucket, name, &buf, aws.String("application/vnd.apache.parquet"))
	if err != nil {
		return "", fmt.Errorf("error in WriteBytesToS3: %w", err)
	}
	return "s3://" + s.cfg.Bucket + "/" + name, nil
}

func (s *S3DataStore) Shutdown(context.Context) error {
	return nil
}
