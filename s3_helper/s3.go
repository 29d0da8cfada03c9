package s3_helper

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/danthegoodman1/icescore/gologger"
	"github.com/danthegoodman1/icescore/utils"
	"github.com/rs/zerolog"
)

var (
	logger = gologger.NewLogger()
)

type Config struct {
	Region   string
	Endpoint string
	Bucket   string
}

// EnvConfig reads the bucket settings from the environment.
func EnvConfig() Config {
	return Config{
		Region:   utils.AWS_DEFAULT_REGION,
		Endpoint: utils.S3_ENDPOINT,
		Bucket:   utils.S3_BUCKET_NAME,
	}
}

// NewUploader builds an uploader with credentials from the environment.
func NewUploader(cfg Config) (*s3manager.Uploader, error) {
	s3Config := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewEnvCredentials(),
	}
	if cfg.Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.Endpoint)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	s3Session, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("error making new session: %w", err)
	}
	return s3manager.NewUploader(s3Session), nil
}

func WriteBytesToS3(ctx context.Context, uploader *s3manager.Uploader, bucket, fileName string, byteStream io.Reader, contentType *string) (*s3manager.UploadOutput, error) {
	ctx = logger.WithContext(ctx)
	logger := zerolog.Ctx(ctx)

	input := &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(fileName),
		Body:        byteStream,
		ContentType: contentType,
	}

	s := time.Now()
	output, err := uploader.UploadWithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("error uploading to s3: %w", err)
	}

	d := time.Since(s)
	logger.Debug().Str("fileName", fileName).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("uploaded file to s3")

	return output, nil
}
