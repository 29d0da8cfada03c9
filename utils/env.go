package utils

import "os"

var (
	HTTP_PORT = GetEnvOrDefault("HTTP_PORT", "8080")

	CRDB_DSN = os.Getenv("CRDB_DSN")

	AWS_ACCESS_KEY_ID     = os.Getenv("AWS_ACCESS_KEY_ID")
	AWS_SECRET_ACCESS_KEY = os.Getenv("AWS_SECRET_ACCESS_KEY")
	AWS_DEFAULT_REGION    = GetEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1")

	S3_BUCKET_NAME = os.Getenv("S3_BUCKET_NAME")
	S3_ENDPOINT    = os.Getenv("S3_ENDPOINT")

	// DATASTORE is either "disk" or "s3"
	DATASTORE           = GetEnvOrDefault("DATASTORE", "disk")
	DISK_DATASTORE_PATH = GetEnvOrDefault("DISK_DATASTORE_PATH", "./data")

	DEFAULT_OUTPUT_COLUMN = GetEnvOrDefault("DEFAULT_OUTPUT_COLUMN", "Prediction")
	SCORE_TIMEOUT_SEC     = GetEnvOrDefaultInt("SCORE_TIMEOUT_SEC", 60)

	PARQUET_WRITER_PARALLELISM = GetEnvOrDefaultInt("PARQUET_WRITER_PARALLELISM", 4)
)
