package storage

import (
	"alcyxob/coach-plans/internal/config"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", endpointURL(config.S3Config{Endpoint: "localhost:9000"}))
	assert.Equal(t, "https://minio.internal", endpointURL(config.S3Config{Endpoint: "minio.internal", UseSSL: true}))
	assert.Equal(t, "http://already:9000", endpointURL(config.S3Config{Endpoint: "http://already:9000", UseSSL: true}))
}

func TestNewS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), config.S3Config{Region: "us-east-1"}, zerolog.Nop())
	require.Error(t, err)
}

func TestPresignedDownloadURLIsOffline(t *testing.T) {
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		BucketName:      "exports",
	}, zerolog.Nop())
	require.NoError(t, err)

	url, err := fs.GeneratePresignedDownloadURL(context.Background(), "plans/abc/1-def.json", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/exports/plans/abc/1-def.json")
	assert.Contains(t, url, "X-Amz-Expires=300")
}
