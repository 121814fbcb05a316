package media

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService() *Service {
	return NewService(Options{
		Bucket:       "media",
		Region:       "us-east-1",
		BaseEndpoint: "http://localhost:9000",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		URLValidity:  15 * time.Minute,
	})
}

func TestStorageKey_Format(t *testing.T) {
	k := StorageKey("u1")
	re := regexp.MustCompile(`^posts/u1/\d{4}/\d{1,2}/\d{1,2}/[0-9a-fA-F-]+$`)
	assert.Regexp(t, re, k)
	assert.NotEqual(t, k, StorageKey("u1"))
}

func TestPresignUpload(t *testing.T) {
	upload, err := testService().PresignUpload(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(upload.Key, "posts/u1/"))
	assert.True(t, strings.HasPrefix(upload.URL, "http://localhost:9000/media/posts/u1/"), upload.URL)
	assert.Contains(t, upload.URL, "X-Amz-Signature=")
	assert.Contains(t, upload.URL, "X-Amz-Expires=900")
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), upload.ExpiresAt, time.Minute)
}

func TestPresignDownload(t *testing.T) {
	url, err := testService().PresignDownload(context.Background(), "posts/u1/a.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/media/posts/u1/a.png?"), url)
}

func TestIsStorageKey(t *testing.T) {
	assert.True(t, IsStorageKey(StorageKey("u1")))
	assert.False(t, IsStorageKey("https://cdn.example.com/a.png"))
	assert.False(t, IsStorageKey(""))
}

func TestPresignUpload_Errors(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		original := loadDefaultAWSConfig
		defer func() { loadDefaultAWSConfig = original }()
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("no config")
		}

		_, err := testService().PresignUpload(context.Background(), "u1")
		assert.ErrorContains(t, err, "load aws config")
	})

	t.Run("presign", func(t *testing.T) {
		original := presignPutObject
		defer func() { presignPutObject = original }()
		presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
			return nil, errors.New("boom")
		}

		_, err := testService().PresignUpload(context.Background(), "u1")
		assert.ErrorContains(t, err, "presign put: boom")
	})
}
