package cache

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/logger"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
)

const (
	contentTypeBinary = "application/octet-stream"
	contentTypeJSON   = "application/json"
)

// S3Config locates the object-store bucket for the S3 tier.
type S3Config struct {
	Bucket  string `env:"BUCKET"`
	Enabled bool   `env:"ENABLED" envDefault:"false"`
}

// ObjectStore is the minimal object-store contract the S3 tier needs. A head
// or get on an absent key reports missing explicitly rather than raising.
type ObjectStore interface {
	// Head reports whether the key exists.
	Head(ctx context.Context, bucket, key string) (bool, error)
	// Get returns the object payload, or found=false when the key is absent.
	Get(ctx context.Context, bucket, key string) (data []byte, found bool, err error)
	// Put stores the payload with its content metadata.
	Put(ctx context.Context, bucket, key string, data []byte, contentType, contentDisposition string, contentLength int64) error
}

// AWSObjectStore adapts the AWS SDK S3 client to the ObjectStore contract,
// translating the no-such-key errors into the missing variant.
type AWSObjectStore struct {
	client *s3.Client
}

// NewAWSObjectStore wraps an AWS S3 client.
func NewAWSObjectStore(client *s3.Client) *AWSObjectStore {
	return &AWSObjectStore{client: client}
}

// Head reports whether the key exists.
func (s *AWSObjectStore) Head(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if pkgerrors.As(err, &notFound) {
			return false, nil
		}
		return false, errors.WrapCoded(errors.IoFailureError, err)
	}
	return true, nil
}

// Get returns the object payload when present.
func (s *AWSObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, bool, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if pkgerrors.As(err, &noSuchKey) {
			return nil, false, nil
		}
		return nil, false, errors.WrapCoded(errors.IoFailureError, err)
	}
	defer output.Body.Close()
	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, false, errors.WrapCoded(errors.IoFailureError, err)
	}
	return data, true, nil
}

// Put stores the payload with its content metadata.
func (s *AWSObjectStore) Put(ctx context.Context, bucket, key string, data []byte,
	contentType, contentDisposition string, contentLength int64) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(contentDisposition),
		ContentLength:      aws.Int64(contentLength),
	})
	if err != nil {
		return errors.WrapCoded(errors.IoFailureError, err)
	}
	return nil
}

// S3TickCache stores and retrieves tick archives in an object store bucket,
// delegating to a fallback tier when objects are missing.
type S3TickCache struct {
	*fallbackTickCache
	store  ObjectStore
	bucket string
	log    logger.Interface
}

// NewS3TickCache creates an S3-backed tier over the bucket with a fallback.
func NewS3TickCache(store ObjectStore, bucket string, fallback TickCache, log logger.Interface) *S3TickCache {
	tier := &s3ByteTier{store: store, bucket: bucket, log: log}
	return &S3TickCache{
		fallbackTickCache: newFallbackTickCache("S3TickCache", tier, fallback, log),
		store:             store,
		bucket:            bucket,
		log:               log,
	}
}

// CreateBarCache creates a bar cache that checks and stores JSON payloads in
// the same bucket and delegates to the fallback's bar cache on miss.
func (c *S3TickCache) CreateBarCache(validate *validator.Validate, source TickSource) BarCache {
	return &s3BarCache{
		fallbackBarCache: newFallbackBarCache("S3BarCache",
			&s3BarTier{store: c.store, bucket: c.bucket, log: c.log},
			c.fallback.CreateBarCache(validate, source),
			c.log),
	}
}

type s3ByteTier struct {
	store  ObjectStore
	bucket string
	log    logger.Interface
}

func (t *s3ByteTier) Check(ctx context.Context, path string) (io.ReadCloser, bool, error) {
	data, found, err := t.store.Get(ctx, t.bucket, path)
	if err != nil || !found {
		return nil, false, err
	}
	t.log.Info("retrieving from s3",
		logger.NewField("bucket", t.bucket), logger.NewField("key", path))
	return io.NopCloser(bytes.NewReader(data)), true, nil
}

func (t *s3ByteTier) Exists(ctx context.Context, path string) (bool, error) {
	return t.store.Head(ctx, t.bucket, path)
}

func (t *s3ByteTier) Save(ctx context.Context, path string, data []byte) error {
	t.log.Info("saving to s3",
		logger.NewField("bucket", t.bucket),
		logger.NewField("key", path),
		logger.NewField("sizeKb", len(data)/1024))
	return t.store.Put(ctx, t.bucket, path, data, contentTypeBinary, path, int64(len(data)))
}

type s3BarCache struct {
	*fallbackBarCache
}

type s3BarTier struct {
	store  ObjectStore
	bucket string
	log    logger.Interface
}

func (t *s3BarTier) Check(ctx context.Context, barPath string) ([]model.Bar, bool, error) {
	data, found, err := t.store.Get(ctx, t.bucket, barPath)
	if err != nil || !found {
		return nil, false, err
	}
	bars, err := decodeBars(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, false, err
	}
	return bars, true, nil
}

func (t *s3BarTier) Exists(ctx context.Context, barPath string) (bool, error) {
	return t.store.Head(ctx, t.bucket, barPath)
}

func (t *s3BarTier) Save(ctx context.Context, barPath string, oneDayOfBars []model.Bar) error {
	encoded, err := encodeBars(oneDayOfBars)
	if err != nil {
		return err
	}
	return t.store.Put(ctx, t.bucket, barPath, encoded, contentTypeJSON, barPath, int64(len(encoded)))
}
