package gcp

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
	"github.com/yungbote/learnbridge-backend/internal/storage"
)

// BucketStore adapts a GCS bucket to the storage.ObjectStore contract.
type BucketStore struct {
	log    *logger.Logger
	bucket *gcs.BucketHandle
}

func NewBucketStore(ctx context.Context, log *logger.Logger, bucketName string) (*BucketStore, error) {
	opts := append(ClientOptionsFromEnv(), option.WithScopes(gcs.ScopeReadOnly))
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &BucketStore{
		log:    log.With("service", "BucketStore"),
		bucket: client.Bucket(bucketName),
	}, nil
}

func (bs *BucketStore) Get(ctx context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	reader, err := bs.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open object %q: %w", key, err)
	}
	info := &storage.ObjectInfo{
		ContentType: reader.Attrs.ContentType,
		Size:        reader.Attrs.Size,
	}
	return reader, info, nil
}
