package message

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "avviso/internal/platform/config"
	"avviso/pkg/domain"
	"avviso/pkg/platform/sentinel"
)

// S3ContentStore stores message content as JSON blobs in S3, one object per
// message. Puts overwrite, which keeps retries idempotent.
type S3ContentStore struct {
	client *s3.Client
	bucket string
}

// NewS3ContentStore builds the content store from the default AWS config
// chain. A custom endpoint supports S3-compatible stores in local dev.
func NewS3ContentStore(ctx context.Context, cfg appconfig.BlobConfig) (*S3ContentStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3ContentStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3ContentStore) Put(ctx context.Context, id domain.MessageID, content *Content) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode content %s: %w", id, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(contentKey(id)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put content %s: %w", id, err)
	}
	return nil
}

func (s *S3ContentStore) Get(ctx context.Context, id domain.MessageID) (*Content, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(contentKey(id)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("get content %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get content %s: %w", id, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", id, err)
	}

	var content Content
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("decode content %s: %w", id, err)
	}
	return &content, nil
}

func contentKey(id domain.MessageID) string {
	return id.String() + ".json"
}
