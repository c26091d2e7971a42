package cloud

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore reads command output objects from S3.
type ObjectStore struct {
	api S3API
}

// NewObjectStore creates an ObjectStore over api.
func NewObjectStore(api S3API) (*ObjectStore, error) {
	if api == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	return &ObjectStore{api: api}, nil
}

// ListKeys lazily lists every key under prefix, page by page. A listing
// failure is yielded once and ends the sequence.
func (o *ObjectStore) ListKeys(ctx context.Context, bucket, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
		if prefix != "" {
			input.Prefix = aws.String(prefix)
		}

		p := s3.NewListObjectsV2Paginator(o.api, input)
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				yield("", err)
				return
			}
			for _, obj := range page.Contents {
				if !yield(aws.ToString(obj.Key), nil) {
					return
				}
			}
		}
	}
}

// GetObject reads the whole body of bucket/key.
func (o *ObjectStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := o.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return body, nil
}
