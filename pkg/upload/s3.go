package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Object metadata keys recorded on every stored file.
const (
	metaFilename   = "original-filename"
	metaUploadTime = "upload-time"
)

// S3API is the slice of the S3 client the store calls. *s3.Client
// satisfies it; tests substitute a fake.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps temp files in an S3 bucket under a key prefix. All
// metadata rides on the objects themselves, so the store is stateless
// and instances can be shared behind a load balancer.
//
//	client := s3.NewFromConfig(cfg)
//	store := upload.NewS3Store(client, "my-bucket", "uploads/temp/", 10<<20)
type S3Store struct {
	api     S3API
	bucket  string
	prefix  string
	maxSize int64
}

// NewS3Store returns a store writing to bucket under prefix. The
// prefix is used verbatim, so include a trailing separator. maxSize
// caps a single upload; zero or negative means unlimited.
func NewS3Store(api S3API, bucket, prefix string, maxSize int64) *S3Store {
	return &S3Store{
		api:     api,
		bucket:  bucket,
		prefix:  prefix,
		maxSize: maxSize,
	}
}

func (s *S3Store) key(id string) string {
	return s.prefix + id
}

// Save streams the file to S3 and returns its temp ID. The reader is
// capped at size bytes, so an understated size truncates rather than
// overruns.
func (s *S3Store) Save(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return "", ErrTooLarge
	}

	id, err := generateTempID()
	if err != nil {
		return "", err
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(id)),
		Body:          io.LimitReader(r, size),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		Metadata: map[string]string{
			metaFilename:   filename,
			metaUploadTime: time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload: s3 put: %w", err)
	}
	return id, nil
}

// Open fetches the object for reading. It does not consume the entry;
// the object stays until Cleanup removes it.
func (s *S3Store) Open(ctx context.Context, tempID string) (*File, error) {
	key := s.key(tempID)

	head, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("upload: s3 head: %w", err)
	}

	get, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			// Deleted between head and get.
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("upload: s3 get: %w", err)
	}

	f := &File{
		ID:       tempID,
		Filename: tempID,
		Reader:   get.Body,
	}
	if name, ok := head.Metadata[metaFilename]; ok {
		f.Filename = name
	}
	if head.ContentType != nil {
		f.ContentType = *head.ContentType
	}
	if head.ContentLength != nil {
		f.Size = *head.ContentLength
	}
	return f, nil
}

// Cleanup lists the prefix and deletes objects last modified before
// now-maxAge.
func (s *S3Store) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var toDelete []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("upload: s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || obj.LastModified == nil {
				continue
			}
			if obj.LastModified.Before(cutoff) {
				toDelete = append(toDelete, *obj.Key)
			}
		}
	}

	var firstErr error
	for _, key := range toDelete {
		_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("upload: s3 delete: %w", err)
		}
	}
	return firstErr
}
