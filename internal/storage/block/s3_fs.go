package block

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3FS implements the Storage interface on Amazon S3.
type S3FS struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3FS creates a new S3 storage backend
func NewS3FS(cfg Config) (*S3FS, error) {
	bucket := cfg.Options["bucket"]
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required for S3 storage")
	}

	region := cfg.Options["region"]
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3FS{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: cfg.Options["prefix"],
	}, nil
}

// Reader returns a reader for the specified path
func (s3fs *S3FS) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	output, err := s3fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(s3fs.key(path)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, &StorageError{Op: "get", Path: path, Err: ErrNotFound}
		}
		return nil, &StorageError{Op: "get", Path: path, Err: err}
	}
	return output.Body, nil
}

// Writer returns a writer that uploads the buffered content on Close.
func (s3fs *S3FS) Writer(ctx context.Context, path string) (io.WriteCloser, error) {
	return &s3Writer{s3fs: s3fs, key: s3fs.key(path), ctx: ctx}, nil
}

// Stat returns metadata for the specified path
func (s3fs *S3FS) Stat(ctx context.Context, path string) (*Metadata, error) {
	output, err := s3fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(s3fs.key(path)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, &StorageError{Op: "head", Path: path, Err: ErrNotFound}
		}
		return nil, &StorageError{Op: "head", Path: path, Err: err}
	}

	return &Metadata{
		Path:    path,
		Size:    aws.ToInt64(output.ContentLength),
		ModTime: output.LastModified.Unix(),
	}, nil
}

// List returns metadata for all blobs with the specified prefix
func (s3fs *S3FS) List(ctx context.Context, prefix string) ([]*Metadata, error) {
	var results []*Metadata
	paginator := s3.NewListObjectsV2Paginator(s3fs.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s3fs.bucket),
		Prefix: aws.String(s3fs.key(prefix)),
	})

	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &StorageError{Op: "list", Path: prefix, Err: err}
		}
		for _, object := range output.Contents {
			results = append(results, &Metadata{
				Path:    s3fs.relativePath(aws.ToString(object.Key)),
				Size:    aws.ToInt64(object.Size),
				ModTime: object.LastModified.Unix(),
			})
		}
	}
	return results, nil
}

// Delete removes the blob at the specified path
func (s3fs *S3FS) Delete(ctx context.Context, path string) error {
	_, err := s3fs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s3fs.bucket),
		Key:    aws.String(s3fs.key(path)),
	})
	if err != nil {
		return &StorageError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// Copy copies a blob from src to dst
func (s3fs *S3FS) Copy(ctx context.Context, src, dst string) error {
	_, err := s3fs.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s3fs.bucket),
		Key:        aws.String(s3fs.key(dst)),
		CopySource: aws.String(s3fs.bucket + "/" + s3fs.key(src)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return &StorageError{Op: "copy", Path: src, Err: ErrNotFound}
		}
		return &StorageError{Op: "copy", Path: src, Err: err}
	}
	return nil
}

// Health checks connectivity to the bucket
func (s3fs *S3FS) Health(ctx context.Context) error {
	_, err := s3fs.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s3fs.bucket),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("S3 health check failed: %w", err)
	}
	return nil
}

func (s3fs *S3FS) key(path string) string {
	if s3fs.prefix == "" {
		return path
	}
	return s3fs.prefix + "/" + path
}

func (s3fs *S3FS) relativePath(key string) string {
	if s3fs.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, s3fs.prefix+"/")
}

func isS3NotFound(err error) bool {
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound")
}

// s3Writer buffers writes and uploads the object on Close.
type s3Writer struct {
	s3fs   *S3FS
	key    string
	ctx    context.Context
	buffer bytes.Buffer
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.buffer.Write(p)
}

func (w *s3Writer) Close() error {
	_, err := w.s3fs.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.s3fs.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buffer.Bytes()),
	})
	return err
}
