package chunkstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Store keeps every object under a common key prefix in one bucket.
type S3Store struct {
	client s3iface.S3API
	bucket string
	prefix string
}

var _ Store = (*S3Store)(nil)

func NewS3Store(client s3iface.S3API, bucket, prefix string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is empty")
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *S3Store) key(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return path.Join(s.prefix, name), nil
}

func (s *S3Store) Create(ctx context.Context, name string) (Writer, error) {
	key, err := s.key(name)
	if err != nil {
		return nil, err
	}
	buf := aws.NewWriteAtBuffer(nil)
	buf.GrowthCoeff = 1.5

	return &s3Writer{
		ctx:   ctx,
		store: s,
		key:   key,
		buf:   buf,
	}, nil
}

func (s *S3Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key, err := s.key(name)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return out.Body, nil
}

////////////////////////////////////////////////////////////////////////////////

// s3Writer buffers the object in memory and uploads it on Commit.
type s3Writer struct {
	ctx   context.Context
	store *S3Store
	key   string
	buf   *aws.WriteAtBuffer
	off   int64
	done  bool
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.done {
		return 0, fmt.Errorf("write to finished object %s", w.key)
	}
	n, err := w.buf.WriteAt(p, w.off)
	w.off += int64(n)
	return n, err
}

func (w *s3Writer) Commit() error {
	if w.done {
		return fmt.Errorf("object %s is already finished", w.key)
	}
	w.done = true

	_, err := w.store.client.PutObjectWithContext(w.ctx, &s3.PutObjectInput{
		Bucket:        aws.String(w.store.bucket),
		Key:           aws.String(w.key),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentLength: aws.Int64(w.off),
	})
	w.buf = nil
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", w.key, err)
	}
	return nil
}

func (w *s3Writer) Discard() error {
	w.done = true
	w.buf = nil
	return nil
}
