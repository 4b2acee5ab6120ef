package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

// S3 writes blobs to a bucket.  Credentials come from the default AWS chain.
type S3 struct {
	cl     s3iface.S3API
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3 builds a client for region; a non-empty endpoint switches to
// path-style addressing for S3-compatible stores.
func NewS3(bucket, region, endpoint, prefix string) (*S3, error) {
	cfg := aws.NewConfig().WithRegion(region)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create aws session")
	}
	return &S3{cl: s3.New(sess), bucket: bucket, prefix: prefix, now: time.Now}, nil
}

func (s *S3) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	key := path.Join(s.prefix, objectName(name, s.now()))
	body, ok := r.(io.ReadSeeker)
	if !ok {
		return "", errors.New("s3 upload requires a seekable body")
	}
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.cl.PutObjectWithContext(ctx, in); err != nil {
		return "", errors.Wrapf(err, "put s3 object %s", key)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
