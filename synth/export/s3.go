package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var errNoBucket = errors.New("export: s3 bucket must not be empty")

// PutObjectAPI is the subset of *s3.Client used by S3Sink.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads each unit under s3://<bucket>/<prefix>/<key>/.
type S3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
	cfg    config
}

// NewS3Sink returns a sink uploading through client.
func NewS3Sink(client PutObjectAPI, bucket, prefix string, opts ...Option) (*S3Sink, error) {
	if bucket == "" {
		return nil, errNoBucket
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &S3Sink{client: client, bucket: bucket, prefix: prefix, cfg: cfg}, nil
}

// Write encodes u and uploads every file.
func (s *S3Sink) Write(ctx context.Context, u Unit) error {
	files, err := s.cfg.encode(u)
	if err != nil {
		return err
	}
	for _, f := range files {
		key := path.Join(s.prefix, u.Key, f.name)
		put := &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(f.data),
			ContentType: aws.String(f.contentType),
		}
		if _, err := s.client.PutObject(ctx, put); err != nil {
			return fmt.Errorf("export: put s3://%s/%s: %w", s.bucket, key, err)
		}
	}
	return nil
}

// NewS3Client loads the default AWS configuration for region. A non-empty
// endpoint switches to path-style addressing against that URL, which is what
// S3-compatible stores such as MinIO expect.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("export: load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
