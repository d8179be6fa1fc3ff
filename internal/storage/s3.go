package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"podcast-generator/internal/config"
)

// ErrObjectExists is returned when an upload targets a key that is already taken.
var ErrObjectExists = errors.New("object already exists")

// ObjectKey returns a fresh audio key namespaced under userID.
func ObjectKey(userID string) string {
	return fmt.Sprintf("%s/%s.mp3", userID, uuid.NewString())
}

// S3Store keeps audio artifacts in an S3-compatible bucket.
type S3Store struct {
	s3Svc  *s3.S3
	bucket string
}

func NewS3Store(s3Svc *s3.S3, bucket string) *S3Store {
	return &S3Store{s3Svc: s3Svc, bucket: bucket}
}

// NewS3Client builds an S3 client from the storage settings. Static
// credentials are used when configured; otherwise the default chain applies.
func NewS3Client(conf *config.StorageConfig) (*s3.S3, error) {
	awsConf := aws.NewConfig().
		WithRegion(conf.Region).
		WithS3ForcePathStyle(conf.ForcePathStyle)
	if conf.Endpoint != "" {
		awsConf = awsConf.WithEndpoint(conf.Endpoint)
	}
	if conf.AccessKeyID != "" {
		awsConf = awsConf.WithCredentials(credentials.NewStaticCredentials(conf.AccessKeyID, conf.SecretKey, ""))
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsConf,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}
	return s3.New(sess), nil
}

// Put uploads data under key. The request carries If-None-Match: * so an
// existing object is never replaced.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	req, _ := s.s3Svc.PutObjectRequest(&s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	req.SetContext(ctx)
	req.HTTPRequest.Header.Set("If-None-Match", "*")

	if err := req.Send(); err != nil {
		if isPreconditionFailed(err) {
			return fmt.Errorf("%s: %w", key, ErrObjectExists)
		}
		log.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("Failed to upload object")
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Debug().
		Str("bucket", s.bucket).
		Str("key", key).
		Int("size", len(data)).
		Msg("Uploaded object")
	return nil
}

// SignedURL mints a pre-signed GET URL for key valid for ttl.
func (s *S3Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, _ := s.s3Svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	signed, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("failed to sign url for %s: %w", key, err)
	}
	return signed, nil
}

func isPreconditionFailed(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode() == http.StatusPreconditionFailed ||
			reqErr.StatusCode() == http.StatusConflict
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == "PreconditionFailed"
	}
	return false
}
