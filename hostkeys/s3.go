package hostkeys

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/ruteri/ec2ssh/interfaces"
)

// S3Source reads host keys from a bucket the instance wrote to at boot.
// The object key is {instance_arn}/sshkeys.
type S3Source struct {
	client s3iface.S3API
	bucket string
	region string
	log    *slog.Logger
}

// NewS3Source creates an object-store key source for the given bucket.
// The region is needed to form the instance ARN in the object key.
func NewS3Source(client s3iface.S3API, bucket, region string, log *slog.Logger) *S3Source {
	return &S3Source{client: client, bucket: bucket, region: region, log: log}
}

// HostKeys downloads and splits the instance's key object. Fails with
// ErrKeysNotFound while the instance has not written it yet (boot-time
// race, retryable) and with ErrKeyDecode when the object is not valid
// UTF-8 text.
func (s *S3Source) HostKeys(ctx context.Context, target interfaces.ResolvedTarget) ([]string, error) {
	objectKey := target.ARN(s.region) + "/sshkeys"
	s.log.Debug("Downloading host keys from S3",
		slog.String("bucket", s.bucket),
		slog.String("key", objectKey))

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, fmt.Errorf("%w: s3://%s/%s", interfaces.ErrKeysNotFound, s.bucket, objectKey)
		}
		return nil, fmt.Errorf("get object from S3 failed: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body failed: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: s3://%s/%s is not valid UTF-8", interfaces.ErrKeyDecode, s.bucket, objectKey)
	}

	keys := splitKeyLines(string(data))
	if err := validateKeyLines(keys); err != nil {
		return nil, err
	}

	s.log.Debug("Downloaded host keys from S3",
		slog.String("bucket", s.bucket),
		slog.Int("keys", len(keys)))
	return keys, nil
}
