package hostkeys

import (
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/ruteri/ec2ssh/config"
	"github.com/ruteri/ec2ssh/interfaces"
)

// ForConfig selects the active key source: S3 whenever a bucket is
// configured, console output otherwise.
func ForConfig(cfg *config.Config, sess *session.Session, log *slog.Logger) interfaces.HostKeySource {
	if cfg.PubkeyBucket != "" {
		return NewS3Source(s3.New(sess), cfg.PubkeyBucket, aws.StringValue(sess.Config.Region), log)
	}
	return NewConsoleSource(ec2.New(sess), log)
}
