package hostkeys

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/ruteri/ec2ssh/interfaces"
)

// Markers cloud-init prints around the host key block in the boot
// transcript.
const (
	beginMarker = "-----BEGIN SSH HOST KEY KEYS-----"
	endMarker   = "-----END SSH HOST KEY KEYS-----"
)

// ConsoleSource extracts host keys from the instance's boot console
// transcript via the EC2 GetConsoleOutput API.
type ConsoleSource struct {
	client ec2iface.EC2API
	log    *slog.Logger
}

// NewConsoleSource creates a console-transcript key source.
func NewConsoleSource(client ec2iface.EC2API, log *slog.Logger) *ConsoleSource {
	return &ConsoleSource{client: client, log: log}
}

// HostKeys fetches and parses the boot transcript. Fails with
// ErrConsoleNotReady while EC2 has not posted the transcript yet (a
// multi-minute delay after boot; transient, retry later) and with
// ErrMalformedTranscript when a transcript exists but carries no
// delimited key block.
func (s *ConsoleSource) HostKeys(ctx context.Context, target interfaces.ResolvedTarget) ([]string, error) {
	s.log.Debug("Getting console output", slog.String("instance_id", target.Instance.ID))

	out, err := s.client.GetConsoleOutputWithContext(ctx, &ec2.GetConsoleOutputInput{
		InstanceId: aws.String(target.Instance.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("get console output failed: %w", err)
	}
	if out.Output == nil {
		return nil, fmt.Errorf("%w: instance %s (this may take a few minutes after boot)",
			interfaces.ErrConsoleNotReady, target.Instance.ID)
	}

	// The API returns the transcript base64-encoded.
	transcript, err := base64.StdEncoding.DecodeString(aws.StringValue(out.Output))
	if err != nil {
		return nil, fmt.Errorf("%w: console output is not valid base64: %v", interfaces.ErrKeyDecode, err)
	}

	keys, err := ParseTranscript(string(transcript))
	if err != nil {
		return nil, fmt.Errorf("%w: instance %s", err, target.Instance.ID)
	}
	if err := validateKeyLines(keys); err != nil {
		return nil, err
	}

	s.log.Debug("Extracted host keys from console output",
		slog.String("instance_id", target.Instance.ID),
		slog.Int("keys", len(keys)))
	return keys, nil
}

// ParseTranscript extracts the ordered key lines between the first begin
// marker and the last end marker after it, mirroring a greedy regex
// match. Everything strictly between the markers is the payload; blank
// lines are dropped.
func ParseTranscript(transcript string) ([]string, error) {
	begin := strings.Index(transcript, beginMarker)
	if begin < 0 {
		return nil, interfaces.ErrMalformedTranscript
	}
	rest := transcript[begin+len(beginMarker):]

	end := strings.LastIndex(rest, endMarker)
	if end < 0 {
		return nil, interfaces.ErrMalformedTranscript
	}

	return splitKeyLines(rest[:end]), nil
}
