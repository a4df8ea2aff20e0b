package interfaces

import (
	"context"

	"github.com/aws/aws-sdk-go/aws/arn"
)

// InstanceRecord describes one live EC2 instance as returned by the
// inventory API. Records are scoped to a single resolution call and are
// never cached beyond the current invocation.
type InstanceRecord struct {
	// ID is the instance id, e.g. "i-0abc123".
	ID string

	// PrivateAddress is the instance's private IP address.
	PrivateAddress string

	// PublicAddress is the instance's public IP address, empty when the
	// instance has none.
	PublicAddress string

	// OwnerAccountID is the AWS account that owns the reservation the
	// instance belongs to. Needed to form the instance ARN.
	OwnerAccountID string
}

// ResolvedTarget pairs an instance record with the address chosen for the
// SSH connection (private or public, per configuration).
type ResolvedTarget struct {
	Instance InstanceRecord
	Address  string
}

// ARN returns the instance ARN in the given region, e.g.
// "arn:aws:ec2:us-east-1:123456789012:instance/i-0abc123". The S3 host
// key source uses it as the object key prefix the instance wrote to at
// boot.
func (t ResolvedTarget) ARN(region string) string {
	return arn.ARN{
		Partition: "aws",
		Service:   "ec2",
		Region:    region,
		AccountID: t.Instance.OwnerAccountID,
		Resource:  "instance/" + t.Instance.ID,
	}.String()
}

// InstanceResolver maps a logical instance name (its Name tag value) to
// exactly one instance and its current address.
type InstanceResolver interface {
	// Resolve fails with ErrInstanceNotFound if no instance carries the
	// tag and ErrAmbiguousName if more than one does.
	Resolve(ctx context.Context, name string) (ResolvedTarget, error)
}

// HostKeySource retrieves the authoritative SSH host key lines for a
// resolved instance, in the order the instance published them.
type HostKeySource interface {
	HostKeys(ctx context.Context, target ResolvedTarget) ([]string, error)
}
