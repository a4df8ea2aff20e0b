// Package resolver maps logical instance names (Name tag values) to live
// EC2 instances via the inventory API.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/ruteri/ec2ssh/interfaces"
)

// TagNameResolver implements interfaces.InstanceResolver on top of the
// EC2 DescribeInstances API. It holds no state beyond its client.
type TagNameResolver struct {
	client      ec2iface.EC2API
	usePublicIP bool
	log         *slog.Logger
}

// New creates a resolver. When usePublicIP is set, resolution chooses the
// instance's public address; otherwise the private one.
func New(client ec2iface.EC2API, usePublicIP bool, log *slog.Logger) *TagNameResolver {
	return &TagNameResolver{
		client:      client,
		usePublicIP: usePublicIP,
		log:         log,
	}
}

// Resolve looks up the instance whose Name tag exactly equals name.
// Zero matches fail with ErrInstanceNotFound, more than one with
// ErrAmbiguousName. The owning account is taken from the reservation.
func (r *TagNameResolver) Resolve(ctx context.Context, name string) (interfaces.ResolvedTarget, error) {
	out, err := r.client.DescribeInstancesWithContext(ctx, &ec2.DescribeInstancesInput{
		Filters: []*ec2.Filter{{
			Name:   aws.String("tag:Name"),
			Values: []*string{aws.String(name)},
		}},
	})
	if err != nil {
		return interfaces.ResolvedTarget{}, fmt.Errorf("describe instances failed: %w", err)
	}

	type match struct {
		instance *ec2.Instance
		owner    string
	}
	var matches []match
	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			matches = append(matches, match{instance, aws.StringValue(reservation.OwnerId)})
		}
	}

	if len(matches) == 0 {
		return interfaces.ResolvedTarget{}, fmt.Errorf("%w: %q", interfaces.ErrInstanceNotFound, name)
	}
	if len(matches) > 1 {
		return interfaces.ResolvedTarget{}, fmt.Errorf("%w: %q matches %d instances", interfaces.ErrAmbiguousName, name, len(matches))
	}

	record := interfaces.InstanceRecord{
		ID:             aws.StringValue(matches[0].instance.InstanceId),
		PrivateAddress: aws.StringValue(matches[0].instance.PrivateIpAddress),
		PublicAddress:  aws.StringValue(matches[0].instance.PublicIpAddress),
		OwnerAccountID: matches[0].owner,
	}

	address, kind := record.PrivateAddress, "private"
	if r.usePublicIP {
		address, kind = record.PublicAddress, "public"
	}
	if address == "" {
		return interfaces.ResolvedTarget{}, fmt.Errorf("instance %s has no %s address", record.ID, kind)
	}

	r.log.Debug("Resolved instance",
		slog.String("name", name),
		slog.String("instance_id", record.ID),
		slog.String("address", address),
		slog.String("owner", record.OwnerAccountID))

	return interfaces.ResolvedTarget{Instance: record, Address: address}, nil
}

// MatchingNames returns the Name tag values of all instances whose name
// starts with prefix, for shell tab completion. Results follow the API's
// page order; duplicates are possible when several instances share a name.
func (r *TagNameResolver) MatchingNames(ctx context.Context, prefix string) ([]string, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []*ec2.Filter{{
			Name:   aws.String("tag:Name"),
			Values: []*string{aws.String(prefix + "*")},
		}},
	}

	var names []string
	err := r.client.DescribeInstancesPagesWithContext(ctx, input,
		func(page *ec2.DescribeInstancesOutput, lastPage bool) bool {
			for _, reservation := range page.Reservations {
				for _, instance := range reservation.Instances {
					for _, tag := range instance.Tags {
						// The API filter glob also matches "?" etc; re-check the prefix.
						if aws.StringValue(tag.Key) == "Name" && strings.HasPrefix(aws.StringValue(tag.Value), prefix) {
							names = append(names, aws.StringValue(tag.Value))
						}
					}
				}
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("describe instances failed: %w", err)
	}
	return names, nil
}
