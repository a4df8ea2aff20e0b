// Package hostkeys retrieves an instance's authoritative SSH host keys
// from one of two mutually exclusive sources.
//
// The console source reads the EC2 boot console transcript and extracts
// the delimited block cloud-init prints between
// "-----BEGIN SSH HOST KEY KEYS-----" and "-----END SSH HOST KEY KEYS-----".
// It is the standard mechanism but EC2 takes several minutes after boot
// before the transcript is available.
//
// The S3 source reads a pre-agreed object at {instance_arn}/sshkeys,
// written by the instance itself during boot. It has no delay but needs
// extra cloud-init scripting and IAM setup (the bucket policy keys writes
// on ec2:SourceInstanceARN so an instance can only write its own file).
//
// Selection is configuration-driven: the S3 source is used whenever a
// bucket is configured, the console source otherwise. The two are never
// combined or cross-validated.
package hostkeys
