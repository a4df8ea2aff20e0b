// Package interfaces defines the core types, capability interfaces, and
// error taxonomy shared by the ec2ssh pipeline, separating interface
// definitions from implementations.
//
// The pipeline resolves a logical instance name to a live instance and
// address (InstanceResolver), retrieves the instance's authoritative SSH
// host keys from one of two mutually exclusive sources (HostKeySource),
// and caches a minimal per-(instance, address) known-hosts file that
// constrains the outbound SSH connection.
//
// # Capability Interfaces
//
// InstanceResolver: maps a Name tag value to exactly one instance record
// and its chosen network address. Read-only; ambiguity is never resolved
// automatically.
//
// HostKeySource: returns the ordered host key lines for a resolved
// instance. Implementations read either the EC2 boot console transcript
// or a pre-agreed S3 object written by the instance itself at boot.
// Whichever source is active is trusted exclusively.
//
// # Error Taxonomy
//
// Sentinel errors distinguish fatal-but-transient conditions (console
// output not yet posted, S3 object not yet written) from permanent ones
// (malformed transcript, undecodable key material, ambiguous name).
// Callers match them with errors.Is.
package interfaces
