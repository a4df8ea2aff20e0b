package interfaces

import "errors"

var (
	// ErrInstanceNotFound is returned when no instance carries the
	// requested Name tag. The user must fix the name or wait for tag
	// propagation.
	ErrInstanceNotFound = errors.New("no instances found")

	// ErrAmbiguousName is returned when more than one instance carries an
	// identical Name tag value. Never resolved automatically; the caller
	// must disambiguate out of band.
	ErrAmbiguousName = errors.New("multiple instances found")

	// ErrConsoleNotReady is returned when the boot console transcript has
	// not been posted yet. EC2 takes several minutes after boot; the
	// condition is transient and the caller is expected to retry later.
	ErrConsoleNotReady = errors.New("no console output yet")

	// ErrKeysNotFound is returned when the instance has not yet written
	// its host keys to the configured S3 bucket. Also a boot-time race,
	// retryable.
	ErrKeysNotFound = errors.New("host keys not present in bucket")

	// ErrMalformedTranscript is returned when a console transcript exists
	// but contains no delimited host key block. Indicates a cloud-init
	// problem on the instance, not recoverable by retrying.
	ErrMalformedTranscript = errors.New("no SSH host key block in console output")

	// ErrKeyDecode is returned when key source data cannot be decoded or
	// a key line does not parse as an authorized-keys-format public key.
	ErrKeyDecode = errors.New("undecodable host key data")

	// ErrMissingDestination is returned when no argument qualifies as the
	// SSH destination (all tokens are options or option values).
	ErrMissingDestination = errors.New("instance name is required")

	// ErrCacheWrite is returned when the trust cache directory cannot be
	// created or written.
	ErrCacheWrite = errors.New("cannot write known hosts cache")
)
