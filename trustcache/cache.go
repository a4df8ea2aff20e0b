// Package trustcache persists minimal per-(instance, address) known-hosts
// files so the SSH connection fails closed if the presented host identity
// does not match what the instance published at boot.
//
// File names are derived from the instance id and the resolved address
// only, so a redeployed instance or a reassigned address is a cache miss
// by construction. There is no TTL and no invalidation; an address change
// orphans the old file, which is never looked up again.
//
// Multiple ec2ssh invocations (two terminals, rsync's paired transfers)
// may race to populate the same entry. The write path tolerates this with
// a uniquely named temp file in the cache directory followed by a single
// atomic rename; the rename is the only synchronization primitive. Racing
// writers derive equivalent content from the same authoritative source,
// so whichever rename lands last is as good as the first.
package trustcache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ruteri/ec2ssh/interfaces"
	"go.uber.org/atomic"
)

// Cache owns one flat directory of known-hosts files.
type Cache struct {
	dir string
	log *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache over dir. The directory is created lazily on the
// first write, not here, so a fully warm cache never touches it.
func New(dir string, log *slog.Logger) *Cache {
	return &Cache{dir: dir, log: log}
}

// Path returns the deterministic file name for an (instance id, address)
// pair. Same inputs always produce the same name; different addresses for
// the same instance never collide.
func (c *Cache) Path(instanceID, address string) string {
	return filepath.Join(c.dir, fmt.Sprintf("pubkey-%s-%s", instanceID, address))
}

// GetOrCreate returns the known-hosts file for the target, creating it
// via source on a miss. A hit returns immediately without invoking the
// source; this is the dominant fast path and makes no network calls.
// Source failures propagate verbatim so callers can match the sentinel
// errors; local filesystem problems fail with ErrCacheWrite.
func (c *Cache) GetOrCreate(ctx context.Context, target interfaces.ResolvedTarget, source interfaces.HostKeySource) (string, error) {
	filePath := c.Path(target.Instance.ID, target.Address)

	if _, err := os.Stat(filePath); err == nil {
		c.hits.Inc()
		c.log.Debug("Using cached known hosts file", slog.String("path", filePath))
		return filePath, nil
	}
	c.misses.Inc()

	// Idempotent; concurrent invocations may create it simultaneously.
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return "", fmt.Errorf("%w: %v", interfaces.ErrCacheWrite, err)
	}

	keys, err := source.HostKeys(ctx, target)
	if err != nil {
		return "", err
	}

	if err := c.writeAtomic(filePath, FormatKnownHosts(target.Address, keys)); err != nil {
		return "", err
	}

	c.log.Debug("Created new known hosts file",
		slog.String("path", filePath),
		slog.Int("keys", len(keys)))
	return filePath, nil
}

// Stats reports cache hits and misses for this process, for diagnostics.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// FormatKnownHosts renders one "<address> <key>" known-hosts line per
// host key, newline-terminated, no trailing metadata.
func FormatKnownHosts(address string, keys []string) []byte {
	var b strings.Builder
	for _, key := range keys {
		b.WriteString(address)
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// writeAtomic writes data to a uniquely named temp file in the cache
// directory and renames it into place. The temp file must live in the
// same directory as the destination for the rename to be atomic.
func (c *Cache) writeAtomic(filePath string, data []byte) error {
	tmpPath := filepath.Join(c.dir, ".tmp-"+uuid.NewString())

	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrCacheWrite, err)
	}

	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", interfaces.ErrCacheWrite, werr)
	}

	c.log.Debug("Wrote temp file", slog.String("path", tmpPath))

	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", interfaces.ErrCacheWrite, err)
	}
	return nil
}
