package trustcache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ruteri/ec2ssh/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockHostKeySource implements interfaces.HostKeySource for testing
type MockHostKeySource struct {
	mock.Mock
}

func (m *MockHostKeySource) HostKeys(ctx context.Context, target interfaces.ResolvedTarget) ([]string, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTarget(id, address string) interfaces.ResolvedTarget {
	return interfaces.ResolvedTarget{
		Instance: interfaces.InstanceRecord{
			ID:             id,
			PrivateAddress: address,
			OwnerAccountID: "123456789012",
		},
		Address: address,
	}
}

func TestGetOrCreateMissThenHit(t *testing.T) {
	dir := t.TempDir()
	cache := New(dir, testLogger())
	target := testTarget("i-123", "10.0.0.5")

	source := new(MockHostKeySource)
	source.On("HostKeys", mock.Anything, target).Return([]string{"ssh-ed25519 AAAA keyA", "ssh-rsa BBBB keyB"}, nil).Once()

	path, err := cache.GetOrCreate(context.Background(), target, source)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pubkey-i-123-10.0.0.5"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5 ssh-ed25519 AAAA keyA\n10.0.0.5 ssh-rsa BBBB keyB\n", string(content))

	// Second call is a hit and must not touch the source again.
	path2, err := cache.GetOrCreate(context.Background(), target, source)
	require.NoError(t, err)
	assert.Equal(t, path, path2)

	source.AssertExpectations(t)
	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestGetOrCreateAddressChangeIsAMiss(t *testing.T) {
	dir := t.TempDir()
	cache := New(dir, testLogger())

	oldTarget := testTarget("i-123", "10.0.0.5")
	newTarget := testTarget("i-123", "10.0.0.99")

	source := new(MockHostKeySource)
	source.On("HostKeys", mock.Anything, oldTarget).Return([]string{"ssh-rsa AAAA"}, nil).Once()
	source.On("HostKeys", mock.Anything, newTarget).Return([]string{"ssh-rsa BBBB"}, nil).Once()

	oldPath, err := cache.GetOrCreate(context.Background(), oldTarget, source)
	require.NoError(t, err)
	newPath, err := cache.GetOrCreate(context.Background(), newTarget, source)
	require.NoError(t, err)

	assert.NotEqual(t, oldPath, newPath)
	source.AssertExpectations(t)

	// The orphaned file is untouched.
	oldContent, err := os.ReadFile(oldPath)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5 ssh-rsa AAAA\n", string(oldContent))
}

func TestGetOrCreateConcurrentPopulate(t *testing.T) {
	dir := t.TempDir()
	target := testTarget("i-race", "10.1.2.3")
	keys := []string{"ssh-ed25519 AAAA", "ssh-rsa BBBB"}
	want := string(FormatKnownHosts(target.Address, keys))

	const n = 16
	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Each goroutine models an independent invocation with its own
			// cache handle and source, sharing only the directory.
			source := new(MockHostKeySource)
			source.On("HostKeys", mock.Anything, target).Return(keys, nil).Maybe()

			path, err := New(dir, testLogger()).GetOrCreate(context.Background(), target, source)
			if err != nil {
				errs[i] = err
				return
			}
			content, err := os.ReadFile(path)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = string(content)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		// No call may observe a partially written file.
		assert.Equal(t, want, results[i])
	}

	// Exactly one final file, no leftover temp files.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pubkey-i-race-10.1.2.3", entries[0].Name())
}

func TestGetOrCreatePropagatesSourceError(t *testing.T) {
	cache := New(t.TempDir(), testLogger())
	target := testTarget("i-123", "10.0.0.5")

	source := new(MockHostKeySource)
	source.On("HostKeys", mock.Anything, target).Return(nil, interfaces.ErrConsoleNotReady).Once()

	_, err := cache.GetOrCreate(context.Background(), target, source)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrConsoleNotReady))

	// Nothing cached on failure.
	_, statErr := os.Stat(cache.Path(target.Instance.ID, target.Address))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGetOrCreateUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	parent := t.TempDir()
	dir := filepath.Join(parent, "cache")
	require.NoError(t, os.MkdirAll(dir, 0500))

	cache := New(dir, testLogger())
	target := testTarget("i-123", "10.0.0.5")

	source := new(MockHostKeySource)
	source.On("HostKeys", mock.Anything, target).Return([]string{"ssh-rsa AAAA"}, nil).Maybe()

	_, err := cache.GetOrCreate(context.Background(), target, source)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrCacheWrite))
}

func TestFormatKnownHosts(t *testing.T) {
	data := FormatKnownHosts("10.0.0.5", []string{"keyA", "keyB"})
	assert.Equal(t, "10.0.0.5 keyA\n10.0.0.5 keyB\n", string(data))

	assert.Empty(t, FormatKnownHosts("10.0.0.5", nil))
}
