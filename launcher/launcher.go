// Package launcher hands the rewritten argument vector to the ssh binary.
//
// Two strategies implement one interface: replacing the current process
// image (the default; required for transparent use as an rsync transport,
// which expects its --rsh command to behave exactly like ssh itself), and
// spawning a child whose exact exit status is propagated, for
// environments without true process-image replacement.
package launcher

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// Strategy launches a prepared argument vector. Launch returns the exit
// status to terminate with; the exec strategy does not return at all on
// success. The child's or replaced process's exit code is never swallowed
// or transformed.
type Strategy interface {
	Launch(argv []string) (int, error)
}

// ExecStrategy replaces the current process image.
type ExecStrategy struct {
	log *slog.Logger
}

// NewExec returns the process-replacement strategy.
func NewExec(log *slog.Logger) *ExecStrategy {
	return &ExecStrategy{log: log}
}

// Launch resolves argv[0] in PATH and replaces the current process image.
// On success it never returns.
func (s *ExecStrategy) Launch(argv []string) (int, error) {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return -1, fmt.Errorf("%s not found in PATH: %w", argv[0], err)
	}

	s.log.Debug("Replacing process image",
		slog.String("path", path),
		slog.Any("argv", argv))

	err = unix.Exec(path, argv, os.Environ())
	// Exec only returns on failure.
	return -1, fmt.Errorf("exec %s failed: %w", path, err)
}

// SpawnStrategy runs the command as a child with inherited stdio and
// propagates its exit status.
type SpawnStrategy struct {
	log *slog.Logger
}

// NewSpawn returns the child-and-wait strategy.
func NewSpawn(log *slog.Logger) *SpawnStrategy {
	return &SpawnStrategy{log: log}
}

// Launch runs argv as a child process and returns its exact exit code.
func (s *SpawnStrategy) Launch(argv []string) (int, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	s.log.Debug("Spawning child process", slog.Any("argv", argv))

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("running %s failed: %w", argv[0], err)
}
