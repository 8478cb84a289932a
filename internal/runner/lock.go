package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ErrLocked is returned by TryLock when another live holder owns the lock.
var ErrLocked = errors.New("repository locked")

// lockPollInterval is how often Lock retries a held lock.
const lockPollInterval = 250 * time.Millisecond

// LockInfo describes the holder of a repository lock.
type LockInfo struct {
	PID       int       `json:"pid"`
	URL       string    `json:"url"`
	StartedAt time.Time `json:"started_at"`
}

// LockPath returns the lock file for id. It lives beside the clone
// directory, not inside it, because git refuses to clone into a
// non-empty destination.
func LockPath(workDir, id string) string {
	return filepath.Join(workDir, "."+id+".lock")
}

// TryLock takes the lock for id without waiting. A lock left by a dead
// process is reclaimed.
func TryLock(workDir, id, url string) error {
	path := LockPath(workDir, id)
	info := LockInfo{PID: os.Getpid(), URL: url, StartedAt: time.Now()}

	err := writeLock(path, &info)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create lock %s: %w", path, err)
	}

	existing, readErr := ReadLock(workDir, id)
	if readErr != nil {
		if errors.Is(readErr, os.ErrNotExist) {
			// released between our create and read
			return fmt.Errorf("%w: %s", ErrLocked, id)
		}
		return fmt.Errorf("%w: %s (could not read lock: %v)", ErrLocked, id, readErr)
	}

	if isProcessAlive(existing.PID) {
		return fmt.Errorf("%w: %s held by PID %d for %s since %s", ErrLocked, id,
			existing.PID, existing.URL, existing.StartedAt.Format(time.RFC3339))
	}

	slog.Warn("reclaiming stale lock", "repo", id, "stale_pid", existing.PID)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale lock: %w", err)
	}
	if err := writeLock(path, &info); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrLocked, id)
		}
		return fmt.Errorf("acquire after stale removal: %w", err)
	}
	return nil
}

// Lock waits until the lock for id is free or ctx is done.
func Lock(ctx context.Context, workDir, id, url string) error {
	logged := false
	for {
		err := TryLock(workDir, id, url)
		if err == nil || !errors.Is(err, ErrLocked) {
			return err
		}
		if !logged {
			slog.Info("waiting for repository lock", "repo", id, "url", url)
			logged = true
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

// Unlock removes the lock for id. It is idempotent.
func Unlock(workDir, id string) {
	path := LockPath(workDir, id)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to release lock", "path", path, "error", err)
	}
}

// ReadLock reads the lock for id.
func ReadLock(workDir, id string) (*LockInfo, error) {
	data, err := os.ReadFile(LockPath(workDir, id))
	if err != nil {
		return nil, err
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse lock: %w", err)
	}
	return &info, nil
}

// writeLock creates the lock file with O_CREATE|O_EXCL.
func writeLock(path string, info *LockInfo) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	encErr := json.NewEncoder(f).Encode(info)
	closeErr := f.Close()
	if encErr != nil {
		return encErr
	}
	return closeErr
}

func isProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 probes existence
	return proc.Signal(syscall.Signal(0)) == nil
}
