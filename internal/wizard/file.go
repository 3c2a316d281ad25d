package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// lockRetryInterval is the poll interval while waiting on the advisory lock.
const lockRetryInterval = 25 * time.Millisecond

// FileStore persists wizard state as one JSON document per session under a
// data directory, coordinated across processes with an advisory file lock.
// Suited to single-user CLI use; deployments use PostgresStore.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed and returns a FileStore.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) sessionPath(sessionID uuid.UUID) string {
	return filepath.Join(f.dir, sessionID.String()+".json")
}

// withLock runs fn while holding the session's advisory lock.
func (f *FileStore) withLock(ctx context.Context, sessionID uuid.UUID, fn func(path string) error) error {
	path := f.sessionPath(sessionID)
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("acquiring session lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("acquiring session lock: not acquired")
	}
	defer func() { _ = lock.Unlock() }()
	return fn(path)
}

// readSlots loads the session document. A missing file is an empty session.
func readSlots(path string) (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	var slots map[string]json.RawMessage
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("decoding session file: %w", err)
	}
	if slots == nil {
		slots = map[string]json.RawMessage{}
	}
	return slots, nil
}

// writeSlots writes the session document atomically via temp file + rename.
func writeSlots(path string, slots map[string]json.RawMessage) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encoding session file: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

// Get implements Store.
func (f *FileStore) Get(ctx context.Context, sessionID uuid.UUID, key string) (json.RawMessage, error) {
	var out json.RawMessage
	err := f.withLock(ctx, sessionID, func(path string) error {
		slots, err := readSlots(path)
		if err != nil {
			return err
		}
		raw, ok := slots[key]
		if !ok {
			return ErrNotFound
		}
		out = raw
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put implements Store.
func (f *FileStore) Put(ctx context.Context, sessionID uuid.UUID, key string, value json.RawMessage) error {
	return f.withLock(ctx, sessionID, func(path string) error {
		slots, err := readSlots(path)
		if err != nil {
			return err
		}
		slots[key] = value
		return writeSlots(path, slots)
	})
}

// Delete implements Store.
func (f *FileStore) Delete(ctx context.Context, sessionID uuid.UUID, key string) error {
	return f.withLock(ctx, sessionID, func(path string) error {
		slots, err := readSlots(path)
		if err != nil {
			return err
		}
		if _, ok := slots[key]; !ok {
			return nil
		}
		delete(slots, key)
		return writeSlots(path, slots)
	})
}
