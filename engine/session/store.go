package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

// Persisted keys. These four values are the only durable client state.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyIDToken      = "idToken"
	KeyUserInfo     = "userInfo"
)

// Keys lists every key a session reset must remove.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyIDToken, KeyUserInfo}

// Store is a string-valued key/value store owned by a single client.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Clear() error
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return nil
}

// FileStore persists values as a JSON object in a single file.
// Writes are serialized across processes with an advisory lock next to the file.
type FileStore struct {
	fs   afero.Fs
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path on the OS filesystem.
func NewFileStore(path string) (*FileStore, error) {
	return NewFileStoreFs(afero.NewOsFs(), path)
}

// NewFileStoreFs creates a store on an arbitrary afero filesystem.
// The cross-process lock is only taken on the OS filesystem.
func NewFileStoreFs(fs afero.Fs, path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("session path is required")
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	s := &FileStore{fs: fs, path: path}
	if _, ok := fs.(*afero.OsFs); ok {
		s.lock = flock.New(path + ".lock")
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	return s.update(func(values map[string]string) {
		values[key] = value
	})
}

func (s *FileStore) Clear() error {
	return s.update(func(values map[string]string) {
		for k := range values {
			delete(values, k)
		}
	})
}

func (s *FileStore) update(mutate func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lock != nil {
		if err := s.lock.Lock(); err != nil {
			return fmt.Errorf("failed to lock session file: %w", err)
		}
		defer s.lock.Unlock() //nolint:errcheck
	}
	values, err := s.read()
	if err != nil {
		return err
	}
	mutate(values)
	return s.write(values)
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return values, nil
}

func (s *FileStore) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}
