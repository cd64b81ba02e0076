// Package session persists the admin bearer token between runs. The token
// is the one piece of state every API call shares; it only ever moves from
// set to absent outside of login.
package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type Store interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

// MemoryStore keeps the token for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryStore) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.SetToken("")
}

type fileState struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore keeps the token in a small JSON file (0600).
type FileStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return ""
	}
	var st fileState
	if err := sonic.Unmarshal(b, &st); err != nil {
		return ""
	}
	return st.Token
}

func (f *FileStore) SetToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := sonic.Marshal(fileState{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return errors.Wrap(err, "write session")
	}
	return errors.Wrap(os.Rename(tmp, f.Path), "replace session")
}

// Clear removes the file; a missing file is already clear.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "clear session")
	}
	return nil
}
