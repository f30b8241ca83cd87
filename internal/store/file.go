package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

// FileStore persists agent state as a small JSON file next to the
// binary. Writes go through a temp file and rename so a crash mid-write
// never leaves a torn record.
type FileStore struct {
	mu   sync.Mutex
	path string
}

type fileState struct {
	Phase   string `json:"phase,omitempty"`
	OrderID string `json:"order_id,omitempty"`
	Token   string `json:"access_token,omitempty"`
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

func (f *FileStore) LoadSession(ctx context.Context) (SessionRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.read()
	if err != nil {
		return SessionRecord{}, false, err
	}
	if st.Phase == "" {
		return SessionRecord{}, false, nil
	}
	return SessionRecord{Phase: models.Phase(st.Phase), OrderID: st.OrderID}, true, nil
}

func (f *FileStore) SaveSession(ctx context.Context, rec SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.read()
	if err != nil {
		return err
	}
	st.Phase = string(rec.Phase)
	st.OrderID = rec.OrderID
	return f.write(st)
}

func (f *FileStore) ClearSession(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.read()
	if err != nil {
		return err
	}
	st.Phase = ""
	st.OrderID = ""
	return f.write(st)
}

func (f *FileStore) LoadToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.read()
	if err != nil {
		return "", err
	}
	return st.Token, nil
}

func (f *FileStore) SaveToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.read()
	if err != nil {
		return err
	}
	st.Token = token
	return f.write(st)
}

func (f *FileStore) ClearToken(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.read()
	if err != nil {
		return err
	}
	st.Token = ""
	return f.write(st)
}

func (f *FileStore) read() (fileState, error) {
	var st fileState
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(b, &st); err != nil {
		// A corrupt state file behaves like no state at all.
		return fileState{}, nil
	}
	return st, nil
}

func (f *FileStore) write(st fileState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil && filepath.Dir(f.path) != "." {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
