package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"account-hub/internal/models"
)

// FileStore keeps the account collection as one ordered JSON array on disk.
// A single mutex serializes every read-modify-write cycle, which is what
// makes the duplicate-email check safe under concurrent registrations.
// Writes go to a temp file, are fsynced, then renamed over the live file so
// a crash can never leave a truncated collection behind.
//
// Lookups are O(n) scans. Fine at demo scale; this is the first thing to
// replace if the account count grows.
type FileStore struct {
	mu       sync.Mutex
	path     string
	accounts []models.Account
}

// OpenFileStore loads the collection at path, creating an empty one when the
// file does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	fs := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(raw) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(raw, &fs.accounts); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	return fs, nil
}

func (fs *FileStore) FindByEmail(email string) (*models.Account, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.findByEmailLocked(email)
}

func (fs *FileStore) findByEmailLocked(email string) (*models.Account, error) {
	norm := models.Normalize(email)
	for i := range fs.accounts {
		if models.Normalize(fs.accounts[i].Email) == norm {
			acc := fs.accounts[i]
			return &acc, nil
		}
	}
	return nil, ErrNotFound
}

func (fs *FileStore) FindByID(id string) (*models.Account, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for i := range fs.accounts {
		if fs.accounts[i].ID == id {
			acc := fs.accounts[i]
			return &acc, nil
		}
	}
	return nil, ErrNotFound
}

func (fs *FileStore) FindByIdentity(identifier string) (*models.Account, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	norm := models.Normalize(identifier)
	for i := range fs.accounts {
		if models.Normalize(fs.accounts[i].Email) == norm {
			acc := fs.accounts[i]
			return &acc, nil
		}
	}
	// fall back to full name, first match in storage order wins
	for i := range fs.accounts {
		if models.Normalize(fs.accounts[i].FullName) == norm {
			acc := fs.accounts[i]
			return &acc, nil
		}
	}
	return nil, ErrNotFound
}

func (fs *FileStore) Insert(acc *models.Account) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, err := fs.findByEmailLocked(acc.Email); err == nil {
		return ErrDuplicateEmail
	}

	fs.accounts = append(fs.accounts, *acc)
	if err := fs.persistLocked(); err != nil {
		// roll back the in-memory append so a failed write leaves no ghost
		fs.accounts = fs.accounts[:len(fs.accounts)-1]
		return err
	}
	return nil
}

func (fs *FileStore) Update(acc *models.Account) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	idx := -1
	for i := range fs.accounts {
		if fs.accounts[i].ID == acc.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	norm := models.Normalize(acc.Email)
	for i := range fs.accounts {
		if i != idx && models.Normalize(fs.accounts[i].Email) == norm {
			return ErrDuplicateEmail
		}
	}

	prev := fs.accounts[idx]
	fs.accounts[idx] = *acc
	if err := fs.persistLocked(); err != nil {
		fs.accounts[idx] = prev
		return err
	}
	return nil
}

func (fs *FileStore) List() ([]models.Account, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	out := make([]models.Account, len(fs.accounts))
	copy(out, fs.accounts)
	return out, nil
}

func (fs *FileStore) ReplaceAll(accs []models.Account) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev := fs.accounts
	fs.accounts = make([]models.Account, len(accs))
	copy(fs.accounts, accs)
	if err := fs.persistLocked(); err != nil {
		fs.accounts = prev
		return err
	}
	return nil
}

func (fs *FileStore) Close() error {
	return nil
}

// persistLocked writes the whole collection atomically. Caller holds fs.mu.
func (fs *FileStore) persistLocked() error {
	raw, err := json.MarshalIndent(fs.accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".accounts-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}

	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}
