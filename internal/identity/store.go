package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"citizen-impact/client/internal/model"
)

// Store persists the signed-in identity to a JSON file between runs, the
// terminal analogue of the web client's localStorage entries. Only the
// identity fields (display name, email, access token) are stored; no
// conversation content ever lands on disk here.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted identity. A missing file is not an error; it
// simply means the user has never signed in on this machine.
func (s *Store) Load() (model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Identity{}, nil
		}
		return model.Identity{}, fmt.Errorf("could not read identity file: %w", err)
	}

	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return model.Identity{}, fmt.Errorf("could not parse identity file: %w", err)
	}
	return identity, nil
}

// Save writes the identity, creating the parent directory when needed. The
// file holds an access token, so it is not group or world readable.
func (s *Store) Save(identity model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("could not create identity directory: %w", err)
	}

	data, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal identity: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("could not write identity file: %w", err)
	}
	return nil
}

// Clear removes the persisted identity. Used on sign-out; a missing file is
// already the desired state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not remove identity file: %w", err)
	}
	return nil
}

// DefaultPath resolves the identity file location under the user's config
// directory when no explicit path is configured.
func DefaultPath(configured string) string {
	if configured != "" {
		return configured
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".citizen-impact", "identity.json")
	}
	return filepath.Join(base, "citizen-impact", "identity.json")
}
