package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"testwright/pkg/logging"
)

// ReportsDir is the subdirectory holding saved discovery reports.
const ReportsDir = "reports"

// ErrNotFound is returned when a stored document does not exist.
var ErrNotFound = errors.New("not found")

// Storage persists named YAML documents in subdirectories of the
// configuration directory.
type Storage struct {
	mu         sync.RWMutex
	configPath string // when empty the default ~/.config/testwright is used
}

// NewStorage creates a Storage using the default configuration directory
func NewStorage() *Storage {
	return &Storage{}
}

// NewStorageWithPath creates a Storage rooted at configPath
func NewStorageWithPath(configPath string) *Storage {
	return &Storage{configPath: configPath}
}

// Save writes data as <kind>/<name>.yaml and returns the file path.
func (s *Storage) Save(kind, name string, data []byte) (string, error) {
	if err := validateKey(kind, name); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.dir(kind)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, sanitizeFilename(name)+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}

	logging.Info("Storage", "Saved %s/%s to %s", kind, name, path)
	return path, nil
}

// Load reads <kind>/<name>.yaml.
func (s *Storage) Load(kind, name string) ([]byte, error) {
	if err := validateKey(kind, name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dir, err := s.dir(kind)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, sanitizeFilename(name)+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", kind, name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

// Delete removes <kind>/<name>.yaml.
func (s *Storage) Delete(kind, name string) error {
	if err := validateKey(kind, name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.dir(kind)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, sanitizeFilename(name)+".yaml")
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", kind, name, ErrNotFound)
		}
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}

	logging.Info("Storage", "Deleted %s/%s", kind, name)
	return nil
}

// List returns the stored names of kind in lexical order.
func (s *Storage) List(kind string) ([]string, error) {
	if kind == "" {
		return nil, fmt.Errorf("kind cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dir, err := s.dir(kind)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	names := []string{}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Storage) dir(kind string) (string, error) {
	root := s.configPath
	if root == "" {
		var err error
		if root, err = GetUserConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(root, kind), nil
}

func validateKey(kind, name string) error {
	if kind == "" {
		return fmt.Errorf("kind cannot be empty")
	}
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

// sanitizeFilename replaces characters that are unsafe in file names and
// collapses runs of underscores.
func sanitizeFilename(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '.', ' ':
			return '_'
		}
		return r
	}, name)
	for strings.Contains(mapped, "__") {
		mapped = strings.ReplaceAll(mapped, "__", "_")
	}
	mapped = strings.Trim(mapped, "_")
	if mapped == "" {
		return "unnamed"
	}
	return mapped
}
