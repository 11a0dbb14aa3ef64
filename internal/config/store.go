package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"

	"ocr-desk/internal/domain"
)

// Store defines persistence operations for app settings.
type Store interface {
	Load() (domain.Settings, error)
	Save(domain.Settings) error
}

// JSONStore persists settings in a single JSON file on disk.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed settings store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads settings from disk or returns defaults when missing.
func (s *JSONStore) Load() (domain.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}

		return domain.Settings{}, err
	}

	cfg := DefaultSettings()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.Settings{}, err
	}

	return cfg, nil
}

// Save writes settings as indented JSON and creates parent directories.
func (s *JSONStore) Save(cfg domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o644)
}

// EnvStore overlays OCR_* environment variables on another store's settings.
// Saved values go to the wrapped store unchanged.
type EnvStore struct {
	Store
}

// WithEnv wraps store so environment variables take precedence on Load.
func WithEnv(store Store) *EnvStore {
	return &EnvStore{Store: store}
}

// Load reads the wrapped settings and applies the environment overlay.
func (s *EnvStore) Load() (domain.Settings, error) {
	cfg, err := s.Store.Load()
	if err != nil {
		return domain.Settings{}, err
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return domain.Settings{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}
