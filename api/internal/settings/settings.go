package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"ocr-web/api/internal/mistral"
)

// Factory builds a remote client for a credential. Injected so tests can
// point clients at a fake server.
type Factory func(apiKey string) *mistral.Client

type fileFormat struct {
	APIKey string `json:"mistral_api_key"`
}

type state struct {
	apiKey string
	client *mistral.Client
}

// Service holds the process-wide API credential and the client derived
// from it. Updates swap in a freshly built immutable client; an in-flight
// request keeps the client it started with, which is acceptable because
// credential updates are rare administrative actions.
type Service struct {
	path    string
	factory Factory
	cur     atomic.Pointer[state]
}

// New loads the credential from path when the file exists. A missing file
// just means no key is configured yet.
func New(path string, factory Factory) (*Service, error) {
	s := &Service{path: path, factory: factory}
	s.cur.Store(&state{})

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var f fileFormat
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if f.APIKey != "" {
		s.cur.Store(&state{apiKey: f.APIKey, client: factory(f.APIKey)})
	}
	return s, nil
}

func (s *Service) HasKey() bool {
	return s.cur.Load().apiKey != ""
}

// Client returns the current remote client, or nil when no credential is
// configured.
func (s *Service) Client() *mistral.Client {
	return s.cur.Load().client
}

// Save persists the credential and swaps in a new client instance.
func (s *Service) Save(apiKey string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	b, err := json.Marshal(fileFormat{APIKey: apiKey})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	s.cur.Store(&state{apiKey: apiKey, client: s.factory(apiKey)})
	return nil
}
