package admin

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// APIKey represents a key for authenticating requests to the admin API.
type APIKey struct {
	ID        string     `json:"id"`
	Key       string     `json:"key"`
	Name      string     `json:"name"`
	Scopes    []string   `json:"scopes"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	Active    bool       `json:"active"`
}

// KeyStore is an in-memory store for admin API keys.
type KeyStore struct {
	mu    sync.RWMutex
	byID  map[string]*APIKey
	byKey map[string]string // key string -> ID
}

// NewKeyStore creates a new KeyStore.
func NewKeyStore() *KeyStore {
	return &KeyStore{
		byID:  make(map[string]*APIKey),
		byKey: make(map[string]string),
	}
}

// Create generates a new API key with the given name and scopes.
func (s *KeyStore) Create(name string, scopes []string) (*APIKey, error) {
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return s.insert("sb-"+hex.EncodeToString(keyBytes), name, scopes)
}

// Adopt registers a preprovisioned key value, e.g. one supplied through the
// environment at startup.
func (s *KeyStore) Adopt(key, name string, scopes []string) (*APIKey, error) {
	if key == "" {
		return nil, fmt.Errorf("key value is required")
	}
	return s.insert(key, name, scopes)
}

func (s *KeyStore) insert(key, name string, scopes []string) (*APIKey, error) {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, fmt.Errorf("generating id: %w", err)
	}
	id := fmt.Sprintf("%x-%x-%x-%x-%x",
		idBytes[0:4], idBytes[4:6], idBytes[6:8], idBytes[8:10], idBytes[10:16])

	if len(scopes) == 0 {
		scopes = []string{ScopeAdmin}
	}

	apiKey := &APIKey{
		ID:        id,
		Key:       key,
		Name:      name,
		Scopes:    scopes,
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byKey[key]; exists {
		return nil, fmt.Errorf("key already registered")
	}
	s.byID[id] = apiKey
	s.byKey[key] = id
	return apiKey, nil
}

// Get returns the API key with the given ID.
func (s *KeyStore) Get(id string) (*APIKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.byID[id]
	return k, ok
}

// List returns all API keys.
func (s *KeyStore) List() []*APIKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]*APIKey, 0, len(s.byID))
	for _, k := range s.byID {
		keys = append(keys, k)
	}
	return keys
}

// Revoke deactivates the key with the given ID.
func (s *KeyStore) Revoke(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("key not found: %s", id)
	}
	now := time.Now().UTC()
	k.RevokedAt = &now
	k.Active = false
	return nil
}

// ValidateKey looks up an active key by its secret value.
func (s *KeyStore) ValidateKey(key string) (*APIKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	k := s.byID[id]
	if !k.Active {
		return nil, false
	}
	return k, true
}
