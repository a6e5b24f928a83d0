// Package kvstore is the durable string key-value storage used for
// per-visitor state: unlock progress, audio preferences and the gallery
// cache. Values are plain strings; structured values are JSON encoded.
package kvstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vytor/valentine/internal/logger"
)

// Store is a string key-value store bound to one namespace.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend stores keys for many namespaces. The SQLite repository
// implements it.
type Backend interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
}

type scoped struct {
	backend   Backend
	namespace string
}

// Scope binds a Backend to a single namespace.
func Scope(b Backend, namespace string) Store {
	return &scoped{backend: b, namespace: namespace}
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.backend.Get(ctx, s.namespace, key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.namespace, key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.namespace, key)
}

// Memory is an in-process Backend and Store. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace][key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]map[string]string{}
	}
	if m.data[namespace] == nil {
		m.data[namespace] = map[string]string{}
	}
	m.data[namespace][key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[namespace], key)
	return nil
}

// GetJSON decodes the value under key into v. Missing keys, storage
// failures and malformed JSON all report false; the latter two are logged.
func GetJSON(ctx context.Context, s Store, key string, v any) bool {
	log := logger.FromContext(ctx).WithPrefix("kvstore").WithField("key", key)

	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		log.WithError(err).Warn("storage unavailable, treating as empty")
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.WithError(err).Warn("discarding malformed stored value")
		return false
	}
	return true
}

// SetJSON encodes v and stores it under key in a single write.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, key, string(b)); err != nil {
		logger.FromContext(ctx).WithPrefix("kvstore").WithField("key", key).
			WithError(err).Error("failed to persist value")
		return err
	}
	return nil
}
