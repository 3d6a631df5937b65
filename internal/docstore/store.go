// Package docstore keeps small JSON documents (menu, offers, settings) under
// string keys with upsert semantics.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// Store loads and saves whole documents.
type Store interface {
	// Load decodes the document stored under key into dest. A missing
	// document yields an error wrapping httpx.ErrNotFound.
	Load(ctx context.Context, key string, dest any) error
	// Save replaces the document under key, creating it when absent.
	Save(ctx context.Context, key string, doc any) error
}

func notFound(key string) error {
	return fmt.Errorf("document %s: %w", key, httpx.ErrNotFound)
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{docs: map[string][]byte{}}
}

func (m *Memory) Load(_ context.Context, key string, dest any) error {
	m.mu.RLock()
	raw, ok := m.docs[key]
	m.mu.RUnlock()
	if !ok {
		return notFound(key)
	}
	return json.Unmarshal(raw, dest)
}

func (m *Memory) Save(_ context.Context, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[key] = raw
	m.mu.Unlock()
	return nil
}

// Document is a typed view of one key. Missing documents read as the
// defaults.
type Document[T any] struct {
	store    Store
	key      string
	defaults func() T
}

// NewDocument binds key in store. defaults may be nil for the zero value.
func NewDocument[T any](store Store, key string, defaults func() T) *Document[T] {
	if defaults == nil {
		defaults = func() T {
			var zero T
			return zero
		}
	}
	return &Document[T]{store: store, key: key, defaults: defaults}
}

// Key returns the document key.
func (d *Document[T]) Key() string { return d.key }

// Get returns the stored document or the defaults when none exists.
func (d *Document[T]) Get(ctx context.Context) (T, error) {
	var v T
	err := d.store.Load(ctx, d.key, &v)
	if errors.Is(err, httpx.ErrNotFound) {
		return d.defaults(), nil
	}
	if err != nil {
		return v, err
	}
	return v, nil
}

// Put replaces the stored document.
func (d *Document[T]) Put(ctx context.Context, v T) error {
	return d.store.Save(ctx, d.key, v)
}
