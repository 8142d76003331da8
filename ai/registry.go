package ai

import (
	"context"
	"sort"
	"sync"

	"github.com/kiyo9w/Imacall-backend/pkg/logger"
)

// ActiveStore persists the active provider selection across restarts.
// An empty name with a nil error means nothing has been stored yet.
type ActiveStore interface {
	GetActiveProvider(ctx context.Context) (string, error)
	SetActiveProvider(ctx context.Context, name string) error
}

// Registry holds the configured provider adapters and tracks which one is
// active. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	active   string
	store    ActiveStore
	log      *logger.Logger
}

// NewRegistry builds a registry from the given adapters. The initial active
// provider is restored from the store when one was persisted; otherwise
// defaultProvider is used when registered, falling back to the first
// registered name in sorted order. With no adapters the registry is empty
// and Resolve returns ErrNotConfigured.
func NewRegistry(defaultProvider string, store ActiveStore, log *logger.Logger, adapters ...Adapter) *Registry {
	r := &Registry{
		adapters: make(map[string]Adapter, len(adapters)),
		store:    store,
		log:      log,
	}

	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}

	if len(r.adapters) == 0 {
		log.Warn("No AI providers configured; generation requests will fail")
		return r
	}

	r.active = r.pickDefault(defaultProvider)

	if store != nil {
		stored, err := store.GetActiveProvider(context.Background())
		if err != nil {
			log.Warn("Failed to restore active provider, using default",
				"default", r.active, "error", err.Error())
		} else if stored != "" {
			if _, ok := r.adapters[stored]; ok {
				r.active = stored
			} else {
				log.Warn("Stored active provider is no longer configured, using default",
					"stored", stored, "default", r.active)
			}
		}
	}

	log.Info("AI provider registry initialized",
		"available", r.availableLocked(), "active", r.active)

	return r
}

func (r *Registry) pickDefault(defaultProvider string) string {
	if _, ok := r.adapters[defaultProvider]; ok {
		return defaultProvider
	}
	names := r.availableLocked()
	return names[0]
}

// Available returns the registered provider names in sorted order
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.availableLocked()
}

func (r *Registry) availableLocked() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Active returns the name of the active provider, empty when none is
// configured
func (r *Registry) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SetActive switches the active provider. Unknown names return
// ErrUnknownProvider and leave the selection unchanged. The new selection
// is persisted when a store is attached; a store write failure does not
// roll back the in-memory switch.
func (r *Registry) SetActive(ctx context.Context, name string) error {
	r.mu.Lock()
	if _, ok := r.adapters[name]; !ok {
		r.mu.Unlock()
		return ErrUnknownProvider
	}
	r.active = name
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.SetActiveProvider(ctx, name); err != nil {
			r.log.Error("Failed to persist active provider", "provider", name, "error", err.Error())
		}
	}

	r.log.Info("Active AI provider changed", "provider", name)
	return nil
}

// Resolve returns the active adapter, or ErrNotConfigured when the registry
// is empty
func (r *Registry) Resolve() (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == "" {
		return nil, ErrNotConfigured
	}
	adapter, ok := r.adapters[r.active]
	if !ok {
		return nil, ErrNotConfigured
	}
	return adapter, nil
}
