package config

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Manager owns the active configuration and the sources it was built from.
type Manager struct {
	Service Service
	current atomic.Pointer[Config]
	sources []Source
	mu      sync.Mutex
}

// NewManager creates a new configuration manager.
func NewManager(service Service) *Manager {
	if service == nil {
		service = NewService()
	}
	return &Manager{Service: service}
}

// Load loads configuration from sources.
func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append([]Source(nil), sources...)
	cfg, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.current.Store(cfg)
	return cfg, nil
}

// Reload rebuilds the configuration from the sources of the last Load.
func (m *Manager) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, err := m.Service.Load(ctx, m.sources...)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	m.current.Store(cfg)
	return nil
}

// Get returns the current configuration atomically.
func (m *Manager) Get() *Config {
	return m.current.Load()
}
