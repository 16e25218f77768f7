package config

import "sync"

// Holder provides thread-safe access to the current config. Long-running
// commands read through a Holder so a live reload takes effect without a
// restart.
type Holder struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewHolder creates a Holder with the given initial config.
func NewHolder(cfg *Config) *Holder {
	return &Holder{cfg: cfg}
}

// Get returns the current config. Callers must treat it as read-only.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.cfg
}

// Set replaces the current config.
func (h *Holder) Set(cfg *Config) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cfg = cfg
}
