// Package license talks to the remote licensing service and caches the last
// successful validation on disk. It is a collaborator of the engine, not
// part of it: nothing here touches the knowledge graph or the store, and the
// network call is the only asynchronous boundary in the system.
package license

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Validation is the outcome of checking a license key against the service.
type Validation struct {
	Valid       bool       `json:"valid"`
	LicenseType string     `json:"license_type"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UserName    string     `json:"user_name,omitempty"`
	UserEmail   string     `json:"user_email,omitempty"`
	PolicyName  string     `json:"policy_name,omitempty"`
	UsageCount  *uint64    `json:"usage_count,omitempty"`
	UsageLimit  *uint64    `json:"usage_limit,omitempty"`
}

// ExpiryWarningWindow is how close to expiry the CLI starts warning.
const ExpiryWarningWindow = 7 * 24 * time.Hour

// cacheTTL is how long a cached validation is trusted before revalidating
// online.
const cacheTTL = 24 * time.Hour

// CachedLicense is the on-disk record of the last activated key.
type CachedLicense struct {
	Key           string      `json:"key"`
	UserEmail     string      `json:"user_email,omitempty"`
	Validation    *Validation `json:"cached_validation,omitempty"`
	LastValidated *time.Time  `json:"last_validated,omitempty"`
}

// Fresh reports whether the cached validation is recent enough to trust
// without going online.
func (c *CachedLicense) Fresh() bool {
	if c.LastValidated == nil {
		return false
	}
	return time.Since(*c.LastValidated) < cacheTTL
}

// Cache stores the license record as JSON at a fixed path, 0600.
type Cache struct {
	path string
}

// NewCache creates a cache at path, creating parent directories as needed.
func NewCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create license dir: %w", err)
	}
	return &Cache{path: path}, nil
}

// DefaultCachePath is ~/.mnemo/license.json.
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".mnemo", "license.json"), nil
}

// Save writes the key and its validation, stamping LastValidated with now.
func (c *Cache) Save(key string, v *Validation) error {
	now := time.Now().UTC()
	record := CachedLicense{
		Key:           key,
		UserEmail:     v.UserEmail,
		Validation:    v,
		LastValidated: &now,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode license: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("write license: %w", err)
	}
	return nil
}

// Load returns the cached license, or nil when none has been saved.
func (c *Cache) Load() (*CachedLicense, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read license: %w", err)
	}
	var record CachedLicense
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode license: %w", err)
	}
	return &record, nil
}

// Remove deletes the cached license. Removing a nonexistent cache is not an
// error.
func (c *Cache) Remove() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove license: %w", err)
	}
	return nil
}
