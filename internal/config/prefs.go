package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Preference keys remembered between runs.
const (
	PrefUsername = "username"
	PrefPassword = "password"
	PrefURL      = "url"
	PrefBrowser  = "browser"
	PrefFormat   = "format"
	PrefPageSize = "pdf_pagesize"
	PrefDivide   = "divide"
)

// Preferences is the answer memory consulted for prompt defaults.
type Preferences interface {
	Lookup(key string) (string, bool)
	Remember(values map[string]string) error
}

// YAMLPreferences keeps previous answers as a flat key/value YAML document.
type YAMLPreferences struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

func OpenPreferences(path string) (*YAMLPreferences, error) {
	p := &YAMLPreferences{path: path, values: map[string]string{}}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}

	if err := yaml.Unmarshal(b, &p.values); err != nil {
		return nil, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	if p.values == nil {
		p.values = map[string]string{}
	}

	return p, nil
}

func (p *YAMLPreferences) Lookup(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.values[key]
	return v, ok && v != ""
}

// Remember merges values into the store and persists it. Empty values delete the key.
func (p *YAMLPreferences) Remember(values map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for k, v := range values {
		if v == "" {
			delete(p.values, k)
			continue
		}
		p.values[k] = v
	}

	data, err := yaml.Marshal(p.values)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	return os.WriteFile(p.path, data, 0600)
}

// Forget removes the given keys, or every key when none are given.
func (p *YAMLPreferences) Forget(keys ...string) error {
	values := map[string]string{}
	if len(keys) == 0 {
		keys = p.Keys()
	}
	for _, k := range keys {
		values[k] = ""
	}
	return p.Remember(values)
}

// Keys lists the remembered keys in sorted order.
func (p *YAMLPreferences) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *YAMLPreferences) Print() {
	for _, k := range p.Keys() {
		v, _ := p.Lookup(k)
		if k == PrefPassword {
			v = "********"
		}
		fmt.Printf(" -%s: %s\n", k, v)
	}
}

// Default returns the remembered value for key, or fallback.
func Default(p Preferences, key, fallback string) string {
	if p == nil {
		return fallback
	}
	if v, ok := p.Lookup(key); ok {
		return v
	}
	return fallback
}
