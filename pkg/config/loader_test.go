package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	c := Defaults()

	if c.Listen == "" || c.Upstream == "" {
		t.Errorf("defaults missing addresses: %+v", c)
	}
	if c.Cache.Capacity <= 0 {
		t.Errorf("default capacity = %d, want > 0", c.Cache.Capacity)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "space-dns.yaml", `
listen: "0.0.0.0:53"
upstream: "9.9.9.9:53"
cache:
  capacity: 128
  sweep_interval: 10s
log:
  debug: true
`)

	l, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	c, err := l.LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Listen != "0.0.0.0:53" {
		t.Errorf("listen = %q, want 0.0.0.0:53", c.Listen)
	}
	if c.Upstream != "9.9.9.9:53" {
		t.Errorf("upstream = %q, want 9.9.9.9:53", c.Upstream)
	}
	if c.Cache.Capacity != 128 {
		t.Errorf("capacity = %d, want 128", c.Cache.Capacity)
	}
	if time.Duration(c.Cache.SweepInterval) != 10*time.Second {
		t.Errorf("sweep interval = %s, want 10s", time.Duration(c.Cache.SweepInterval))
	}
	if !c.Log.Debug {
		t.Errorf("debug = false, want true")
	}
}

func TestDurationFromSeconds(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "space-dns.yaml", `
cache:
  sweep_interval: 45
`)

	l, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	c, err := l.LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if time.Duration(c.Cache.SweepInterval) != 45*time.Second {
		t.Errorf("sweep interval = %s, want 45s", time.Duration(c.Cache.SweepInterval))
	}
}

func TestLoadFromFilePartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "space-dns.yaml", `
upstream: "8.8.8.8:53"
`)

	l, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	c, err := l.LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	d := Defaults()
	if c.Upstream != "8.8.8.8:53" {
		t.Errorf("upstream = %q, want 8.8.8.8:53", c.Upstream)
	}
	if c.Listen != d.Listen {
		t.Errorf("listen = %q, want default %q", c.Listen, d.Listen)
	}
	if c.Cache.Capacity != d.Cache.Capacity {
		t.Errorf("capacity = %d, want default %d", c.Cache.Capacity, d.Cache.Capacity)
	}
}

func TestLoadProjectConfigPrecedence(t *testing.T) {
	// Point HOME elsewhere so a developer's real global config can't
	// leak into the merge.
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	writeConfig(t, dir, ConfigFileName, "upstream: \"9.9.9.9:53\"\n")

	l, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	c, err := l.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Upstream != "9.9.9.9:53" {
		t.Errorf("upstream = %q, want project override 9.9.9.9:53", c.Upstream)
	}
}

func TestNegativeCapacityDisablesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "space-dns.yaml", `
cache:
  capacity: -1
`)

	l, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	c, err := l.LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Cache.Capacity != -1 {
		t.Errorf("capacity = %d, want -1 (cache disabled)", c.Cache.Capacity)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"bad listen", func(c *Config) { c.Listen = "localhost" }, "listen"},
		{"bad upstream", func(c *Config) { c.Upstream = "not an addr" }, "upstream"},
		{"zero sweep", func(c *Config) { c.Cache.SweepInterval = 0 }, "sweep_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}
