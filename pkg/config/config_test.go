package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.About.MaxLength != 120 {
		t.Errorf("expected max length 120, got %d", cfg.About.MaxLength)
	}
	if cfg.Weather.DisplayCity != "Vilnius" {
		t.Errorf("expected display city Vilnius, got %q", cfg.Weather.DisplayCity)
	}
	if cfg.Weather.LookupCity != "Minsk" {
		t.Errorf("expected lookup city Minsk, got %q", cfg.Weather.LookupCity)
	}
	if cfg.Profile.LinkURL != "https://github.com/Raith/ZTProject/" {
		t.Errorf("unexpected link URL %q", cfg.Profile.LinkURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.About.DefaultText != DefaultText {
		t.Errorf("expected default text, got %q", cfg.About.DefaultText)
	}
}

func TestLoadFrom_PartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
profile:
  name: Jane Doe
  portrait_path: ~/me.png
weather:
  base_url: http://localhost:9999/api/location/
  lookup_city: Riga
store:
  path: ~/profile.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Profile.Name != "Jane Doe" {
		t.Errorf("expected name 'Jane Doe', got %q", cfg.Profile.Name)
	}
	if cfg.Profile.LinkURL != DefaultLinkURL {
		t.Errorf("expected default link URL, got %q", cfg.Profile.LinkURL)
	}
	if cfg.About.MaxLength != DefaultMaxLength {
		t.Errorf("expected default max length, got %d", cfg.About.MaxLength)
	}
	if cfg.Weather.LookupCity != "Riga" {
		t.Errorf("expected lookup city Riga, got %q", cfg.Weather.LookupCity)
	}
	if cfg.Weather.DisplayCity != DefaultDisplayCity {
		t.Errorf("expected default display city, got %q", cfg.Weather.DisplayCity)
	}
	if strings.HasSuffix(cfg.Weather.BaseURL, "/") {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Weather.BaseURL)
	}

	home, _ := os.UserHomeDir()
	if cfg.Profile.PortraitPath != filepath.Join(home, "me.png") {
		t.Errorf("expected expanded portrait path, got %q", cfg.Profile.PortraitPath)
	}
	if cfg.StorePath() != filepath.Join(home, "profile.db") {
		t.Errorf("expected expanded store path, got %q", cfg.StorePath())
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("profile: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("expected wrapped parse error, got %v", err)
	}
	if cfg.Profile.Name != DefaultName {
		t.Errorf("expected defaults on parse error, got %q", cfg.Profile.Name)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Profile.Name = "Someone Else"
	cfg.Weather.LookupCity = "Warsaw"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Profile.Name != "Someone Else" || loaded.Weather.LookupCity != "Warsaw" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero max length", func(c *Config) { c.About.MaxLength = -1 }, "max_length"},
		{"default text too long", func(c *Config) { c.About.MaxLength = 5 }, "default_text"},
		{"empty lookup city", func(c *Config) { c.Weather.LookupCity = " " }, "lookup_city"},
		{"relative base url", func(c *Config) { c.Weather.BaseURL = "api/location" }, "base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestXDGDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")

	if got := ConfigPath(); got != "/tmp/xdg-config/ztp/config.yaml" {
		t.Errorf("unexpected config path %q", got)
	}
	if got := DefaultConfig().StorePath(); got != "/tmp/xdg-state/ztp/profile.db" {
		t.Errorf("unexpected store path %q", got)
	}
}
