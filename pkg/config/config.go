// Package config handles loading and saving ztp configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/ztp/config.yaml
//   - State:   ~/.local/state/ztp/ (profile.db, ztp.log)
//
// A Config is a plain value. It is loaded once at startup and passed by value
// into the weather client and the profile view; nothing mutates it afterwards.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const appName = "ztp"

// Defaults taken from the published profile app.
const (
	DefaultName        = "Darius Kazinec"
	DefaultLinkURL     = "https://github.com/Raith/ZTProject/"
	DefaultMaxLength   = 120
	DefaultText        = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. In venenatis ligula, ut scelerisque mauri dapibus id."
	DefaultDisplayCity = "Vilnius"
	// Vilnius is not tracked by the weather service; Minsk is the nearest
	// tracked city.
	DefaultLookupCity = "Minsk"
	DefaultWeatherURL = "https://www.metaweather.com/api/location"
	DefaultTagline    = "Hi, I'm **Darius**. Press **enter** to see my profile."
)

// ProfileConfig describes the person shown on both screens.
type ProfileConfig struct {
	Name         string `yaml:"name,omitempty"`
	LinkURL      string `yaml:"link_url,omitempty"`
	PortraitPath string `yaml:"portrait_path,omitempty"` // PNG/JPEG; empty draws the built-in portrait
	Tagline      string `yaml:"tagline,omitempty"`       // Markdown shown on the home screen
}

// AboutConfig controls the editable "about me" text.
type AboutConfig struct {
	MaxLength   int    `yaml:"max_length,omitempty"`
	DefaultText string `yaml:"default_text,omitempty"`
}

// WeatherConfig controls the temperature lookup.
type WeatherConfig struct {
	BaseURL     string `yaml:"base_url,omitempty"`
	DisplayCity string `yaml:"display_city,omitempty"` // where the person lives
	LookupCity  string `yaml:"lookup_city,omitempty"`  // what is actually queried
}

// StoreConfig controls the local key-value store.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"` // empty means StateDir()/profile.db
}

// Config is the top-level configuration for ztp.
type Config struct {
	Profile ProfileConfig `yaml:"profile,omitempty"`
	About   AboutConfig   `yaml:"about,omitempty"`
	Weather WeatherConfig `yaml:"weather,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
}

// DefaultConfig returns a Config with the published app's values.
func DefaultConfig() Config {
	return Config{
		Profile: ProfileConfig{
			Name:    DefaultName,
			LinkURL: DefaultLinkURL,
			Tagline: DefaultTagline,
		},
		About: AboutConfig{
			MaxLength:   DefaultMaxLength,
			DefaultText: DefaultText,
		},
		Weather: WeatherConfig{
			BaseURL:     DefaultWeatherURL,
			DisplayCity: DefaultDisplayCity,
			LookupCity:  DefaultLookupCity,
		},
	}
}

// ConfigDir returns the XDG config directory for ztp.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for ztp.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist. Fields left blank in the
// file keep their default values.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return fileCfg.normalize(), nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// normalize fills blank fields from DefaultConfig and expands ~ in paths.
func (c Config) normalize() Config {
	def := DefaultConfig()

	fill := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		}
	}
	fill(&c.Profile.Name, def.Profile.Name)
	fill(&c.Profile.LinkURL, def.Profile.LinkURL)
	fill(&c.Profile.Tagline, def.Profile.Tagline)
	fill(&c.About.DefaultText, def.About.DefaultText)
	fill(&c.Weather.BaseURL, def.Weather.BaseURL)
	fill(&c.Weather.DisplayCity, def.Weather.DisplayCity)
	fill(&c.Weather.LookupCity, def.Weather.LookupCity)
	if c.About.MaxLength == 0 {
		c.About.MaxLength = def.About.MaxLength
	}

	c.Weather.BaseURL = strings.TrimRight(c.Weather.BaseURL, "/")
	c.Profile.PortraitPath = expandHome(c.Profile.PortraitPath)
	c.Store.Path = expandHome(c.Store.Path)
	return c
}

// Validate reports configuration values the app cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.About.MaxLength <= 0 {
		errs = append(errs, fmt.Errorf("about.max_length must be positive, got %d", c.About.MaxLength))
	}
	if n := len([]rune(c.About.DefaultText)); c.About.MaxLength > 0 && n > c.About.MaxLength {
		errs = append(errs, fmt.Errorf("about.default_text is %d characters, longer than max_length %d", n, c.About.MaxLength))
	}
	if strings.TrimSpace(c.Weather.LookupCity) == "" {
		errs = append(errs, errors.New("weather.lookup_city must not be empty"))
	}
	if u, err := url.Parse(c.Weather.BaseURL); err != nil || !u.IsAbs() {
		errs = append(errs, fmt.Errorf("weather.base_url %q is not an absolute URL", c.Weather.BaseURL))
	}
	return errors.Join(errs...)
}

// StorePath returns the key-value store file, resolving the default under
// StateDir when no explicit path is configured.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	dir := StateDir()
	if dir == "" {
		return "profile.db"
	}
	return filepath.Join(dir, "profile.db")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
