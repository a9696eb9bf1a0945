package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Generation modes.
const (
	ModeUIKit   = "uikit"
	ModeSwiftUI = "swiftui"
	ModeAll     = "all"
)

// Config represents the sjui.config.yaml configuration.
// sjui.config.json is accepted as well since JSON is a YAML subset.
type Config struct {
	ProjectName string   `yaml:"project_name"`
	Source      string   `yaml:"source_directory"`
	Mode        string   `yaml:"mode"`
	Ignore      []string `yaml:"ignore"`

	Layouts  string `yaml:"layouts_directory"`
	Styles   string `yaml:"styles_directory"`
	Scripts  string `yaml:"scripts_directory"`
	Bindings string `yaml:"bindings_directory"`
	Views    string `yaml:"view_directory"`

	Binding   BindingConfig         `yaml:"binding"`
	Custom    map[string]CustomView `yaml:"custom_view_types"`
	Colors    []string              `yaml:"color_palette"`
	Cache     CacheConfig           `yaml:"cache"`
	Project   ProjectConfig         `yaml:"project"`
	HotLoader HotLoaderConfig       `yaml:"hotloader"`
}

// BindingConfig controls the generated binding classes.
type BindingConfig struct {
	BaseClass string   `yaml:"base_class"`
	Imports   []string `yaml:"imports"`
}

// CustomView registers an app-specific component type.
type CustomView struct {
	Class  string `yaml:"class"`
	Module string `yaml:"module"`
	// View is the SwiftUI view name; the type name is used when empty.
	View string `yaml:"swiftui_view"`
}

// CacheConfig controls where incremental build state is kept.
type CacheConfig struct {
	Dir string `yaml:"dir"`
}

// ProjectConfig names the logical group generated files are added to.
type ProjectConfig struct {
	Group    string `yaml:"group"`
	Manifest string `yaml:"manifest"`
}

// HotLoaderConfig controls the hot-reload server.
type HotLoaderConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	PollInterval int    `yaml:"poll_interval_ms"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		ProjectName: "App",
		Source:      ".",
		Mode:        ModeUIKit,
		Ignore: []string{
			".git/**",
			"**/*.bak",
			".sjui_cache/**",
		},
		Layouts:  "Layouts",
		Styles:   "Styles",
		Scripts:  "Scripts",
		Bindings: "Bindings",
		Views:    "View",
		Binding: BindingConfig{
			BaseClass: "Binding",
			Imports:   []string{"UIKit", "SwiftJsonUI"},
		},
		Cache: CacheConfig{Dir: ".sjui_cache"},
		Project: ProjectConfig{
			Group:    "Bindings",
			Manifest: "sjui.project.yaml",
		},
		HotLoader: HotLoaderConfig{
			Host:         "0.0.0.0",
			Port:         8081,
			PollInterval: 500,
		},
	}
}

// Load reads a configuration file from the given path.
// Missing fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Binding.BaseClass == "" {
		cfg.Binding.BaseClass = "Binding"
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = ".sjui_cache"
	}
	if cfg.Layouts == "" {
		cfg.Layouts = "Layouts"
	}
	if cfg.Bindings == "" {
		cfg.Bindings = "Bindings"
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeUIKit
	}
	switch cfg.Mode {
	case ModeUIKit, ModeSwiftUI, ModeAll:
	default:
		return nil, fmt.Errorf("parsing config %s: unknown mode %q", path, cfg.Mode)
	}

	return cfg, nil
}

// Find looks for a config file in dir, preferring YAML over JSON.
// It returns an empty string if none exists.
func Find(dir string) string {
	for _, name := range []string{"sjui.config.yaml", "sjui.config.yml", "sjui.config.json"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// GeneratesUIKit returns true if binding classes should be generated.
func (c *Config) GeneratesUIKit() bool {
	return c.Mode == ModeUIKit || c.Mode == ModeAll
}

// GeneratesSwiftUI returns true if SwiftUI views should be generated.
func (c *Config) GeneratesSwiftUI() bool {
	return c.Mode == ModeSwiftUI || c.Mode == ModeAll
}

// Path joins a configured directory onto the source root.
func (c *Config) Path(root, dir string) string {
	return filepath.Join(root, c.Source, dir)
}

// CustomView returns the registration for a custom component type.
func (c *Config) CustomView(typ string) (CustomView, bool) {
	cv, ok := c.Custom[typ]
	return cv, ok
}

// CustomClasses maps custom component types to their UIKit class.
func (c *Config) CustomClasses() map[string]string {
	out := make(map[string]string, len(c.Custom))
	for typ, cv := range c.Custom {
		if cv.Class != "" {
			out[typ] = cv.Class
		}
	}
	return out
}

// CustomModules maps custom component types to the module declaring them.
func (c *Config) CustomModules() map[string]string {
	out := make(map[string]string, len(c.Custom))
	for typ, cv := range c.Custom {
		if cv.Module != "" {
			out[typ] = cv.Module
		}
	}
	return out
}

// CustomViews maps custom component types to their SwiftUI view name.
func (c *Config) CustomViews() map[string]string {
	out := make(map[string]string, len(c.Custom))
	for typ, cv := range c.Custom {
		name := cv.View
		if name == "" {
			name = typ
		}
		out[typ] = name
	}
	return out
}
