// Package config loads the optional .fbuild.toml tool configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up in the project directory.
const FileName = ".fbuild.toml"

const (
	DefaultManifest  = "pubspec.yaml"
	DefaultMarker    = "updated build number"
	DefaultTagPrefix = "v"
	DefaultGit       = "git"
	DefaultFlutter   = "flutter"
)

// Tools names the external binaries fbuild invokes.
type Tools struct {
	Git     string `toml:"git"`
	Flutter string `toml:"flutter"`
}

// Config holds the resolved tool configuration.
type Config struct {
	// Manifest is the manifest path, relative to Dir unless absolute.
	Manifest string `toml:"manifest"`
	// Marker is the commit message used for version bumps. A last commit whose
	// subject starts with it means the manifest version is already final.
	Marker    string `toml:"marker"`
	TagPrefix string `toml:"tag_prefix"`
	Tools     Tools  `toml:"tools"`

	// Dir is the project directory every command runs in.
	Dir string `toml:"-"`
}

// Default returns the configuration used when no file is present.
func Default(dir string) *Config {
	return &Config{
		Manifest:  DefaultManifest,
		Marker:    DefaultMarker,
		TagPrefix: DefaultTagPrefix,
		Tools: Tools{
			Git:     DefaultGit,
			Flutter: DefaultFlutter,
		},
		Dir: dir,
	}
}

// Load reads the configuration for the project in dir. If path is empty,
// dir/.fbuild.toml is used and a missing file yields the defaults. A non-empty
// path must exist.
func Load(dir, path string) (*Config, error) {
	cfg := Default(dir)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("parsing config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Dir = dir
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case strings.TrimSpace(c.Manifest) == "":
		return errors.New("manifest must not be empty")
	case strings.TrimSpace(c.Marker) == "":
		return errors.New("marker must not be empty")
	case c.Tools.Git == "":
		return errors.New("tools.git must not be empty")
	case c.Tools.Flutter == "":
		return errors.New("tools.flutter must not be empty")
	}
	return nil
}

// ManifestPath returns the manifest location resolved against Dir.
func (c *Config) ManifestPath() string {
	if filepath.IsAbs(c.Manifest) {
		return c.Manifest
	}
	return filepath.Join(c.Dir, c.Manifest)
}

// TagName returns the tag created for a version.
func (c *Config) TagName(version string) string {
	return c.TagPrefix + version
}
