package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads and validates the config file at path. Unknown keys are an
// error so typos surface immediately instead of silently falling back to
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if unknown := meta.Undecoded(); len(unknown) > 0 {
		keys := make([]string, 0, len(unknown))
		for _, k := range unknown {
			keys = append(keys, k.String())
		}

		sort.Strings(keys)

		return nil, fmt.Errorf("config: unknown key(s) in %s: %s", path, strings.Join(keys, ", "))
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault loads the config file if it exists and returns defaults
// (plus environment overrides) when it does not. A file that exists but
// fails to parse or validate is still an error.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)

		if err := Validate(cfg); err != nil {
			return nil, err
		}

		return cfg, nil
	}

	return Load(path)
}
