package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file. Files ending in .yaml or
// .yml are decoded as YAML; everything else is JSON, with comments and
// trailing commas allowed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes data according to the extension of path and validates it.
func Parse(path string, data []byte) (*Config, error) {
	var raw fileConfig

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Path: path, Format: "YAML", Err: err}
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, &ParseError{Path: path, Format: "JSON", Err: err}
		}
	}

	if err := raw.validate(path); err != nil {
		return nil, err
	}

	cfg := &Config{
		Prefix:   *raw.Prefix,
		Suffix:   *raw.Suffix,
		Init:     *raw.Init,
		Commands: append([]string(nil), (*raw.Commands)...),
		Macros:   make(map[string]Macro, len(raw.Macros)),
		Remote:   raw.Remote,
	}
	for name, m := range raw.Macros {
		cfg.Macros[name] = Macro{
			Commands: append([]string(nil), m.Commands...),
			Code:     m.Code,
		}
	}

	return cfg, nil
}

func (raw *fileConfig) validate(path string) error {
	var problems []string

	if raw.Prefix == nil {
		problems = append(problems, `missing required key "prefix"`)
	}
	if raw.Suffix == nil {
		problems = append(problems, `missing required key "sufix"`)
	}
	if raw.Init == nil {
		problems = append(problems, `missing required key "init"`)
	}
	if raw.Commands == nil {
		problems = append(problems, `missing required key "commands"`)
	}

	names := make([]string, 0, len(raw.Macros))
	for name := range raw.Macros {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m := raw.Macros[name]
		if strings.TrimSpace(name) == "" {
			problems = append(problems, "macro with an empty name")
		}
		if len(m.Commands) == 0 {
			problems = append(problems, fmt.Sprintf("macro %q has no commands", name))
		}
	}

	if raw.Remote != nil {
		if raw.Remote.Publish == "" {
			problems = append(problems, `remote is missing "publish"`)
		}
		if raw.Remote.Subscribe == "" {
			problems = append(problems, `remote is missing "subscribe"`)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Path: path, Problems: problems}
	}
	return nil
}
