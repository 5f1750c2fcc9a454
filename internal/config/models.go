package config

import "sort"

// Config is the static terminal configuration. It is loaded once at startup
// and never mutated afterwards.
type Config struct {
	Prefix   string           // Prepended to every outgoing command
	Suffix   string           // Appended to every outgoing command
	Init     string           // Sent once when the session starts
	Commands []string         // Static palette entries, in file order
	Macros   map[string]Macro // Keyed by macro name
	Remote   *Remote          // Broker bridge settings, nil when absent
}

// Macro is a named sequence of literal commands with an optional reaction
// script that is run against device lines arriving after invocation.
type Macro struct {
	Commands []string `json:"commands" yaml:"commands"`
	Code     string   `json:"code,omitempty" yaml:"code,omitempty"`
}

// Remote describes the broker bridge. Topics are named from the terminal's
// point of view: commands go out on Publish, device lines arrive on Subscribe.
type Remote struct {
	Broker    string `json:"broker" yaml:"broker"`
	Publish   string `json:"publish" yaml:"publish"`
	Subscribe string `json:"subscribe" yaml:"subscribe"`
}

// MacroNames returns macro names in lexical order. Neither JSON objects nor
// Go maps keep key order, so the palette uses a stable sort instead.
func (c *Config) MacroNames() []string {
	names := make([]string, 0, len(c.Macros))
	for name := range c.Macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Macro looks up a macro by name.
func (c *Config) Macro(name string) (Macro, bool) {
	m, ok := c.Macros[name]
	return m, ok
}

// HasRemote reports whether a broker bridge is configured.
func (c *Config) HasRemote() bool {
	return c.Remote != nil
}

// Frame wraps a literal command in the configured prefix and suffix.
func (c *Config) Frame(literal string) []byte {
	return []byte(c.Prefix + literal + c.Suffix)
}

// fileConfig mirrors the on-disk layout. Pointers distinguish a missing key
// from an empty value.
type fileConfig struct {
	Prefix   *string          `json:"prefix" yaml:"prefix"`
	Suffix   *string          `json:"sufix" yaml:"sufix"`
	Init     *string          `json:"init" yaml:"init"`
	Commands *[]string        `json:"commands" yaml:"commands"`
	Macros   map[string]Macro `json:"macro,omitempty" yaml:"macro,omitempty"`
	Remote   *Remote          `json:"remote,omitempty" yaml:"remote,omitempty"`
}
