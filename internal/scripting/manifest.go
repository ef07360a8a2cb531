package scripting

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cmdengine/internal/command"
)

// Manifest declares the scripted commands to bind.
type Manifest struct {
	Commands []CommandDef `yaml:"commands"`
}

// CommandDef binds one Lua global function to a command name and its aliases.
type CommandDef struct {
	// Name is the primary command name.
	Name string `yaml:"name"`
	// Aliases are alternate names bound to the same handler.
	Aliases []string `yaml:"aliases"`
	// Function is the Lua global called as function(player, args).
	Function string `yaml:"function"`
	// Usage is the line shown by "help <name>".
	Usage string `yaml:"usage"`
}

// Names returns the primary name followed by the aliases.
func (d CommandDef) Names() []string {
	return append([]string{d.Name}, d.Aliases...)
}

// LoadManifest reads and validates a manifest file.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns a Manifest whose entries all have a name and a function,
// with no name or alias declared twice (ignoring case), or a non-nil error.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading manifest %q: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates manifest YAML. Unknown keys are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("scripting: decoding manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every entry, reporting all violations at once.
func (m *Manifest) Validate() error {
	var errs []string
	seen := make(map[string]string)
	for i, d := range m.Commands {
		if d.Name == "" {
			errs = append(errs, fmt.Sprintf("commands[%d].name must not be empty", i))
		}
		if d.Function == "" {
			errs = append(errs, fmt.Sprintf("commands[%d].function must not be empty", i))
		}
		for _, n := range d.Names() {
			if !command.ValidName(n) {
				errs = append(errs, fmt.Sprintf("commands[%d]: invalid name %q", i, n))
				continue
			}
			key := command.FoldName(n)
			if owner, dup := seen[key]; dup {
				errs = append(errs, fmt.Sprintf("commands[%d]: %q already declared by %q", i, n, owner))
				continue
			}
			seen[key] = d.Name
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("scripting: invalid manifest: %s", strings.Join(errs, "; "))
	}
	return nil
}
