package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/automodel/internal/compiler"
)

// Scenario is a set of compile cases over one table.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Schema is the schema file (YAML or CUE) declaring Table.
	// Relative paths are resolved against the scenario file.
	Schema string `yaml:"schema"`

	Table string `yaml:"table"`

	// Now fixes the clock for relative dates (RFC 3339).
	Now string `yaml:"now,omitempty"`

	// Options overrides the compiler defaults. Absent keys keep them.
	Options *compiler.Options `yaml:"options,omitempty"`

	Cases []Case `yaml:"cases"`
}

// Case is a single compile call with its expectations.
type Case struct {
	Name string `yaml:"name"`

	// Exactly one of Filter, Select and Fuzzy is set.
	Filter string `yaml:"filter,omitempty"`
	Select string `yaml:"select,omitempty"`
	Fuzzy  string `yaml:"fuzzy,omitempty"`

	// Except inverts Select.
	Except bool `yaml:"except,omitempty"`

	// Columns restricts Fuzzy; empty means every eligible field.
	Columns string `yaml:"columns,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Kind returns the case kind, or "" when none or several inputs are set.
func (c Case) Kind() string {
	kind, n := "", 0
	if c.Filter != "" {
		kind, n = KindFilter, n+1
	}
	if c.Select != "" {
		kind, n = KindSelect, n+1
	}
	if c.Fuzzy != "" {
		kind, n = KindFuzzy, n+1
	}
	if n != 1 {
		return ""
	}
	return kind
}

// Input returns the text of whichever input is set.
func (c Case) Input() string {
	switch c.Kind() {
	case KindFilter:
		return c.Filter
	case KindSelect:
		return c.Select
	case KindFuzzy:
		return c.Fuzzy
	}
	return ""
}

// Expect holds the checks applied to a case result. Unset checks are skipped.
type Expect struct {
	Text     string   `yaml:"text,omitempty"`
	Contains []string `yaml:"contains,omitempty"`
	Codes    []string `yaml:"codes,omitempty"`
	Clean    bool     `yaml:"clean,omitempty"`
	Params   []string `yaml:"params,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected and the schema path is resolved against
// the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if _, err := os.Stat(scenario.Schema); err != nil {
		return nil, fmt.Errorf("invalid scenario: schema file not found: %s", scenario.Schema)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if s.Table == "" {
		return fmt.Errorf("table is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}
	if s.Now != "" {
		if _, err := time.Parse(time.RFC3339, s.Now); err != nil {
			return fmt.Errorf("now: %w", err)
		}
	}

	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if c.Kind() == "" {
			return fmt.Errorf("cases[%d] %q: exactly one of filter, select, fuzzy is required", i, c.Name)
		}
		if c.Except && c.Kind() != KindSelect {
			return fmt.Errorf("cases[%d] %q: except applies to select only", i, c.Name)
		}
		if c.Columns != "" && c.Kind() != KindFuzzy {
			return fmt.Errorf("cases[%d] %q: columns applies to fuzzy only", i, c.Name)
		}
		if c.Expect.Clean && len(c.Expect.Codes) > 0 {
			return fmt.Errorf("cases[%d] %q: clean and codes are exclusive", i, c.Name)
		}
	}
	return nil
}
