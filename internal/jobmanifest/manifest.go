// Package jobmanifest loads a declarative YAML file of named jobs and
// keeps a live Registry in sync with it, hot-reloading on change the
// way inful-docbuilder's internal/daemon.ConfigWatcher debounces and
// reapplies file-based configuration, adapted here to diff against a
// running Registry instead of a single daemon config struct.
package jobmanifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is a YAML-serializable mirror of schedule.Options plus the
// expression string and the name of the callback the host process
// should bind to it.
type Entry struct {
	Name           string `yaml:"name"`
	Expression     string `yaml:"expression"`
	Callback       string `yaml:"callback"`
	Timezone       string `yaml:"timezone,omitempty"`
	StartAt        string `yaml:"start_at,omitempty"`
	StopAt         string `yaml:"stop_at,omitempty"`
	MaxRuns        int    `yaml:"max_runs,omitempty"`
	Paused         bool   `yaml:"paused,omitempty"`
	LegacyMode     bool   `yaml:"legacy_mode,omitempty"`
	Protect        bool   `yaml:"protect,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// Manifest is the top-level YAML document shape.
type Manifest struct {
	Jobs []Entry `yaml:"jobs"`
}

// Load reads and parses the manifest file at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jobmanifest: read %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("jobmanifest: parse %s: %w", path, err)
	}
	if err := validate(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func validate(m *Manifest) error {
	seen := make(map[string]bool, len(m.Jobs))
	for _, entry := range m.Jobs {
		if entry.Name == "" {
			return fmt.Errorf("jobmanifest: entry with empty name")
		}
		if entry.Expression == "" {
			return fmt.Errorf("jobmanifest: entry %q has an empty expression", entry.Name)
		}
		if seen[entry.Name] {
			return fmt.Errorf("jobmanifest: duplicate entry name %q", entry.Name)
		}
		seen[entry.Name] = true
	}
	return nil
}

// ByName indexes a Manifest's entries by name.
func (m *Manifest) ByName() map[string]Entry {
	out := make(map[string]Entry, len(m.Jobs))
	for _, entry := range m.Jobs {
		out[entry.Name] = entry
	}
	return out
}
