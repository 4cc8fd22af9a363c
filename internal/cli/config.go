// Package cli implements the logic behind cmd/piebuild's build/watch/graph
// subcommands: loading a declarative build description, wiring it into
// piebuild tasks, and running a session. cmd/piebuild itself stays a thin
// cobra wrapper, the way the teacher keeps cmd/scriptweaver/main.go a thin
// boundary over internal/cli.Execute.
package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TaskSpec is one task's declarative description within a build-description
// YAML file, parsed the way cuemby-warren's apply.go parses its resource
// manifests: a typed struct with yaml tags, validated once after unmarshal
// rather than checked ad hoc at every use site.
type TaskSpec struct {
	ID       string   `yaml:"id"`
	Kind     string   `yaml:"kind"`
	Command  []string `yaml:"command,omitempty"`
	Dir      string   `yaml:"dir,omitempty"`
	Output   string   `yaml:"output,omitempty"`
	Src      string   `yaml:"src,omitempty"`
	Dst      string   `yaml:"dst,omitempty"`
	Reads    []string `yaml:"reads,omitempty"`
	Requires []string `yaml:"requires,omitempty"`
}

// BuildDescription is the top-level shape of a piebuild YAML build file.
type BuildDescription struct {
	Tasks []TaskSpec `yaml:"tasks"`
}

// LoadConfig reads and validates a build description from path.
func LoadConfig(path string) (*BuildDescription, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cli: read build description: %w", err)
	}
	var desc BuildDescription
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, nil, fmt.Errorf("cli: parse build description: %w", err)
	}
	if err := desc.validate(); err != nil {
		return nil, nil, err
	}
	return &desc, data, nil
}

func (d *BuildDescription) validate() error {
	seen := make(map[string]bool, len(d.Tasks))
	for _, t := range d.Tasks {
		if t.ID == "" {
			return fmt.Errorf("cli: task missing id")
		}
		if seen[t.ID] {
			return fmt.Errorf("cli: duplicate task id %q", t.ID)
		}
		seen[t.ID] = true
		switch t.Kind {
		case "command":
			if len(t.Command) == 0 {
				return fmt.Errorf("cli: task %q: command kind requires a non-empty command", t.ID)
			}
		case "copy":
			if t.Src == "" || t.Dst == "" {
				return fmt.Errorf("cli: task %q: copy kind requires src and dst", t.ID)
			}
		default:
			return fmt.Errorf("cli: task %q: unknown kind %q", t.ID, t.Kind)
		}
	}
	for _, t := range d.Tasks {
		for _, req := range t.Requires {
			if !seen[req] {
				return fmt.Errorf("cli: task %q requires unknown task %q", t.ID, req)
			}
		}
	}
	return nil
}

// WatchedPaths returns every file path named as a Reads or Src dependency
// across the whole description, deduplicated, for `piebuild watch` to hand
// to its filesystem watcher.
func (d *BuildDescription) WatchedPaths() []string {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}
	for _, t := range d.Tasks {
		for _, p := range t.Reads {
			add(p)
		}
		add(t.Src)
	}
	return paths
}
