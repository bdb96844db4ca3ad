// Package config loads a simulation project descriptor from a YAML
// file: the structural graph, the reusable Condition/Observable
// registrations, the Output/View bindings. Grounded on ITI-mrnes's
// gopkg.in/yaml.v3-based descriptor loading (desc-topo.go), in place
// of the out-of-scope VPZ/XML project file format (see DESIGN.md).
//
// LoadProject produces plain descriptor values; Apply (build.go) then
// assembles them onto a coordinator.Coordinator through its public
// registration calls, keeping the YAML-vs-XML question entirely outside
// the simulation core.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ModelDescriptor names one node of the structural graph: an atomic
// model bound to a Dynamics/Conditions/Observable triple, or a coupled
// model that is purely a container.
type ModelDescriptor struct {
	Name       string   `yaml:"name"`
	Parent     string   `yaml:"parent"`
	Kind       string   `yaml:"kind"` // "atomic" or "coupled"
	Dynamics   string   `yaml:"dynamics,omitempty"`
	Conditions []string `yaml:"conditions,omitempty"`
	Observable string   `yaml:"observable,omitempty"`
}

// ConnectionDescriptor names one DEVS coupling: an output port of one
// model feeding an input port of another, scoped to their shared
// parent.
type ConnectionDescriptor struct {
	Parent   string `yaml:"parent"`
	SrcModel string `yaml:"src_model"`
	SrcPort  string `yaml:"src_port"`
	DstModel string `yaml:"dst_model"`
	DstPort  string `yaml:"dst_port"`
}

// GraphDescriptor is the flattened structural graph: every model
// (atomic or coupled) and every connection between them.
type GraphDescriptor struct {
	Models      []ModelDescriptor      `yaml:"models"`
	Connections []ConnectionDescriptor `yaml:"connections"`
}

// ConditionDescriptor names a reusable bundle of InitEvents values,
// loaded as raw YAML scalars and converted to atomicmodel.Value by
// Apply (see convertValues in build.go).
type ConditionDescriptor struct {
	Name   string                 `yaml:"name"`
	Values map[string]interface{} `yaml:"values"`
}

// ObservableDescriptor names the legal observation ports of one or more
// atomic models.
type ObservableDescriptor struct {
	Name  string   `yaml:"name"`
	Ports []string `yaml:"ports"`
}

// OutputDescriptor names one StreamWriter configuration.
type OutputDescriptor struct {
	Name     string            `yaml:"name"`
	Format   string            `yaml:"format"` // "local" or "distant"
	Plugin   string            `yaml:"plugin"`
	Location string            `yaml:"location"`
	Data     map[string]string `yaml:"data,omitempty"`
}

// ViewDescriptor names one observation policy bound to a named Output.
type ViewDescriptor struct {
	Name   string  `yaml:"name"`
	Kind   string  `yaml:"kind"` // "timed", "event" or "finish"
	Output string  `yaml:"output"`
	Period float64 `yaml:"period,omitempty"`
}

// Project is the root of a YAML project descriptor.
type Project struct {
	Name        string                 `yaml:"name"`
	Graph       GraphDescriptor        `yaml:"graph"`
	Conditions  []ConditionDescriptor  `yaml:"conditions,omitempty"`
	Observables []ObservableDescriptor `yaml:"observables,omitempty"`
	Outputs     []OutputDescriptor     `yaml:"outputs"`
	Views       []ViewDescriptor       `yaml:"views"`
}

// LoadProject reads and parses a project descriptor from path. Before
// parsing, it loads a sibling ".env" file (if present) via
// github.com/joho/godotenv so that `${VAR}`-style substitutions an
// operator put in Location/Data fields resolve against the process
// environment — a common pattern for keeping credentials and
// host-specific paths out of the descriptor file itself.
func LoadProject(path string) (*Project, error) {
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project descriptor %q: %w", path, err)
	}

	var p Project

	expanded := os.ExpandEnv(string(raw))

	if err := yaml.Unmarshal([]byte(expanded), &p); err != nil {
		return nil, fmt.Errorf("parsing project descriptor %q: %w", path, err)
	}

	return &p, nil
}
