package app

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pcbkern/kernel/pcb"
	"pcbkern/tasks/ps"
	"pcbkern/tasks/workload"
)

// Config is the system configuration, usually read from a YAML file. The
// zero value of a nested section means "use the default".
type Config struct {
	MaxProc  int            `yaml:"max_proc"`
	PS       PSConfig       `yaml:"ps"`
	Workload WorkloadConfig `yaml:"workload"`
	Trace    TraceConfig    `yaml:"trace"`
}

type PSConfig struct {
	// Interval is the process table refresh period in ticks.
	Interval uint64 `yaml:"interval"`
}

type WorkloadConfig struct {
	Restart bool            `yaml:"restart"`
	Tree    []workload.Node `yaml:"tree"`
}

type TraceConfig struct {
	Enabled bool `yaml:"enabled"`
	// File receives the exported spans; empty means stdout.
	File string `yaml:"file"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		MaxProc:  pcb.MaxProc,
		PS:       PSConfig{Interval: ps.DefaultInterval},
		Workload: WorkloadConfig{Restart: true, Tree: workload.DefaultTree()},
	}
}

// Validate returns an error describing the first invalid setting, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.MaxProc <= 0 || c.MaxProc > pcb.MaxProc {
		return fmt.Errorf("max_proc must be in 1..%d, got %d", pcb.MaxProc, c.MaxProc)
	}
	if c.PS.Interval == 0 {
		return errors.New("ps.interval must be > 0")
	}
	// services, ps and the workload supervisor
	need := systemTasks + 1
	for i, n := range c.Workload.Tree {
		if err := validateNode(n, fmt.Sprintf("workload.tree[%d]", i)); err != nil {
			return err
		}
		need += n.Count()
	}
	if need > c.MaxProc {
		return fmt.Errorf("workload needs %d processes, max_proc is %d", need, c.MaxProc)
	}
	return nil
}

func validateNode(n workload.Node, path string) error {
	if n.Name == "" {
		return fmt.Errorf("%s.name is empty", path)
	}
	if n.Steps < 0 {
		return fmt.Errorf("%s.steps must be >= 0", path)
	}
	for i, child := range n.Children {
		if err := validateNode(child, fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}
