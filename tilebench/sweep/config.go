// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package sweep

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/ajroetker/go-tilebench/tilebench"
	"github.com/ajroetker/go-tilebench/tilebench/matmul"
	"github.com/ajroetker/go-tilebench/tilebench/matrix"
)

// Policy decides what a sweep does when one configuration fails.
type Policy int

const (
	// PolicyResilient marks the configuration unavailable and continues.
	PolicyResilient Policy = iota

	// PolicyStrict aborts the sweep.
	PolicyStrict
)

// String returns "resilient" or "strict".
func (p Policy) String() string {
	switch p {
	case PolicyResilient:
		return "resilient"
	case PolicyStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParsePolicy parses "resilient" or "strict" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "resilient", "":
		return PolicyResilient, nil
	case "strict":
		return PolicyStrict, nil
	}
	return 0, fmt.Errorf("%w: unknown policy %q", tilebench.ErrInvalidConfiguration, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvN         = "TILEBENCH_N"
	EnvTrials    = "TILEBENCH_TRIALS"
	EnvFixedSeed = "TILEBENCH_FIXED_SEED"
	EnvPolicy    = "TILEBENCH_POLICY"
)

// Config describes one sweep.
type Config struct {
	// N is the matrix dimension.
	N int `yaml:"n" json:"n"`

	// ThreadCounts and BlockSizes are the two sweep domains, in the order
	// they are run. Values must be distinct.
	ThreadCounts []int `yaml:"threads" json:"threads"`
	BlockSizes   []int `yaml:"blocks" json:"blocks"`

	// Trials is the number of timed repetitions per configuration.
	Trials int `yaml:"trials" json:"trials"`

	// Seed and FixedSeed configure the matrix factory.
	Seed      uint64 `yaml:"seed" json:"seed"`
	FixedSeed bool   `yaml:"fixed_seed" json:"fixed_seed"`

	Policy   Policy          `yaml:"policy" json:"policy"`
	Schedule matmul.Schedule `yaml:"schedule" json:"schedule"`

	// Chunk is the number of tiles a worker takes per request under the
	// dynamic schedule. Zero means one.
	Chunk int `yaml:"chunk" json:"chunk,omitempty"`

	// ReusePool runs every configuration on one pool sized to the largest
	// thread count instead of a pool per kernel call.
	ReusePool bool `yaml:"reuse_pool" json:"reuse_pool"`

	// Verify checks the first trial of each configuration against a
	// reference product, outside the timed region.
	Verify bool `yaml:"verify" json:"verify"`

	// MemoryLimit caps the bytes one trial may allocate. Zero uses the
	// host's available memory.
	MemoryLimit uint64 `yaml:"memory_limit" json:"memory_limit,omitempty"`
}

// DefaultConfig returns the reference sweep.
func DefaultConfig() Config {
	return Config{
		N:            4096,
		ThreadCounts: []int{1, 2, 4, 6, 8, 10, 12, 14, 16},
		BlockSizes:   []int{2, 4, 8, 16, 32},
		Trials:       5,
		Seed:         matrix.DefaultSeed,
		FixedSeed:    true,
		Policy:       PolicyResilient,
		Schedule:     matmul.ScheduleDynamic,
	}
}

// Validate checks the whole sweep up front, so no configuration is timed
// when any of them is invalid.
func (c Config) Validate() error {
	if c.N < 1 {
		return fmt.Errorf("%w: n=%d < 1", tilebench.ErrInvalidConfiguration, c.N)
	}
	if c.Trials < 1 {
		return fmt.Errorf("%w: trials=%d < 1", tilebench.ErrInvalidConfiguration, c.Trials)
	}
	if c.Chunk < 0 {
		return fmt.Errorf("%w: chunk=%d < 0", tilebench.ErrInvalidConfiguration, c.Chunk)
	}
	if len(c.ThreadCounts) == 0 || len(c.BlockSizes) == 0 {
		return fmt.Errorf("%w: empty sweep domain", tilebench.ErrInvalidConfiguration)
	}
	if dups := lo.FindDuplicates(c.ThreadCounts); len(dups) > 0 {
		return fmt.Errorf("%w: duplicate thread counts %v", tilebench.ErrInvalidConfiguration, dups)
	}
	if dups := lo.FindDuplicates(c.BlockSizes); len(dups) > 0 {
		return fmt.Errorf("%w: duplicate block sizes %v", tilebench.ErrInvalidConfiguration, dups)
	}
	for _, cfg := range c.Configurations() {
		if err := cfg.Validate(c.N); err != nil {
			return err
		}
	}
	return nil
}

// Configurations returns every configuration in run order: block size
// outer, thread count inner.
func (c Config) Configurations() []tilebench.Configuration {
	return lo.FlatMap(c.BlockSizes, func(block int, _ int) []tilebench.Configuration {
		return lo.Map(c.ThreadCounts, func(threads int, _ int) tilebench.Configuration {
			return tilebench.Configuration{Threads: threads, BlockSize: block}
		})
	})
}

// MaxThreads returns the largest thread count of the sweep.
func (c Config) MaxThreads() int {
	return lo.Max(c.ThreadCounts)
}

// LoadConfig reads a YAML file over DefaultConfig. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("sweep: reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing %s: %v", tilebench.ErrInvalidConfiguration, path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields of c from the TILEBENCH_* environment variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvN); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", tilebench.ErrInvalidConfiguration, EnvN, v, err)
		}
		c.N = n
	}
	if v, ok := lookup(EnvTrials); ok {
		trials, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", tilebench.ErrInvalidConfiguration, EnvTrials, v, err)
		}
		c.Trials = trials
	}
	if v, ok := lookup(EnvFixedSeed); ok {
		fixed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", tilebench.ErrInvalidConfiguration, EnvFixedSeed, v, err)
		}
		c.FixedSeed = fixed
	}
	if v, ok := lookup(EnvPolicy); ok {
		p, err := ParsePolicy(v)
		if err != nil {
			return err
		}
		c.Policy = p
	}
	return nil
}
