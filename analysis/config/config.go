// Copyright The Sieve Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFixpointIterFactor bounds the fixpoint iteration: the engine aborts
// after blocks * labels * factor block visits. A breach is an invariant
// violation, not a soft limit.
const DefaultFixpointIterFactor = 4

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config holds the cross-cutting options of an analysis run. It does not
// contain the taint rules themselves: rules are loaded and validated by the
// caller and passed to the batch runner separately.
// If some field is not defined in the config file, it will be empty/zero in
// the struct.
type Config struct {
	Options

	sourceFile string
}

// Options are the user-settable options of an analysis run.
type Options struct {
	// LogLevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// MaxAlarms sets a limit for the number of findings reported per rule.
	// If MaxAlarms <= 0, it is ignored.
	MaxAlarms int `yaml:"max-alarms"`

	// RuleTimeout is the per-rule analysis budget in seconds. A rule whose
	// analysis exceeds the budget is reported as a timeout, and the batch
	// continues with the remaining rules. If RuleTimeout <= 0, rules run
	// without a deadline.
	RuleTimeout int `yaml:"rule-timeout"`

	// FixpointIterFactor overrides DefaultFixpointIterFactor when > 0.
	FixpointIterFactor int `yaml:"fixpoint-iter-factor"`

	// SourceTaintsArgs specifies whether a call matching a source pattern
	// also taints its arguments, not only its result. This is usually not
	// the case, but is useful for source functions that return nothing.
	SourceTaintsArgs bool `yaml:"source-taints-args"`

	// SkipInterprocedural disables signature inference even when a
	// signature provider is available, forcing the conservative call rule.
	SkipInterprocedural bool `yaml:"skip-interprocedural"`

	// SilenceWarn suppresses warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns the default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		Options: Options{
			LogLevel:            int(InfoLevel),
			MaxAlarms:           0,
			RuleTimeout:         0,
			FixpointIterFactor:  DefaultFixpointIterFactor,
			SourceTaintsArgs:    false,
			SkipInterprocedural: false,
			SilenceWarn:         false,
		},
	}
}

// Load reads a configuration from a yaml file.
func Load(filename string) (*Config, error) {
	cfg := NewDefault()
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg.Options); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %q: %w", filename, err)
	}
	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.FixpointIterFactor <= 0 {
		cfg.FixpointIterFactor = DefaultFixpointIterFactor
	}
	return cfg, nil
}

// RuleBudget returns the per-rule deadline duration, or 0 when rules run
// without a deadline.
func (c *Config) RuleBudget() time.Duration {
	if c.RuleTimeout <= 0 {
		return 0
	}
	return time.Duration(c.RuleTimeout) * time.Second
}

// SourceFile returns the file the config was loaded from, if any.
func (c *Config) SourceFile() string {
	return c.sourceFile
}
