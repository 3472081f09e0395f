package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"splice/internal/toolid"
)

// Override adjusts individual policy flags for one provider. Nil pointer
// fields leave the default untouched.
type Override struct {
	SanitizeToolCallIDs        *bool  `yaml:"sanitizeToolCallIds"`
	ToolCallIDMode             string `yaml:"toolCallIdMode"`
	RepairToolUseResultPairing *bool  `yaml:"repairToolUseResultPairing"`
	AllowSyntheticToolResults  *bool  `yaml:"allowSyntheticToolResults"`
}

// Config represents the structure of a policy overrides file.
type Config struct {
	Providers map[string]Override `yaml:"providers"`
}

// LoadConfig loads a policy overrides file from the given path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	for provider, ov := range cfg.Providers {
		switch toolid.Mode(ov.ToolCallIDMode) {
		case "", toolid.ModeStrict, toolid.ModeStrict9:
		default:
			return nil, fmt.Errorf("provider %q: unknown toolCallIdMode %q, must be strict or strict9", provider, ov.ToolCallIDMode)
		}
	}

	return &cfg, nil
}

// LoadForWorkDir loads overrides from ~/.splice/policy.yaml and then
// .splice/policy.yaml in the given directory, with the work dir file taking
// precedence per provider. Missing files are not an error.
func LoadForWorkDir(workDir string) (*Config, error) {
	merged := &Config{Providers: map[string]Override{}}

	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".splice", "policy.yaml"))
	}
	paths = append(paths, filepath.Join(workDir, ".splice", "policy.yaml"))

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		cfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		for provider, ov := range cfg.Providers {
			merged.Providers[provider] = ov
		}
	}

	return merged, nil
}

// Apply returns the policy for a provider/model pair with any configured
// override folded in on top of the defaults.
func (c *Config) Apply(provider, modelID string) Policy {
	p := ForModel(provider, modelID)
	if c == nil {
		return p
	}

	ov, ok := c.Providers[normalizeKey(provider)]
	if !ok {
		return p
	}

	if ov.SanitizeToolCallIDs != nil {
		p.SanitizeToolCallIDs = *ov.SanitizeToolCallIDs
	}
	if ov.ToolCallIDMode != "" {
		p.ToolCallIDMode = toolid.Mode(ov.ToolCallIDMode)
	}
	if ov.RepairToolUseResultPairing != nil {
		p.RepairToolUseResultPairing = *ov.RepairToolUseResultPairing
	}
	if ov.AllowSyntheticToolResults != nil {
		p.AllowSyntheticToolResults = *ov.AllowSyntheticToolResults
	}
	return p
}

func normalizeKey(provider string) string {
	return strings.ToLower(provider)
}
