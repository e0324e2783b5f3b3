/*
Copyright 2025 The fgp Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads and validates the proxy configuration.
//
// The file is JSON; it is parsed through sigs.k8s.io/yaml so commented
// configs load as well. Every structural violation is fatal at startup, so
// the request path never sees a malformed rule.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/credentials"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/policy"
)

// DefaultPort is the port the proxy listens on unless told otherwise.
const DefaultPort = 8766

// FineGrainedPAT is the legacy form of a scoped token entry.
type FineGrainedPAT struct {
	PAT   string   `json:"pat"`
	Repos []string `json:"repos"`
}

// PAT is the modern form of a scoped token entry.
type PAT struct {
	Token string   `json:"token"`
	Repos []string `json:"repos"`
}

// Config is the on-disk configuration. ClassicPAT is the broadly-scoped
// fallback token; scoped tokens come either as the legacy FineGrainedPATs
// list or the modern PATs list.
type Config struct {
	ClassicPAT      string           `json:"classic_pat"`
	FineGrainedPATs []FineGrainedPAT `json:"fine_grained_pats,omitempty"`
	PATs            []PAT            `json:"pats,omitempty"`
	Rules           []policy.Rule    `json:"rules"`
}

// DefaultPath returns ~/.config/github-proxy/config.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "github-proxy", "config.json")
	}
	return filepath.Join(home, ".config", "github-proxy", "config.json")
}

// Load reads, parses and validates the config file. The file must not be
// readable by group or others since it holds credentials.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s: %w", path, err)
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return nil, fmt.Errorf("config file %s has insecure permissions %04o, run: chmod 600 %s", path, mode, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	c := &Config{}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the structural invariants the request path relies on.
func (c *Config) Validate() error {
	if c.ClassicPAT == "" && len(c.PATs) == 0 {
		return fmt.Errorf("missing required field: classic_pat")
	}
	for i, p := range c.FineGrainedPATs {
		if p.PAT == "" {
			return fmt.Errorf("fine_grained_pats[%d] missing 'pat'", i)
		}
		if p.Repos == nil {
			return fmt.Errorf("fine_grained_pats[%d] missing or invalid 'repos'", i)
		}
	}
	for i, p := range c.PATs {
		if p.Token == "" {
			return fmt.Errorf("pats[%d] missing 'token'", i)
		}
		if p.Repos == nil {
			return fmt.Errorf("pats[%d] missing or invalid 'repos'", i)
		}
	}
	if len(c.Rules) == 0 {
		return fmt.Errorf("rules must be a non-empty list")
	}
	for i, r := range c.Rules {
		switch r.Effect {
		case "allow", "deny":
		case "":
			return fmt.Errorf("rule %d missing 'effect'", i)
		default:
			return fmt.Errorf("rule %d effect must be 'allow' or 'deny', got %q", i, r.Effect)
		}
		if r.Actions == nil {
			return fmt.Errorf("rule %d missing or invalid 'actions'", i)
		}
		if r.Repos == nil {
			return fmt.Errorf("rule %d missing or invalid 'repos'", i)
		}
	}
	return nil
}

// Catalog builds the immutable credential catalog. The modern PATs list
// takes precedence over the legacy fine-grained list when both are present;
// the classic token is the catch-all fallback in either form.
func (c *Config) Catalog() credentials.Catalog {
	catalog := credentials.Catalog{Fallback: c.ClassicPAT}
	if len(c.PATs) > 0 {
		for _, p := range c.PATs {
			catalog.Entries = append(catalog.Entries, credentials.Entry{Token: p.Token, Repos: p.Repos})
		}
		return catalog
	}
	for _, p := range c.FineGrainedPATs {
		catalog.Entries = append(catalog.Entries, credentials.Entry{Token: p.PAT, Repos: p.Repos})
	}
	return catalog
}
