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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

const validConfig = `{
  "classic_pat": "ghp_classic",
  "fine_grained_pats": [
    { "pat": "github_pat_scoped", "repos": ["acme/*"] }
  ],
  "rules": [
    { "effect": "allow", "actions": ["*"], "repos": ["acme/*"] }
  ]
}`

func TestLoad(t *testing.T) {
	path := writeConfig(t, validConfig, 0o600)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if c.ClassicPAT != "ghp_classic" {
		t.Errorf("ClassicPAT = %q", c.ClassicPAT)
	}
	if len(c.FineGrainedPATs) != 1 || c.FineGrainedPATs[0].PAT != "github_pat_scoped" {
		t.Errorf("FineGrainedPATs = %+v", c.FineGrainedPATs)
	}
	if len(c.Rules) != 1 || c.Rules[0].Effect != "allow" {
		t.Errorf("Rules = %+v", c.Rules)
	}
}

func TestLoadAcceptsComments(t *testing.T) {
	commented := "# broad token\n" + validConfig
	path := writeConfig(t, commented, 0o600)
	if _, err := Load(path); err != nil {
		t.Fatalf("Load() with comments = %v", err)
	}
}

func TestLoadRejectsInsecurePermissions(t *testing.T) {
	for _, mode := range []os.FileMode{0o644, 0o640, 0o604, 0o601} {
		path := writeConfig(t, validConfig, mode)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "insecure permissions") {
			t.Errorf("Load() with mode %04o = %v, want insecure permissions error", mode, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Load() = %v, want not found error", err)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"classic_pat": `, 0o600)
	if _, err := Load(path); err == nil {
		t.Error("Load() with truncated JSON succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing classic_pat",
			content: `{"rules": [{"effect": "allow", "actions": ["*"], "repos": ["*"]}]}`,
			wantErr: "classic_pat",
		},
		{
			name:    "missing rules",
			content: `{"classic_pat": "ghp_x"}`,
			wantErr: "rules",
		},
		{
			name:    "empty rules",
			content: `{"classic_pat": "ghp_x", "rules": []}`,
			wantErr: "rules",
		},
		{
			name:    "rule missing effect",
			content: `{"classic_pat": "ghp_x", "rules": [{"actions": ["*"], "repos": ["*"]}]}`,
			wantErr: "effect",
		},
		{
			name:    "rule with bad effect",
			content: `{"classic_pat": "ghp_x", "rules": [{"effect": "audit", "actions": ["*"], "repos": ["*"]}]}`,
			wantErr: "effect",
		},
		{
			name:    "rule missing actions",
			content: `{"classic_pat": "ghp_x", "rules": [{"effect": "allow", "repos": ["*"]}]}`,
			wantErr: "actions",
		},
		{
			name:    "rule missing repos",
			content: `{"classic_pat": "ghp_x", "rules": [{"effect": "allow", "actions": ["*"]}]}`,
			wantErr: "repos",
		},
		{
			name:    "fine grained entry missing pat",
			content: `{"classic_pat": "ghp_x", "fine_grained_pats": [{"repos": ["a/*"]}], "rules": [{"effect": "allow", "actions": ["*"], "repos": ["*"]}]}`,
			wantErr: "pat",
		},
		{
			name:    "fine grained entry missing repos",
			content: `{"classic_pat": "ghp_x", "fine_grained_pats": [{"pat": "github_pat_x"}], "rules": [{"effect": "allow", "actions": ["*"], "repos": ["*"]}]}`,
			wantErr: "repos",
		},
		{
			name:    "modern pats without classic is valid",
			content: `{"pats": [{"token": "github_pat_x", "repos": ["a/*"]}], "rules": [{"effect": "allow", "actions": ["*"], "repos": ["*"]}]}`,
			wantErr: "",
		},
		{
			name:    "rule with empty lists is valid",
			content: `{"classic_pat": "ghp_x", "rules": [{"effect": "deny", "actions": [], "repos": []}, {"effect": "allow", "actions": ["*"], "repos": ["*"]}]}`,
			wantErr: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content, 0o600)
			_, err := Load(path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Load() = %v, want success", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestCatalogLegacy(t *testing.T) {
	c := &Config{
		ClassicPAT: "T0",
		FineGrainedPATs: []FineGrainedPAT{
			{PAT: "T1", Repos: []string{"acme/*"}},
		},
	}
	catalog := c.Catalog()
	if catalog.Fallback != "T0" {
		t.Errorf("Fallback = %q, want T0", catalog.Fallback)
	}
	if token, ok := catalog.Select("acme/foo"); !ok || token != "T1" {
		t.Errorf("Select(acme/foo) = (%q, %v), want (T1, true)", token, ok)
	}
	if token, ok := catalog.Select("other/x"); !ok || token != "T0" {
		t.Errorf("Select(other/x) = (%q, %v), want (T0, true)", token, ok)
	}
}

func TestCatalogModernTakesPrecedence(t *testing.T) {
	c := &Config{
		ClassicPAT:      "T0",
		FineGrainedPATs: []FineGrainedPAT{{PAT: "legacy", Repos: []string{"*"}}},
		PATs:            []PAT{{Token: "modern", Repos: []string{"acme/*"}}},
	}
	catalog := c.Catalog()
	if token, _ := catalog.Select("acme/foo"); token != "modern" {
		t.Errorf("Select(acme/foo) = %q, want the modern entry", token)
	}
	if token, _ := catalog.Select("other/x"); token != "T0" {
		t.Errorf("Select(other/x) = %q, want the classic fallback", token)
	}
}
