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

package credentials

import "testing"

func TestSelect(t *testing.T) {
	catalog := Catalog{
		Entries: []Entry{
			{Token: "T1", Repos: []string{"acme/*"}},
			{Token: "T2", Repos: []string{"acme/special", "other/thing"}},
		},
		Fallback: "T0",
	}

	tests := []struct {
		name      string
		repo      string
		wantToken string
		wantOK    bool
	}{
		{name: "scoped owner wildcard", repo: "acme/foo", wantToken: "T1", wantOK: true},
		{name: "declaration order wins over specificity", repo: "acme/special", wantToken: "T1", wantOK: true},
		{name: "second entry", repo: "other/thing", wantToken: "T2", wantOK: true},
		{name: "fallback", repo: "stranger/x", wantToken: "T0", wantOK: true},
		{name: "case insensitive", repo: "ACME/Foo", wantToken: "T1", wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := catalog.Select(tt.repo)
			if got != tt.wantToken || ok != tt.wantOK {
				t.Errorf("Select(%q) = (%q, %v), want (%q, %v)", tt.repo, got, ok, tt.wantToken, tt.wantOK)
			}
		})
	}
}

func TestSelectWithoutFallback(t *testing.T) {
	catalog := Catalog{Entries: []Entry{{Token: "T1", Repos: []string{"acme/*"}}}}
	if _, ok := catalog.Select("other/x"); ok {
		t.Error("selection must fail when nothing matches and there is no fallback")
	}
	if token, ok := catalog.Select("acme/foo"); !ok || token != "T1" {
		t.Errorf("Select(acme/foo) = (%q, %v), want (T1, true)", token, ok)
	}
}

// With a fallback configured, selection is total.
func TestSelectTotalWithFallback(t *testing.T) {
	catalog := Catalog{Fallback: "T0"}
	for _, repo := range []string{"a/b", "x/y", "weird/Name.With.Dots"} {
		if token, ok := catalog.Select(repo); !ok || token == "" {
			t.Errorf("Select(%q) failed despite a configured fallback", repo)
		}
	}
}

func TestTokens(t *testing.T) {
	catalog := Catalog{
		Entries:  []Entry{{Token: "T1", Repos: []string{"acme/*"}}},
		Fallback: "T0",
	}
	got := catalog.Tokens()
	if len(got) != 2 || got[0] != "T0" || got[1] != "T1" {
		t.Errorf("Tokens() = %v, want [T0 T1]", got)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"ghp_abcdefghijklmnop", "ghp_...mnop"},
		{"short", "****"},
		{"", "****"},
	}
	for _, tt := range tests {
		if got := Mask(tt.token); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"ghp_xxxx", "classic"},
		{"github_pat_xxxx", "fine_grained"},
		{"gho_xxxx", "unknown"},
	}
	for _, tt := range tests {
		if got := Kind(tt.token); got != tt.want {
			t.Errorf("Kind(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
