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

package policy

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/action"
)

func TestExpandActionPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{name: "wildcard is the universe", pattern: "*", want: action.Universe()},
		{name: "bundle", pattern: "pr:merge", want: []string{"pr:merge_commit", "pr:merge_squash", "pr:merge_rebase"}},
		{name: "category wildcard", pattern: "issues:*", want: action.ExpandCategory("issues")},
		{name: "literal primitive", pattern: "pr:close", want: []string{"pr:close"}},
		{name: "unknown pattern", pattern: "gists:read", want: nil},
		{name: "unknown category wildcard", pattern: "gists:*", want: nil},
		{name: "placeholder is not expandable", pattern: "pr:merge_PARAM_BRANCH", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ExpandActionPattern(tt.pattern)); diff != "" {
				t.Errorf("ExpandActionPattern(%q) mismatch (-want +got):\n%s", tt.pattern, diff)
			}
		})
	}
}

// Expansion must stay within the universe for every supported pattern form.
func TestExpansionIsSubsetOfUniverse(t *testing.T) {
	patterns := []string{"*", "pull-requests:read", "pull-requests:write", "pulls:contribute", "pr:merge",
		"metadata:*", "actions:*", "statuses:*", "code:*", "issues:*", "pr:*", "git:*", "discussions:*", "subissues:*"}
	for _, p := range patterns {
		for _, a := range ExpandActionPattern(p) {
			if !action.IsPrimitive(a) {
				t.Errorf("pattern %q expands to %q which is outside the universe", p, a)
			}
		}
	}
}

func TestMatchRepo(t *testing.T) {
	tests := []struct {
		pattern string
		repo    string
		want    bool
	}{
		{"*", "acme/foo", true},
		{"acme/*", "acme/foo", true},
		{"acme/*", "other/foo", false},
		{"acme/foo", "acme/foo", true},
		{"acme/foo", "acme/bar", false},
		{"ACME/Foo", "acme/foo", true},
		{"acme/foo", "ACME/FOO", true},
		{"Acme/*", "ACME/anything", true},
		{"*/docs", "acme/docs", true},
		{"*/docs", "acme/foo", false},
		{"acme/release-*", "acme/release-tools", true},
		{"acme/release-*", "acme/docs", false},
		{"acme*", "acme/foo", true},
		{"acme*", "acmecorp/foo", true},
		{"acme*", "other/acme", false},
		{"*foo", "acme/foo", true},
		{"acme/f?o", "acme/foo", true},
		{"acme/f?o", "acme/fooo", false},
		{"acme/[bf]oo", "acme/foo", true},
		{"acme/[!bf]oo", "acme/foo", false},
		{"[", "acme/foo", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" vs "+tt.repo, func(t *testing.T) {
			if got := MatchRepo(tt.pattern, tt.repo); got != tt.want {
				t.Errorf("MatchRepo(%q, %q) = %v, want %v", tt.pattern, tt.repo, got, tt.want)
			}
		})
	}
}

func TestEvaluateImplicitDeny(t *testing.T) {
	allowed, reason := Evaluate("metadata:read", "acme/foo", nil)
	if allowed {
		t.Fatal("empty ruleset must deny")
	}
	if !strings.Contains(reason, "No matching allow rule") {
		t.Errorf("reason = %q, want implicit deny reason", reason)
	}
}

func TestEvaluateDenyWins(t *testing.T) {
	rules := []Rule{
		{Effect: "allow", Actions: []string{"*"}, Repos: []string{"*"}},
		{Effect: "deny", Actions: []string{"pr:merge"}, Repos: []string{"*"}},
		{Effect: "allow", Actions: []string{"*"}, Repos: []string{"*"}},
	}
	allowed, reason := Evaluate("pr:merge_squash", "acme/foo", rules)
	if allowed {
		t.Fatal("deny rule must win over surrounding allows")
	}
	if !strings.Contains(reason, "deny") {
		t.Errorf("reason = %q, want it to identify the deny rule", reason)
	}
	if strings.Contains(reason, "ghp_") {
		t.Errorf("reason leaks what looks like a token: %q", reason)
	}

	// The same ruleset allows actions outside the denied bundle.
	if allowed, _ := Evaluate("metadata:read", "acme/foo", rules); !allowed {
		t.Error("metadata:read should be allowed by the wildcard rule")
	}
}

// Wildcards in the fallback cross "/", so a pattern like "acme*" covers
// every repo of every owner whose name starts with acme. Both allow and
// deny rules must see it that way, or a deny could be skipped.
func TestEvaluateSlashCrossingWildcard(t *testing.T) {
	denyRules := []Rule{
		{Effect: "allow", Actions: []string{"*"}, Repos: []string{"*"}},
		{Effect: "deny", Actions: []string{"*"}, Repos: []string{"acme*"}},
	}
	if allowed, _ := Evaluate("metadata:read", "acme/foo", denyRules); allowed {
		t.Error("deny scoped to acme* must match acme/foo")
	}
	if allowed, _ := Evaluate("metadata:read", "other/foo", denyRules); !allowed {
		t.Error("deny scoped to acme* must not match other/foo")
	}

	allowRules := []Rule{{Effect: "allow", Actions: []string{"*"}, Repos: []string{"acme*"}}}
	if allowed, _ := Evaluate("metadata:read", "acme/foo", allowRules); !allowed {
		t.Error("allow scoped to acme* must match acme/foo")
	}
}

func TestEvaluateAllow(t *testing.T) {
	rules := []Rule{{Effect: "allow", Actions: []string{"pr:close"}, Repos: []string{"a/b"}}}

	if allowed, reason := Evaluate("pr:close", "a/b", rules); !allowed || reason != "Allowed" {
		t.Errorf("Evaluate(pr:close, a/b) = (%v, %q), want (true, Allowed)", allowed, reason)
	}
	if allowed, _ := Evaluate("pr:reopen", "a/b", rules); allowed {
		t.Error("pr:reopen must not match an allow for pr:close")
	}
	if allowed, _ := Evaluate("pr:close", "a/c", rules); allowed {
		t.Error("repo a/c must not match an allow scoped to a/b")
	}
}

func TestEvaluateBundlePatterns(t *testing.T) {
	rules := []Rule{
		{Effect: "allow", Actions: []string{"pulls:contribute"}, Repos: []string{"acme/*"}},
	}
	if allowed, _ := Evaluate("pr:create", "acme/foo", rules); !allowed {
		t.Error("pr:create is part of pulls:contribute")
	}
	if allowed, _ := Evaluate("pr:merge_commit", "acme/foo", rules); allowed {
		t.Error("pr:merge_commit is not part of pulls:contribute")
	}
}

func TestEvaluateEmptyListsMatchNothing(t *testing.T) {
	rules := []Rule{
		{Effect: "allow", Actions: nil, Repos: []string{"*"}},
		{Effect: "allow", Actions: []string{"*"}, Repos: nil},
	}
	if allowed, _ := Evaluate("metadata:read", "acme/foo", rules); allowed {
		t.Error("rules with empty actions or repos lists must match nothing")
	}
}

func TestEvaluateCaseInsensitiveRepos(t *testing.T) {
	rules := []Rule{{Effect: "allow", Actions: []string{"*"}, Repos: []string{"ACME/Foo"}}}
	if allowed, _ := Evaluate("metadata:read", "acme/FOO", rules); !allowed {
		t.Error("repo matching must be case-insensitive on both sides")
	}
}

func TestEvaluateIsPure(t *testing.T) {
	rules := []Rule{
		{Effect: "allow", Actions: []string{"*"}, Repos: []string{"*"}},
		{Effect: "deny", Actions: []string{"git:write"}, Repos: []string{"*"}},
	}
	first, firstReason := Evaluate("git:write", "acme/foo", rules)
	for i := 0; i < 50; i++ {
		got, reason := Evaluate("git:write", "acme/foo", rules)
		if got != first || reason != firstReason {
			t.Fatal("Evaluate is not deterministic for identical inputs")
		}
	}
}
