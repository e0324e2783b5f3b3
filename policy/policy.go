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

// Package policy implements AWS IAM-style allow/deny evaluation over the
// action vocabulary.
//
// Evaluation is implicit-deny with deny-wins precedence: any matching deny
// rule rejects the request no matter how many allow rules also match. The
// evaluator is pure; it reads only its arguments and the immutable action
// tables.
package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/action"
)

// Rule is one allow or deny entry of the ruleset. Fields are validated at
// config load time; a malformed rule never reaches Evaluate.
type Rule struct {
	Effect  string   `json:"effect"`
	Actions []string `json:"actions"`
	Repos   []string `json:"repos"`
}

func (r Rule) String() string {
	return fmt.Sprintf("%s actions=[%s] repos=[%s]", r.Effect, strings.Join(r.Actions, ", "), strings.Join(r.Repos, ", "))
}

// ExpandActionPattern expands one action pattern of a rule:
//
//	"*"           the full universe
//	a bundle name its primitive expansion
//	"cat:*"       the category's primitives
//	a primitive   itself
//
// Anything else expands to nothing, so the rule cannot match. Bundle names
// are checked before literals: "pr:merge" is both a bundle and a legacy
// coarse action, and the bundle meaning wins.
func ExpandActionPattern(pattern string) []string {
	if pattern == "*" {
		return action.Universe()
	}
	if expansion := action.ExpandBundle(pattern); expansion != nil {
		return expansion
	}
	if category, ok := strings.CutSuffix(pattern, ":*"); ok {
		return action.ExpandCategory(category)
	}
	if action.IsPrimitive(pattern) {
		return []string{pattern}
	}
	return nil
}

// MatchRepo reports whether a rule repo pattern matches "owner/repo".
// Matching is case-insensitive on both sides. "*" matches everything,
// "owner/*" matches every repo of the owner, and anything else falls back
// to a shell-style wildcard match over the full string, which also covers
// exact matches. In the fallback, "*" crosses "/": "acme*" matches
// "acme/foo".
func MatchRepo(pattern, repo string) bool {
	pattern = strings.ToLower(pattern)
	repo = strings.ToLower(repo)

	if pattern == "*" {
		return true
	}
	if owner, ok := strings.CutSuffix(pattern, "/*"); ok {
		repoOwner, _, _ := strings.Cut(repo, "/")
		return owner == repoOwner
	}
	re, err := wildcardRegexp(pattern)
	return err == nil && re.MatchString(repo)
}

// wildcardRegexp translates a shell wildcard pattern into an anchored
// regexp: "*" matches any run of characters including "/", "?" matches
// exactly one, and bracket expressions become character classes ("!"
// negates). An unterminated "[" is taken literally.
func wildcardRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			j := i + 1
			if j < len(pattern) && pattern[j] == '!' {
				j++
			}
			if j < len(pattern) && pattern[j] == ']' {
				j++
			}
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j >= len(pattern) {
				b.WriteString(`\[`)
				continue
			}
			class := strings.ReplaceAll(pattern[i+1:j], `\`, `\\`)
			if after, ok := strings.CutPrefix(class, "!"); ok {
				class = "^" + after
			}
			b.WriteString("[" + class + "]")
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`$`)
	return regexp.Compile(b.String())
}

func ruleMatches(r Rule, act, repo string) bool {
	actionMatch := false
	for _, p := range r.Actions {
		for _, expanded := range ExpandActionPattern(p) {
			if expanded == act {
				actionMatch = true
				break
			}
		}
		if actionMatch {
			break
		}
	}
	if !actionMatch {
		return false
	}
	for _, p := range r.Repos {
		if MatchRepo(p, repo) {
			return true
		}
	}
	return false
}

// Evaluate returns whether the action on the repository is allowed by the
// ruleset, with a human-readable reason. A matching deny short-circuits;
// otherwise at least one allow must match. The reason may quote the matched
// rule's patterns but never any credential.
func Evaluate(act, repo string, rules []Rule) (bool, string) {
	hasAllow := false
	for _, r := range rules {
		if !ruleMatches(r, act, repo) {
			continue
		}
		switch strings.ToLower(r.Effect) {
		case "deny":
			return false, fmt.Sprintf("Denied by rule: %s", r)
		case "allow":
			hasAllow = true
		}
	}
	if hasAllow {
		return true, "Allowed"
	}
	return false, fmt.Sprintf("No matching allow rule for %s on %s", act, repo)
}
