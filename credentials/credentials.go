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

// Package credentials selects which personal access token to attach to an
// upstream request for a given repository.
package credentials

import (
	"strings"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/policy"
)

// Entry is one scoped token: it may only be used for repositories matching
// one of its patterns.
type Entry struct {
	Token string
	Repos []string
}

// Catalog is the immutable set of tokens built at startup. Fallback is the
// broadly-scoped classic token used when no scoped entry matches; it may be
// empty in the modern catalog form, in which case selection can fail.
type Catalog struct {
	Entries  []Entry
	Fallback string
}

// Select returns the token for the repository. Scoped entries are consulted
// in declaration order, first match wins; repo matching uses the same
// pattern engine as the policy evaluator so operators reason with one
// mental model. The second return is false when no entry matches and no
// fallback is configured.
func (c Catalog) Select(repo string) (string, bool) {
	for _, e := range c.Entries {
		for _, pattern := range e.Repos {
			if policy.MatchRepo(pattern, repo) {
				return e.Token, true
			}
		}
	}
	if c.Fallback == "" {
		return "", false
	}
	return c.Fallback, true
}

// Tokens returns every configured token, fallback included. Used to seed
// the log censorer so no token ever reaches the logs.
func (c Catalog) Tokens() []string {
	var tokens []string
	if c.Fallback != "" {
		tokens = append(tokens, c.Fallback)
	}
	for _, e := range c.Entries {
		tokens = append(tokens, e.Token)
	}
	return tokens
}

// Mask renders a token safe for display: first and last four characters for
// long tokens, fully starred otherwise.
func Mask(token string) string {
	if len(token) > 12 {
		return token[:4] + "..." + token[len(token)-4:]
	}
	return "****"
}

// Kind guesses the token flavor from its prefix, mirroring GitHub's token
// naming: "ghp_" for classic PATs and "github_pat_" for fine-grained ones.
func Kind(token string) string {
	switch {
	case strings.HasPrefix(token, "github_pat_"):
		return "fine_grained"
	case strings.HasPrefix(token, "ghp_"):
		return "classic"
	default:
		return "unknown"
	}
}
