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

// Package commands implements the CLI side channel. It fills the gaps in
// the gh CLI, Discussions, Sub-Issues and partial body edits, with direct
// API calls, and forwards everything else to a local gh process holding
// the selected token.
package commands

import (
	"context"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/github"
)

// Result mirrors the outcome of a gh process so custom commands and
// passthrough commands serialize the same way.
type Result struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Module handles one top-level command name.
type Module interface {
	// Action maps a subcommand to the action it needs. An empty action
	// with a nil error means the invocation is not handled here and goes
	// to the gh CLI instead.
	Action(subcmd string, args []string) (string, error)
	// Execute runs the command. A nil Result with a nil error falls
	// through to the gh CLI.
	Execute(ctx context.Context, client *github.Client, args []string, owner, repo, token string) (*Result, error)
}

var modules = map[string]Module{
	"discussion": discussionModule{},
	"issue":      issueModule{},
	"sub-issue":  subIssueModule{},
}

// Lookup returns the module registered for a top-level command name.
func Lookup(name string) (Module, bool) {
	module, ok := modules[name]
	return module, ok
}

// ActionFor maps a full argument vector to the action it needs. Both
// return values empty means the invocation is unknown here and its
// permissions are whatever the selected token grants via gh.
func ActionFor(args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	module, ok := modules[args[0]]
	if !ok {
		return "", nil
	}
	subcmd := ""
	rest := []string{}
	if len(args) > 1 {
		subcmd = args[1]
		rest = args[2:]
	}
	return module.Action(subcmd, rest)
}
