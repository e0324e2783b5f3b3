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

package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/github"
)

// subIssueModule backs `sub-issue list|parent|add|remove|reorder`. The gh
// CLI has no sub-issue support, so all subcommands go to the GraphQL API.
type subIssueModule struct{}

var subIssueActions = map[string]string{
	"list":    "subissues:list",
	"parent":  "subissues:parent",
	"add":     "subissues:add",
	"remove":  "subissues:remove",
	"reorder": "subissues:reprioritize",
}

func (subIssueModule) Action(subcmd string, args []string) (string, error) {
	return subIssueActions[subcmd], nil
}

func (subIssueModule) Execute(ctx context.Context, client *github.Client, args []string, owner, repo, token string) (*Result, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("sub-issue subcommand required")
	}
	subcmd, rest := args[0], args[1:]
	switch subcmd {
	case "list":
		number, err := issueNumberArg(rest)
		if err != nil {
			return nil, err
		}
		subIssues, err := client.ListSubIssues(ctx, token, owner, repo, number)
		if err != nil {
			return nil, err
		}
		var lines []string
		for _, issue := range subIssues {
			lines = append(lines, fmt.Sprintf("%d\t%s\t%s", issue.Number, issue.State, issue.Title))
		}
		return &Result{Stdout: strings.Join(lines, "\n")}, nil

	case "parent":
		number, err := issueNumberArg(rest)
		if err != nil {
			return nil, err
		}
		parent, err := client.ParentIssue(ctx, token, owner, repo, number)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return &Result{Stdout: "No parent issue"}, nil
		}
		return &Result{Stdout: fmt.Sprintf("%d\t%s\t%s", parent.Number, parent.State, parent.Title)}, nil

	case "add":
		parent, child, err := parentChildArgs(rest)
		if err != nil {
			return nil, err
		}
		if err := client.AddSubIssue(ctx, token, owner, repo, parent, child); err != nil {
			return nil, err
		}
		return &Result{Stdout: fmt.Sprintf("Added #%d as sub-issue of #%d", child, parent)}, nil

	case "remove":
		parent, child, err := parentChildArgs(rest)
		if err != nil {
			return nil, err
		}
		if err := client.RemoveSubIssue(ctx, token, owner, repo, parent, child); err != nil {
			return nil, err
		}
		return &Result{Stdout: fmt.Sprintf("Removed #%d from #%d", child, parent)}, nil

	case "reorder":
		parent, child, err := parentChildArgs(rest)
		if err != nil {
			return nil, err
		}
		before, after, err := parseReorderArgs(rest[2:])
		if err != nil {
			return nil, err
		}
		if before == 0 && after == 0 {
			return nil, fmt.Errorf("--before or --after required")
		}
		if err := client.ReprioritizeSubIssue(ctx, token, owner, repo, parent, child, before, after); err != nil {
			return nil, err
		}
		return &Result{Stdout: "Reordered"}, nil

	default:
		return nil, fmt.Errorf("unknown sub-issue subcommand: %s", subcmd)
	}
}

func issueNumberArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("issue number required")
	}
	number, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid issue number %q", args[0])
	}
	return number, nil
}

func parentChildArgs(args []string) (int, int, error) {
	if len(args) < 2 {
		return 0, 0, fmt.Errorf("parent and child issue numbers required")
	}
	parent, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid issue number %q", args[0])
	}
	child, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid issue number %q", args[1])
	}
	return parent, child, nil
}

func parseReorderArgs(args []string) (before, after int, err error) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--before":
			if i+1 >= len(args) {
				return 0, 0, fmt.Errorf("--before requires a value")
			}
			if before, err = strconv.Atoi(args[i+1]); err != nil {
				return 0, 0, fmt.Errorf("invalid issue number %q", args[i+1])
			}
			i++
		case "--after":
			if i+1 >= len(args) {
				return 0, 0, fmt.Errorf("--after requires a value")
			}
			if after, err = strconv.Atoi(args[i+1]); err != nil {
				return 0, 0, fmt.Errorf("invalid issue number %q", args[i+1])
			}
			i++
		}
	}
	return before, after, nil
}
