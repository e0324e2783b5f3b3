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

// issueModule handles `issue edit --old/--new` and `issue comment edit
// --old/--new`, which replace part of a body instead of all of it. Every
// other issue invocation falls through to the gh CLI.
type issueModule struct{}

func (issueModule) Action(subcmd string, args []string) (string, error) {
	if subcmd == "edit" && hasOldAndNew(args) {
		return "issues:edit", nil
	}
	if subcmd == "comment" && len(args) > 0 && args[0] == "edit" && hasOldAndNew(args[1:]) {
		return "issues:comment_edit", nil
	}
	return "", nil
}

func (issueModule) Execute(ctx context.Context, client *github.Client, args []string, owner, repo, token string) (*Result, error) {
	if len(args) == 0 {
		return nil, nil
	}
	subcmd, rest := args[0], args[1:]
	if subcmd == "edit" && hasOldAndNew(rest) {
		return editIssueBody(ctx, client, rest, owner, repo, token)
	}
	if subcmd == "comment" && len(rest) > 0 && rest[0] == "edit" && hasOldAndNew(rest[1:]) {
		return editIssueCommentBody(ctx, client, rest[1:], owner, repo, token)
	}
	return nil, nil
}

func hasOldAndNew(args []string) bool {
	var hasOld, hasNew bool
	for _, arg := range args {
		switch arg {
		case "--old":
			hasOld = true
		case "--new":
			hasNew = true
		}
	}
	return hasOld && hasNew
}

// parseEditArgs pulls --old, --new and --replace-all out of args and
// returns the remaining positional arguments.
func parseEditArgs(args []string) (positional []string, old, new string, replaceAll bool, err error) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--old":
			if i+1 >= len(args) {
				return nil, "", "", false, fmt.Errorf("--old requires a value")
			}
			old = args[i+1]
			i++
		case "--new":
			if i+1 >= len(args) {
				return nil, "", "", false, fmt.Errorf("--new requires a value")
			}
			new = args[i+1]
			i++
		case "--replace-all":
			replaceAll = true
		default:
			positional = append(positional, args[i])
		}
	}
	return positional, old, new, replaceAll, nil
}

// partialReplace swaps old for new in body. The old string must occur
// exactly once unless replaceAll is set, so an ambiguous edit never lands
// in the wrong place.
func partialReplace(body, old, new string, replaceAll bool) (string, error) {
	count := strings.Count(body, old)
	if count == 0 {
		return "", fmt.Errorf("old string not found in body")
	}
	if count > 1 && !replaceAll {
		return "", fmt.Errorf("old string found %d times in body (use --replace-all to replace all occurrences)", count)
	}
	if replaceAll {
		return strings.ReplaceAll(body, old, new), nil
	}
	return strings.Replace(body, old, new, 1), nil
}

func editIssueBody(ctx context.Context, client *github.Client, args []string, owner, repo, token string) (*Result, error) {
	positional, old, new, replaceAll, err := parseEditArgs(args)
	if err != nil {
		return nil, err
	}
	if len(positional) == 0 {
		return nil, fmt.Errorf("issue number required")
	}
	number, err := strconv.Atoi(positional[0])
	if err != nil {
		return nil, fmt.Errorf("invalid issue number %q", positional[0])
	}

	body, err := client.IssueBody(ctx, token, owner, repo, number)
	if err != nil {
		return nil, err
	}
	updated, err := partialReplace(body, old, new, replaceAll)
	if err != nil {
		return nil, err
	}
	if err := client.UpdateIssueBody(ctx, token, owner, repo, number, updated); err != nil {
		return nil, err
	}
	return &Result{Stderr: fmt.Sprintf("Updated issue #%d", number)}, nil
}

func editIssueCommentBody(ctx context.Context, client *github.Client, args []string, owner, repo, token string) (*Result, error) {
	positional, old, new, replaceAll, err := parseEditArgs(args)
	if err != nil {
		return nil, err
	}
	if len(positional) == 0 {
		return nil, fmt.Errorf("comment ID required")
	}
	commentID := positional[0]

	body, err := client.IssueCommentBody(ctx, token, owner, repo, commentID)
	if err != nil {
		return nil, err
	}
	updated, err := partialReplace(body, old, new, replaceAll)
	if err != nil {
		return nil, err
	}
	if err := client.UpdateIssueCommentBody(ctx, token, owner, repo, commentID, updated); err != nil {
		return nil, err
	}
	return &Result{Stderr: fmt.Sprintf("Updated comment %s", commentID)}, nil
}
