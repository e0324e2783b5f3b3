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
	"time"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/github"
)

// discussionModule backs `discussion list|view|create|edit|comment`. The
// gh CLI has no discussion command, so all subcommands are implemented
// against the GraphQL API.
type discussionModule struct{}

var discussionActions = map[string]string{
	"list":    "discussions:read",
	"view":    "discussions:read",
	"create":  "discussions:write",
	"edit":    "discussions:write",
	"comment": "discussions:write",
}

func (discussionModule) Action(subcmd string, args []string) (string, error) {
	return discussionActions[subcmd], nil
}

func (discussionModule) Execute(ctx context.Context, client *github.Client, args []string, owner, repo, token string) (*Result, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("discussion subcommand required")
	}
	subcmd, rest := args[0], args[1:]
	switch subcmd {
	case "list":
		return listDiscussions(ctx, client, owner, repo, token)
	case "view":
		if len(rest) == 0 {
			return nil, fmt.Errorf("discussion number required")
		}
		number, err := strconv.Atoi(rest[0])
		if err != nil {
			return nil, fmt.Errorf("invalid discussion number %q", rest[0])
		}
		return viewDiscussion(ctx, client, owner, repo, number, token)
	case "create":
		return createDiscussion(ctx, client, rest, owner, repo, token)
	case "edit":
		if len(rest) == 0 {
			return nil, fmt.Errorf("discussion number required")
		}
		number, err := strconv.Atoi(rest[0])
		if err != nil {
			return nil, fmt.Errorf("invalid discussion number %q", rest[0])
		}
		return editDiscussion(ctx, client, rest[1:], owner, repo, number, token)
	case "comment":
		return commentDiscussion(ctx, client, rest, owner, repo, token)
	default:
		return nil, fmt.Errorf("unknown discussion subcommand: %s", subcmd)
	}
}

// flagValues scans gh-style arguments for the named flags, returning the
// value following each flag and the remaining positional arguments.
func flagValues(args []string, names map[string]string) (map[string]string, []string) {
	values := map[string]string{}
	var positional []string
	for i := 0; i < len(args); i++ {
		canonical, ok := names[args[i]]
		if ok && i+1 < len(args) {
			values[canonical] = args[i+1]
			i++
			continue
		}
		if !ok {
			positional = append(positional, args[i])
		}
	}
	return values, positional
}

func authorOrGhost(login string) string {
	if login == "" {
		return "ghost"
	}
	return login
}

func listDiscussions(ctx context.Context, client *github.Client, owner, repo, token string) (*Result, error) {
	discussions, err := client.ListDiscussions(ctx, token, owner, repo)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, d := range discussions {
		lines = append(lines, fmt.Sprintf("#%d\t%s\t%s\t%s\t%d comments",
			d.Number, d.Title, authorOrGhost(d.Author), d.Category, d.CommentCount))
	}
	return &Result{Stdout: strings.Join(lines, "\n")}, nil
}

func viewDiscussion(ctx context.Context, client *github.Client, owner, repo string, number int, token string) (*Result, error) {
	d, err := client.GetDiscussion(ctx, token, owner, repo, number)
	if err != nil {
		return nil, err
	}
	body := d.Body
	if body == "" {
		body = "(empty)"
	}
	lines := []string{
		fmt.Sprintf("title:\t%s", d.Title),
		fmt.Sprintf("number:\t%d", d.Number),
		fmt.Sprintf("author:\t%s", authorOrGhost(d.Author)),
		fmt.Sprintf("category:\t%s", d.Category),
		fmt.Sprintf("url:\t%s", d.URL),
		fmt.Sprintf("created:\t%s", d.CreatedAt.Format(time.RFC3339)),
		"",
		"--- BODY ---",
		body,
		"",
		"--- COMMENTS ---",
	}
	for _, c := range d.Comments {
		lines = append(lines, fmt.Sprintf("\n[%s] %s at %s:", c.ID, authorOrGhost(c.Author), c.CreatedAt.Format(time.RFC3339)))
		lines = append(lines, c.Body)
	}
	return &Result{Stdout: strings.Join(lines, "\n")}, nil
}

func createDiscussion(ctx context.Context, client *github.Client, args []string, owner, repo, token string) (*Result, error) {
	values, _ := flagValues(args, map[string]string{
		"--title": "title", "-t": "title",
		"--body": "body", "-b": "body",
		"--category": "category", "-c": "category",
	})
	for _, required := range []string{"title", "body", "category"} {
		if values[required] == "" {
			return nil, fmt.Errorf("--%s is required", required)
		}
	}
	ref, err := client.CreateDiscussion(ctx, token, owner, repo, values["title"], values["body"], values["category"])
	if err != nil {
		return nil, err
	}
	return &Result{Stdout: ref.URL, Stderr: fmt.Sprintf("Created discussion #%d", ref.Number)}, nil
}

func editDiscussion(ctx context.Context, client *github.Client, args []string, owner, repo string, number int, token string) (*Result, error) {
	values, _ := flagValues(args, map[string]string{
		"--title": "title", "-t": "title",
		"--body": "body", "-b": "body",
	})
	var title, body *string
	if v, ok := values["title"]; ok {
		title = &v
	}
	if v, ok := values["body"]; ok {
		body = &v
	}
	if title == nil && body == nil {
		return nil, fmt.Errorf("--title or --body is required")
	}
	ref, err := client.UpdateDiscussion(ctx, token, owner, repo, number, title, body)
	if err != nil {
		return nil, err
	}
	return &Result{Stdout: ref.URL, Stderr: fmt.Sprintf("Updated discussion #%d", ref.Number)}, nil
}

func commentDiscussion(ctx context.Context, client *github.Client, args []string, owner, repo, token string) (*Result, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("discussion number or 'edit' required")
	}
	// `comment edit <comment-id> --body ...` rewrites an existing comment.
	if args[0] == "edit" {
		if len(args) < 2 {
			return nil, fmt.Errorf("comment_id required")
		}
		commentID := args[1]
		values, _ := flagValues(args[2:], map[string]string{"--body": "body", "-b": "body"})
		if values["body"] == "" {
			return nil, fmt.Errorf("--body is required")
		}
		ref, err := client.UpdateDiscussionComment(ctx, token, commentID, values["body"])
		if err != nil {
			return nil, err
		}
		return &Result{Stdout: ref.URL, Stderr: fmt.Sprintf("Updated comment %s", ref.ID)}, nil
	}
	number, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid discussion number %q", args[0])
	}
	values, _ := flagValues(args[1:], map[string]string{
		"--body": "body", "-b": "body",
		"--reply-to": "reply-to",
	})
	if values["body"] == "" {
		return nil, fmt.Errorf("--body is required")
	}
	ref, err := client.AddDiscussionComment(ctx, token, owner, repo, number, values["body"], values["reply-to"])
	if err != nil {
		return nil, err
	}
	return &Result{Stdout: ref.URL, Stderr: fmt.Sprintf("Added comment %s", ref.ID)}, nil
}
