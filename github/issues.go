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

package github

import (
	"context"
	"fmt"
	"net/http"
)

// IssueBody fetches the current body of an issue. A null body on the API
// side comes back as the empty string.
func (c *Client) IssueBody(ctx context.Context, token, owner, repo string, number int) (string, error) {
	var issue struct {
		Body string `json:"body"`
	}
	path := fmt.Sprintf("/repos/%s/%s/issues/%d", owner, repo, number)
	if _, err := c.do(ctx, token, http.MethodGet, path, nil, &issue); err != nil {
		return "", err
	}
	return issue.Body, nil
}

// UpdateIssueBody replaces the body of an issue.
func (c *Client) UpdateIssueBody(ctx context.Context, token, owner, repo string, number int, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d", owner, repo, number)
	update := map[string]string{"body": body}
	_, err := c.do(ctx, token, http.MethodPatch, path, update, nil)
	return err
}

// IssueCommentBody fetches the current body of an issue comment.
func (c *Client) IssueCommentBody(ctx context.Context, token, owner, repo, commentID string) (string, error) {
	var comment struct {
		Body string `json:"body"`
	}
	path := fmt.Sprintf("/repos/%s/%s/issues/comments/%s", owner, repo, commentID)
	if _, err := c.do(ctx, token, http.MethodGet, path, nil, &comment); err != nil {
		return "", err
	}
	return comment.Body, nil
}

// UpdateIssueCommentBody replaces the body of an issue comment.
func (c *Client) UpdateIssueCommentBody(ctx context.Context, token, owner, repo, commentID, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/issues/comments/%s", owner, repo, commentID)
	update := map[string]string{"body": body}
	_, err := c.do(ctx, token, http.MethodPatch, path, update, nil)
	return err
}
