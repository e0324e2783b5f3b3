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

	"github.com/shurcooL/githubv4"
)

// IssueRef is a minimal issue listing entry for sub-issue output.
type IssueRef struct {
	Number int
	Title  string
	State  string
}

// ListSubIssues returns the sub-issues of an issue in priority order.
func (c *Client) ListSubIssues(ctx context.Context, token, owner, repo string, number int) ([]IssueRef, error) {
	var query struct {
		Repository struct {
			Issue struct {
				SubIssues struct {
					Nodes []IssueRef
				} `graphql:"subIssues(first: 50)"`
			} `graphql:"issue(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(repo),
		"number": githubv4.Int(number),
	}
	if err := c.v4(token, featureSubIssues).Query(ctx, &query, variables); err != nil {
		return nil, err
	}
	return query.Repository.Issue.SubIssues.Nodes, nil
}

// ParentIssue returns the parent of an issue, or nil when it has none.
func (c *Client) ParentIssue(ctx context.Context, token, owner, repo string, number int) (*IssueRef, error) {
	var query struct {
		Repository struct {
			Issue struct {
				Parent struct {
					Number int
					Title  string
					State  string
				}
			} `graphql:"issue(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(repo),
		"number": githubv4.Int(number),
	}
	if err := c.v4(token, featureSubIssues).Query(ctx, &query, variables); err != nil {
		return nil, err
	}
	parent := query.Repository.Issue.Parent
	if parent.Number == 0 {
		return nil, nil
	}
	return &IssueRef{Number: parent.Number, Title: parent.Title, State: parent.State}, nil
}

// AddSubIssueInput is the input to the addSubIssue mutation.
type AddSubIssueInput struct {
	IssueID       githubv4.ID       `json:"issueId"`
	SubIssueID    githubv4.ID       `json:"subIssueId"`
	ReplaceParent *githubv4.Boolean `json:"replaceParent,omitempty"`
}

// AddSubIssue attaches child as a sub-issue of parent.
func (c *Client) AddSubIssue(ctx context.Context, token, owner, repo string, parent, child int) error {
	issueID, err := c.IssueNodeID(ctx, token, owner, repo, parent)
	if err != nil {
		return err
	}
	subIssueID, err := c.IssueNodeID(ctx, token, owner, repo, child)
	if err != nil {
		return err
	}
	var mutation struct {
		AddSubIssue struct {
			Issue struct{ Number int }
		} `graphql:"addSubIssue(input: $input)"`
	}
	input := AddSubIssueInput{
		IssueID:       issueID,
		SubIssueID:    subIssueID,
		ReplaceParent: githubv4.NewBoolean(false),
	}
	return c.v4(token, featureSubIssues).Mutate(ctx, &mutation, input, nil)
}

// RemoveSubIssueInput is the input to the removeSubIssue mutation.
type RemoveSubIssueInput struct {
	IssueID    githubv4.ID `json:"issueId"`
	SubIssueID githubv4.ID `json:"subIssueId"`
}

// RemoveSubIssue detaches child from parent.
func (c *Client) RemoveSubIssue(ctx context.Context, token, owner, repo string, parent, child int) error {
	issueID, err := c.IssueNodeID(ctx, token, owner, repo, parent)
	if err != nil {
		return err
	}
	subIssueID, err := c.IssueNodeID(ctx, token, owner, repo, child)
	if err != nil {
		return err
	}
	var mutation struct {
		RemoveSubIssue struct {
			Issue struct{ Number int }
		} `graphql:"removeSubIssue(input: $input)"`
	}
	input := RemoveSubIssueInput{IssueID: issueID, SubIssueID: subIssueID}
	return c.v4(token, featureSubIssues).Mutate(ctx, &mutation, input, nil)
}

// ReprioritizeSubIssueInput is the input to the reprioritizeSubIssue
// mutation. Exactly one of BeforeID and AfterID should be set.
type ReprioritizeSubIssueInput struct {
	IssueID    githubv4.ID  `json:"issueId"`
	SubIssueID githubv4.ID  `json:"subIssueId"`
	BeforeID   *githubv4.ID `json:"beforeId,omitempty"`
	AfterID    *githubv4.ID `json:"afterId,omitempty"`
}

// ReprioritizeSubIssue moves child within parent's sub-issue list, placing
// it relative to the before or after issue number. A zero number leaves the
// corresponding anchor unset.
func (c *Client) ReprioritizeSubIssue(ctx context.Context, token, owner, repo string, parent, child, before, after int) error {
	issueID, err := c.IssueNodeID(ctx, token, owner, repo, parent)
	if err != nil {
		return err
	}
	subIssueID, err := c.IssueNodeID(ctx, token, owner, repo, child)
	if err != nil {
		return err
	}
	input := ReprioritizeSubIssueInput{IssueID: issueID, SubIssueID: subIssueID}
	if before != 0 {
		beforeID, err := c.IssueNodeID(ctx, token, owner, repo, before)
		if err != nil {
			return err
		}
		input.BeforeID = &beforeID
	}
	if after != 0 {
		afterID, err := c.IssueNodeID(ctx, token, owner, repo, after)
		if err != nil {
			return err
		}
		input.AfterID = &afterID
	}
	var mutation struct {
		ReprioritizeSubIssue struct {
			Issue struct{ Number int }
		} `graphql:"reprioritizeSubIssue(input: $input)"`
	}
	return c.v4(token, featureSubIssues).Mutate(ctx, &mutation, input, nil)
}
