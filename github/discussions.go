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
	"strings"
	"time"

	"github.com/shurcooL/githubv4"
)

// Discussion is one repository discussion, optionally with its comments.
type Discussion struct {
	Number       int
	Title        string
	Body         string
	URL          string
	Author       string
	Category     string
	CreatedAt    time.Time
	CommentCount int
	Comments     []DiscussionComment
}

// DiscussionComment is one comment on a discussion. The ID is the GraphQL
// node ID, which is what comment edits address.
type DiscussionComment struct {
	ID        string
	Author    string
	Body      string
	CreatedAt time.Time
}

// DiscussionRef identifies a discussion a mutation touched.
type DiscussionRef struct {
	Number int
	URL    string
}

// CommentRef identifies a discussion comment a mutation touched.
type CommentRef struct {
	ID  string
	URL string
}

// ListDiscussions returns the 30 most recently created discussions.
func (c *Client) ListDiscussions(ctx context.Context, token, owner, repo string) ([]Discussion, error) {
	var query struct {
		Repository struct {
			Discussions struct {
				Nodes []struct {
					Number    int
					Title     string
					Author    struct{ Login string }
					CreatedAt githubv4.DateTime
					Category  struct{ Name string }
					Comments  struct{ TotalCount int }
				}
			} `graphql:"discussions(first: 30, orderBy: {field: CREATED_AT, direction: DESC})"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}
	if err := c.v4(token, "").Query(ctx, &query, variables); err != nil {
		return nil, err
	}
	var discussions []Discussion
	for _, node := range query.Repository.Discussions.Nodes {
		discussions = append(discussions, Discussion{
			Number:       node.Number,
			Title:        node.Title,
			Author:       node.Author.Login,
			Category:     node.Category.Name,
			CreatedAt:    node.CreatedAt.Time,
			CommentCount: node.Comments.TotalCount,
		})
	}
	return discussions, nil
}

// GetDiscussion returns one discussion with up to 50 comments.
func (c *Client) GetDiscussion(ctx context.Context, token, owner, repo string, number int) (*Discussion, error) {
	var query struct {
		Repository struct {
			Discussion struct {
				Number    int
				Title     string
				Body      string
				URL       string `graphql:"url"`
				Author    struct{ Login string }
				CreatedAt githubv4.DateTime
				Category  struct{ Name string }
				Comments  struct {
					Nodes []struct {
						ID        string `graphql:"id"`
						Author    struct{ Login string }
						Body      string
						CreatedAt githubv4.DateTime
					}
				} `graphql:"comments(first: 50)"`
			} `graphql:"discussion(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(repo),
		"number": githubv4.Int(number),
	}
	if err := c.v4(token, "").Query(ctx, &query, variables); err != nil {
		return nil, err
	}
	d := query.Repository.Discussion
	if d.Number == 0 {
		return nil, fmt.Errorf("discussion #%d not found", number)
	}
	discussion := &Discussion{
		Number:    d.Number,
		Title:     d.Title,
		Body:      d.Body,
		URL:       d.URL,
		Author:    d.Author.Login,
		Category:  d.Category.Name,
		CreatedAt: d.CreatedAt.Time,
	}
	for _, node := range d.Comments.Nodes {
		discussion.Comments = append(discussion.Comments, DiscussionComment{
			ID:        node.ID,
			Author:    node.Author.Login,
			Body:      node.Body,
			CreatedAt: node.CreatedAt.Time,
		})
	}
	return discussion, nil
}

// discussionID resolves a discussion number to its GraphQL node ID.
func (c *Client) discussionID(ctx context.Context, token, owner, repo string, number int) (githubv4.ID, error) {
	var query struct {
		Repository struct {
			Discussion struct {
				ID githubv4.ID
			} `graphql:"discussion(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]interface{}{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(repo),
		"number": githubv4.Int(number),
	}
	if err := c.v4(token, "").Query(ctx, &query, variables); err != nil {
		return nil, err
	}
	if query.Repository.Discussion.ID == nil {
		return nil, fmt.Errorf("discussion #%d not found", number)
	}
	return query.Repository.Discussion.ID, nil
}

// discussionCategoryID resolves a category by name or slug, both matched
// case-insensitively.
func (c *Client) discussionCategoryID(ctx context.Context, token, owner, repo, category string) (githubv4.ID, error) {
	var query struct {
		Repository struct {
			DiscussionCategories struct {
				Nodes []struct {
					ID   githubv4.ID
					Name string
					Slug string
				}
			} `graphql:"discussionCategories(first: 100)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}
	if err := c.v4(token, "").Query(ctx, &query, variables); err != nil {
		return nil, err
	}
	var available []string
	for _, node := range query.Repository.DiscussionCategories.Nodes {
		if strings.EqualFold(node.Name, category) || strings.EqualFold(node.Slug, category) {
			return node.ID, nil
		}
		available = append(available, node.Name)
	}
	return nil, fmt.Errorf("category %q not found, available: %s", category, strings.Join(available, ", "))
}

// CreateDiscussionInput is the input to the createDiscussion mutation.
type CreateDiscussionInput struct {
	RepositoryID githubv4.ID     `json:"repositoryId"`
	CategoryID   githubv4.ID     `json:"categoryId"`
	Title        githubv4.String `json:"title"`
	Body         githubv4.String `json:"body"`
}

// CreateDiscussion creates a discussion in the named category.
func (c *Client) CreateDiscussion(ctx context.Context, token, owner, repo, title, body, category string) (*DiscussionRef, error) {
	repositoryID, err := c.RepositoryID(ctx, token, owner, repo)
	if err != nil {
		return nil, err
	}
	categoryID, err := c.discussionCategoryID(ctx, token, owner, repo, category)
	if err != nil {
		return nil, err
	}
	var mutation struct {
		CreateDiscussion struct {
			Discussion struct {
				Number int
				URL    string `graphql:"url"`
			}
		} `graphql:"createDiscussion(input: $input)"`
	}
	input := CreateDiscussionInput{
		RepositoryID: repositoryID,
		CategoryID:   categoryID,
		Title:        githubv4.String(title),
		Body:         githubv4.String(body),
	}
	if err := c.v4(token, "").Mutate(ctx, &mutation, input, nil); err != nil {
		return nil, err
	}
	d := mutation.CreateDiscussion.Discussion
	return &DiscussionRef{Number: d.Number, URL: d.URL}, nil
}

// UpdateDiscussionInput is the input to the updateDiscussion mutation. Nil
// fields leave the corresponding attribute unchanged.
type UpdateDiscussionInput struct {
	DiscussionID githubv4.ID      `json:"discussionId"`
	Title        *githubv4.String `json:"title,omitempty"`
	Body         *githubv4.String `json:"body,omitempty"`
}

// UpdateDiscussion updates the title and/or body of a discussion.
func (c *Client) UpdateDiscussion(ctx context.Context, token, owner, repo string, number int, title, body *string) (*DiscussionRef, error) {
	discussionID, err := c.discussionID(ctx, token, owner, repo, number)
	if err != nil {
		return nil, err
	}
	var mutation struct {
		UpdateDiscussion struct {
			Discussion struct {
				Number int
				URL    string `graphql:"url"`
			}
		} `graphql:"updateDiscussion(input: $input)"`
	}
	input := UpdateDiscussionInput{DiscussionID: discussionID}
	if title != nil {
		input.Title = githubv4.NewString(githubv4.String(*title))
	}
	if body != nil {
		input.Body = githubv4.NewString(githubv4.String(*body))
	}
	if err := c.v4(token, "").Mutate(ctx, &mutation, input, nil); err != nil {
		return nil, err
	}
	d := mutation.UpdateDiscussion.Discussion
	return &DiscussionRef{Number: d.Number, URL: d.URL}, nil
}

// AddDiscussionCommentInput is the input to the addDiscussionComment
// mutation.
type AddDiscussionCommentInput struct {
	DiscussionID githubv4.ID      `json:"discussionId"`
	Body         githubv4.String  `json:"body"`
	ReplyToID    *githubv4.String `json:"replyToId,omitempty"`
}

// AddDiscussionComment adds a comment, optionally as a reply to an
// existing comment.
func (c *Client) AddDiscussionComment(ctx context.Context, token, owner, repo string, number int, body, replyTo string) (*CommentRef, error) {
	discussionID, err := c.discussionID(ctx, token, owner, repo, number)
	if err != nil {
		return nil, err
	}
	var mutation struct {
		AddDiscussionComment struct {
			Comment struct {
				ID  string `graphql:"id"`
				URL string `graphql:"url"`
			}
		} `graphql:"addDiscussionComment(input: $input)"`
	}
	input := AddDiscussionCommentInput{
		DiscussionID: discussionID,
		Body:         githubv4.String(body),
	}
	if replyTo != "" {
		input.ReplyToID = githubv4.NewString(githubv4.String(replyTo))
	}
	if err := c.v4(token, "").Mutate(ctx, &mutation, input, nil); err != nil {
		return nil, err
	}
	comment := mutation.AddDiscussionComment.Comment
	return &CommentRef{ID: comment.ID, URL: comment.URL}, nil
}

// UpdateDiscussionCommentInput is the input to the updateDiscussionComment
// mutation.
type UpdateDiscussionCommentInput struct {
	CommentID githubv4.ID     `json:"commentId"`
	Body      githubv4.String `json:"body"`
}

// UpdateDiscussionComment replaces the body of a discussion comment.
func (c *Client) UpdateDiscussionComment(ctx context.Context, token, commentID, body string) (*CommentRef, error) {
	var mutation struct {
		UpdateDiscussionComment struct {
			Comment struct {
				ID  string `graphql:"id"`
				URL string `graphql:"url"`
			}
		} `graphql:"updateDiscussionComment(input: $input)"`
	}
	input := UpdateDiscussionCommentInput{
		CommentID: githubv4.ID(commentID),
		Body:      githubv4.String(body),
	}
	if err := c.v4(token, "").Mutate(ctx, &mutation, input, nil); err != nil {
		return nil, err
	}
	comment := mutation.UpdateDiscussionComment.Comment
	return &CommentRef{ID: comment.ID, URL: comment.URL}, nil
}
