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

	"github.com/shurcooL/githubv4"
)

// featureSubIssues opts GraphQL requests into the sub-issues preview.
const featureSubIssues = "sub_issues"

// authorizingTransport adds the selected token and any preview feature
// headers to each GraphQL request.
type authorizingTransport struct {
	base     http.RoundTripper
	token    string
	features string
}

func (t *authorizingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	copied := req.Clone(req.Context())
	copied.Header.Set("Authorization", "bearer "+t.token)
	copied.Header.Set("User-Agent", userAgent)
	if t.features != "" {
		copied.Header.Set("GraphQL-Features", t.features)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(copied)
}

// v4 builds a GraphQL client bound to one token. The features string is
// forwarded as a GraphQL-Features header when non-empty.
func (c *Client) v4(token, features string) *githubv4.Client {
	httpClient := &http.Client{
		Transport: &authorizingTransport{base: c.client.Transport, token: token, features: features},
		Timeout:   c.client.Timeout,
	}
	if c.graphqlEndpoint == DefaultGraphQLEndpoint {
		return githubv4.NewClient(httpClient)
	}
	return githubv4.NewEnterpriseClient(c.graphqlEndpoint, httpClient)
}

// RepositoryID resolves a repository to its GraphQL node ID.
func (c *Client) RepositoryID(ctx context.Context, token, owner, repo string) (githubv4.ID, error) {
	var query struct {
		Repository struct {
			ID githubv4.ID
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]interface{}{
		"owner": githubv4.String(owner),
		"name":  githubv4.String(repo),
	}
	if err := c.v4(token, "").Query(ctx, &query, variables); err != nil {
		return nil, err
	}
	return query.Repository.ID, nil
}

// IssueNodeID resolves an issue number to its GraphQL node ID.
func (c *Client) IssueNodeID(ctx context.Context, token, owner, repo string, number int) (githubv4.ID, error) {
	var query struct {
		Repository struct {
			Issue struct {
				ID githubv4.ID
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
	if query.Repository.Issue.ID == nil {
		return nil, fmt.Errorf("issue #%d not found in %s/%s", number, owner, repo)
	}
	return query.Repository.Issue.ID, nil
}
