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

// Package github is the upstream client the proxy uses for its own calls to
// the GitHub API: the REST endpoints behind partial issue edits and token
// probes, and the GraphQL API behind discussions and sub-issues. Requests
// made on behalf of the agent carry whichever PAT the credential catalog
// selected, so every method takes the token explicitly.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultAPIBase is the REST API root for github.com.
	DefaultAPIBase = "https://api.github.com"
	// DefaultGraphQLEndpoint is the GraphQL API endpoint for github.com.
	DefaultGraphQLEndpoint = "https://api.github.com/graphql"

	userAgent  = "fgp-proxy/1.0"
	apiVersion = "2022-11-28"
	acceptJSON = "application/vnd.github+json"
)

// Client calls the GitHub API with per-request credentials.
type Client struct {
	base            string
	graphqlEndpoint string
	client          *http.Client
}

// NewClient returns a Client against the given REST API base and GraphQL
// endpoint. Empty values select github.com. Requests are retried on
// connection errors and 5xx responses.
func NewClient(base, graphqlEndpoint string) *Client {
	if base == "" {
		base = DefaultAPIBase
	}
	if graphqlEndpoint == "" {
		graphqlEndpoint = DefaultGraphQLEndpoint
	}
	retryingClient := retryablehttp.NewClient()
	retryingClient.Logger = &retryableHTTPLogrusWrapper{log: logrus.WithField("client", "github")}
	retryingClient.RetryMax = 3
	retryingClient.HTTPClient.Timeout = 30 * time.Second
	return &Client{
		base:            strings.TrimSuffix(base, "/"),
		graphqlEndpoint: graphqlEndpoint,
		client:          retryingClient.StandardClient(),
	}
}

// RequestError carries the status of a non-2xx upstream response.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// do runs one REST request. A nil in sends no body; a nil out discards the
// response body.
func (c *Client) do(ctx context.Context, token, method, path string, in, out interface{}) (http.Header, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("could not marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptJSON)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, &RequestError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.Header, fmt.Errorf("could not unmarshal response: %w", err)
		}
	}
	return resp.Header, nil
}

// UserInfo describes the account a token authenticates as.
type UserInfo struct {
	Login string
	// Scopes holds the X-OAuth-Scopes header entries. Only classic PATs
	// report scopes; the slice is empty for fine-grained tokens.
	Scopes []string
}

// CheckToken validates a token by fetching the authenticated user.
func (c *Client) CheckToken(ctx context.Context, token string) (*UserInfo, error) {
	var user struct {
		Login string `json:"login"`
	}
	header, err := c.do(ctx, token, http.MethodGet, "/user", nil, &user)
	if err != nil {
		return nil, err
	}
	info := &UserInfo{Login: user.Login}
	for _, scope := range strings.Split(header.Get("X-OAuth-Scopes"), ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			info.Scopes = append(info.Scopes, scope)
		}
	}
	return info, nil
}

// retryableHTTPLogrusWrapper makes logrus sundry to retryablehttp.
type retryableHTTPLogrusWrapper struct {
	log *logrus.Entry
}

// fieldsForContext translates a list of context fields to a
// logrus format; any items that don't conform to the keysAndValues
// format will be ignored.
func (l *retryableHTTPLogrusWrapper) fieldsForContext(keysAndValues ...interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

func (l *retryableHTTPLogrusWrapper) Error(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(l.fieldsForContext(keysAndValues...)).Error(msg)
}

func (l *retryableHTTPLogrusWrapper) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(l.fieldsForContext(keysAndValues...)).Info(msg)
}

func (l *retryableHTTPLogrusWrapper) Debug(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(l.fieldsForContext(keysAndValues...)).Debug(msg)
}

func (l *retryableHTTPLogrusWrapper) Warn(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(l.fieldsForContext(keysAndValues...)).Warn(msg)
}
