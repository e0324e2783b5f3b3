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

// Package classify maps inbound requests to actions.
//
// The REST table is an ordered list of (method, anchored regexp, action)
// entries; the first entry whose method and pattern both match wins, so the
// declaration order between overlapping patterns is load-bearing. Patterns
// capture at least "owner" and "repo" plus per-endpoint parameters.
//
// Some entries yield a placeholder action (suffix "_PARAM_BRANCH") because
// GitHub overloads the endpoint: the semantic operation is only visible in
// the request body. Those are resolved by Refine.
package classify

import (
	"regexp"
	"strings"
)

// ParamBranchSuffix marks actions that need body refinement before policy
// evaluation.
const ParamBranchSuffix = "_PARAM_BRANCH"

type endpoint struct {
	method  string
	pattern *regexp.Regexp
	action  string
}

func ep(method, pattern, action string) endpoint {
	return endpoint{method: method, pattern: regexp.MustCompile("^" + pattern + "$"), action: action}
}

// restEndpoints is scanned linearly; first match wins. Do not reorder:
// e.g. GET issue comments intentionally classify as issues:read, shadowing
// the pr:comment_list entry for the same path.
var restEndpoints = []endpoint{
	// metadata:read
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)`, "metadata:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/branches`, "metadata:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/branches/(?P<branch>[^/]+)`, "metadata:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/contributors`, "metadata:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/languages`, "metadata:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/tags`, "metadata:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/topics`, "metadata:read"),

	// actions:read
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/actions/runs`, "actions:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/actions/runs/(?P<run_id>\d+)`, "actions:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/actions/runs/(?P<run_id>\d+)/jobs`, "actions:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/actions/workflows`, "actions:read"),

	// statuses:read
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/commits/(?P<ref>[^/]+)/status`, "statuses:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/commits/(?P<ref>[^/]+)/statuses`, "statuses:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/commits/(?P<ref>[^/]+)/check-runs`, "statuses:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/commits/(?P<ref>[^/]+)/check-suites`, "statuses:read"),

	// code:read
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/contents/(?P<path>.*)`, "code:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/git/refs`, "code:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/git/refs/(?P<ref>.+)`, "code:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/git/commits/(?P<sha>[^/]+)`, "code:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/git/trees/(?P<sha>[^/]+)`, "code:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/git/blobs/(?P<sha>[^/]+)`, "code:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/compare/(?P<basehead>.+)`, "code:read"),

	// code:write
	ep("PUT", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/contents/(?P<path>.*)`, "code:write"),
	ep("DELETE", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/contents/(?P<path>.*)`, "code:write"),
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/git/refs`, "code:write"),
	ep("PATCH", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/git/refs/(?P<ref>.+)`, "code:write"),

	// issues:read
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues`, "issues:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/(?P<issue_number>\d+)`, "issues:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/(?P<issue_number>\d+)/comments`, "issues:read"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/(?P<issue_number>\d+)/labels`, "issues:read"),

	// issues:write
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues`, "issues:write"),
	ep("PATCH", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/(?P<issue_number>\d+)`, "issues:write"),
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/(?P<issue_number>\d+)/comments`, "issues:write"),
	ep("PATCH", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/comments/(?P<comment_id>\d+)`, "issues:write"),
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/(?P<issue_number>\d+)/labels`, "issues:write"),
	ep("DELETE", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/(?P<issue_number>\d+)/labels/(?P<label>[^/]+)`, "issues:write"),

	// pull requests
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls`, "pr:list"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)`, "pr:get"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/commits`, "pr:commits"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/files`, "pr:files"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/merge`, "pr:merge_status"),
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls`, "pr:create"+ParamBranchSuffix),
	ep("PATCH", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)`, "pr:update"+ParamBranchSuffix),
	ep("PUT", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/update-branch`, "pr:update_branch"),
	ep("PUT", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/merge`, "pr:merge"+ParamBranchSuffix),

	// general comments via the issues API
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/comments`, "pr:comment_list_all"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/(?P<issue_number>\d+)/comments`, "pr:comment_list"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/comments/(?P<comment_id>\d+)`, "pr:comment_get"),
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/(?P<issue_number>\d+)/comments`, "pr:comment_create"),
	ep("PATCH", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/comments/(?P<comment_id>\d+)`, "pr:comment_update"),
	ep("DELETE", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/issues/comments/(?P<comment_id>\d+)`, "pr:comment_delete"),

	// review comments
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/comments`, "pr:review_comment_list_all"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/comments`, "pr:review_comment_list"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/comments/(?P<comment_id>\d+)`, "pr:review_comment_get"),
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/comments`, "pr:review_comment_create"),
	ep("PATCH", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/comments/(?P<comment_id>\d+)`, "pr:review_comment_update"),
	ep("DELETE", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/comments/(?P<comment_id>\d+)`, "pr:review_comment_delete"),
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/comments/(?P<comment_id>\d+)/replies`, "pr:review_comment_reply"),

	// reviews
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/reviews`, "pr:review_list"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/reviews/(?P<review_id>\d+)`, "pr:review_get"),
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/reviews`, "pr:review"+ParamBranchSuffix),
	ep("PUT", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/reviews/(?P<review_id>\d+)`, "pr:review_update"),
	ep("DELETE", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/reviews/(?P<review_id>\d+)`, "pr:review_delete"),
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/reviews/(?P<review_id>\d+)/comments`, "pr:review_comments"),
	ep("PUT", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/reviews/(?P<review_id>\d+)/dismissals`, "pr:review_dismiss"),
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/reviews/(?P<review_id>\d+)/events`, "pr:review_submit"+ParamBranchSuffix),

	// review requests
	ep("GET", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/requested_reviewers`, "pr:reviewer_list"),
	ep("POST", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/requested_reviewers`, "pr:reviewer_request"),
	ep("DELETE", `/repos/(?P<owner>[^/]+)/(?P<repo>[^/]+)/pulls/(?P<pull_number>\d+)/requested_reviewers`, "pr:reviewer_remove"),
}

var gitEndpoints = []endpoint{
	ep("GET", `/git/(?P<owner>[^/]+)/(?P<repo>[^/]+)\.git/info/refs`, "git:read"),
	ep("POST", `/git/(?P<owner>[^/]+)/(?P<repo>[^/]+)\.git/git-upload-pack`, "git:read"),
	ep("POST", `/git/(?P<owner>[^/]+)/(?P<repo>[^/]+)\.git/git-receive-pack`, "git:write"),
}

func match(table []endpoint, method, path string) (string, map[string]string) {
	for _, e := range table {
		if e.method != method {
			continue
		}
		m := e.pattern.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		params := map[string]string{}
		for i, name := range e.pattern.SubexpNames() {
			if name != "" {
				params[name] = m[i]
			}
		}
		return e.action, params
	}
	return "", nil
}

// Classify maps a REST API request to an action and its path parameters.
// The path must not contain the query string. An empty action means no
// endpoint matched and the request must be denied.
func Classify(method, path string) (string, map[string]string) {
	return match(restEndpoints, method, path)
}

// ClassifyGit maps a git smart HTTP request to an action. For info/refs the
// query string decides between fetch and push: git advertises refs through
// the same URL for both and only the service parameter tells them apart.
func ClassifyGit(method, path, query string) (string, map[string]string) {
	action, params := match(gitEndpoints, method, path)
	if action == "" {
		return "", nil
	}
	if strings.HasSuffix(path, "/info/refs") {
		if strings.Contains(query, "service=git-receive-pack") {
			return "git:write", params
		}
		return "git:read", params
	}
	return action, params
}
