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

// Package action defines the closed vocabulary of permission actions the
// policy evaluator operates on.
//
// Actions come in two layers. Primitive actions are the finest grain the
// evaluator compares against, named "category:operation" (e.g. "pr:close").
// Bundles are named groups of primitives that mirror GitHub's own permission
// scope labels (e.g. "pull-requests:write") so operators can paste familiar
// names into rules. Bundles expand exactly one level deep.
//
// The universe is assembled once at package init from static per-feature
// unions, including the actions contributed by the /cli command modules.
// Nothing mutates it after that.
package action

// PR actions at the finest grain. The same REST endpoint can map to several
// of these depending on request body parameters, see the classify package.
var prActions = []string{
	"pr:list", "pr:get", "pr:create", "pr:create_draft", "pr:update",
	"pr:close", "pr:reopen", "pr:convert_to_draft", "pr:mark_ready",
	"pr:commits", "pr:files", "pr:merge_status",
	"pr:merge_commit", "pr:merge_squash", "pr:merge_rebase",
	"pr:update_branch",
	"pr:comment_list_all", "pr:comment_list", "pr:comment_get",
	"pr:comment_create", "pr:comment_update", "pr:comment_delete",
	"pr:review_comment_list_all", "pr:review_comment_list", "pr:review_comment_get",
	"pr:review_comment_create", "pr:review_comment_update", "pr:review_comment_delete",
	"pr:review_comment_reply",
	"pr:review_list", "pr:review_get", "pr:review_pending",
	"pr:approve", "pr:request_changes", "pr:review_comment_only",
	"pr:review_update", "pr:review_delete", "pr:review_comments",
	"pr:review_dismiss",
	"pr:review_submit_approve", "pr:review_submit_request_changes", "pr:review_submit_comment",
	"pr:reviewer_list", "pr:reviewer_request", "pr:reviewer_remove",
}

// Read-only subset of the PR actions, matching GitHub's "pull requests: read"
// permission.
var pullRequestsReadActions = []string{
	"pr:list", "pr:get", "pr:commits", "pr:files", "pr:merge_status",
	"pr:reviewer_list", "pr:review_list", "pr:review_get", "pr:review_comments",
	"pr:review_comment_list_all", "pr:review_comment_list", "pr:review_comment_get",
	"pr:comment_list_all", "pr:comment_list", "pr:comment_get",
}

var pullRequestsWriteOnlyActions = []string{
	"pr:create", "pr:create_draft", "pr:update", "pr:close", "pr:reopen",
	"pr:convert_to_draft", "pr:mark_ready", "pr:update_branch",
	"pr:reviewer_request", "pr:reviewer_remove",
	"pr:review_pending", "pr:approve", "pr:request_changes", "pr:review_comment_only",
	"pr:review_update", "pr:review_delete", "pr:review_dismiss",
	"pr:review_submit_approve", "pr:review_submit_request_changes", "pr:review_submit_comment",
	"pr:review_comment_create", "pr:review_comment_update", "pr:review_comment_delete",
	"pr:review_comment_reply",
	"pr:comment_create", "pr:comment_update", "pr:comment_delete",
}

// Contribution without destructive rights: no merge, no close/reopen, no
// deleting other people's comments.
var pullsContributeOnlyActions = []string{
	"pr:create", "pr:create_draft", "pr:update",
	"pr:convert_to_draft", "pr:mark_ready",
	"pr:comment_create", "pr:comment_update",
	"pr:review_comment_create", "pr:review_comment_update", "pr:review_comment_reply",
	"pr:review_pending", "pr:approve", "pr:request_changes", "pr:review_comment_only",
	"pr:review_update",
	"pr:review_submit_approve", "pr:review_submit_request_changes", "pr:review_submit_comment",
	"pr:reviewer_request",
}

var discussionActions = []string{
	"discussions:list",
	"discussions:get",
	"discussions:create",
	"discussions:update",
	"discussions:close",
	"discussions:reopen",
	"discussions:delete",
	"discussions:comment_list",
	"discussions:comment_add",
	"discussions:comment_edit",
	"discussions:comment_delete",
	"discussions:answer",
	"discussions:unanswer",
	"discussions:poll_vote",
}

var subIssueActions = []string{
	"subissues:list", "subissues:parent", "subissues:add", "subissues:remove", "subissues:reprioritize",
}

// Actions contributed by the /cli command modules. These are compiled in
// here rather than registered at runtime so the universe is complete before
// the first request.
var commandActions = []string{
	"discussions:read", "discussions:write",
	"issues:edit", "issues:comment_edit",
}

// bundles maps GitHub-style permission labels to their primitive expansions.
var bundles = map[string][]string{
	"pull-requests:read":  pullRequestsReadActions,
	"pull-requests:write": concat(pullRequestsReadActions, pullRequestsWriteOnlyActions),
	"pulls:contribute":    concat(pullRequestsReadActions, pullsContributeOnlyActions),
	"pr:merge":            {"pr:merge_commit", "pr:merge_squash", "pr:merge_rebase"},
}

// categories maps the prefix before ":" to the primitives sharing it, so
// rules can say "issues:*".
var categories = map[string][]string{
	"metadata":    {"metadata:read"},
	"actions":     {"actions:read"},
	"statuses":    {"statuses:read"},
	"code":        {"code:read", "code:write"},
	"issues":      {"issues:read", "issues:write", "issues:edit", "issues:comment_edit"},
	"pr":          concat([]string{"pr:read", "pr:create", "pr:write", "pr:merge", "pr:comment", "pr:review"}, prActions),
	"git":         {"git:read", "git:write"},
	"discussions": concat(discussionActions, []string{"discussions:read", "discussions:write"}),
	"subissues":   subIssueActions,
}

// universe is the ordered set of every primitive action, deduplicated with
// first occurrence winning. universeSet backs membership tests.
var (
	universe    []string
	universeSet map[string]bool
)

func init() {
	base := []string{
		"metadata:read",
		"actions:read",
		"statuses:read",
		"code:read", "code:write",
		"issues:read", "issues:write",
		"git:read", "git:write",
	}
	ordered := concat(
		base,
		subIssueActions,
		// Coarse legacy names kept for config compatibility. "pr:merge" is
		// both a coarse action and a bundle name; bundle expansion takes
		// precedence in the pattern engine.
		[]string{"pr:read", "pr:create", "pr:write", "pr:merge", "pr:comment", "pr:review"},
		prActions,
		discussionActions,
		commandActions,
	)

	universeSet = make(map[string]bool, len(ordered))
	for _, a := range ordered {
		if universeSet[a] {
			continue
		}
		universeSet[a] = true
		universe = append(universe, a)
	}
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Universe returns the ordered set of all primitive actions. Callers must
// not mutate the returned slice.
func Universe() []string {
	return universe
}

// IsPrimitive reports whether name is a primitive action in the universe.
func IsPrimitive(name string) bool {
	return universeSet[name]
}

// ExpandBundle returns the primitive expansion of a bundle, or nil if name
// is not a known bundle.
func ExpandBundle(name string) []string {
	return bundles[name]
}

// IsBundle reports whether name is a known bundle.
func IsBundle(name string) bool {
	_, ok := bundles[name]
	return ok
}

// ExpandCategory returns the primitives sharing the given category prefix,
// or nil if the category is unknown.
func ExpandCategory(category string) []string {
	return categories[category]
}
