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

package classify

import (
	"encoding/json"
	"strings"
)

// condition is a single test against one JSON body field.
type condition struct {
	field string
	// wantString matches string fields after uppercasing when foldCase is
	// set. wantBool matches boolean fields when isBool is set.
	wantString string
	foldCase   bool
	wantBool   bool
	isBool     bool
}

func (c condition) holds(body map[string]interface{}) bool {
	v, ok := body[c.field]
	if !ok {
		return false
	}
	if c.isBool {
		b, ok := v.(bool)
		return ok && b == c.wantBool
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	if c.foldCase {
		s = strings.ToUpper(s)
	}
	return s == c.wantString
}

// branch resolves to primitive when all of its conditions hold.
type branch struct {
	primitive string
	conds     []condition
}

// refinement is an ordered list of branches plus the primitive used when
// none of them matches.
type refinement struct {
	branches []branch
	fallback string
}

func eqString(field, want string) condition {
	return condition{field: field, wantString: want}
}

func eqEvent(want string) condition {
	return condition{field: "event", wantString: want, foldCase: true}
}

func eqBool(field string, want bool) condition {
	return condition{field: field, wantBool: want, isBool: true}
}

// refinements resolves placeholder actions top-to-bottom against the
// decoded request body.
var refinements = map[string]refinement{
	"pr:create" + ParamBranchSuffix: {
		branches: []branch{
			{primitive: "pr:create_draft", conds: []condition{eqBool("draft", true)}},
		},
		fallback: "pr:create",
	},
	"pr:update" + ParamBranchSuffix: {
		branches: []branch{
			{primitive: "pr:close", conds: []condition{eqString("state", "closed")}},
			{primitive: "pr:reopen", conds: []condition{eqString("state", "open")}},
			{primitive: "pr:convert_to_draft", conds: []condition{eqBool("draft", true)}},
			{primitive: "pr:mark_ready", conds: []condition{eqBool("draft", false)}},
		},
		fallback: "pr:update",
	},
	"pr:merge" + ParamBranchSuffix: {
		branches: []branch{
			{primitive: "pr:merge_squash", conds: []condition{eqString("merge_method", "squash")}},
			{primitive: "pr:merge_rebase", conds: []condition{eqString("merge_method", "rebase")}},
		},
		fallback: "pr:merge_commit",
	},
	"pr:review" + ParamBranchSuffix: {
		branches: []branch{
			{primitive: "pr:approve", conds: []condition{eqEvent("APPROVE")}},
			{primitive: "pr:request_changes", conds: []condition{eqEvent("REQUEST_CHANGES")}},
			{primitive: "pr:review_comment_only", conds: []condition{eqEvent("COMMENT")}},
		},
		fallback: "pr:review_pending",
	},
	"pr:review_submit" + ParamBranchSuffix: {
		branches: []branch{
			{primitive: "pr:review_submit_approve", conds: []condition{eqEvent("APPROVE")}},
			{primitive: "pr:review_submit_request_changes", conds: []condition{eqEvent("REQUEST_CHANGES")}},
		},
		fallback: "pr:review_submit_comment",
	},
}

// Refine resolves a placeholder action into a primitive by inspecting the
// request body. Non-placeholder actions are returned unchanged. The body is
// a hint, not a requirement: absent or unparseable bodies resolve to each
// placeholder's fallback. Refine never fails.
func Refine(action string, body []byte) string {
	if !strings.Contains(action, ParamBranchSuffix) {
		return action
	}

	fields := map[string]interface{}{}
	if len(body) > 0 {
		// Ignore decode errors, the body stays an empty object.
		_ = json.Unmarshal(body, &fields)
	}

	r, ok := refinements[action]
	if !ok {
		// Unknown placeholder: strip the marker and hand the remainder to
		// the evaluator as-is.
		return strings.ReplaceAll(action, ParamBranchSuffix, "")
	}

	for _, b := range r.branches {
		matched := true
		for _, c := range b.conds {
			if !c.holds(fields) {
				matched = false
				break
			}
		}
		if matched {
			return b.primitive
		}
	}
	return r.fallback
}
