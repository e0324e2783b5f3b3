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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestActionFor(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "discussion list",
			args: []string{"discussion", "list"},
			want: "discussions:read",
		},
		{
			name: "discussion view",
			args: []string{"discussion", "view", "12"},
			want: "discussions:read",
		},
		{
			name: "discussion create",
			args: []string{"discussion", "create", "--title", "t", "--body", "b", "--category", "general"},
			want: "discussions:write",
		},
		{
			name: "discussion comment",
			args: []string{"discussion", "comment", "12", "--body", "hi"},
			want: "discussions:write",
		},
		{
			name: "sub-issue list",
			args: []string{"sub-issue", "list", "4"},
			want: "subissues:list",
		},
		{
			name: "sub-issue reorder",
			args: []string{"sub-issue", "reorder", "4", "5", "--before", "6"},
			want: "subissues:reprioritize",
		},
		{
			name: "issue edit with old and new",
			args: []string{"issue", "edit", "7", "--old", "a", "--new", "b"},
			want: "issues:edit",
		},
		{
			name: "issue comment edit with old and new",
			args: []string{"issue", "comment", "edit", "123", "--old", "a", "--new", "b"},
			want: "issues:comment_edit",
		},
		{
			name: "issue edit without old and new falls through",
			args: []string{"issue", "edit", "7", "--title", "t"},
			want: "",
		},
		{
			name: "issue close falls through",
			args: []string{"issue", "close", "7"},
			want: "",
		},
		{
			name: "unknown command falls through",
			args: []string{"pr", "view", "7"},
			want: "",
		},
		{
			name: "unknown subcommand falls through",
			args: []string{"discussion", "delete", "7"},
			want: "",
		},
		{
			name: "empty args",
			args: nil,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ActionFor(tt.args)
			if err != nil {
				t.Fatalf("ActionFor(%v) = %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("ActionFor(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestPartialReplace(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		old        string
		new        string
		replaceAll bool
		want       string
		wantErr    bool
	}{
		{
			name: "unique occurrence",
			body: "status: open\nowner: me",
			old:  "open",
			new:  "closed",
			want: "status: closed\nowner: me",
		},
		{
			name:    "not found",
			body:    "status: open",
			old:     "missing",
			new:     "x",
			wantErr: true,
		},
		{
			name:    "ambiguous without replace all",
			body:    "a b a",
			old:     "a",
			new:     "c",
			wantErr: true,
		},
		{
			name:       "ambiguous with replace all",
			body:       "a b a",
			old:        "a",
			new:        "c",
			replaceAll: true,
			want:       "c b c",
		},
		{
			name:       "unique with replace all",
			body:       "one two",
			old:        "two",
			new:        "three",
			replaceAll: true,
			want:       "one three",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := partialReplace(tt.body, tt.old, tt.new, tt.replaceAll)
			if (err != nil) != tt.wantErr {
				t.Fatalf("partialReplace() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("partialReplace() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseEditArgs(t *testing.T) {
	positional, old, new, replaceAll, err := parseEditArgs([]string{"42", "--old", "foo", "--new", "bar", "--replace-all"})
	if err != nil {
		t.Fatalf("parseEditArgs() = %v", err)
	}
	if diff := cmp.Diff([]string{"42"}, positional); diff != "" {
		t.Errorf("positional args differ (-want +got):\n%s", diff)
	}
	if old != "foo" || new != "bar" || !replaceAll {
		t.Errorf("parseEditArgs() = old %q, new %q, replaceAll %t", old, new, replaceAll)
	}

	if _, _, _, _, err := parseEditArgs([]string{"42", "--old"}); err == nil {
		t.Error("parseEditArgs() accepted --old without a value")
	}
}

func TestFlagValues(t *testing.T) {
	values, positional := flagValues(
		[]string{"12", "--title", "a title", "-b", "a body"},
		map[string]string{"--title": "title", "-t": "title", "--body": "body", "-b": "body"},
	)
	want := map[string]string{"title": "a title", "body": "a body"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("flag values differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"12"}, positional); diff != "" {
		t.Errorf("positional args differ (-want +got):\n%s", diff)
	}
}

func TestParseReorderArgs(t *testing.T) {
	before, after, err := parseReorderArgs([]string{"--before", "6"})
	if err != nil {
		t.Fatalf("parseReorderArgs() = %v", err)
	}
	if before != 6 || after != 0 {
		t.Errorf("parseReorderArgs() = before %d, after %d", before, after)
	}

	if _, _, err := parseReorderArgs([]string{"--after", "x"}); err == nil {
		t.Error("parseReorderArgs() accepted a non-numeric issue number")
	}
}
