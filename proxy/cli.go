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

package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/commands"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/github"
)

type cliRequest struct {
	Args []string `json:"args"`
	Repo string   `json:"repo"`
}

// serveCLI dispatches one CLI invocation. Commands with a registered
// module run in-process against the API; everything else goes to a local
// gh process holding the selected token.
func (h *handler) serveCLI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST is allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxAPIBodyBytes))
	if err != nil || len(raw) == 0 {
		http.Error(w, "Request body required", http.StatusBadRequest)
		return
	}
	var req cliRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		http.Error(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if len(req.Args) == 0 {
		http.Error(w, "args is required", http.StatusBadRequest)
		return
	}
	if req.Repo == "" {
		http.Error(w, "repo is required", http.StatusBadRequest)
		return
	}
	owner, name, ok := strings.Cut(req.Repo, "/")
	if !ok || owner == "" || name == "" {
		http.Error(w, fmt.Sprintf("Invalid repository: %s", req.Repo), http.StatusBadRequest)
		return
	}

	token, ok := h.gate.SelectToken(req.Repo)
	if !ok {
		http.Error(w, fmt.Sprintf("No PAT configured for repository: %s", req.Repo), http.StatusForbidden)
		return
	}

	if module, handled := commands.Lookup(req.Args[0]); handled {
		action, err := commands.ActionFor(req.Args)
		if err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		if action != "" {
			verdict := h.gate.CheckAction(action, req.Repo)
			logVerdict(r, verdict)
			if !verdict.Allowed {
				http.Error(w, verdict.Reason, verdict.Status)
				return
			}
		}
		result, err := module.Execute(r.Context(), h.client, req.Args[1:], owner, name, token)
		if err != nil {
			var reqErr *github.RequestError
			if errors.As(err, &reqErr) {
				http.Error(w, err.Error(), http.StatusBadGateway)
			} else {
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}
		if result != nil {
			writeJSON(w, http.StatusOK, result)
			return
		}
		// The module declined the invocation, run it through gh.
	}

	result, err := commands.RunGH(r.Context(), req.Args, req.Repo, token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
