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
	"context"
	"net/http"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/credentials"
)

// patStatus reports one configured token after probing the API with it.
// The token itself never appears, only its masked form.
type patStatus struct {
	Valid       bool     `json:"valid"`
	MaskedToken string   `json:"masked_token"`
	User        string   `json:"user,omitempty"`
	Type        string   `json:"type"`
	Scopes      []string `json:"scopes,omitempty"`
	Repos       []string `json:"repos,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// serveAuthStatus probes every configured token against the authenticated
// user endpoint and reports validity per token. The response shape follows
// the config shape, so legacy configs keep their legacy report.
func (h *handler) serveAuthStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Only GET is allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	if len(h.config.PATs) > 0 {
		report := struct {
			PATs []patStatus `json:"pats"`
		}{PATs: []patStatus{}}
		for _, entry := range h.config.PATs {
			report.PATs = append(report.PATs, h.checkPAT(ctx, entry.Token, credentials.Kind(entry.Token), entry.Repos))
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	report := struct {
		ClassicPAT      patStatus   `json:"classic_pat"`
		FineGrainedPATs []patStatus `json:"fine_grained_pats"`
	}{
		ClassicPAT:      h.checkPAT(ctx, h.config.ClassicPAT, "classic", nil),
		FineGrainedPATs: []patStatus{},
	}
	for _, entry := range h.config.FineGrainedPATs {
		report.FineGrainedPATs = append(report.FineGrainedPATs, h.checkPAT(ctx, entry.PAT, "fine_grained", entry.Repos))
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) checkPAT(ctx context.Context, token, kind string, repos []string) patStatus {
	status := patStatus{
		MaskedToken: credentials.Mask(token),
		Type:        kind,
		Repos:       repos,
	}
	info, err := h.client.CheckToken(ctx, token)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Valid = true
	status.User = info.Login
	if kind == "classic" {
		status.Scopes = info.Scopes
		status.Repos = nil
	}
	return status
}
