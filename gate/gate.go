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

// Package gate drives classification, refinement, policy evaluation and
// credential selection for each request, producing one Verdict the HTTP
// layer acts on. The gate is stateless: it reads only its arguments and the
// immutable tables it was constructed with, so concurrent use needs no
// locking.
package gate

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/classify"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/credentials"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/policy"
)

var verdictCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fgp_verdicts_total",
		Help: "Gate verdicts by branch, action and effect.",
	},
	[]string{"branch", "action", "effect"},
)

func init() {
	prometheus.MustRegister(verdictCounter)
}

// Verdict is the gate's per-request output. Exactly one is produced per
// request and nothing mutates it afterwards. Status is the HTTP status the
// ingress should answer with when Allowed is false.
type Verdict struct {
	Allowed bool
	Action  string
	Repo    string
	Token   string
	Reason  string
	Status  int
}

// Gate evaluates requests against an immutable ruleset and credential
// catalog built at startup.
type Gate struct {
	rules   []policy.Rule
	catalog credentials.Catalog
}

func New(rules []policy.Rule, catalog credentials.Catalog) *Gate {
	return &Gate{rules: rules, catalog: catalog}
}

func deny(branch, action, repo string, status int, reason string) Verdict {
	verdictCounter.WithLabelValues(branch, labelAction(action), "deny").Inc()
	return Verdict{Allowed: false, Action: action, Repo: repo, Reason: reason, Status: status}
}

func allow(branch, action, repo, token string) Verdict {
	verdictCounter.WithLabelValues(branch, labelAction(action), "allow").Inc()
	return Verdict{Allowed: true, Action: action, Repo: repo, Token: token, Reason: "Allowed", Status: http.StatusOK}
}

func labelAction(action string) string {
	if action == "" {
		return "unmatched"
	}
	return action
}

// CheckAPI gates a REST API request. The body is only used to refine
// placeholder actions; it must already be fully read by the caller.
func (g *Gate) CheckAPI(method, path string, body []byte) Verdict {
	act, params := classify.Classify(method, path)
	if act == "" {
		return deny("api", "", "", http.StatusForbidden, "Endpoint not allowed")
	}
	owner, repo := params["owner"], params["repo"]
	if owner == "" || repo == "" {
		return deny("api", act, "", http.StatusBadRequest, "Could not determine repository from path")
	}
	return g.finish("api", classify.Refine(act, body), owner+"/"+repo)
}

// CheckGit gates a git smart HTTP request. The query string participates in
// classification (info/refs), but the body never does.
func (g *Gate) CheckGit(method, path, query string) Verdict {
	act, params := classify.ClassifyGit(method, path, query)
	if act == "" {
		return deny("git", "", "", http.StatusForbidden, "Endpoint not allowed")
	}
	owner, repo := params["owner"], params["repo"]
	if owner == "" || repo == "" {
		return deny("git", act, "", http.StatusBadRequest, "Could not determine repository from git path")
	}
	return g.finish("git", act, owner+"/"+repo)
}

// CheckAction gates an already-classified action, used by the /cli side
// channel where the command modules derive the action themselves.
func (g *Gate) CheckAction(action, repo string) Verdict {
	return g.finish("cli", action, repo)
}

// SelectToken picks the credential for a repository without evaluating
// policy, for side-channel operations that only need a token.
func (g *Gate) SelectToken(repo string) (string, bool) {
	return g.catalog.Select(repo)
}

func (g *Gate) finish(branch, action, repo string) Verdict {
	allowed, reason := policy.Evaluate(action, repo, g.rules)
	if !allowed {
		return deny(branch, action, repo, http.StatusForbidden, reason)
	}
	token, ok := g.catalog.Select(repo)
	if !ok {
		return deny(branch, action, repo, http.StatusForbidden, fmt.Sprintf("No PAT configured for repository: %s", repo))
	}
	return allow(branch, action, repo, token)
}
