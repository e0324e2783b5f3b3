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

// Package proxy is the HTTP front of fgp. It routes inbound traffic to the
// REST API branch, the git smart HTTP branch, the CLI side channel and the
// token status endpoint, asks the gate for a verdict, and forwards allowed
// requests upstream with the selected credential.
package proxy

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/config"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/gate"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/github"
)

// maxAPIBodyBytes bounds how much of an API request body is buffered for
// parameter refinement. Git uploads are never buffered.
const maxAPIBodyBytes = 1 << 20

// Options configures the proxy handler.
type Options struct {
	// APIUpstream receives REST API traffic, normally https://api.github.com.
	APIUpstream *url.URL
	// GitUpstream receives git smart HTTP traffic, normally https://github.com.
	GitUpstream *url.URL
	Gate        *gate.Gate
	Config      *config.Config
	// Client runs the proxy's own API calls for /cli and /auth/status.
	Client *github.Client

	MaxConcurrency int
	Timeout        time.Duration
}

type handler struct {
	gate     *gate.Gate
	config   *config.Config
	client   *github.Client
	apiProxy http.Handler
	gitProxy http.Handler
}

// New builds the proxy handler. Both reverse proxies share one throttled,
// instrumented transport toward GitHub.
func New(o Options) http.Handler {
	transport := newUpstreamTransport(http.DefaultTransport, o.MaxConcurrency)
	return &handler{
		gate:     o.Gate,
		config:   o.Config,
		client:   o.Client,
		apiProxy: newReverseProxy(o.APIUpstream, transport, o.Timeout),
		gitProxy: newReverseProxy(o.GitUpstream, transport, 0),
	}
}

// newReverseProxy forwards to upstreamURL, rewriting the Host header to
// the upstream host. A zero timeout disables the timeout handler, which
// buffers responses and would break git pack streaming.
func newReverseProxy(upstreamURL *url.URL, transport http.RoundTripper, timeout time.Duration) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(upstreamURL)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = req.URL.Host
	}
	proxy.Transport = transport
	if timeout == 0 {
		return proxy
	}
	return http.TimeoutHandler(proxy, timeout, fmt.Sprintf("fgp timed out after %v", timeout))
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/git/"):
		h.serveGit(w, r)
	case r.URL.Path == "/cli":
		h.serveCLI(w, r)
	case r.URL.Path == "/auth/status":
		h.serveAuthStatus(w, r)
	default:
		h.serveAPI(w, r)
	}
}

// serveAPI gates a REST API request and forwards it with a Bearer token.
// Only a bounded prefix of the body is buffered for parameter refinement;
// the full body still goes upstream intact.
func (h *handler) serveAPI(w http.ResponseWriter, r *http.Request) {
	prefix, err := io.ReadAll(io.LimitReader(r.Body, maxAPIBodyBytes))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(prefix), r.Body))

	verdict := h.gate.CheckAPI(r.Method, r.URL.Path, prefix)
	logVerdict(r, verdict)
	if !verdict.Allowed {
		http.Error(w, verdict.Reason, verdict.Status)
		return
	}

	// The client's Authorization header never goes upstream.
	r.Header.Set("Authorization", "Bearer "+verdict.Token)
	h.apiProxy.ServeHTTP(w, r)
}

// serveGit gates a git smart HTTP request and forwards it with Basic auth
// the way git expects from an HTTPS remote.
func (h *handler) serveGit(w http.ResponseWriter, r *http.Request) {
	verdict := h.gate.CheckGit(r.Method, r.URL.Path, r.URL.RawQuery)
	logVerdict(r, verdict)
	if !verdict.Allowed {
		http.Error(w, verdict.Reason, verdict.Status)
		return
	}

	r.URL.Path = strings.TrimPrefix(r.URL.Path, "/git")
	auth := base64.StdEncoding.EncodeToString([]byte("x-access-token:" + verdict.Token))
	r.Header.Set("Authorization", "Basic "+auth)
	h.gitProxy.ServeHTTP(w, r)
}

func logVerdict(r *http.Request, verdict gate.Verdict) {
	logrus.WithFields(logrus.Fields{
		"method":  r.Method,
		"path":    r.URL.Path,
		"action":  verdict.Action,
		"repo":    verdict.Repo,
		"allowed": verdict.Allowed,
		"reason":  verdict.Reason,
	}).Info("Request gated.")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("Failed to write response.")
	}
}
