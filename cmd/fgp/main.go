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

// fgp is a local reverse proxy that lets an untrusted agent use GitHub
// through a declarative allow/deny policy, holding the real credentials
// itself. Requests the policy allows are forwarded with a token scoped to
// the target repository; everything else is refused before it leaves the
// machine.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/config"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/gate"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/github"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/interrupts"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/logrusutil"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/metrics"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/proxy"
	"github.com/carrotRakko/github-finest-grained-permission-proxy/secretutil"
)

type options struct {
	port       int
	configPath string

	apiUpstream       string
	gitUpstream       string
	apiUpstreamParsed *url.URL
	gitUpstreamParsed *url.URL

	maxConcurrency int
	timeout        uint

	pushGateway         string
	pushGatewayInterval time.Duration
	serveMetrics        bool
	metricsPort         int

	logLevel string
}

func flagOptions() *options {
	o := &options{}
	flag.IntVar(&o.port, "port", config.DefaultPort, "Port to listen on.")
	flag.StringVar(&o.configPath, "config", config.DefaultPath(), "Path to the policy and credential config file.")
	flag.StringVar(&o.apiUpstream, "api-upstream", github.DefaultAPIBase, "Scheme, host, and base path of the REST API upstream.")
	flag.StringVar(&o.gitUpstream, "git-upstream", "https://github.com", "Scheme and host of the git smart HTTP upstream.")
	flag.IntVar(&o.maxConcurrency, "concurrency", 25, "Maximum number of concurrent in-flight requests to GitHub.")
	flag.UintVar(&o.timeout, "request-timeout", 30, "API request timeout in seconds.")
	flag.StringVar(&o.pushGateway, "push-gateway", "", "If specified, push prometheus metrics to this endpoint.")
	flag.DurationVar(&o.pushGatewayInterval, "push-gateway-interval", time.Minute, "Interval at which prometheus metrics are pushed.")
	flag.BoolVar(&o.serveMetrics, "serve-metrics", false, "If true, serve prometheus metrics.")
	flag.IntVar(&o.metricsPort, "metrics-port", 9090, "Port to serve prometheus metrics on.")
	flag.StringVar(&o.logLevel, "log-level", "debug", fmt.Sprintf("Log level is one of %v.", logrus.AllLevels))
	return o
}

func (o *options) validate() error {
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level specified: %w", err)
	}
	logrus.SetLevel(level)

	if o.apiUpstreamParsed, err = url.Parse(o.apiUpstream); err != nil {
		return fmt.Errorf("failed to parse API upstream URL: %w", err)
	}
	if o.gitUpstreamParsed, err = url.Parse(o.gitUpstream); err != nil {
		return fmt.Errorf("failed to parse git upstream URL: %w", err)
	}
	return nil
}

func main() {
	logrusutil.ComponentInit("fgp")

	o := flagOptions()
	flag.Parse()
	if err := o.validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid arguments.")
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		logrus.WithError(err).Fatalf("Could not load config from %s.", o.configPath)
	}
	catalog := cfg.Catalog()

	// Every configured token is censored from log output from here on.
	logrusutil.WrapWithCensoring(secretutil.NewCensorer(catalog.Tokens()...))

	defer interrupts.WaitForGracefulShutdown()
	metrics.ExposeMetrics("fgp", o.pushGateway, o.pushGatewayInterval, o.serveMetrics, o.metricsPort)

	handler := proxy.New(proxy.Options{
		APIUpstream:    o.apiUpstreamParsed,
		GitUpstream:    o.gitUpstreamParsed,
		Gate:           gate.New(cfg.Rules, catalog),
		Config:         cfg,
		Client:         github.NewClient(o.apiUpstream, ""),
		MaxConcurrency: o.maxConcurrency,
		Timeout:        time.Duration(o.timeout) * time.Second,
	})
	server := &http.Server{Addr: ":" + strconv.Itoa(o.port), Handler: handler}

	logrus.WithField("port", o.port).Info("Listening.")
	interrupts.ListenAndServe(server, time.Duration(o.timeout)*time.Second)
}
