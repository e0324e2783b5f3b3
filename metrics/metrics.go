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

// Package metrics serves the process's Prometheus metrics and optionally
// pushes them to a push gateway.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sirupsen/logrus"

	"github.com/carrotRakko/github-finest-grained-permission-proxy/interrupts"
)

// ExposeMetrics chooses whether to serve or push metrics based on the
// options, and registers the resulting server or worker for graceful
// shutdown. An empty endpoint disables pushing.
func ExposeMetrics(component, endpoint string, interval time.Duration, serve bool, port int) {
	if endpoint != "" {
		pushMetrics(component, endpoint, interval)
	}
	if serve {
		serveMetrics(port)
	}
}

// pushMetrics pushes all registered metrics to the provided endpoint.
func pushMetrics(component, endpoint string, interval time.Duration) {
	pusher := push.New(endpoint, component).Gatherer(prometheus.DefaultGatherer)
	interrupts.TickLiteral(func() {
		if err := pusher.Add(); err != nil {
			logrus.WithField("component", component).WithError(err).Error("Failed to push metrics.")
		}
	}, interval)
}

func serveMetrics(port int) {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: metricsMux}
	interrupts.ListenAndServe(server, 5*time.Second)
}
