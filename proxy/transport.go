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
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

var (
	upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fgp_upstream_requests_total",
		Help: "Requests forwarded upstream by host and response status.",
	}, []string{"host", "status"})
	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fgp_upstream_request_duration_seconds",
		Help:    "Latency of forwarded upstream requests by host.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"host"})
)

func init() {
	prometheus.MustRegister(upstreamRequests)
	prometheus.MustRegister(upstreamDuration)
}

// upstreamTransport throttles concurrency toward the upstream and records
// per-request metrics.
type upstreamTransport struct {
	sem      *semaphore.Weighted
	delegate http.RoundTripper
}

// newUpstreamTransport caps in-flight upstream requests at maxConcurrency.
func newUpstreamTransport(delegate http.RoundTripper, maxConcurrency int) http.RoundTripper {
	if delegate == nil {
		delegate = http.DefaultTransport
	}
	return &upstreamTransport{
		sem:      semaphore.NewWeighted(int64(maxConcurrency)),
		delegate: delegate,
	}
}

func (t *upstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.sem.Acquire(req.Context(), 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	start := time.Now()
	resp, err := t.delegate.RoundTrip(req)
	duration := time.Since(start)
	upstreamDuration.WithLabelValues(req.URL.Host).Observe(duration.Seconds())
	if err != nil {
		upstreamRequests.WithLabelValues(req.URL.Host, "error").Inc()
		logrus.WithError(err).WithField("host", req.URL.Host).Warn("Upstream request failed.")
		return nil, err
	}
	upstreamRequests.WithLabelValues(req.URL.Host, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}
