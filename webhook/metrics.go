/*
Copyright 2025 The hookpost authors

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
package webhook

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// instrumentRoundTripper wraps the client transport with a request counter
// and a latency histogram, both registered on reg.
func instrumentRoundTripper(reg prometheus.Registerer, next http.RoundTripper) http.RoundTripper {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookpost_requests_total",
			Help: "Webhook requests by HTTP method and status code.",
		},
		[]string{"code", "method"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hookpost_request_duration_seconds",
			Help:    "Webhook request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	reg.MustRegister(requests, duration)
	return promhttp.InstrumentRoundTripperCounter(requests,
		promhttp.InstrumentRoundTripperDuration(duration, next))
}
