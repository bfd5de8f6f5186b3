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

import "fmt"

// ConfigurationError reports malformed or incomplete construction input,
// such as a webhook URL that does not end in /webhooks/{id}/{token} or a
// missing id/token pair. It is always returned before any request is made.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "webhook: configuration: " + e.Reason
}

// ValidationError reports caller-supplied parameters that violate the
// required-field or mutual-exclusion rules of an operation. It is always
// returned before any request is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "webhook: validation: " + e.Reason
}

// TransportError wraps a connection-level failure such as a refused
// connection, a timeout or a failed TLS handshake. The request may or may
// not have reached the server.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("webhook: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError reports a non-2xx response from the server. Status holds the
// HTTP status code and Body the raw response body for caller inspection.
type RemoteError struct {
	Status int
	Body   []byte
}

func (e *RemoteError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256]
	}
	return fmt.Sprintf("webhook: server returned status %d: %s", e.Status, body)
}
