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

// Package webhook posts messages to Discord webhook endpoints. A Client is
// bound to a single webhook, identified by an id/token pair or a full
// webhook URL, and exposes the metadata calls (Get, Modify, Delete) and the
// execute family (Execute, ExecuteSlack, ExecuteGitHub).
package webhook

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the Discord webhook endpoint prefix.
const DefaultBaseURL = "https://discord.com/api/webhooks"

// Options configures a Client. Either URL or both ID and Token must be set;
// everything else is optional.
type Options struct {
	// ID and Token identify the webhook.
	ID    string
	Token string
	// URL is a full webhook URL of the form .../webhooks/{id}/{token}.
	// It is an alternative to ID+Token; the trailing two path segments
	// are parsed out.
	URL string
	// Timeout is the per-request transport timeout. Zero means no timeout.
	Timeout time.Duration
	// InsecureSkipTLSVerify disables server certificate verification.
	InsecureSkipTLSVerify bool
	// Wait makes the execute family block until the server confirms the
	// message. When unset, execute calls are fire-and-forget.
	Wait bool
	// HTTPClient replaces the transport. When set, Timeout and
	// InsecureSkipTLSVerify are ignored.
	HTTPClient *http.Client
	// Metrics registers request counters and latency histograms for the
	// client's transport on the given registerer.
	Metrics prometheus.Registerer
}

// Client posts to a single Discord webhook. Construct it with New or
// NewFromURL; id and token are immutable afterwards.
//
// GuildID, ChannelID, Name and Avatar are cached metadata. They are empty
// until the first successful Get or Modify and overwritten on every
// subsequent success. The cache update is a plain field assignment; callers
// sharing one Client across goroutines must serialize Get/Modify themselves
// if they read the cached fields.
type Client struct {
	id         string
	token      string
	baseURL    string
	wait       bool
	httpClient *http.Client

	GuildID   string
	ChannelID string
	Name      string
	Avatar    string
}

// New creates a Client from the given options. No network call is made.
func New(opts Options) (*Client, error) {
	id, token := opts.ID, opts.Token
	if opts.URL != "" {
		var err error
		id, token, err = parseWebhookURL(opts.URL)
		if err != nil {
			return nil, err
		}
	}
	if id == "" || token == "" {
		return nil, &ConfigurationError{Reason: "a webhook url or an id and token pair is required"}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport
		if opts.InsecureSkipTLSVerify {
			t := http.DefaultTransport.(*http.Transport).Clone()
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- explicit caller opt-in
			transport = t
		}
		httpClient = &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		}
	}
	if opts.Metrics != nil {
		rt := httpClient.Transport
		if rt == nil {
			rt = http.DefaultTransport
		}
		instrumented := *httpClient
		instrumented.Transport = instrumentRoundTripper(opts.Metrics, rt)
		httpClient = &instrumented
	}

	return &Client{
		id:         id,
		token:      token,
		baseURL:    fmt.Sprintf("%s/%s/%s", DefaultBaseURL, id, token),
		wait:       opts.Wait,
		httpClient: httpClient,
	}, nil
}

// NewFromURL creates a Client from a full webhook URL. It is shorthand for
// New(Options{URL: rawurl}).
func NewFromURL(rawurl string) (*Client, error) {
	return New(Options{URL: rawurl})
}

// ID returns the webhook id.
func (c *Client) ID() string {
	return c.id
}

// Token returns the webhook token.
func (c *Client) Token() string {
	return c.token
}

// URL returns the full webhook URL the client posts to.
func (c *Client) URL() string {
	return c.baseURL
}

// parseWebhookURL extracts the id and token from the trailing two path
// segments of a .../webhooks/{id}/{token} URL.
func parseWebhookURL(rawurl string) (id, token string, err error) {
	u, err := url.Parse(rawurl)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", "", &ConfigurationError{Reason: fmt.Sprintf("not a webhook url: %q", rawurl)}
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 3 || segments[len(segments)-3] != "webhooks" {
		return "", "", &ConfigurationError{Reason: fmt.Sprintf("url path does not end in /webhooks/{id}/{token}: %q", rawurl)}
	}
	id, token = segments[len(segments)-2], segments[len(segments)-1]
	if id == "" || token == "" {
		return "", "", &ConfigurationError{Reason: fmt.Sprintf("empty id or token in url: %q", rawurl)}
	}
	return id, token, nil
}

// Webhook is the metadata object returned by the Discord API for Get and
// Modify calls.
type Webhook struct {
	ID            string `json:"id"`
	Type          int    `json:"type,omitempty"`
	GuildID       string `json:"guild_id,omitempty"`
	ChannelID     string `json:"channel_id,omitempty"`
	Name          string `json:"name,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
	Token         string `json:"token,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`
}

// Get fetches the webhook metadata, refreshes the cached GuildID,
// ChannelID, Name and Avatar fields and returns the full object.
func (c *Client) Get(ctx context.Context) (*Webhook, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("webhook: building request: %w", err)
	}
	return c.doMetadata(req)
}

// ModifyParams holds the fields a webhook allows changing. At least one of
// Name or Avatar must be set. Avatar is the raw image bytes (png, jpeg or
// gif); the client base64-encodes them but does not verify the format.
type ModifyParams struct {
	Name   string
	Avatar []byte
}

type modifyPayload struct {
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Modify updates the webhook's name and/or avatar. Response handling and
// cache refresh are identical to Get.
func (c *Client) Modify(ctx context.Context, params ModifyParams) (*Webhook, error) {
	if params.Name == "" && len(params.Avatar) == 0 {
		return nil, &ValidationError{Reason: "modify requires a name or an avatar"}
	}
	payload := modifyPayload{Name: params.Name}
	if len(params.Avatar) > 0 {
		payload.Avatar = avatarDataURI(params.Avatar)
	}
	body, err := json.Marshal(&payload)
	if err != nil {
		return nil, fmt.Errorf("webhook: encoding payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webhook: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doMetadata(req)
}

// ModifyName renames the webhook. It is shorthand for Modify with only the
// Name field set.
func (c *Client) ModifyName(ctx context.Context, name string) (*Webhook, error) {
	return c.Modify(ctx, ModifyParams{Name: name})
}

// Delete removes the webhook on the server side. A nil return means the
// server confirmed the deletion with 204 No Content. The cached metadata is
// left as-is; further calls on the client simply fail server-side.
func (c *Client) Delete(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("webhook: building request: %w", err)
	}
	resp, body, err := c.do(req)
	if err != nil {
		return err
	}
	if !is2xx(resp.StatusCode) {
		return &RemoteError{Status: resp.StatusCode, Body: body}
	}
	log.Debug().Str("id", c.id).Msg("Webhook deleted")
	return nil
}

// doMetadata runs a Get/Modify request and merges the response into the
// cached fields.
func (c *Client) doMetadata(req *http.Request) (*Webhook, error) {
	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !is2xx(resp.StatusCode) {
		return nil, &RemoteError{Status: resp.StatusCode, Body: body}
	}
	var hook Webhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, fmt.Errorf("webhook: decoding response: %w", err)
	}
	c.GuildID = hook.GuildID
	c.ChannelID = hook.ChannelID
	c.Name = hook.Name
	c.Avatar = hook.Avatar
	return &hook, nil
}

// do exchanges a single request. Connection-level failures come back as
// TransportError; status codes are left to the caller.
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	op := req.Method + " " + req.URL.Path
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Op: op, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Debug().Msgf("Error while closing response body %v", err)
		}
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{Op: op, Err: err}
	}
	log.Debug().Str("op", op).Int("status", resp.StatusCode).Msg("Webhook request completed")
	return resp, body, nil
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}

// avatarDataURI encodes raw image bytes as the data URI Discord expects.
// The MIME type is sniffed from the magic bytes; anything that is not a
// png, jpeg or gif is labelled unknown and left for the server to reject.
func avatarDataURI(data []byte) string {
	mime := "image/unknown"
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		mime = "image/png"
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		mime = "image/jpeg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		mime = "image/gif"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
