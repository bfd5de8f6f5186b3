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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// MaxAttachments is the per-message file attachment limit enforced by the
// Discord API.
const MaxAttachments = 10

// File is a message attachment: a file name and its raw bytes.
type File struct {
	Name string
	Data []byte
}

// Message holds the fields of an Execute call. At least one of Content,
// File, Files, Embed or Embeds must be set. File and Files are mutually
// exclusive, as are Embed and Embeds, and the API rejects attachments
// combined with embeds in the same request.
type Message struct {
	Content   string  `json:"content,omitempty"`
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	TTS       bool    `json:"tts,omitempty"`
	Embed     *Embed  `json:"embed,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
	File      *File   `json:"-"`
	Files     []File  `json:"-"`
}

// attachments flattens File/Files into a single slice.
func (m *Message) attachments() []File {
	if m.File != nil {
		return []File{*m.File}
	}
	return m.Files
}

func (m *Message) validate() error {
	if m.Content == "" && m.File == nil && len(m.Files) == 0 && m.Embed == nil && len(m.Embeds) == 0 {
		return &ValidationError{Reason: "message requires content, a file or an embed"}
	}
	if m.File != nil && len(m.Files) > 0 {
		return &ValidationError{Reason: "file and files are mutually exclusive"}
	}
	if m.Embed != nil && len(m.Embeds) > 0 {
		return &ValidationError{Reason: "embed and embeds are mutually exclusive"}
	}
	hasFiles := m.File != nil || len(m.Files) > 0
	hasEmbeds := m.Embed != nil || len(m.Embeds) > 0
	if hasFiles && hasEmbeds {
		return &ValidationError{Reason: "file attachments cannot be combined with embeds"}
	}
	if n := len(m.attachments()); n > MaxAttachments {
		return &ValidationError{Reason: fmt.Sprintf("%d file attachments exceed the limit of %d", n, MaxAttachments)}
	}
	return nil
}

// MessageResponse is the created message Discord returns when the client's
// Wait option is set.
type MessageResponse struct {
	ID        string  `json:"id"`
	ChannelID string  `json:"channel_id"`
	Content   string  `json:"content"`
	Timestamp string  `json:"timestamp,omitempty"`
	TTS       bool    `json:"tts,omitempty"`
	WebhookID string  `json:"webhook_id,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
}

// Execute posts a message to the webhook. All parameter validation happens
// before any network I/O.
//
// When the client's Wait option is unset the call is fire-and-forget: it
// returns (nil, nil) as soon as the HTTP exchange completes without a
// transport error, deliberately never inspecting the status code. This
// mirrors Discord's non-blocking default; use Wait when delivery needs to
// be confirmed. When Wait is set, the created message is decoded and
// returned, and a non-2xx status comes back as a RemoteError.
func (c *Client) Execute(ctx context.Context, msg Message) (*MessageResponse, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}

	var body io.Reader
	var contentType string
	if files := msg.attachments(); len(files) > 0 {
		var err error
		body, contentType, err = multipartBody(&msg, files)
		if err != nil {
			return nil, err
		}
	} else {
		payload, err := json.Marshal(&msg)
		if err != nil {
			return nil, fmt.Errorf("webhook: encoding payload: %w", err)
		}
		body, contentType = bytes.NewReader(payload), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.executeURL(""), body)
	if err != nil {
		return nil, fmt.Errorf("webhook: building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !c.wait {
		return nil, nil
	}
	if !is2xx(resp.StatusCode) {
		return nil, &RemoteError{Status: resp.StatusCode, Body: respBody}
	}
	var message MessageResponse
	if err := json.Unmarshal(respBody, &message); err != nil {
		return nil, fmt.Errorf("webhook: decoding response: %w", err)
	}
	return &message, nil
}

// ExecuteContent posts a plain text message. It is shorthand for Execute
// with only the Content field set.
func (c *Client) ExecuteContent(ctx context.Context, content string) (*MessageResponse, error) {
	return c.Execute(ctx, Message{Content: content})
}

// ExecuteSlack posts a Slack-format message through the webhook's Slack
// compatibility endpoint.
func (c *Client) ExecuteSlack(ctx context.Context, msg *slack.WebhookMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("webhook: encoding payload: %w", err)
	}
	return c.ExecuteSlackRaw(ctx, string(payload))
}

// ExecuteSlackRaw posts a pre-encoded Slack-format JSON payload. When the
// client's Wait option is set the server is expected to answer with the
// literal body "ok"; anything else is a RemoteError. Without Wait the
// fire-and-forget semantics of Execute apply.
func (c *Client) ExecuteSlackRaw(ctx context.Context, payload string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.executeURL("/slack"), strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, body, err := c.do(req)
	if err != nil {
		return err
	}
	if !c.wait {
		return nil
	}
	if !is2xx(resp.StatusCode) || string(body) != "ok" {
		return &RemoteError{Status: resp.StatusCode, Body: body}
	}
	return nil
}

// GitHubParams holds the inputs of an ExecuteGitHub call. JSON is a
// pre-encoded GitHub event payload and Event the GitHub event name, e.g.
// "push". Both are required.
type GitHubParams struct {
	JSON  string
	Event string
}

// ExecuteGitHub posts a GitHub event payload through the webhook's GitHub
// compatibility endpoint, tagging it with the X-GitHub-Event header. Wait
// semantics are the same as Execute.
func (c *Client) ExecuteGitHub(ctx context.Context, params GitHubParams) error {
	if params.JSON == "" || params.Event == "" {
		return &ValidationError{Reason: "github execute requires a json payload and an event name"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.executeURL("/github"), strings.NewReader(params.JSON))
	if err != nil {
		return fmt.Errorf("webhook: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", params.Event)

	resp, body, err := c.do(req)
	if err != nil {
		return err
	}
	if !c.wait {
		return nil
	}
	if !is2xx(resp.StatusCode) {
		return &RemoteError{Status: resp.StatusCode, Body: body}
	}
	return nil
}

// executeURL builds the execute endpoint for the given path suffix,
// appending wait=true when the client is configured to block.
func (c *Client) executeURL(suffix string) string {
	u := c.baseURL + suffix
	if c.wait {
		u += "?wait=true"
	}
	return u
}

// multipartBody assembles the multipart form for a message with file
// attachments: a payload_json part with the structured fields, then one
// part per file keyed by its index.
func multipartBody(msg *Message, files []File) (io.Reader, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, "", fmt.Errorf("webhook: encoding payload: %w", err)
	}
	if err := w.WriteField("payload_json", string(payload)); err != nil {
		return nil, "", fmt.Errorf("webhook: writing form: %w", err)
	}
	for i, f := range files {
		part, err := w.CreateFormFile(fmt.Sprintf("file%d", i), f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("webhook: writing form: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("webhook: writing form: %w", err)
		}
		log.Debug().Str("name", f.Name).Int("bytes", len(f.Data)).Msgf("Attached file%d", i)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("webhook: writing form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
