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
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testID    = "4815162342"
	testToken = "s3cr3t-t0k3n"
)

// rewriteTransport redirects every request to the test server so the
// client's fixed Discord base URL can be exercised against httptest.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

// errorTransport fails every request at the connection level.
type errorTransport struct{}

func (errorTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

// testClient builds a client whose requests land on a server running the
// given handler.
func testClient(t *testing.T, handler http.Handler, wait bool) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	target, err := url.Parse(server.URL)
	require.NoError(t, err)
	client, err := New(Options{
		ID:         testID,
		Token:      testToken,
		Wait:       wait,
		HTTPClient: &http.Client{Transport: rewriteTransport{target: target}},
	})
	require.NoError(t, err)
	return client
}

func TestNewFromURL(t *testing.T) {
	fromURL, err := NewFromURL("https://discord.com/api/webhooks/" + testID + "/" + testToken)
	require.NoError(t, err)
	fromPair, err := New(Options{ID: testID, Token: testToken})
	require.NoError(t, err)

	assert.Equal(t, testID, fromURL.ID())
	assert.Equal(t, testToken, fromURL.Token())
	assert.Equal(t, fromPair.URL(), fromURL.URL())
	assert.Equal(t, DefaultBaseURL+"/"+testID+"/"+testToken, fromURL.URL())
}

func TestNewConfigurationErrors(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"empty options", Options{}},
		{"id without token", Options{ID: testID}},
		{"token without id", Options{Token: testToken}},
		{"not a url", Options{URL: "not a valid webhook url"}},
		{"missing webhooks segment", Options{URL: "https://discord.com/api/" + testID + "/" + testToken}},
		{"too few segments", Options{URL: "https://discord.com/webhooks"}},
		{"unsupported scheme", Options{URL: "ftp://discord.com/api/webhooks/" + testID + "/" + testToken}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.opts)
			var confErr *ConfigurationError
			require.ErrorAs(t, err, &confErr)
		})
	}
}

func TestGet(t *testing.T) {
	var gotMethod, gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"X","guild_id":"G","channel_id":"C","name":"N","avatar":"A"}`))
	})
	client := testClient(t, handler, false)

	hook, err := client.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/api/webhooks/"+testID+"/"+testToken, gotPath)
	assert.Equal(t, "X", hook.ID)
	assert.Equal(t, "C", hook.ChannelID)
	assert.Equal(t, "N", hook.Name)

	// Cached metadata reflects the last successful response.
	assert.Equal(t, "G", client.GuildID)
	assert.Equal(t, "C", client.ChannelID)
	assert.Equal(t, "N", client.Name)
	assert.Equal(t, "A", client.Avatar)
}

func TestGetRemoteError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Unknown Webhook"}`, http.StatusNotFound)
	})
	client := testClient(t, handler, false)

	_, err := client.Get(context.Background())
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusNotFound, remoteErr.Status)
	assert.Contains(t, string(remoteErr.Body), "Unknown Webhook")
	assert.Empty(t, client.ChannelID)
}

func TestGetTransportError(t *testing.T) {
	client, err := New(Options{
		ID:         testID,
		Token:      testToken,
		HTTPClient: &http.Client{Transport: errorTransport{}},
	})
	require.NoError(t, err)

	_, err = client.Get(context.Background())
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestModify(t *testing.T) {
	var gotMethod string
	var gotBody map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`{"id":"X","channel_id":"C","name":"renamed"}`))
	})
	client := testClient(t, handler, false)

	hook, err := client.ModifyName(context.Background(), "renamed")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, map[string]string{"name": "renamed"}, gotBody)
	assert.Equal(t, "renamed", hook.Name)
	assert.Equal(t, "renamed", client.Name)
	assert.Equal(t, "C", client.ChannelID)
}

func TestModifyAvatar(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), []byte("fake image data")...)
	var gotBody map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`{"id":"X"}`))
	})
	client := testClient(t, handler, false)

	_, err := client.Modify(context.Background(), ModifyParams{Avatar: png})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(png), gotBody["avatar"])
}

func TestModifyValidation(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}), false)

	_, err := client.Modify(context.Background(), ModifyParams{})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestAvatarDataURI(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		mime string
	}{
		{"png", []byte("\x89PNG\r\n\x1a\nxxxx"), "image/png"},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, "image/jpeg"},
		{"gif", []byte("GIF89a...."), "image/gif"},
		{"unknown", []byte("definitely not an image"), "image/unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uri := avatarDataURI(tc.data)
			assert.Equal(t, "data:"+tc.mime+";base64,"+base64.StdEncoding.EncodeToString(tc.data), uri)
		})
	}
}

func TestDelete(t *testing.T) {
	var gotMethod string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})
	client := testClient(t, handler, false)

	require.NoError(t, client.Delete(context.Background()))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestDeleteRemoteError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Missing Permissions"}`, http.StatusForbidden)
	})
	client := testClient(t, handler, false)

	err := client.Delete(context.Background())
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusForbidden, remoteErr.Status)
}
