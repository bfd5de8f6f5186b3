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

// Package noti is a thin notification layer over the webhook client for
// callers that just want to push a text or an embed somewhere and do not
// care about the response.
package noti

import (
	"context"
	"net/http"

	"github.com/KongZ/hookpost/webhook"
)

type Client interface {
	Send(ctx context.Context, text string) error
	SendEmbed(ctx context.Context, embed *webhook.Embed) error
}

// Option configures the Discord notification client.
type Option struct {
	// URL is the full webhook URL. Leave empty to disable notifications.
	URL string
	// Username overrides the webhook's display name per message.
	Username string
	// HTTPClient replaces the transport, mainly for tests.
	HTTPClient *http.Client
}

type discordNoti struct {
	hook     *webhook.Client
	username string
}

// NewDiscordNoti creates a notification client backed by a Discord webhook.
// An empty URL yields a quiet client so callers never need to branch on
// whether notifications are configured.
func NewDiscordNoti(option Option) (Client, error) {
	if option.URL == "" {
		return &QuietNoti{}, nil
	}
	hook, err := webhook.New(webhook.Options{URL: option.URL, HTTPClient: option.HTTPClient})
	if err != nil {
		return nil, err
	}
	return &discordNoti{hook: hook, username: option.Username}, nil
}

func (n *discordNoti) Send(ctx context.Context, text string) error {
	_, err := n.hook.Execute(ctx, webhook.Message{
		Content:  text,
		Username: n.username,
	})
	return err
}

func (n *discordNoti) SendEmbed(ctx context.Context, embed *webhook.Embed) error {
	_, err := n.hook.Execute(ctx, webhook.Message{
		Username: n.username,
		Embeds:   []webhook.Embed{*embed},
	})
	return err
}
