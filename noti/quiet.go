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
package noti

import (
	"context"

	"github.com/KongZ/hookpost/webhook"
)

type QuietNoti struct {
}

// Send implements Client.
func (c *QuietNoti) Send(_ context.Context, _ string) error {
	return nil
}

// SendEmbed implements Client.
func (c *QuietNoti) SendEmbed(_ context.Context, _ *webhook.Embed) error {
	return nil
}

func NewQuietNoti() Client {
	return &QuietNoti{}
}
