package noti

import (
	"context"

	"github.com/KongZ/hookpost/webhook"
	"github.com/rs/zerolog/log"
)

type noopClient struct{}

// NewNoopNoti returns a client that logs what it would have sent instead of
// sending it. Useful for dry runs.
func NewNoopNoti() Client {
	return &noopClient{}
}

func (c *noopClient) Send(_ context.Context, text string) error {
	if len(text) > 0 {
		log.Debug().Msgf("Notifications disabled. Would've sent the following message: %s", text)
	}
	return nil
}

func (c *noopClient) SendEmbed(_ context.Context, embed *webhook.Embed) error {
	if embed != nil {
		log.Debug().Msgf("Notifications disabled. Would've sent an embed titled: %s", embed.Title)
	}
	return nil
}
