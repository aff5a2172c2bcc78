// Package telegram adapts github.com/go-telegram/bot to the guard's
// outbound path: a narrow BotClient interface (for mock injection in
// tests), a RealBotClient wrapping *bot.Bot, and a Sender that routes
// every send through internal/ratelimit.Send so C5's pacing and
// retry-after handling apply uniformly. Grounded on the teacher's
// internal/channels/telegram/bot_client.go (interface wrapping a
// handful of *bot.Bot methods behind mockable seams).
package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// BotClient is the subset of *bot.Bot the guard's outbound path uses.
type BotClient interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	GetMe(ctx context.Context) (*models.User, error)
}

// RealBotClient wraps a live *bot.Bot.
type RealBotClient struct {
	bot *bot.Bot
}

// NewRealBotClient builds a RealBotClient over an already-constructed
// *bot.Bot (constructed with the Telegram token by the caller).
func NewRealBotClient(b *bot.Bot) *RealBotClient {
	return &RealBotClient{bot: b}
}

func (r *RealBotClient) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	return r.bot.SendMessage(ctx, params)
}

func (r *RealBotClient) GetMe(ctx context.Context) (*models.User, error) {
	return r.bot.GetMe(ctx)
}
