package telegram

import (
	"context"
	"time"
)

// Service is the chat transport: it receives updates and hands them to the
// conversation layer until stopped.
type Service interface {
	Start() error
	Stop()
}

// API is the subset of the Telegram Bot API the transport relies on.
type API interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]*Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) error
	SetMyCommands(ctx context.Context, commands []*BotCommand) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error
}
