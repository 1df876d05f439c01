package bot

import (
	"context"
	"unicode/utf8"

	"hubstaff-bot-backend/internal/platform/telegram"
)

// Telegram caps answerCallbackQuery notification text.
const callbackAnswerLimit = 64

// Sender is the outbound chat capability the renderer and the OAuth
// controller deliver through. Implemented by *telegram.Client.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup telegram.ReplyMarkup) error
	ReplyMessage(ctx context.Context, chatID, replyTo int64, text string, markup telegram.ReplyMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

// Renderer maps a handler response plus the originating interaction to
// the correct delivery call.
type Renderer struct {
	sender Sender
}

func NewRenderer(sender Sender) *Renderer {
	return &Renderer{sender: sender}
}

// Render delivers the response to the interaction's origin. A nil
// response produces no outbound call.
func (r *Renderer) Render(ctx context.Context, in Interaction, res *Response) error {
	if res == nil {
		return nil
	}

	switch in.Kind {
	case KindText:
		// Reply in the same thread as the inbound message.
		return r.sender.ReplyMessage(ctx, in.ChatID, in.MessageID, res.Text, res.Markup)

	case KindButton:
		// Prefer a new message to the chat; without chat context fall
		// back to a truncated acknowledgment on the button itself.
		if in.ChatID != 0 {
			return r.sender.SendMessage(ctx, in.ChatID, res.Text, res.Markup)
		}
		return r.sender.AnswerCallbackQuery(ctx, in.CallbackID, truncate(res.Text, callbackAnswerLimit))

	default:
		return nil
	}
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
