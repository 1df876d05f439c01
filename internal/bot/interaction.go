package bot

import "hubstaff-bot-backend/internal/platform/telegram"

// Kind discriminates the closed set of interaction variants.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindText
	KindButton
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindButton:
		return "button"
	default:
		return "unrecognized"
	}
}

// Interaction is the normalized representation of one inbound update.
// It is constructed exactly once at the boundary; downstream components
// switch on Kind instead of re-inspecting raw update shapes.
type Interaction struct {
	Kind     Kind
	ChatID   int64
	UserID   int64
	Username string

	// MessageID of the originating message, used for in-thread replies.
	MessageID int64

	// Text payload of a KindText interaction.
	Text string

	// CallbackToken and CallbackID of a KindButton interaction.
	CallbackToken string
	CallbackID    string
}

// ExternalID returns the stable identity key for the interaction's
// origin, or zero when none can be extracted.
func (in Interaction) ExternalID() int64 {
	if in.UserID != 0 {
		return in.UserID
	}
	return in.ChatID
}

// Normalize converts a raw update into exactly one Interaction variant.
// It never fails: anything without a text or callback payload becomes
// KindUnrecognized.
func Normalize(upd telegram.Update) Interaction {
	switch {
	case upd.Message != nil && upd.Message.Text != "":
		msg := upd.Message
		in := Interaction{
			Kind:      KindText,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			Text:      msg.Text,
		}
		if msg.From != nil {
			in.UserID = msg.From.ID
			in.Username = msg.From.Username
		}
		return in

	case upd.CallbackQuery != nil && upd.CallbackQuery.Data != "":
		cb := upd.CallbackQuery
		in := Interaction{
			Kind:          KindButton,
			UserID:        cb.From.ID,
			Username:      cb.From.Username,
			CallbackToken: cb.Data,
			CallbackID:    cb.ID,
		}
		if cb.Message != nil {
			in.ChatID = cb.Message.Chat.ID
			in.MessageID = cb.Message.MessageID
		}
		return in

	default:
		return Interaction{Kind: KindUnrecognized}
	}
}
