package telegram

// Update представляет входящее обновление от Telegram API
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	From      *User  `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`
}

type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// CallbackQuery представляет нажатие inline-кнопки
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// ReplyMarkup is the closed set of keyboard attachments: an inline button
// grid, a persistent reply keyboard, or a keyboard-removal marker.
type ReplyMarkup interface {
	replyMarkup()
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

func (InlineKeyboardMarkup) replyMarkup() {}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

type ReplyKeyboardMarkup struct {
	Keyboard       [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
}

func (ReplyKeyboardMarkup) replyMarkup() {}

type KeyboardButton struct {
	Text string `json:"text"`
}

type ReplyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

func (ReplyKeyboardRemove) replyMarkup() {}

// InlineButtons builds a single-column inline keyboard, one button per row.
func InlineButtons(buttons ...InlineKeyboardButton) *InlineKeyboardMarkup {
	rows := make([][]InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []InlineKeyboardButton{b})
	}
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ReplyButtons builds a persistent reply keyboard, one label per row.
func ReplyButtons(labels ...string) *ReplyKeyboardMarkup {
	rows := make([][]KeyboardButton, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []KeyboardButton{{Text: l}})
	}
	return &ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}
