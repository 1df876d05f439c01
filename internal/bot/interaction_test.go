package bot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"hubstaff-bot-backend/internal/platform/telegram"
)

func TestNormalizeTextMessage(t *testing.T) {
	upd := telegram.Update{
		UpdateID: 10,
		Message: &telegram.Message{
			MessageID: 55,
			Chat:      telegram.Chat{ID: 100},
			From:      &telegram.User{ID: 200, Username: "alice"},
			Text:      "/help",
		},
	}

	in := Normalize(upd)
	require.Equal(t, KindText, in.Kind)
	require.Equal(t, int64(100), in.ChatID)
	require.Equal(t, int64(200), in.UserID)
	require.Equal(t, "alice", in.Username)
	require.Equal(t, int64(55), in.MessageID)
	require.Equal(t, "/help", in.Text)
	require.Equal(t, int64(200), in.ExternalID())
}

func TestNormalizeCallbackQuery(t *testing.T) {
	upd := telegram.Update{
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb-1",
			From: telegram.User{ID: 200, Username: "alice"},
			Message: &telegram.Message{
				MessageID: 77,
				Chat:      telegram.Chat{ID: 100},
			},
			Data: "role_user_100",
		},
	}

	in := Normalize(upd)
	require.Equal(t, KindButton, in.Kind)
	require.Equal(t, int64(100), in.ChatID)
	require.Equal(t, int64(200), in.UserID)
	require.Equal(t, "role_user_100", in.CallbackToken)
	require.Equal(t, "cb-1", in.CallbackID)
}

func TestNormalizeCallbackWithoutMessage(t *testing.T) {
	upd := telegram.Update{
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb-2",
			From: telegram.User{ID: 200},
			Data: "logout_cancel_200",
		},
	}

	in := Normalize(upd)
	require.Equal(t, KindButton, in.Kind)
	require.Zero(t, in.ChatID)
	require.Equal(t, int64(200), in.ExternalID())
}

func TestNormalizeUnrecognized(t *testing.T) {
	tests := []struct {
		name string
		upd  telegram.Update
	}{
		{name: "empty update", upd: telegram.Update{}},
		{name: "message without text", upd: telegram.Update{Message: &telegram.Message{Chat: telegram.Chat{ID: 1}}}},
		{name: "callback without data", upd: telegram.Update{CallbackQuery: &telegram.CallbackQuery{ID: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Normalize(tt.upd)
			require.Equal(t, KindUnrecognized, in.Kind)
		})
	}
}
