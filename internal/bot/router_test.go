package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func respondWith(text string) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Response, error) {
		return Text(text), nil
	}
}

func TestRouterKeepsRegistrationOrder(t *testing.T) {
	r := NewRouter()
	r.Register("start", "Start working with the bot", respondWith("start"))
	r.Register("help", "List available commands", respondWith("help"))
	r.Register("hidden", "", respondWith("hidden"))

	commands := r.Commands()
	require.Len(t, commands, 2)
	require.Equal(t, "start", commands[0].Command)
	require.Equal(t, "help", commands[1].Command)
}

func TestRouterDispatchesCommands(t *testing.T) {
	r := NewRouter()
	r.Register("hubstaff_login", "Connect", respondWith("login"))
	r.RegisterCatchAll(respondWith("fallback"))

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "exact command", text: "/hubstaff_login", want: "login"},
		{name: "command with args", text: "/hubstaff_login now", want: "login"},
		{name: "command with bot mention", text: "/hubstaff_login@my_bot", want: "login"},
		{name: "unknown command", text: "/unknown", want: "fallback"},
		{name: "plain text", text: "hello", want: "fallback"},
		{name: "bare slash", text: "/", want: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Interaction: Interaction{Kind: KindText, Text: tt.text}}
			res, err := r.Dispatch(context.Background(), req)
			require.NoError(t, err)
			require.NotNil(t, res)
			require.Equal(t, tt.want, res.Text)
		})
	}
}

func TestRouterSendsButtonsToCatchAll(t *testing.T) {
	r := NewRouter()
	r.Register("help", "List", respondWith("help"))
	r.RegisterCatchAll(respondWith("fallback"))

	req := &Request{Interaction: Interaction{Kind: KindButton, CallbackToken: "cmd_help"}}
	res, err := r.Dispatch(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "fallback", res.Text)
}

func TestRouterIgnoresUnrecognized(t *testing.T) {
	r := NewRouter()
	r.RegisterCatchAll(respondWith("fallback"))

	res, err := r.Dispatch(context.Background(), &Request{Interaction: Interaction{Kind: KindUnrecognized}})
	require.NoError(t, err)
	require.Nil(t, res)
}

func TestRouterHandlerLookup(t *testing.T) {
	r := NewRouter()
	r.Register("user_info", "Info", respondWith("info"))

	h, ok := r.Handler("user_info")
	require.True(t, ok)
	res, err := h(context.Background(), &Request{})
	require.NoError(t, err)
	require.Equal(t, "info", res.Text)

	_, ok = r.Handler("missing")
	require.False(t, ok)
}
