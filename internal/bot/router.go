package bot

import (
	"context"
	"strings"

	"hubstaff-bot-backend/internal/features/user/models"
	"hubstaff-bot-backend/internal/features/user/repository"
	"hubstaff-bot-backend/internal/platform/telegram"
)

// Request carries everything a handler observes: the normalized
// interaction, the transaction-bound user store, and the resolved user.
type Request struct {
	Interaction Interaction
	Users       repository.UserRepository
	User        *models.User
}

// Response is a handler's result: nil means no outbound call, Text alone
// is a plain reply, Text plus Markup attaches a keyboard.
type Response struct {
	Text   string
	Markup telegram.ReplyMarkup
}

// Text builds a plain-text response.
func Text(text string) *Response {
	return &Response{Text: text}
}

// TextWithMarkup builds a response carrying a keyboard.
func TextWithMarkup(text string, markup telegram.ReplyMarkup) *Response {
	return &Response{Text: text, Markup: markup}
}

type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// CommandDescriptor is one help-listing entry, kept in registration order.
type CommandDescriptor struct {
	Command     string
	Description string
}

// Router maps command tokens to handlers and accumulates the help
// listing. Button presses and unmatched text both flow to the catch-all.
type Router struct {
	handlers map[string]HandlerFunc
	commands []CommandDescriptor
	catchAll HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Register binds a handler to an exact command token. A non-empty
// description also appends the command to the help listing.
func (r *Router) Register(command, description string, h HandlerFunc) {
	r.handlers[command] = h
	if description != "" {
		r.commands = append(r.commands, CommandDescriptor{Command: command, Description: description})
	}
}

// RegisterCatchAll installs the fallback handler receiving every
// ButtonPress and every text message that matches no command.
func (r *Router) RegisterCatchAll(h HandlerFunc) {
	r.catchAll = h
}

// Commands returns the help listing in registration order.
func (r *Router) Commands() []CommandDescriptor {
	return r.commands
}

// Handler looks up a command handler, used to re-invoke commands from
// cmd_ callback buttons.
func (r *Router) Handler(command string) (HandlerFunc, bool) {
	h, ok := r.handlers[command]
	return h, ok
}

// Dispatch routes the interaction to its handler.
func (r *Router) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	switch req.Interaction.Kind {
	case KindText:
		if cmd, ok := parseCommand(req.Interaction.Text); ok {
			if h, found := r.handlers[cmd]; found {
				return h(ctx, req)
			}
		}
		if r.catchAll != nil {
			return r.catchAll(ctx, req)
		}
		return nil, nil

	case KindButton:
		if r.catchAll != nil {
			return r.catchAll(ctx, req)
		}
		return nil, nil

	default:
		// Unrecognized updates carry nothing to act on.
		return nil, nil
	}
}

// parseCommand extracts the command token from "/name arg..." text,
// stripping an optional @botname mention.
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	token := strings.TrimPrefix(text, "/")
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	if i := strings.IndexByte(token, '@'); i >= 0 {
		token = token[:i]
	}
	if token == "" {
		return "", false
	}
	return token, true
}
