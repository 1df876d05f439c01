package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hubstaff-bot-backend/internal/bot"
	apperrors "hubstaff-bot-backend/internal/common/errors"
	"hubstaff-bot-backend/internal/common/logger"
	"hubstaff-bot-backend/internal/features/hubstaff"
	"hubstaff-bot-backend/internal/features/user/models"
	"hubstaff-bot-backend/internal/features/user/repository"
	"hubstaff-bot-backend/internal/platform/telegram"
)

// Exchanger trades an authorization code for tokens. Implemented by
// *hubstaff.OAuthService.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (models.TokenSet, error)
}

// Sender pushes the post-login prompt into the chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup telegram.ReplyMarkup) error
}

// Handler serves the OAuth redirect endpoint. It is the second inbound
// channel next to the long-poll loop and shares only the pool and the
// send capability with it.
type Handler struct {
	oauth  Exchanger
	users  repository.UserRepository
	sender Sender
}

func NewHandler(oauth Exchanger, users repository.UserRepository, sender Sender) *Handler {
	return &Handler{oauth: oauth, users: users, sender: sender}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/callback", h.handleCallback)
}

// handleCallback completes the authorization-code flow. The page body
// states facts only; provider error details go to the log, never to the
// browser.
func (h *Handler) handleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.String(http.StatusBadRequest, "Missing code or state parameter.")
		return
	}

	chatID, err := hubstaff.ParseState(state)
	if err != nil {
		logger.Warn().Str("state", state).Msg("Redirect carried a malformed state")
		c.String(http.StatusBadRequest, "Invalid state parameter.")
		return
	}

	tokens, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("Token exchange failed")
		c.String(apperrors.HTTPStatus(err), "Authorization failed. Please try again.")
		return
	}

	if err := h.users.SaveTokens(c.Request.Context(), chatID, tokens); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// The chat never talked to the bot; nothing to update, and
			// the browser side still gets a success page.
			logger.Warn().Int64("chat_id", chatID).Msg("Redirect for an unknown chat")
			c.String(http.StatusOK, "Login successful! You can return to Telegram.")
			return
		}
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to save tokens")
		c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	logger.Info().Int64("chat_id", chatID).Msg("Hubstaff account linked")
	c.String(http.StatusOK, "Login successful! You can return to Telegram.")

	// The browser response must not wait on Telegram; the prompt rides
	// its own context.
	go h.pushRolePrompt(chatID)
}

func (h *Handler) pushRolePrompt(chatID int64) {
	userToken, err := bot.Encode(bot.Intent{Namespace: bot.NSRole, Action: bot.RoleUser, SubjectID: chatID})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode role button")
		return
	}
	adminToken, err := bot.Encode(bot.Intent{Namespace: bot.NSRole, Action: bot.RoleAdmin, SubjectID: chatID})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode role button")
		return
	}

	markup := telegram.InlineButtons(
		telegram.InlineKeyboardButton{Text: "User", CallbackData: userToken},
		telegram.InlineKeyboardButton{Text: "Admin", CallbackData: adminToken},
	)

	err = h.sender.SendMessage(context.Background(), chatID,
		"You are logged in to Hubstaff. Please choose your role:", markup)
	if err != nil {
		logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to push role prompt")
	}
}
