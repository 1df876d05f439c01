package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hubstaff-bot-backend/internal/bot"
	apperrors "hubstaff-bot-backend/internal/common/errors"
	"hubstaff-bot-backend/internal/common/logger"
	"hubstaff-bot-backend/internal/features/hubstaff"
	"hubstaff-bot-backend/internal/platform/telegram"
)

func (s *Service) handleStart(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	return bot.Text("Hi! I link your Telegram account to Hubstaff.\n" +
		"Use /hubstaff_login to connect, or /help to see everything I can do."), nil
}

// handleHelp renders the command registry as one cmd_ button per entry,
// in registration order.
func (s *Service) handleHelp(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	descriptors := s.router.Commands()
	buttons := make([]telegram.InlineKeyboardButton, 0, len(descriptors))
	for _, d := range descriptors {
		token, err := bot.EncodeCommand(d.Command)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to encode command button")
		}
		buttons = append(buttons, telegram.InlineKeyboardButton{
			Text:         fmt.Sprintf("/%s - %s", d.Command, d.Description),
			CallbackData: token,
		})
	}
	return bot.TextWithMarkup("Available commands:", telegram.InlineButtons(buttons...)), nil
}

func (s *Service) handleUserInfo(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	u := req.User
	text := fmt.Sprintf("Account ID: %d\nChat ID: %d\nRegistered: %s",
		u.ExternalID, req.Interaction.ChatID, u.CreatedAt.Format("2006-01-02 15:04"))
	if u.Username != "" {
		text = "Username: @" + u.Username + "\n" + text
	}
	return bot.Text(text), nil
}

func (s *Service) handleHubstaffLogin(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	if req.User.Connected() {
		return bot.Text("You are already connected to Hubstaff. Use /hubstaff_logout to disconnect first."), nil
	}

	authURL, err := s.oauth.BuildAuthorizationURL(ctx, req.Interaction.ChatID)
	if err != nil {
		return nil, err
	}

	markup := telegram.InlineButtons(telegram.InlineKeyboardButton{
		Text: "Log in to Hubstaff",
		URL:  authURL,
	})
	return bot.TextWithMarkup("Press the button to authorize with Hubstaff:", markup), nil
}

func (s *Service) handleHubstaffStatus(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	u := req.User
	if !u.Connected() {
		return bot.Text("You are not connected to Hubstaff. Use /hubstaff_login to connect."), nil
	}

	var b strings.Builder
	b.WriteString("Hubstaff: connected\n")
	if u.IsAdmin {
		b.WriteString("Role: admin\n")
	} else {
		b.WriteString("Role: user\n")
	}
	if u.TokenExpiresAt != nil {
		b.WriteString("Token expires: " + time.Unix(*u.TokenExpiresAt, 0).UTC().Format("2006-01-02 15:04 MST") + "\n")
	}

	if u.IDToken != nil {
		if name, email, ok := idTokenClaims(*u.IDToken); ok {
			if name != "" {
				b.WriteString("Name: " + name + "\n")
			}
			if email != "" {
				b.WriteString("Email: " + email + "\n")
			}
		}
	}

	return bot.Text(strings.TrimRight(b.String(), "\n")), nil
}

// idTokenClaims reads name and email from the stored id_token. The
// signature is not verified; the token came straight from the token
// endpoint over TLS and is used for display only.
func idTokenClaims(idToken string) (name, email string, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		logger.Warn().Err(err).Msg("Failed to parse id_token claims")
		return "", "", false
	}
	name, _ = claims["name"].(string)
	email, _ = claims["email"].(string)
	return name, email, true
}

func (s *Service) handleHubstaffLogout(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	if !req.User.Connected() {
		return bot.Text("You are not logged in."), nil
	}

	confirm, err := bot.Encode(bot.Intent{
		Namespace: bot.NSLogout,
		Action:    bot.ActionConfirm,
		SubjectID: req.Interaction.ChatID,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to encode logout button")
	}
	cancel, err := bot.Encode(bot.Intent{
		Namespace: bot.NSLogout,
		Action:    bot.ActionCancel,
		SubjectID: req.Interaction.ChatID,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to encode logout button")
	}

	markup := telegram.InlineButtons(
		telegram.InlineKeyboardButton{Text: "Yes, log me out", CallbackData: confirm},
		telegram.InlineKeyboardButton{Text: "Cancel", CallbackData: cancel},
	)
	return bot.TextWithMarkup("Log out of Hubstaff? Your connection will be removed.", markup), nil
}

func (s *Service) handleMyActivity(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	if !req.User.Connected() {
		return bot.Text("You are not connected to Hubstaff. Use /hubstaff_login to connect."), nil
	}

	token := *req.User.AccessToken
	orgs, err := s.api.Organizations(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return bot.Text("No Hubstaff organizations are visible to your account."), nil
	}

	org := orgs[0]
	stop := time.Now().UTC()
	start := stop.Add(-24 * time.Hour)
	activities, err := s.api.DailyActivities(ctx, token, org.ID, start, stop)
	if err != nil {
		return nil, err
	}

	return bot.Text(hubstaff.FormatActivities(org.Name, activities)), nil
}
