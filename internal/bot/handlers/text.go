package handlers

import (
	"context"

	"hubstaff-bot-backend/internal/bot"
	apperrors "hubstaff-bot-backend/internal/common/errors"
	"hubstaff-bot-backend/internal/common/logger"
)

// handleText serves free-form text: reply-keyboard labels first, then
// the admin password attempt for connected non-admins, then an echo.
// No conversational state is kept; the user record decides every branch.
func (s *Service) handleText(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	switch req.Interaction.Text {
	case labelMyActivity:
		return s.handleMyActivity(ctx, req)

	case labelAdminPanel:
		if !req.User.IsAdmin {
			return bot.Text("Access denied."), nil
		}
		return s.adminMenu(req.Interaction.ChatID)

	case labelBackToUser:
		if req.User.IsAdmin {
			if err := req.Users.SetAdmin(ctx, req.User.ExternalID, false); err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to drop admin role")
			}
		}
		return s.userMenu(false, "You are back in user mode."), nil
	}

	if req.User.HasToken() && !req.User.IsAdmin {
		return s.handlePasswordAttempt(ctx, req)
	}

	// Auto-reply: anything we do not understand is echoed back.
	return bot.Text(req.Interaction.Text), nil
}

// handlePasswordAttempt treats the message as the admin password. Wrong
// attempts change nothing and may be retried.
func (s *Service) handlePasswordAttempt(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	if !s.verifier.Verify(req.Interaction.Text) {
		logger.Warn().Int64("external_id", req.User.ExternalID).Msg("Failed admin password attempt")
		return bot.Text("Access denied."), nil
	}

	if err := req.Users.SetAdmin(ctx, req.User.ExternalID, true); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to grant admin role")
	}
	logger.Info().Int64("external_id", req.User.ExternalID).Msg("Admin role granted")
	return s.adminMenu(req.Interaction.ChatID)
}
