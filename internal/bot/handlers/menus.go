package handlers

import (
	"hubstaff-bot-backend/internal/bot"
	apperrors "hubstaff-bot-backend/internal/common/errors"
	"hubstaff-bot-backend/internal/platform/telegram"
)

// Reply-keyboard labels. These arrive back as plain text, so handleText
// matches them verbatim.
const (
	labelMyActivity = "My Activity"
	labelAdminPanel = "Admin Panel"
	labelBackToUser = "Back to User Menu"
)

// rolePrompt asks the user to pick a role after a successful login.
func (s *Service) rolePrompt(chatID int64) (*bot.Response, error) {
	userToken, err := bot.Encode(bot.Intent{Namespace: bot.NSRole, Action: bot.RoleUser, SubjectID: chatID})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to encode role button")
	}
	adminToken, err := bot.Encode(bot.Intent{Namespace: bot.NSRole, Action: bot.RoleAdmin, SubjectID: chatID})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to encode role button")
	}

	markup := telegram.InlineButtons(
		telegram.InlineKeyboardButton{Text: "User", CallbackData: userToken},
		telegram.InlineKeyboardButton{Text: "Admin", CallbackData: adminToken},
	)
	return bot.TextWithMarkup("Please choose your role:", markup), nil
}

// userMenu attaches the persistent reply keyboard for regular work.
func (s *Service) userMenu(isAdmin bool, text string) *bot.Response {
	labels := []string{labelMyActivity}
	if isAdmin {
		labels = append(labels, labelAdminPanel)
	}
	return bot.TextWithMarkup(text, telegram.ReplyButtons(labels...))
}

// adminMenu renders the admin sub-menu as inline buttons.
func (s *Service) adminMenu(chatID int64) (*bot.Response, error) {
	type entry struct {
		text   string
		intent bot.Intent
	}
	entries := []entry{
		{"Select organization", bot.Intent{Namespace: bot.NSAdmin, Action: bot.AdminSelect, Option: optionOrg, SubjectID: chatID}},
		{"Show team activity", bot.Intent{Namespace: bot.NSAdmin, Action: bot.AdminShow, Option: optionActivity, SubjectID: chatID}},
		{"Generate 24h report", bot.Intent{Namespace: bot.NSAdmin, Action: bot.AdminGenerate, Option: optionReport, SubjectID: chatID}},
		{"Back", bot.Intent{Namespace: bot.NSRole, Action: bot.RoleBack, SubjectID: chatID}},
	}

	buttons := make([]telegram.InlineKeyboardButton, 0, len(entries))
	for _, e := range entries {
		token, err := bot.Encode(e.intent)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to encode admin button")
		}
		buttons = append(buttons, telegram.InlineKeyboardButton{Text: e.text, CallbackData: token})
	}

	return bot.TextWithMarkup("Admin panel:", telegram.InlineButtons(buttons...)), nil
}
