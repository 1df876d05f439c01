package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hubstaff-bot-backend/internal/bot"
	apperrors "hubstaff-bot-backend/internal/common/errors"
	"hubstaff-bot-backend/internal/common/logger"
	"hubstaff-bot-backend/internal/features/hubstaff"
	"hubstaff-bot-backend/internal/platform/telegram"
)

// Admin menu options. Option values must stay underscore-free to survive
// the callback token grammar.
const (
	optionOrg      = "org"
	optionActivity = "activity"
	optionReport   = "report"
)

// handleCallback decodes the pressed button's token and runs the matching
// transition. All authorization comes from the resolved user record; the
// subject id inside the token is logged for auditing only.
func (s *Service) handleCallback(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	intent, err := bot.Decode(req.Interaction.CallbackToken)
	if err != nil {
		if errors.Is(err, bot.ErrUnknownNamespace) {
			return bot.Text("Unknown command."), nil
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidCallback,
			"malformed callback token: "+req.Interaction.CallbackToken)
	}

	if intent.SubjectID != 0 && intent.SubjectID != req.Interaction.ChatID {
		logger.Warn().
			Int64("subject_id", intent.SubjectID).
			Int64("chat_id", req.Interaction.ChatID).
			Str("token", req.Interaction.CallbackToken).
			Msg("Callback subject does not match originating chat")
	}

	switch intent.Namespace {
	case bot.NSCommand:
		return s.reinvokeCommand(ctx, req, intent.Command)
	case bot.NSLogout:
		return s.handleLogoutDecision(ctx, req, intent.Action)
	case bot.NSRole:
		return s.handleRoleSelection(ctx, req, intent.Action)
	case bot.NSChangeRole:
		return s.rolePrompt(req.Interaction.ChatID)
	case bot.NSAdmin:
		return s.handleAdminAction(ctx, req, intent.Action, intent.Option)
	case bot.NSShowMenu:
		return s.handleShowMenu(ctx, req, intent.Action)
	default:
		return bot.Text("Unknown command."), nil
	}
}

// reinvokeCommand runs a registered command handler as if the user had
// typed the slash command.
func (s *Service) reinvokeCommand(ctx context.Context, req *bot.Request, command string) (*bot.Response, error) {
	h, ok := s.router.Handler(command)
	if !ok {
		return bot.Text("Unknown command."), nil
	}
	return h(ctx, req)
}

func (s *Service) handleLogoutDecision(ctx context.Context, req *bot.Request, action string) (*bot.Response, error) {
	if action == bot.ActionCancel {
		return bot.Text("Logout cancelled."), nil
	}

	// Idempotent: clearing an already-cleared record is still success.
	if err := req.Users.ClearAccess(ctx, req.User.ExternalID); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to clear access")
	}
	return bot.TextWithMarkup("You have been logged out of Hubstaff.",
		&telegram.ReplyKeyboardRemove{RemoveKeyboard: true}), nil
}

func (s *Service) handleRoleSelection(ctx context.Context, req *bot.Request, role string) (*bot.Response, error) {
	switch role {
	case bot.RoleUser:
		return s.userMenu(req.User.IsAdmin, "You are in user mode."), nil

	case bot.RoleAdmin:
		if !req.User.IsAdmin {
			// Elevation goes through the password: the next free-text
			// message is treated as the attempt.
			return bot.Text("Enter the admin password:"), nil
		}
		return s.adminMenu(req.Interaction.ChatID)

	case bot.RoleBack:
		if err := req.Users.SetAdmin(ctx, req.User.ExternalID, false); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to drop admin role")
		}
		return s.userMenu(false, "You are back in user mode."), nil

	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidCallback, "unexpected role "+role)
	}
}

func (s *Service) handleShowMenu(ctx context.Context, req *bot.Request, menu string) (*bot.Response, error) {
	if menu == bot.RoleAdmin {
		if !req.User.IsAdmin {
			return bot.Text("Access denied."), nil
		}
		return s.adminMenu(req.Interaction.ChatID)
	}
	return s.userMenu(req.User.IsAdmin, "User menu:"), nil
}

// handleAdminAction serves the admin sub-menu. Every branch re-checks
// the admin flag server-side; a stale button on a demoted account must
// not work.
func (s *Service) handleAdminAction(ctx context.Context, req *bot.Request, action, option string) (*bot.Response, error) {
	if !req.User.IsAdmin {
		return bot.Text("Access denied."), nil
	}
	if !req.User.Connected() {
		return bot.Text("Your Hubstaff connection is gone. Use /hubstaff_login to reconnect."), nil
	}
	token := *req.User.AccessToken

	switch {
	case action == bot.AdminSelect && option == optionOrg:
		return s.listOrganizations(ctx, token)

	case action == bot.AdminShow && option == optionActivity:
		return s.showTeamActivity(ctx, token)

	case action == bot.AdminGenerate && option == optionReport:
		return s.generateReport(ctx, token)

	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidCallback,
			fmt.Sprintf("unexpected admin action %s/%s", action, option))
	}
}

func (s *Service) listOrganizations(ctx context.Context, token string) (*bot.Response, error) {
	orgs, err := s.api.Organizations(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return bot.Text("No organizations are visible to your account."), nil
	}

	var b strings.Builder
	b.WriteString("Your organizations:\n")
	for _, org := range orgs {
		fmt.Fprintf(&b, "- %s (id %d, %s)\n", org.Name, org.ID, org.Status)
	}
	return bot.Text(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Service) showTeamActivity(ctx context.Context, token string) (*bot.Response, error) {
	org, err := s.firstOrganization(ctx, token)
	if err != nil {
		return nil, err
	}

	members, err := s.api.Members(ctx, token, org.ID)
	if err != nil {
		return nil, err
	}

	stop := time.Now().UTC()
	activities, err := s.api.DailyActivities(ctx, token, org.ID, stop.Add(-24*time.Hour), stop)
	if err != nil {
		return nil, err
	}

	active := make(map[int64]bool, len(activities))
	for _, a := range activities {
		if a.Tracked > 0 {
			active[a.UserID] = true
		}
	}

	text := fmt.Sprintf("%s: %d members, %d active in the last 24 hours.",
		org.Name, len(members), len(active))
	return bot.Text(text), nil
}

func (s *Service) generateReport(ctx context.Context, token string) (*bot.Response, error) {
	org, err := s.firstOrganization(ctx, token)
	if err != nil {
		return nil, err
	}

	stop := time.Now().UTC()
	activities, err := s.api.DailyActivities(ctx, token, org.ID, stop.Add(-24*time.Hour), stop)
	if err != nil {
		return nil, err
	}

	return bot.Text(hubstaff.FormatActivities(org.Name, activities)), nil
}

func (s *Service) firstOrganization(ctx context.Context, token string) (*hubstaff.Organization, error) {
	orgs, err := s.api.Organizations(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeUpstreamNotFound, "no organizations available")
	}
	return &orgs[0], nil
}
