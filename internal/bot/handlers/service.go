package handlers

import (
	"context"
	"crypto/subtle"
	"time"

	"hubstaff-bot-backend/internal/bot"
	"hubstaff-bot-backend/internal/features/hubstaff"
)

// PasswordVerifier checks an admin-elevation attempt. The handlers never
// see the reference password itself.
type PasswordVerifier interface {
	Verify(attempt string) bool
}

// StaticVerifier compares against a fixed password in constant time.
type StaticVerifier struct {
	password string
}

func NewStaticVerifier(password string) *StaticVerifier {
	return &StaticVerifier{password: password}
}

func (v *StaticVerifier) Verify(attempt string) bool {
	return subtle.ConstantTimeCompare([]byte(attempt), []byte(v.password)) == 1
}

// AuthURLBuilder produces the Hubstaff authorization URL for a chat.
// Implemented by *hubstaff.OAuthService.
type AuthURLBuilder interface {
	BuildAuthorizationURL(ctx context.Context, chatID int64) (string, error)
}

// HubstaffAPI is the slice of the Hubstaff client the handlers call.
type HubstaffAPI interface {
	Organizations(ctx context.Context, accessToken string) ([]hubstaff.Organization, error)
	Members(ctx context.Context, accessToken string, orgID int64) ([]hubstaff.Member, error)
	DailyActivities(ctx context.Context, accessToken string, orgID int64, start, stop time.Time) ([]hubstaff.DailyActivity, error)
}

// Service holds the handler dependencies and owns registration on the
// router. The router reference is kept so cmd_ buttons can re-invoke
// registered commands.
type Service struct {
	oauth    AuthURLBuilder
	api      HubstaffAPI
	verifier PasswordVerifier
	router   *bot.Router
}

func NewService(oauth AuthURLBuilder, api HubstaffAPI, verifier PasswordVerifier) *Service {
	return &Service{
		oauth:    oauth,
		api:      api,
		verifier: verifier,
	}
}

// Register wires every command and the catch-all into the router.
// Registration order defines the /help listing order.
func (s *Service) Register(r *bot.Router) {
	s.router = r

	r.Register("start", "Start working with the bot", s.handleStart)
	r.Register("help", "List available commands", s.handleHelp)
	r.Register("user_info", "Show your account info", s.handleUserInfo)
	r.Register("hubstaff_login", "Connect your Hubstaff account", s.handleHubstaffLogin)
	r.Register("hubstaff_status", "Show Hubstaff connection status", s.handleHubstaffStatus)
	r.Register("hubstaff_logout", "Disconnect your Hubstaff account", s.handleHubstaffLogout)
	r.Register("my_activity", "Show your activity for the last 24 hours", s.handleMyActivity)

	r.RegisterCatchAll(s.handleFallthrough)
}

// handleFallthrough receives every button press and every text message
// that matched no command.
func (s *Service) handleFallthrough(ctx context.Context, req *bot.Request) (*bot.Response, error) {
	if req.Interaction.Kind == bot.KindButton {
		return s.handleCallback(ctx, req)
	}
	return s.handleText(ctx, req)
}
