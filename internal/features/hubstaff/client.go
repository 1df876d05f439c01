package hubstaff

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "hubstaff-bot-backend/internal/common/errors"
	"hubstaff-bot-backend/internal/common/logger"
)

const defaultAPIBaseURL = "https://api.hubstaff.com"

// Organization is a Hubstaff organization visible to the token owner.
type Organization struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Account is the token owner's own profile.
type Account struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	TimeZone string `json:"time_zone"`
}

type Project struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type Member struct {
	UserID     int64  `json:"user_id"`
	Membership string `json:"membership_role"`
}

// DailyActivity is one user's aggregated activity for one day, all
// durations in seconds.
type DailyActivity struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	UserID   int64  `json:"user_id"`
	Tracked  int64  `json:"tracked"`
	Overall  int64  `json:"overall"`
	Billable int64  `json:"billable"`
	Manual   int64  `json:"manual"`
	Idle     int64  `json:"idle"`
}

// Client calls the Hubstaff REST API with a per-call bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultAPIBaseURL,
	}
}

// NewClientWithBaseURL points the client at a different API host.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// Organizations lists the organizations the token can see.
func (c *Client) Organizations(ctx context.Context, accessToken string) ([]Organization, error) {
	var payload struct {
		Organizations []Organization `json:"organizations"`
	}
	if err := c.get(ctx, accessToken, "/v2/organizations", &payload); err != nil {
		return nil, err
	}
	return payload.Organizations, nil
}

// Me returns the token owner's profile.
func (c *Client) Me(ctx context.Context, accessToken string) (*Account, error) {
	var payload struct {
		User Account `json:"user"`
	}
	if err := c.get(ctx, accessToken, "/v2/users/me", &payload); err != nil {
		return nil, err
	}
	return &payload.User, nil
}

func (c *Client) Projects(ctx context.Context, accessToken string, orgID int64) ([]Project, error) {
	var payload struct {
		Projects []Project `json:"projects"`
	}
	path := fmt.Sprintf("/v2/organizations/%d/projects", orgID)
	if err := c.get(ctx, accessToken, path, &payload); err != nil {
		return nil, err
	}
	return payload.Projects, nil
}

func (c *Client) Members(ctx context.Context, accessToken string, orgID int64) ([]Member, error) {
	var payload struct {
		Members []Member `json:"members"`
	}
	path := fmt.Sprintf("/v2/organizations/%d/members", orgID)
	if err := c.get(ctx, accessToken, path, &payload); err != nil {
		return nil, err
	}
	return payload.Members, nil
}

// DailyActivities fetches per-user daily activity rows for the window.
// The date params are appended unencoded; the API expects the literal
// bracket syntax.
func (c *Client) DailyActivities(ctx context.Context, accessToken string, orgID int64, start, stop time.Time) ([]DailyActivity, error) {
	const stamp = "2006-01-02T15:04:05"
	path := fmt.Sprintf("/v2/organizations/%d/activities/daily?date[start]=%s&date[stop]=%s",
		orgID, start.Format(stamp), stop.Format(stamp))

	var payload struct {
		DailyActivities []DailyActivity `json:"daily_activities"`
	}
	if err := c.get(ctx, accessToken, path, &payload); err != nil {
		return nil, err
	}
	return payload.DailyActivities, nil
}

func (c *Client) get(ctx context.Context, accessToken, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUpstreamUnavailable, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.mapError(resp, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUpstreamUnavailable, "failed to decode response")
	}
	return nil
}

// mapError translates an upstream rejection into the error taxonomy.
// Only the 403 body's message field is carried to the user; every other
// body is logged and discarded.
func (c *Client) mapError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.New(apperrors.ErrCodeUpstreamAuth, "access token rejected")

	case resp.StatusCode == http.StatusForbidden:
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		msg := "insufficient permissions"
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Message != "" {
				msg = payload.Message
			} else if payload.Error != "" {
				msg = payload.Error
			}
		}
		return apperrors.New(apperrors.ErrCodeUpstreamForbidden, msg)

	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeUpstreamNotFound, "resource not found: "+path)

	case resp.StatusCode >= http.StatusInternalServerError:
		logger.Warn().Int("status", resp.StatusCode).Str("path", path).
			Str("body", string(body)).Msg("Hubstaff server error")
		return apperrors.New(apperrors.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("hubstaff returned status %d", resp.StatusCode))

	default:
		logger.Warn().Int("status", resp.StatusCode).Str("path", path).
			Str("body", string(body)).Msg("Unexpected Hubstaff response")
		return apperrors.New(apperrors.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
}
