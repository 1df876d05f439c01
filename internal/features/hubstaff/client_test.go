package hubstaff

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "hubstaff-bot-backend/internal/common/errors"
)

func TestOrganizationsParsesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/organizations", r.URL.Path)
		require.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"organizations":[{"id":7,"name":"Acme","status":"active"}]}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	orgs, err := c.Organizations(context.Background(), "token-1")
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	require.Equal(t, int64(7), orgs[0].ID)
	require.Equal(t, "Acme", orgs[0].Name)
}

func TestDailyActivitiesBuildsUnencodedDateParams(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(`{"daily_activities":[{"id":1,"user_id":2,"tracked":3600}]}`))
	}))
	defer srv.Close()

	start := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	stop := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	c := NewClientWithBaseURL(srv.URL)
	activities, err := c.DailyActivities(context.Background(), "token-1", 7, start, stop)
	require.NoError(t, err)
	require.Len(t, activities, 1)

	// The API expects literal brackets, not their percent-encoding.
	require.Equal(t, "date[start]=2026-08-31T12:00:00&date[stop]=2026-09-01T12:00:00", rawQuery)
}

func TestProjectsAndMembersHitOrgScopedPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/organizations/7/projects":
			w.Write([]byte(`{"projects":[{"id":3,"name":"Site","status":"active"}]}`))
		case "/v2/organizations/7/members":
			w.Write([]byte(`{"members":[{"user_id":2,"membership_role":"member"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)

	projects, err := c.Projects(context.Background(), "token-1", 7)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, "Site", projects[0].Name)

	members, err := c.Members(context.Background(), "token-1", 7)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, int64(2), members[0].UserID)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   apperrors.ErrorCode
	}{
		{name: "unauthorized", status: 401, body: `{"error":"invalid_token"}`, code: apperrors.ErrCodeUpstreamAuth},
		{name: "forbidden", status: 403, body: `{"message":"plan does not include reports"}`, code: apperrors.ErrCodeUpstreamForbidden},
		{name: "not found", status: 404, body: `{}`, code: apperrors.ErrCodeUpstreamNotFound},
		{name: "server error", status: 502, body: `oops`, code: apperrors.ErrCodeUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClientWithBaseURL(srv.URL)
			_, err := c.Organizations(context.Background(), "token-1")
			require.Error(t, err)
			require.True(t, apperrors.HasCode(err, tt.code))
		})
	}
}

func TestForbiddenCarriesUpstreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"organization is locked"}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	_, err := c.Me(context.Background(), "token-1")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "organization is locked", appErr.Message)
	require.Contains(t, apperrors.UserText(err), "organization is locked")
}
