package bot

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	apperrors "hubstaff-bot-backend/internal/common/errors"
	"hubstaff-bot-backend/internal/platform/telegram"
)

func userRow(externalID int64, username string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"external_id", "username", "is_admin",
		"access_token", "refresh_token", "id_token", "token_expires_at", "created_at",
	}).AddRow(externalID, username, false, nil, nil, nil, nil, time.Now())
}

func textUpdate(chatID, userID int64, text string) telegram.Update {
	return telegram.Update{
		Message: &telegram.Message{
			MessageID: 1,
			Chat:      telegram.Chat{ID: chatID},
			From:      &telegram.User{ID: userID, Username: "alice"},
			Text:      text,
		},
	}
}

func TestPipelineCommitsAndRendersAfter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE external_id = \$1`).
		WithArgs(int64(200)).
		WillReturnRows(userRow(200, "alice"))
	mock.ExpectCommit()

	router := NewRouter()
	router.Register("ping", "", func(ctx context.Context, req *Request) (*Response, error) {
		return Text("pong"), nil
	})

	sender := &fakeSender{}
	p := NewPipeline(mock, router, sender)
	p.HandleUpdate(context.Background(), textUpdate(100, 200, "/ping"))

	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, sender.sent, 1)
	require.Equal(t, "pong", sender.sent[0].text)
	require.Equal(t, int64(100), sender.sent[0].chatID)
}

func TestPipelineCreatesUserOnFirstContact(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE external_id = \$1`).
		WithArgs(int64(200)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(int64(200), "alice").
		WillReturnRows(userRow(200, "alice"))
	mock.ExpectCommit()

	var seen int64
	router := NewRouter()
	router.RegisterCatchAll(func(ctx context.Context, req *Request) (*Response, error) {
		seen = req.User.ExternalID
		return nil, nil
	})

	p := NewPipeline(mock, router, &fakeSender{})
	p.HandleUpdate(context.Background(), textUpdate(100, 200, "hello"))

	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, int64(200), seen)
}

func TestPipelineRollsBackOnHandlerError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE external_id = \$1`).
		WithArgs(int64(200)).
		WillReturnRows(userRow(200, "alice"))
	mock.ExpectRollback()

	router := NewRouter()
	router.RegisterCatchAll(func(ctx context.Context, req *Request) (*Response, error) {
		return nil, apperrors.New(apperrors.ErrCodeUpstreamUnavailable, "down")
	})

	sender := &fakeSender{}
	p := NewPipeline(mock, router, sender)
	p.HandleUpdate(context.Background(), textUpdate(100, 200, "hello"))

	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, sender.sent, 1)
	require.Equal(t, "Hubstaff is temporarily unavailable. Please try again later.", sender.sent[0].text)
}

func TestPipelineDropsUpdatesWithoutIdentity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	upd := telegram.Update{
		Message: &telegram.Message{Chat: telegram.Chat{ID: 0}, Text: "hello"},
	}

	sender := &fakeSender{}
	p := NewPipeline(mock, NewRouter(), sender)
	p.HandleUpdate(context.Background(), upd)

	// No transaction, no outbound traffic.
	require.NoError(t, mock.ExpectationsWereMet())
	require.Empty(t, sender.sent)
	require.Empty(t, sender.answers)
}

func TestPipelineReportsCommitFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE external_id = \$1`).
		WithArgs(int64(200)).
		WillReturnRows(userRow(200, "alice"))
	mock.ExpectCommit().WillReturnError(errBoom{})

	router := NewRouter()
	router.RegisterCatchAll(func(ctx context.Context, req *Request) (*Response, error) {
		return Text("should not be delivered"), nil
	})

	sender := &fakeSender{}
	p := NewPipeline(mock, router, sender)
	p.HandleUpdate(context.Background(), textUpdate(100, 200, "hello"))

	require.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, sender.sent, 1)
	require.Equal(t, "Something went wrong. Please try again.", sender.sent[0].text)
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
