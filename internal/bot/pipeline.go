package bot

import (
	"context"

	"github.com/jackc/pgx/v5"

	apperrors "hubstaff-bot-backend/internal/common/errors"
	"hubstaff-bot-backend/internal/common/logger"
	userpg "hubstaff-bot-backend/internal/features/user/repository/postgres"
	"hubstaff-bot-backend/internal/platform/telegram"
)

// TxBeginner opens the per-update transaction scope. Satisfied by
// *pgxpool.Pool and pgxmock.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Pipeline is the fixed, ordered middleware chain every update passes
// through: transaction scope, identity resolution, router dispatch,
// then audit logging and response rendering. The order is not
// configurable; all handlers observe the same transaction and user.
type Pipeline struct {
	db       TxBeginner
	router   *Router
	renderer *Renderer
}

func NewPipeline(db TxBeginner, router *Router, sender Sender) *Pipeline {
	return &Pipeline{
		db:       db,
		router:   router,
		renderer: NewRenderer(sender),
	}
}

// HandleUpdate processes one inbound update to completion. Failures are
// fatal for this update only: they are logged and the update dropped.
func (p *Pipeline) HandleUpdate(ctx context.Context, upd telegram.Update) {
	in := Normalize(upd)
	logIncoming(in)

	res, err := p.process(ctx, in)
	logOutgoing(in, res, err)

	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeUnresolvableIdentity) {
			// Nowhere to deliver a reply; the update is dropped.
			return
		}
		// The transaction is already rolled back; tell the user in
		// plain text outside any transaction scope.
		res = Text(apperrors.UserText(err))
	}

	// Rendering happens after commit; a transport rejection must not
	// undo the already-committed transaction.
	if renderErr := p.renderer.Render(ctx, in, res); renderErr != nil {
		logger.Error().Err(renderErr).
			Int64("chat_id", in.ChatID).
			Msg("failed to render response")
	}
}

// process runs the transactional stages: begin, resolve identity,
// dispatch, commit. Any error rolls the transaction back.
func (p *Pipeline) process(ctx context.Context, in Interaction) (*Response, error) {
	externalID := in.ExternalID()
	if externalID == 0 {
		return nil, apperrors.New(apperrors.ErrCodeUnresolvableIdentity,
			"no originating user id in update")
	}

	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to begin transaction")
	}
	// No-op once the transaction is committed.
	defer tx.Rollback(ctx) //nolint:errcheck

	users := userpg.New(tx)
	user, err := users.GetOrCreate(ctx, externalID, in.Username)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to resolve user")
	}

	res, err := p.router.Dispatch(ctx, &Request{Interaction: in, Users: users, User: user})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabase, "failed to commit transaction")
	}

	return res, nil
}

func logIncoming(in Interaction) {
	evt := logger.Info().
		Str("kind", in.Kind.String()).
		Int64("chat_id", in.ChatID).
		Int64("user_id", in.UserID).
		Str("username", in.Username)
	switch in.Kind {
	case KindText:
		evt.Str("text", in.Text)
	case KindButton:
		evt.Str("callback", in.CallbackToken)
	}
	evt.Msg(">>> incoming update")
}

func logOutgoing(in Interaction, res *Response, err error) {
	evt := logger.Info().
		Str("kind", in.Kind.String()).
		Int64("chat_id", in.ChatID).
		Int64("user_id", in.UserID)
	if err != nil {
		evt = logger.Error().Err(err).
			Str("kind", in.Kind.String()).
			Int64("chat_id", in.ChatID).
			Int64("user_id", in.UserID)
	}
	if res != nil {
		evt.Str("text", res.Text).Bool("has_keyboard", res.Markup != nil)
	}
	evt.Msg("<<< handler result")
}
