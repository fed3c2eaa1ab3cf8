package store

import (
	"context"
	"fmt"
	"time"

	"outreach/internal/utils"
	"outreach/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const requestEventTableName = "outreach.request_events"

var requestEventColumns = utils.StructTagValues(types.RequestEvent{})

// RequestEventRepository records the audit trail of status and assignment
// changes.
type RequestEventRepository struct {
	pool *pgxpool.Pool
}

func NewRequestEventRepository(pool *pgxpool.Pool) *RequestEventRepository {
	return &RequestEventRepository{pool: pool}
}

func (r *RequestEventRepository) Append(ctx context.Context, event *types.RequestEvent) error {

	event.ID = utils.NanoID()
	event.CreatedAt = time.Now()

	query, args, err := psql().Insert(requestEventTableName).SetMap(utils.StructToMap(event)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert request event query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to append request event")
}

func (r *RequestEventRepository) EventsByRequest(ctx context.Context, requestID string) ([]*types.RequestEvent, error) {

	query, args, err := psql().Select(requestEventColumns...).From(requestEventTableName).
		Where(sq.Eq{"request_id": requestID}).
		OrderBy("created_at asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request events query: %w", err)
	}

	var events = make([]*types.RequestEvent, 0)
	err = pgxscan.Select(ctx, r.pool, &events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch request events: %w", err)
	}

	return events, nil
}
