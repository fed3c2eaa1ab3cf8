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

const requestTableName = "outreach.requests"

var requestColumns = utils.StructTagValues(types.Request{})

type RequestRepository struct {
	pool  *pgxpool.Pool
	users *UserRepository
}

func NewRequestRepository(pool *pgxpool.Pool, users *UserRepository) *RequestRepository {
	return &RequestRepository{pool: pool, users: users}
}

func (r *RequestRepository) Request(ctx context.Context, requestID string) (*types.Request, error) {

	query, args, err := psql().Select(requestColumns...).From(requestTableName).
		Where(sq.Eq{"id": requestID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request query: %w", err)
	}

	var request = new(types.Request)
	err = pgxscan.Get(ctx, r.pool, request, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to fetch request %s: %w", requestID, err)
	}

	if err := r.attachAssignees(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

// AssigneeOf reads only the assigned_to column, for the route guard's
// detail-page check.
func (r *RequestRepository) AssigneeOf(ctx context.Context, requestID string) (*string, error) {

	query, args, err := psql().Select("assigned_to").From(requestTableName).
		Where(sq.Eq{"id": requestID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assignee query: %w", err)
	}

	var row struct {
		AssignedTo *string `db:"assigned_to"`
	}
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to fetch assignee for request %s: %w", requestID, err)
	}

	return row.AssignedTo, nil
}

func (r *RequestRepository) Requests(ctx context.Context, limit uint64) ([]*types.Request, error) {

	query, args, err := psql().Select(requestColumns...).From(requestTableName).
		OrderBy("created_at desc").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate requests query: %w", err)
	}

	var requests = make([]*types.Request, 0)
	err = pgxscan.Select(ctx, r.pool, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	if err := r.attachAssignees(ctx, requests...); err != nil {
		return nil, err
	}

	return requests, nil
}

func (r *RequestRepository) RequestsAssignedTo(ctx context.Context, accountID string) ([]*types.Request, error) {

	query, args, err := psql().Select(requestColumns...).From(requestTableName).
		Where(sq.Eq{"assigned_to": accountID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assigned requests query: %w", err)
	}

	var requests = make([]*types.Request, 0)
	err = pgxscan.Select(ctx, r.pool, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assigned requests: %w", err)
	}

	return requests, nil
}

func (r *RequestRepository) CreateRequest(ctx context.Context, request *types.Request) error {

	now := time.Now()
	request.ID = utils.NanoID()
	request.RequestNumber = utils.RequestNumber()
	request.CreatedAt = now
	request.UpdatedAt = now

	if request.ProofURLs == nil {
		request.ProofURLs = []string{}
	}

	requestMap := utils.StructToMap(request)

	query, args, err := psql().Insert(requestTableName).SetMap(requestMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert request query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create request")
}

// UpdateByID applies a partial patch in a single update call. The orchestrator
// owns what goes into the patch.
func (r *RequestRepository) UpdateByID(ctx context.Context, requestID string, patch map[string]any) error {

	patch["updated_at"] = time.Now()

	query, args, err := psql().Update(requestTableName).SetMap(patch).Where(sq.Eq{"id": requestID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update request query for request %s: %w", requestID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to update request")
}

// SetAssignee overwrites assigned_to. Last write wins; there is no version
// check on concurrent assignment.
func (r *RequestRepository) SetAssignee(ctx context.Context, requestID, volunteerID string) error {

	query, args, err := psql().Update(requestTableName).
		Set("assigned_to", volunteerID).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate assign query for request %s: %w", requestID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return utils.ErrorWrapOrNil(err, "failed to assign request")
	}
	if tag.RowsAffected() == 0 {
		return types.ErrRequestNotFound
	}

	return nil
}

func (r *RequestRepository) attachAssignees(ctx context.Context, requests ...*types.Request) error {
	ids := make([]string, 0, len(requests))
	for _, request := range requests {
		if request.AssignedTo != nil {
			ids = append(ids, *request.AssignedTo)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := r.users.UsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch assignees: %w", err)
	}

	byID := make(map[string]*types.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	for _, request := range requests {
		if request.AssignedTo != nil {
			request.AssignedUser = byID[*request.AssignedTo]
		}
	}

	return nil
}
