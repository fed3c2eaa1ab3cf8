package store

import (
	"context"
	"fmt"
	"time"

	"outreach/internal/utils"
	"outreach/pkg/types"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const supportOfferTableName = "outreach.support_offers"

var supportOfferColumns = utils.StructTagValues(types.SupportOffer{})

type SupportOfferRepository struct {
	pool *pgxpool.Pool
}

func NewSupportOfferRepository(pool *pgxpool.Pool) *SupportOfferRepository {
	return &SupportOfferRepository{pool: pool}
}

func (r *SupportOfferRepository) CreateSupportOffer(ctx context.Context, offer *types.SupportOffer) error {

	now := time.Now()
	offer.ID = utils.NanoID()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	query, args, err := psql().Insert(supportOfferTableName).SetMap(utils.StructToMap(offer)).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert support offer query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create support offer")
}

func (r *SupportOfferRepository) SupportOffers(ctx context.Context, limit uint64) ([]*types.SupportOffer, error) {

	query, args, err := psql().Select(supportOfferColumns...).From(supportOfferTableName).
		OrderBy("created_at desc").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate support offers query: %w", err)
	}

	var offers = make([]*types.SupportOffer, 0)
	err = pgxscan.Select(ctx, r.pool, &offers, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch support offers: %w", err)
	}

	return offers, nil
}
