package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	dm "capm.service/data/models"
)

// PriceStore is everything the controllers need from the database, *repos.Postgres satisfies it
type PriceStore interface {
	Ping(ctx context.Context) error
	GetTransaction(ctx context.Context) (pgx.Tx, error)

	GetMetaDataBySymbol(ctx context.Context, symbol string) (*dm.TimeSeriesMetadata, error)
	InsertNewMetaData(ctx context.Context, metadata *dm.TimeSeriesMetadata, tx *pgx.Tx) error
	UpdateLastRefreshedDate(ctx context.Context, symbol string, lastRefreshed time.Time, tx *pgx.Tx) error

	GetClosePrices(ctx context.Context, symbol string, since time.Time) ([]*dm.ClosePrice, error)
	GetMostRecentTimestampForSymbol(ctx context.Context, symbol string) (*time.Time, error)
	InsertTimeSeriesData(ctx context.Context, data []*dm.TimeSeriesData, sourceId int32, tx *pgx.Tx) (int64, error)

	InsertCapmRunHistory(ctx context.Context, run dm.CapmRunHistory) (int32, error)
	UpdateCapmRunAsSuccess(ctx context.Context, runId int32) error
	UpdateCapmRunAsFailure(ctx context.Context, runId int32, errorMessage string) error
}

type ServiceContext struct {
	Context            context.Context
	PostgresConnection PriceStore
	Predictor          Predictor
	Settings           Settings
}

// WithContext copies the service context for a single request so cancelling the request stops its queries
func (sc *ServiceContext) WithContext(ctx context.Context) *ServiceContext {
	res := *sc
	res.Context = ctx
	return &res
}
