package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	m "capm.service/data/models"
	q "capm.service/data/queries"
)

// GetClosePrices returns the closes of a symbol since the given time, oldest first
func (pg *Postgres) GetClosePrices(ctx context.Context, symbol string, since time.Time) ([]*m.ClosePrice, error) {
	sql := q.Get(q.QueryHelper.Select.ClosePricesBySymbol)
	args := pgx.NamedArgs{
		"symbol": symbol,
		"since":  since,
	}

	res, err := Query[m.ClosePrice](ctx, pg, sql, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query close prices by symbol (%s): %w", symbol, err)
	}
	return res, nil
}

// GetMostRecentTimestampForSymbol is nil when nothing has been stored for the symbol yet
func (pg *Postgres) GetMostRecentTimestampForSymbol(ctx context.Context, symbol string) (*time.Time, error) {
	sql := q.Get(q.QueryHelper.Select.MostRecentTimestampBySymbol)
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	var res *time.Time
	if err := pg.db.QueryRow(ctx, sql, args).Scan(&res); err != nil {
		return nil, fmt.Errorf("unable to query most recent timestamp (%s): %w", symbol, err)
	}
	return res, nil
}

func (pg *Postgres) InsertTimeSeriesData(ctx context.Context, data []*m.TimeSeriesData, sourceId int32, tx *pgx.Tx) (int64, error) {
	columns := []string{
		"source_id", "timestamp", "close", "adjusted_close", "volume",
	}

	entries := make([][]any, len(data))
	for i, ent := range data {
		entries[i] = []any{
			sourceId, ent.Timestamp, ent.Close, ent.AdjustedClose, ent.Volume,
		}
	}

	return pg.BulkInsert(ctx, "price_series_data", columns, entries, tx)
}
