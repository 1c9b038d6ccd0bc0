package core

import (
	"fmt"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"

	ex "capm.service/data/extensions"
	m "capm.service/data/models"
)

// ImportPriceHistory stores bars that were fetched elsewhere. Only bars newer than what we already hold
// for the symbol are inserted, and the metadata, bars and refresh date are written in one transaction.
func (sc *ServiceContext) ImportPriceHistory(symbol string, bars []*m.TimeSeriesData) (int64, time.Time, error) {
	symbol = ex.NormalizeSymbol(symbol)
	if symbol == "" {
		return 0, time.Time{}, fmt.Errorf("%w: symbol is required", ErrInvalidRequest)
	}
	if len(bars) == 0 {
		return 0, time.Time{}, fmt.Errorf("%w: no bars to import for %s", ErrInvalidRequest, symbol)
	}

	slices.SortFunc(bars, func(a, b *m.TimeSeriesData) int { return a.Timestamp.Compare(b.Timestamp) })
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp.Equal(bars[i-1].Timestamp) {
			return 0, time.Time{}, fmt.Errorf("%w: duplicate bar on %s for %s", ErrInvalidRequest, ex.FmtShort(bars[i].Timestamp), symbol)
		}
	}
	lastRefreshed := bars[len(bars)-1].Timestamp

	md, err := sc.PostgresConnection.GetMetaDataBySymbol(sc.Context, symbol)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("error determining if meta data exists in import: %w", err)
	}

	mrd, err := sc.PostgresConnection.GetMostRecentTimestampForSymbol(sc.Context, symbol)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("error getting most recent time series date for symbol %s: %w", symbol, err)
	}

	f := func(t *m.TimeSeriesData) bool { return mrd == nil || t.Timestamp.After(*mrd) }
	toInsert := ex.FilterMultiplePtr(bars, f)

	tx, err := sc.PostgresConnection.GetTransaction(sc.Context)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(sc.Context) // this will kick off if we return before committing

	if md == nil {
		log.Printf("adding new symbol to db: %s", symbol)
		md = &m.TimeSeriesMetadata{
			Symbol:        symbol,
			LastRefreshed: lastRefreshed,
		}

		if err := sc.PostgresConnection.InsertNewMetaData(sc.Context, md, &tx); err != nil {
			return 0, time.Time{}, fmt.Errorf("error adding %s to db: %w", symbol, err)
		}
	}

	var ra int64
	if len(toInsert) > 0 {
		ra, err = sc.PostgresConnection.InsertTimeSeriesData(sc.Context, toInsert, md.Id, &tx)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("error inserting time series data: %w", err)
		}
	}

	if lastRefreshed.Before(md.LastRefreshed) {
		lastRefreshed = md.LastRefreshed
	}
	if err := sc.PostgresConnection.UpdateLastRefreshedDate(sc.Context, symbol, lastRefreshed, &tx); err != nil {
		return 0, time.Time{}, err
	}

	if err := tx.Commit(sc.Context); err != nil {
		return 0, time.Time{}, fmt.Errorf("error committing transaction to import symbol %s: %w", symbol, err)
	}

	log.Printf("symbol %s got %v bars, inserted %v values", symbol, len(bars), ra)
	return ra, lastRefreshed, nil
}
