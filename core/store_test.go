package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	dm "capm.service/data/models"
)

// Helper: in memory PriceStore, closes are returned whatever the lookback
type stubStore struct {
	mu sync.Mutex

	pingErr error

	closes    map[string][]*dm.ClosePrice
	closesErr error

	metadata     map[string]*dm.TimeSeriesMetadata
	mostRecent   map[string]time.Time
	insertedBars []*dm.TimeSeriesData
	refreshed    map[string]time.Time
	tx           *stubTx

	runs       []dm.CapmRunHistory
	runStatus  map[int32]string
	runMessage map[int32]string
}

func newStubStore() *stubStore {
	return &stubStore{
		closes:     make(map[string][]*dm.ClosePrice),
		metadata:   make(map[string]*dm.TimeSeriesMetadata),
		mostRecent: make(map[string]time.Time),
		refreshed:  make(map[string]time.Time),
		runStatus:  make(map[int32]string),
		runMessage: make(map[int32]string),
	}
}

func (s *stubStore) addSeries(symbol string, series PriceSeries) {
	closes := make([]*dm.ClosePrice, len(series.Prices))
	for i := range series.Prices {
		closes[i] = &dm.ClosePrice{Timestamp: series.Dates[i], Close: series.Prices[i]}
	}
	s.closes[symbol] = closes
}

func (s *stubStore) addTable(table *AlignedPriceTable) {
	for _, symbol := range table.Columns() {
		prices, _ := table.Column(symbol)
		s.addSeries(symbol, PriceSeries{Dates: table.Dates(), Prices: prices})
	}
}

func (s *stubStore) Ping(ctx context.Context) error {
	return s.pingErr
}

func (s *stubStore) GetTransaction(ctx context.Context) (pgx.Tx, error) {
	s.tx = &stubTx{}
	return s.tx, nil
}

func (s *stubStore) GetMetaDataBySymbol(ctx context.Context, symbol string) (*dm.TimeSeriesMetadata, error) {
	return s.metadata[symbol], nil
}

func (s *stubStore) InsertNewMetaData(ctx context.Context, metadata *dm.TimeSeriesMetadata, tx *pgx.Tx) error {
	metadata.Id = int32(len(s.metadata) + 1)
	s.metadata[metadata.Symbol] = metadata
	return nil
}

func (s *stubStore) UpdateLastRefreshedDate(ctx context.Context, symbol string, lastRefreshed time.Time, tx *pgx.Tx) error {
	s.refreshed[symbol] = lastRefreshed
	return nil
}

func (s *stubStore) GetClosePrices(ctx context.Context, symbol string, since time.Time) ([]*dm.ClosePrice, error) {
	if s.closesErr != nil {
		return nil, s.closesErr
	}
	return s.closes[symbol], nil
}

func (s *stubStore) GetMostRecentTimestampForSymbol(ctx context.Context, symbol string) (*time.Time, error) {
	if t, ok := s.mostRecent[symbol]; ok {
		return &t, nil
	}
	return nil, nil
}

func (s *stubStore) InsertTimeSeriesData(ctx context.Context, data []*dm.TimeSeriesData, sourceId int32, tx *pgx.Tx) (int64, error) {
	for _, d := range data {
		d.SourceId = sourceId
	}
	s.insertedBars = append(s.insertedBars, data...)
	return int64(len(data)), nil
}

func (s *stubStore) InsertCapmRunHistory(ctx context.Context, run dm.CapmRunHistory) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	id := int32(len(s.runs))
	s.runStatus[id] = dm.RunStatusPending
	return id, nil
}

func (s *stubStore) UpdateCapmRunAsSuccess(ctx context.Context, runId int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runStatus[runId] = dm.RunStatusSuccess
	return nil
}

func (s *stubStore) UpdateCapmRunAsFailure(ctx context.Context, runId int32, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errorMessage == "" {
		return errors.New("error message is required")
	}
	s.runStatus[runId] = dm.RunStatusFailure
	s.runMessage[runId] = errorMessage
	return nil
}

// Helper: transaction that only tracks how it ended, any other call panics on the nil interface
type stubTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (tx *stubTx) Commit(ctx context.Context) error {
	tx.committed = true
	return nil
}

func (tx *stubTx) Rollback(ctx context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

func newTestServiceContext(store PriceStore) *ServiceContext {
	settings := DefaultSettings()
	settings.RiskFreeRate = 0.02
	return &ServiceContext{
		Context:            context.Background(),
		PostgresConnection: store,
		Settings:           settings,
	}
}
