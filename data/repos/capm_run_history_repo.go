package repos

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	m "capm.service/data/models"
	q "capm.service/data/queries"
)

func (pg *Postgres) InsertCapmRunHistory(ctx context.Context, run m.CapmRunHistory) (int32, error) {
	sql := q.Get(q.QueryHelper.Insert.CapmRun)
	args := pgx.NamedArgs{
		"benchmark":      run.Benchmark,
		"symbols":        run.Symbols,
		"risk_free_rate": run.RiskFreeRate,
		"formula":        run.Formula,
		"lookback_start": run.LookbackStart,
	}

	var runId int32
	if err := pg.db.QueryRow(ctx, sql, args).Scan(&runId); err != nil {
		return 0, fmt.Errorf("error inserting capm run history: %w", err)
	}

	return runId, nil
}

func (pg *Postgres) GetCapmRunById(ctx context.Context, runId int32) (*m.CapmRunHistory, error) {
	sql := q.Get(q.QueryHelper.Select.CapmRunById)
	res, err := QuerySingle[m.CapmRunHistory](ctx, pg, sql, pgx.NamedArgs{"id": runId})
	if err != nil {
		return nil, fmt.Errorf("unable to get capm run %d: %w", runId, err)
	}
	return res, nil
}

func (pg *Postgres) UpdateCapmRunAsFailure(ctx context.Context, runId int32, errorMessage string) error {
	cleanErrorMessage := strings.TrimSpace(errorMessage)
	if cleanErrorMessage == "" {
		return fmt.Errorf("error message is required if capm run is failing, occurred in %d", runId)
	}

	return pg.updateCapmRun(ctx, pgx.NamedArgs{
		"id":            runId,
		"status":        m.RunStatusFailure,
		"error_message": cleanErrorMessage,
	})
}

func (pg *Postgres) UpdateCapmRunAsSuccess(ctx context.Context, runId int32) error {
	return pg.updateCapmRun(ctx, pgx.NamedArgs{
		"id":            runId,
		"status":        m.RunStatusSuccess,
		"error_message": nil,
	})
}

func (pg *Postgres) updateCapmRun(ctx context.Context, args pgx.NamedArgs) error {
	sql := q.Get(q.QueryHelper.Update.CapmRun)
	if _, err := pg.db.Exec(ctx, sql, args); err != nil {
		return fmt.Errorf("error updating capm run: %w", err)
	}
	return nil
}
