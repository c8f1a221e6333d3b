package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"insideredge/internal/domain/fivefactor"
	"insideredge/pkg/errors"
	"insideredge/pkg/numeric"
)

const upcomingEarningsLimit = 4

// Compile-time check
var _ fivefactor.EarningsSource = (*EarningsRepository)(nil)

// EarningsRepository reads the ticker_earnings calendar using sqlx
type EarningsRepository struct {
	db *sqlx.DB
}

// NewEarningsRepository creates a new earnings calendar repository
func NewEarningsRepository(db *sqlx.DB) *EarningsRepository {
	return &EarningsRepository{db: db}
}

type earningsRow struct {
	ReportDate       time.Time       `db:"report_date"`
	ReportTime       sql.NullString  `db:"report_time"`
	ExpectedMovePerc sql.NullFloat64 `db:"expected_move_perc"`
}

// GetUpcomingEarnings returns reports on or after from, soonest first
func (r *EarningsRepository) GetUpcomingEarnings(ctx context.Context, ticker string, from time.Time) ([]fivefactor.EarningsRow, error) {
	var rows []earningsRow

	query := `
		SELECT report_date, report_time, expected_move_perc
		FROM ticker_earnings
		WHERE ticker = $1 AND report_date >= $2
		ORDER BY report_date ASC
		LIMIT $3`

	err := r.db.SelectContext(ctx, &rows, query, strings.ToUpper(ticker), numeric.Today(from), upcomingEarningsLimit)
	if err != nil {
		return nil, errors.NewFetchError("ticker_earnings", ticker, err)
	}

	out := make([]fivefactor.EarningsRow, 0, len(rows))
	for _, row := range rows {
		e := fivefactor.EarningsRow{
			ReportDate: numeric.DateKey(row.ReportDate),
			ReportTime: row.ReportTime.String,
		}
		if row.ExpectedMovePerc.Valid {
			e.ExpectedMovePerc = numeric.Ptr(row.ExpectedMovePerc.Float64)
		}
		out = append(out, e)
	}

	return out, nil
}
