package clickhouse

import (
	"context"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"insideredge/internal/domain/fivefactor"
	"insideredge/internal/domain/market_data"
	"insideredge/internal/domain/optionsflow"
	"insideredge/internal/ingest"
	"insideredge/pkg/errors"
)

const (
	defaultSnapshotLimit = 500
	defaultFlowLimit     = 200
)

// OptionsRepository reads the options tables for the analytics engine.
// It implements optionsflow.AlertSource, fivefactor.RowSource and
// market_data.Repository.
type OptionsRepository struct {
	conn driver.Conn
}

var (
	_ optionsflow.AlertSource = (*OptionsRepository)(nil)
	_ fivefactor.RowSource    = (*OptionsRepository)(nil)
	_ market_data.Repository  = (*OptionsRepository)(nil)
)

// NewOptionsRepository creates a new options data repository
func NewOptionsRepository(conn driver.Conn) *OptionsRepository {
	return &OptionsRepository{conn: conn}
}

// ============================================================================
// Trade alerts
// ============================================================================

// GetTradeAlerts returns alerts ordered by total premium descending.
// An empty ticker selects every ticker.
func (r *OptionsRepository) GetTradeAlerts(ctx context.Context, q optionsflow.AlertQuery) ([]optionsflow.OptionTradeAlert, error) {
	where := []string{"created_at >= ?", "total_premium >= ?"}
	args := []interface{}{q.Since, q.MinPremium}
	if q.Ticker != "" {
		where = append(where, "ticker = ?")
		args = append(args, strings.ToUpper(q.Ticker))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = optionsflow.DefaultFetchLimit
	}
	args = append(args, limit)

	query := `
		SELECT
			ticker, type, strike, expiry,
			total_premium, total_ask_side_prem, total_bid_side_prem,
			trade_count, total_size, volume_oi_ratio, underlying_price,
			all_opening_trades, alert_rule, created_at
		FROM options_trade_alerts
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY total_premium DESC
		LIMIT ?
	`

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.NewFetchError("options_trade_alerts", q.Ticker, err)
	}
	defer rows.Close()

	var alerts []optionsflow.OptionTradeAlert
	for rows.Next() {
		var (
			a                   optionsflow.OptionTradeAlert
			typ, strike, expiry string
		)
		if err := rows.Scan(
			&a.Ticker, &typ, &strike, &expiry,
			&a.TotalPremium, &a.AskSidePremium, &a.BidSidePremium,
			&a.TradeCount, &a.TotalSize, &a.VolumeOIRatio, &a.UnderlyingPrice,
			&a.AllOpeningTrades, &a.AlertRule, &a.CreatedAt,
		); err != nil {
			return nil, errors.NewFetchError("options_trade_alerts", q.Ticker, errors.Wrap(err, "scan trade alert"))
		}
		a.Type = ingest.OptionType(typ)
		if a.Type == "" {
			continue
		}
		a.Strike = ingest.Strike(strike)
		a.Expiry = ingest.Expiry(expiry)
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewFetchError("options_trade_alerts", q.Ticker, err)
	}

	return alerts, nil
}

// ============================================================================
// Five-factor tables
// ============================================================================

// GetFlows returns unexpired options_flow rows, newest first
func (r *OptionsRepository) GetFlows(ctx context.Context, ticker string, since time.Time) ([]fivefactor.FlowRow, error) {
	query := `
		SELECT
			option_symbol, option_type, strike, expiry,
			volume, call_volume, put_volume, premium,
			toString(data_date), executed_at, is_empty_marker
		FROM options_flow
		WHERE ticker = ? AND expires_at > ?
		ORDER BY data_date DESC, cached_at DESC
		LIMIT ?
	`

	rows, err := r.conn.Query(ctx, query, strings.ToUpper(ticker), since, defaultFlowLimit)
	if err != nil {
		return nil, errors.NewFetchError("options_flow", ticker, err)
	}
	defer rows.Close()

	var out []fivefactor.FlowRow
	for rows.Next() {
		var f fivefactor.FlowRow
		if err := rows.Scan(
			&f.OptionSymbol, &f.OptionType, &f.Strike, &f.Expiry,
			&f.Volume, &f.CallVolume, &f.PutVolume, &f.Premium,
			&f.DataDate, &f.ExecutedAt, &f.IsEmptyMarker,
		); err != nil {
			return nil, errors.NewFetchError("options_flow", ticker, errors.Wrap(err, "scan options flow"))
		}
		out = append(out, f)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewFetchError("options_flow", ticker, err)
	}

	return out, nil
}

// GetOIChanges returns oi_change rows, newest data date first
func (r *OptionsRepository) GetOIChanges(ctx context.Context, ticker string) ([]fivefactor.OIChangeRow, error) {
	query := `
		SELECT
			option_symbol, toString(data_date), curr_date, last_date,
			oi_diff_plain, oi_change
		FROM oi_change
		WHERE ticker = ?
		ORDER BY data_date DESC
		LIMIT ?
	`

	rows, err := r.conn.Query(ctx, query, strings.ToUpper(ticker), defaultSnapshotLimit)
	if err != nil {
		return nil, errors.NewFetchError("oi_change", ticker, err)
	}
	defer rows.Close()

	var out []fivefactor.OIChangeRow
	for rows.Next() {
		var o fivefactor.OIChangeRow
		if err := rows.Scan(&o.OptionSymbol, &o.DataDate, &o.CurrDate, &o.LastDate, &o.OIDiffPlain, &o.OIChange); err != nil {
			return nil, errors.NewFetchError("oi_change", ticker, errors.Wrap(err, "scan oi change"))
		}
		out = append(out, o)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewFetchError("oi_change", ticker, err)
	}

	return out, nil
}

// GetOIPerStrike returns oi_per_strike rows, newest data date first
func (r *OptionsRepository) GetOIPerStrike(ctx context.Context, ticker string) ([]fivefactor.OIStrikeRow, error) {
	query := `
		SELECT toString(data_date), strike, call_oi, put_oi
		FROM oi_per_strike
		WHERE ticker = ?
		ORDER BY data_date DESC
		LIMIT ?
	`

	rows, err := r.conn.Query(ctx, query, strings.ToUpper(ticker), defaultSnapshotLimit)
	if err != nil {
		return nil, errors.NewFetchError("oi_per_strike", ticker, err)
	}
	defer rows.Close()

	var out []fivefactor.OIStrikeRow
	for rows.Next() {
		var s fivefactor.OIStrikeRow
		if err := rows.Scan(&s.DataDate, &s.Strike, &s.CallOI, &s.PutOI); err != nil {
			return nil, errors.NewFetchError("oi_per_strike", ticker, errors.Wrap(err, "scan oi per strike"))
		}
		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewFetchError("oi_per_strike", ticker, err)
	}

	return out, nil
}

// GetIVRank returns the latest iv_rank row
func (r *OptionsRepository) GetIVRank(ctx context.Context, ticker string) ([]fivefactor.IVRankRow, error) {
	query := `
		SELECT toString(data_date), iv_rank_1y, volatility, close
		FROM iv_rank
		WHERE ticker = ?
		ORDER BY data_date DESC
		LIMIT 1
	`

	rows, err := r.conn.Query(ctx, query, strings.ToUpper(ticker))
	if err != nil {
		return nil, errors.NewFetchError("iv_rank", ticker, err)
	}
	defer rows.Close()

	var out []fivefactor.IVRankRow
	for rows.Next() {
		var iv fivefactor.IVRankRow
		if err := rows.Scan(&iv.DataDate, &iv.IVRank1Y, &iv.Volatility, &iv.Close); err != nil {
			return nil, errors.NewFetchError("iv_rank", ticker, errors.Wrap(err, "scan iv rank"))
		}
		out = append(out, iv)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewFetchError("iv_rank", ticker, err)
	}

	return out, nil
}

// GetMaxPain returns the max_pain curve of the latest data date
func (r *OptionsRepository) GetMaxPain(ctx context.Context, ticker string) ([]fivefactor.MaxPainRow, error) {
	query := `
		SELECT toString(data_date), expiry, max_pain
		FROM max_pain
		WHERE ticker = ?
			AND data_date = (SELECT max(data_date) FROM max_pain WHERE ticker = ?)
		ORDER BY expiry ASC
	`

	upper := strings.ToUpper(ticker)
	rows, err := r.conn.Query(ctx, query, upper, upper)
	if err != nil {
		return nil, errors.NewFetchError("max_pain", ticker, err)
	}
	defer rows.Close()

	var out []fivefactor.MaxPainRow
	for rows.Next() {
		var mp fivefactor.MaxPainRow
		if err := rows.Scan(&mp.DataDate, &mp.Expiry, &mp.MaxPain); err != nil {
			return nil, errors.NewFetchError("max_pain", ticker, errors.Wrap(err, "scan max pain"))
		}
		out = append(out, mp)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewFetchError("max_pain", ticker, err)
	}

	return out, nil
}

// GetLatestQuote returns the most recent quote, or nil when none exists
func (r *OptionsRepository) GetLatestQuote(ctx context.Context, ticker string) (*fivefactor.QuoteRow, error) {
	query := `
		SELECT price, last
		FROM ticker_quotes
		WHERE ticker = ?
		ORDER BY cached_at DESC
		LIMIT 1
	`

	rows, err := r.conn.Query(ctx, query, strings.ToUpper(ticker))
	if err != nil {
		return nil, errors.NewFetchError("ticker_quotes", ticker, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.NewFetchError("ticker_quotes", ticker, err)
		}
		return nil, nil
	}

	var q fivefactor.QuoteRow
	if err := rows.Scan(&q.Price, &q.Last); err != nil {
		return nil, errors.NewFetchError("ticker_quotes", ticker, errors.Wrap(err, "scan quote"))
	}
	return &q, nil
}

// GetGreeks returns the latest unexpired greeks snapshot
func (r *OptionsRepository) GetGreeks(ctx context.Context, ticker string) ([]fivefactor.GreeksRow, error) {
	query := `
		SELECT toString(data_date), cached_at, net_gamma_exposure, net_delta_exposure, data
		FROM greeks
		WHERE ticker = ? AND expires_at > now()
		ORDER BY data_date DESC, cached_at DESC
		LIMIT 1
	`

	rows, err := r.conn.Query(ctx, query, strings.ToUpper(ticker))
	if err != nil {
		return nil, errors.NewFetchError("greeks", ticker, err)
	}
	defer rows.Close()

	var out []fivefactor.GreeksRow
	for rows.Next() {
		var (
			g       fivefactor.GreeksRow
			payload string
		)
		if err := rows.Scan(&g.DataDate, &g.CachedAt, &g.NetGammaExposure, &g.NetDeltaExposure, &payload); err != nil {
			return nil, errors.NewFetchError("greeks", ticker, errors.Wrap(err, "scan greeks"))
		}
		g.TopGammaStrikes = ingest.GreeksPayload(payload)
		out = append(out, g)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewFetchError("greeks", ticker, err)
	}

	return out, nil
}

// GetPriceContext returns the latest unexpired price context snapshot
func (r *OptionsRepository) GetPriceContext(ctx context.Context, ticker string) ([]fivefactor.PriceContextRow, error) {
	query := `
		SELECT
			toString(data_date), cached_at, spot, change_percent, volume,
			sma_20, sma_50, stddev_20, range_5d_pct, data
		FROM ticker_price_context
		WHERE ticker = ? AND expires_at > now()
		ORDER BY data_date DESC, cached_at DESC
		LIMIT 1
	`

	rows, err := r.conn.Query(ctx, query, strings.ToUpper(ticker))
	if err != nil {
		return nil, errors.NewFetchError("ticker_price_context", ticker, err)
	}
	defer rows.Close()

	var out []fivefactor.PriceContextRow
	for rows.Next() {
		var (
			pc      fivefactor.PriceContextRow
			payload string
		)
		if err := rows.Scan(
			&pc.DataDate, &pc.CachedAt, &pc.Spot, &pc.ChangePercent, &pc.Volume,
			&pc.SMA20, &pc.SMA50, &pc.StdDev20, &pc.Range5dPct, &payload,
		); err != nil {
			return nil, errors.NewFetchError("ticker_price_context", ticker, errors.Wrap(err, "scan price context"))
		}
		extras := ingest.PriceContextPayload(payload)
		pc.ADX14 = extras.ADX14
		pc.RealizedVol20d = extras.RealizedVol20d
		out = append(out, pc)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewFetchError("ticker_price_context", ticker, err)
	}

	return out, nil
}

// GetDarkPool returns non-empty dark pool prints since the given day, newest first
func (r *OptionsRepository) GetDarkPool(ctx context.Context, ticker string, since time.Time) ([]fivefactor.DarkPoolRow, error) {
	query := `
		SELECT toString(data_date), executed_at, value, volume, size
		FROM dark_pool_trades
		WHERE ticker = ? AND is_empty_marker = false AND data_date >= toDate(?)
		ORDER BY executed_at DESC
		LIMIT ?
	`

	rows, err := r.conn.Query(ctx, query, strings.ToUpper(ticker), since, defaultSnapshotLimit)
	if err != nil {
		return nil, errors.NewFetchError("dark_pool_trades", ticker, err)
	}
	defer rows.Close()

	var out []fivefactor.DarkPoolRow
	for rows.Next() {
		var dp fivefactor.DarkPoolRow
		if err := rows.Scan(&dp.DataDate, &dp.ExecutedAt, &dp.Value, &dp.Volume, &dp.Size); err != nil {
			return nil, errors.NewFetchError("dark_pool_trades", ticker, errors.Wrap(err, "scan dark pool trade"))
		}
		out = append(out, dp)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewFetchError("dark_pool_trades", ticker, err)
	}

	return out, nil
}

// ============================================================================
// Daily candles
// ============================================================================

// GetDailyOHLCV returns daily bars, newest first
func (r *OptionsRepository) GetDailyOHLCV(ctx context.Context, q market_data.OHLCVQuery) ([]market_data.OHLCV, error) {
	query := `
		SELECT ticker, open_time, open, high, low, close, volume
		FROM daily_ohlcv
		WHERE ticker = ? AND open_time >= ?
		ORDER BY open_time DESC
		LIMIT ?
	`

	limit := q.Limit
	if limit <= 0 {
		limit = 120
	}

	var candles []market_data.OHLCV
	if err := r.conn.Select(ctx, &candles, query, strings.ToUpper(q.Ticker), q.Since, limit); err != nil {
		return nil, errors.NewFetchError("daily_ohlcv", q.Ticker, err)
	}

	return candles, nil
}
