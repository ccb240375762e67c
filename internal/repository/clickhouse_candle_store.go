package repository

import (
	"context"
	"fmt"
	"time"

	"ChartPull/internal/domain/models"
	domrepo "ChartPull/internal/domain/repository"
	pkgch "ChartPull/pkg/clickhouse"
	applogger "ChartPull/pkg/logger"
)

// CHCandleStore implements CandleStore and SampleStore backed by ClickHouse.
type CHCandleStore struct {
	client *pkgch.Client
	l      *applogger.Logger
}

func NewCHCandleStore(ch *pkgch.Client, l *applogger.Logger) *CHCandleStore {
	return &CHCandleStore{client: ch, l: l}
}

func (s *CHCandleStore) GetCandles(ctx context.Context, id string, tf domrepo.Timeframe, from, to time.Time, limit int) ([]models.Candle, error) {
	start := time.Now()
	table, err := tableForTF(tf)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT bucket, entity, open, high, low, close, vol
        FROM %s
        WHERE entity = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.client.DB().QueryContext(ctx, q, id, from, to, limit)
	if err != nil {
		s.l.Error("clickhouse get_candles query error",
			applogger.String("table", table),
			applogger.String("entity", id),
			applogger.String("tf", string(tf)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, limit)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		s.l.Error("clickhouse get_candles rows error",
			applogger.String("table", table),
			applogger.String("entity", id),
			applogger.String("tf", string(tf)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse get_candles ok",
		applogger.String("table", table),
		applogger.String("entity", id),
		applogger.String("tf", string(tf)),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// GetSamples reads the raw per-minute observation series for an entity. Only
// the fallback synthesizer queries this table.
func (s *CHCandleStore) GetSamples(ctx context.Context, entityID, displayName string, from, to time.Time) ([]models.MetricSample, error) {
	start := time.Now()
	const q = `
        SELECT bucket, value
        FROM chartpull.rt_samples_1m
        WHERE entity = ? AND name = ? AND bucket >= ? AND bucket <= ?
        ORDER BY bucket ASC
    `
	rows, err := s.client.DB().QueryContext(ctx, q, entityID, displayName, from, to)
	if err != nil {
		s.l.Error("clickhouse get_samples query error",
			applogger.String("entity", entityID),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get samples: %w", err)
	}
	defer rows.Close()

	out := make([]models.MetricSample, 0, 1024)
	for rows.Next() {
		var m models.MetricSample
		if err := rows.Scan(&m.Bucket, &m.Value); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse get_samples ok",
		applogger.String("entity", entityID),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// Health pings the ClickHouse pool.
func (s *CHCandleStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func tableForTF(tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1m:
		return "chartpull.rt_candles_1m", nil
	case domrepo.TF5m:
		return "chartpull.rt_candles_5m", nil
	case domrepo.TF15m:
		return "chartpull.rt_candles_15m", nil
	case domrepo.TF30m:
		return "chartpull.rt_candles_30m", nil
	case domrepo.TF1h:
		return "chartpull.rt_candles_1h", nil
	case domrepo.TF4h:
		return "chartpull.rt_candles_4h", nil
	case domrepo.TF1d:
		return "chartpull.rt_candles_1d", nil
	case domrepo.TF1w:
		return "chartpull.rt_candles_1w", nil
	case domrepo.TF1M:
		return "chartpull.rt_candles_1mo", nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}
