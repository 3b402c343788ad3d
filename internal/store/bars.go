package store

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/infrastructure"
	"github.com/SHMoney2021/myquote/internal/model"
)

// BarStore caches fetched daily bars in Postgres so repeated backtests over
// the same range do not hit the upstream provider again. Account state is
// never persisted here.
type BarStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewBarStore(pool *pgxpool.Pool, logger *zap.Logger) *BarStore {
	return &BarStore{pool: pool, logger: logger}
}

func (s *BarStore) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS daily_bars (
			symbol     TEXT NOT NULL,
			trade_date CHAR(8) NOT NULL,
			open       NUMERIC NOT NULL,
			high       NUMERIC NOT NULL,
			low        NUMERIC NOT NULL,
			close      NUMERIC NOT NULL,
			prev_close NUMERIC,
			volume     NUMERIC NOT NULL,
			amount     NUMERIC NOT NULL,
			PRIMARY KEY (symbol, trade_date)
		)`)
	return err
}

// SaveBars upserts one symbol's bars in a single batch round trip.
func (s *BarStore) SaveBars(ctx context.Context, symbol string, bars []model.BarRecord) error {
	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(`
			INSERT INTO daily_bars (symbol, trade_date, open, high, low, close, prev_close, volume, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (symbol, trade_date) DO UPDATE SET
				open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
				close = EXCLUDED.close, prev_close = EXCLUDED.prev_close,
				volume = EXCLUDED.volume, amount = EXCLUDED.amount`,
			symbol, b.TradeDate, b.Open, b.High, b.Low, b.Close, b.PrevClose, b.Volume, b.Amount)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range bars {
		if _, err := results.Exec(); err != nil {
			return err
		}
		infrastructure.DBInsertRate.WithLabelValues("daily_bars").Inc()
	}
	return nil
}

// LoadBars returns the cached bars for [start, end], ascending by trade date.
func (s *BarStore) LoadBars(ctx context.Context, symbol, start, end string) ([]model.BarRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT trade_date, open, high, low, close, COALESCE(prev_close, 0), volume, amount
		FROM daily_bars
		WHERE symbol = $1 AND trade_date >= $2 AND trade_date <= $3
		ORDER BY trade_date ASC`,
		symbol, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []model.BarRecord
	for rows.Next() {
		var b model.BarRecord
		if err := rows.Scan(&b.TradeDate, &b.Open, &b.High, &b.Low, &b.Close, &b.PrevClose, &b.Volume, &b.Amount); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
