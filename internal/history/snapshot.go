package history

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/exchange"
	"github.com/SHMoney2021/myquote/internal/model"
)

// SnapshotSource serves a single point-in-time tick per symbol; no range, no
// historical ordering.
type SnapshotSource struct {
	client Client
	logger *zap.Logger
}

func NewSnapshotSource(client Client, logger *zap.Logger) *SnapshotSource {
	return &SnapshotSource{client: client, logger: logger}
}

// Current returns one row per requested symbol with OHLC and last price
// rounded to two decimals, keyed by the qualified symbol.
func (s *SnapshotSource) Current(ctx context.Context, codes []string) (*model.QuoteTable, error) {
	symbols := make([]string, 0, len(codes))
	for _, code := range codes {
		symbol, err := exchange.SnapshotSymbol(code)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}

	rows, err := s.client.Snapshot(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot: %v", model.ErrUpstreamUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: snapshot returned no rows", model.ErrUpstreamUnavailable)
	}

	table := model.NewQuoteTable()
	for _, row := range rows {
		table.Add(model.QuoteRecord{
			Symbol:    row.TSCode,
			Name:      row.Name,
			Last:      row.Price.Round(priceScale),
			PrevClose: row.PreClose.Round(priceScale),
			Open:      row.Open.Round(priceScale),
			High:      row.High.Round(priceScale),
			Low:       row.Low.Round(priceScale),
			Volume:    row.Vol,
			Turnover:  row.Amount,
			Timestamp: row.Time,
		})
	}
	return table, nil
}
