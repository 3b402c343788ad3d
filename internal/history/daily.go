package history

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/exchange"
	"github.com/SHMoney2021/myquote/internal/model"
)

// DailySource serves day bars. Fetching and parsing belong to the
// collaborator; this source qualifies the symbol on the way in and re-keys the
// table by trade date on the way out.
type DailySource struct {
	client Client
	logger *zap.Logger
}

func NewDailySource(client Client, logger *zap.Logger) *DailySource {
	return &DailySource{client: client, logger: logger}
}

// Days returns bars for the closed range [start, end], ascending by trade
// date. A collaborator error or an empty result propagates as
// ErrUpstreamUnavailable; historical fetches fail whole, never partially.
func (s *DailySource) Days(ctx context.Context, code, start, end string) (*model.BarSeries, error) {
	if err := checkDate(start); err != nil {
		return nil, err
	}
	if err := checkDate(end); err != nil {
		return nil, err
	}
	symbol, err := exchange.HistorySymbol(code)
	if err != nil {
		return nil, err
	}

	rows, err := s.client.Daily(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: daily %s: %v", model.ErrUpstreamUnavailable, symbol, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: daily %s returned no rows", model.ErrUpstreamUnavailable, symbol)
	}

	bars := make([]model.BarRecord, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, model.BarRecord{
			TradeDate: row.TradeDate,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			PrevClose: row.PreClose,
			Volume:    row.Vol,
			Amount:    row.Amount,
		})
	}
	return model.NewBarSeries(bars), nil
}
