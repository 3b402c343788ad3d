package history

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/exchange"
	"github.com/SHMoney2021/myquote/internal/model"
)

// A股全时段的墙钟边界
const (
	sessionOpen  = "09:00:00"
	sessionClose = "15:00:00"
)

// priceScale OHLC 保留两位小数
const priceScale = 2

// AdjustedSource serves forward-adjusted day bars: all historical prices are
// restated to be comparable at the end date's price level.
type AdjustedSource struct {
	client Client
	logger *zap.Logger
}

func NewAdjustedSource(client Client, logger *zap.Logger) *AdjustedSource {
	return &AdjustedSource{client: client, logger: logger}
}

// Days widens [start, end] to full-session bounds before delegating, pins the
// adjustment reference to the session close of end, rounds OHLC to two
// decimals and keys each bar by the calendar date of its session-end
// timestamp.
func (s *AdjustedSource) Days(ctx context.Context, code, start, end string) (*model.BarSeries, error) {
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

	startTime := start + " " + sessionOpen
	endTime := end + " " + sessionClose
	rows, err := s.client.AdjustedHistory(ctx, symbol, "D", startTime, endTime, "qfq", endTime)
	if err != nil {
		return nil, fmt.Errorf("%w: adjusted %s: %v", model.ErrUpstreamUnavailable, symbol, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: adjusted %s returned no rows", model.ErrUpstreamUnavailable, symbol)
	}

	bars := make([]model.BarRecord, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, model.BarRecord{
			TradeDate: sessionDate(row.TradeTime),
			Open:      row.Open.Round(priceScale),
			High:      row.High.Round(priceScale),
			Low:       row.Low.Round(priceScale),
			Close:     row.Close.Round(priceScale),
			Volume:    row.Vol,
			Amount:    row.Amount,
		})
	}
	return model.NewBarSeries(bars), nil
}

// sessionDate truncates "2021-03-12 15:00:00" to "20210312".
func sessionDate(tradeTime string) string {
	if len(tradeTime) > 10 {
		tradeTime = tradeTime[:10]
	}
	return strings.ReplaceAll(tradeTime, "-", "")
}
