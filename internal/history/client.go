// Package history normalizes historical and snapshot tables from an external
// tabular data collaborator into the canonical bar/quote schema.
package history

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/SHMoney2021/myquote/internal/model"
)

// Client is the opaque tabular collaborator (a tushare-style API). It owns
// transport, authentication and pagination; this package only qualifies
// symbols going in and normalizes tables coming out.
type Client interface {
	// Daily returns day bars for a qualified symbol over a closed date range.
	Daily(ctx context.Context, tsCode, startDate, endDate string) ([]DailyRow, error)
	// AdjustedHistory returns price-adjusted bars. adjust names the policy,
	// adjustRefTime pins the price level the restatement is comparable at.
	AdjustedHistory(ctx context.Context, tsCode, freq, startTime, endTime, adjust, adjustRefTime string) ([]AdjustedRow, error)
	// Snapshot returns one current-tick row per qualified symbol.
	Snapshot(ctx context.Context, tsCodes []string) ([]SnapshotRow, error)
}

// DailyRow 日线原始行
type DailyRow struct {
	TSCode    string
	TradeDate string // YYYYMMDD
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	PreClose  decimal.Decimal
	Vol       decimal.Decimal
	Amount    decimal.Decimal
}

// AdjustedRow 复权行情原始行，按交易时段的结束时刻打点
type AdjustedRow struct {
	TSCode    string
	TradeTime string // "2021-03-12 15:00:00"
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Vol       decimal.Decimal
	Amount    decimal.Decimal
}

// SnapshotRow 实时快照原始行
type SnapshotRow struct {
	TSCode   string
	Name     string
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Price    decimal.Decimal
	PreClose decimal.Decimal
	Vol      decimal.Decimal
	Amount   decimal.Decimal
	Time     string
}

// checkDate requires an 8-character digit string YYYYMMDD.
func checkDate(s string) error {
	if len(s) != 8 {
		return fmt.Errorf("%w: %q", model.ErrInvalidDate, s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: %q", model.ErrInvalidDate, s)
		}
	}
	return nil
}
