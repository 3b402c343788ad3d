package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/SHMoney2021/myquote/internal/model"
	"github.com/SHMoney2021/myquote/internal/sim"
)

// MACrossStrategy 双均线策略：金叉买入固定手数，死叉清仓
type MACrossStrategy struct {
	shortPeriod int
	longPeriod  int
	lot         int64
}

// NewMACrossStrategy requires 0 < shortPeriod < longPeriod; the window guard
// in OnWindow only holds under that ordering.
func NewMACrossStrategy(shortPeriod, longPeriod int, lot int64) (*MACrossStrategy, error) {
	if shortPeriod <= 0 || longPeriod <= 0 {
		return nil, fmt.Errorf("ma_cross periods must be positive, got short=%d long=%d", shortPeriod, longPeriod)
	}
	if shortPeriod >= longPeriod {
		return nil, fmt.Errorf("ma_cross short period %d must be smaller than long period %d", shortPeriod, longPeriod)
	}
	if lot <= 0 {
		lot = 100
	}
	return &MACrossStrategy{
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
		lot:         lot,
	}, nil
}

func (s *MACrossStrategy) Name() string {
	return "MA_Cross"
}

// OnWindow marks the account with the window's closing price, then compares
// the short and long moving averages on the trailing two rows. Detecting the
// crossover needs at least longPeriod+1 rows; smaller windows only mark.
func (s *MACrossStrategy) OnWindow(window []model.BarRecord, account *sim.Account) {
	if len(window) == 0 {
		return
	}
	last := window[len(window)-1]
	account.UpdatePrice(last.Close)

	if len(window) < s.longPeriod+1 {
		return
	}

	shortMA := movingAverage(window, s.shortPeriod, 0)
	longMA := movingAverage(window, s.longPeriod, 0)
	prevShortMA := movingAverage(window, s.shortPeriod, 1)
	prevLongMA := movingAverage(window, s.longPeriod, 1)

	// Golden Cross
	if prevShortMA.LessThanOrEqual(prevLongMA) && shortMA.GreaterThan(longMA) {
		account.Buy(last.TradeDate, last.Close, s.lot)
		return
	}
	// Death Cross
	if prevShortMA.GreaterThanOrEqual(prevLongMA) && shortMA.LessThan(longMA) {
		account.SellAll(last.TradeDate, last.Close)
	}
}

func movingAverage(window []model.BarRecord, period, offset int) decimal.Decimal {
	sum := decimal.Zero
	end := len(window) - offset
	start := end - period
	for i := start; i < end; i++ {
		sum = sum.Add(window[i].Close)
	}
	return sum.Div(decimal.NewFromInt(int64(period)))
}
