package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/SHMoney2021/myquote/internal/model"
	"github.com/SHMoney2021/myquote/internal/sim"
)

func window(closes ...float64) []model.BarRecord {
	bars := make([]model.BarRecord, len(closes))
	for i, c := range closes {
		bars[i] = model.BarRecord{
			TradeDate: "20210312",
			Close:     decimal.NewFromFloat(c),
		}
	}
	return bars
}

func TestMACross_GoldenCrossBuys(t *testing.T) {
	s, err := NewMACrossStrategy(2, 3, 100)
	assert.NoError(t, err)
	account := sim.NewAccount(decimal.NewFromInt(1000000))

	// MA2 crosses above MA3 on the last row.
	s.OnWindow(window(10, 9, 8, 12), account)

	assert.Equal(t, int64(100), account.Position())
	orders := account.Orders()
	assert.Len(t, orders, 1)
	assert.Equal(t, model.OrderBuy, orders[0].Side)
	assert.True(t, orders[0].Price.Equal(decimal.NewFromInt(12)))
}

func TestMACross_DeathCrossLiquidates(t *testing.T) {
	s, err := NewMACrossStrategy(2, 3, 100)
	assert.NoError(t, err)
	account := sim.NewAccount(decimal.NewFromInt(1000000))
	account.Buy("20210310", decimal.NewFromInt(9), 200)

	// MA2 crosses below MA3 on the last row.
	s.OnWindow(window(8, 9, 10, 2), account)

	assert.Equal(t, int64(0), account.Position())
	orders := account.Orders()
	assert.Len(t, orders, 2)
	assert.Equal(t, model.OrderSell, orders[1].Side)
	assert.Equal(t, int64(200), orders[1].Volume)
}

func TestMACross_ShortWindowOnlyMarks(t *testing.T) {
	s, err := NewMACrossStrategy(2, 3, 100)
	assert.NoError(t, err)
	account := sim.NewAccount(decimal.NewFromInt(1000000))

	s.OnWindow(window(10, 12), account)

	assert.Empty(t, account.Orders())
	status := account.Status()
	assert.True(t, status.MarkPrice.Equal(decimal.NewFromInt(12)))
}

func TestMACross_NoCrossNoTrade(t *testing.T) {
	s, err := NewMACrossStrategy(2, 3, 100)
	assert.NoError(t, err)
	account := sim.NewAccount(decimal.NewFromInt(1000000))

	// Steady uptrend: MA2 already above MA3 before and after.
	s.OnWindow(window(10, 11, 12, 13), account)

	assert.Empty(t, account.Orders())
}

func TestNewMACrossStrategy_RejectsBadPeriods(t *testing.T) {
	// A short period at or above the long one would index before the window
	// start inside OnWindow; the constructor must refuse it up front.
	_, err := NewMACrossStrategy(10, 2, 100)
	assert.Error(t, err)

	_, err = NewMACrossStrategy(3, 3, 100)
	assert.Error(t, err)

	_, err = NewMACrossStrategy(0, 3, 100)
	assert.Error(t, err)

	_, err = NewMACrossStrategy(2, -1, 100)
	assert.Error(t, err)
}

func TestNewStrategy_RejectsMisorderedPeriods(t *testing.T) {
	_, err := NewStrategy("ma_cross", map[string]interface{}{
		"short_period": 10.0,
		"long_period":  2.0,
	})
	assert.Error(t, err)
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("ma_cross", map[string]interface{}{
		"short_period": 5.0,
		"long_period":  20.0,
	})
	assert.NoError(t, err)
	assert.Equal(t, "MA_Cross", s.Name())

	_, err = NewStrategy("ma_cross", map[string]interface{}{})
	assert.Error(t, err)

	_, err = NewStrategy("hold_forever", nil)
	assert.Error(t, err)
}
