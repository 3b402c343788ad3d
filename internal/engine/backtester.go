package engine

import (
	"github.com/SHMoney2021/myquote/internal/model"
	"github.com/SHMoney2021/myquote/internal/sim"
	"github.com/SHMoney2021/myquote/internal/strategy"
)

// Backtester replays a chronologically ordered bar slice through a strategy
// with a fixed-size sliding window, threading one shared account through the
// calls sequentially.
type Backtester struct {
	windowSize int
	strategy   strategy.Strategy
	account    *sim.Account
}

func NewBacktester(strat strategy.Strategy, windowSize int, account *sim.Account) *Backtester {
	// windowSize below 1 would slide len+1 empty windows
	if windowSize < 1 {
		windowSize = 1
	}
	return &Backtester{
		windowSize: windowSize,
		strategy:   strat,
		account:    account,
	}
}

// Run invokes the strategy once for every contiguous window of exactly
// windowSize rows, in ascending date order: max(0, len(bars)-n+1) calls.
// Fewer bars than the window is not an error, the strategy just never runs.
// Whether a window below 2 rows is useful is the strategy's concern; the
// engine does not validate it.
func (b *Backtester) Run(bars []model.BarRecord) model.BacktestReport {
	n := b.windowSize
	windows := 0
	for i := 0; i+n <= len(bars); i++ {
		b.strategy.OnWindow(bars[i:i+n], b.account)
		windows++
	}

	orders := b.account.Orders()
	return model.BacktestReport{
		StrategyName: b.strategy.Name(),
		WindowSize:   n,
		Windows:      windows,
		TotalOrders:  len(orders),
		Status:       b.account.Status(),
		OrderLog:     orders,
	}
}
