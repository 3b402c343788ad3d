package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/model"
	"github.com/SHMoney2021/myquote/internal/sim"
	"github.com/SHMoney2021/myquote/internal/strategy"
)

func TestWorkerPool_RunsJobsIndependently(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewWorkerPool(2, 4, zap.NewNop())
	pool.Start(ctx)

	spy := strategy.Func(func(window []model.BarRecord, account *sim.Account) {
		account.UpdatePrice(window[len(window)-1].Close)
	})

	symbols := []string{"601012", "000958", "600036"}
	for _, symbol := range symbols {
		ok := pool.Submit(Job{
			Symbol:      symbol,
			Bars:        makeBars(11),
			WindowSize:  5,
			Strategy:    spy,
			InitialCash: decimal.NewFromInt(1000000),
		})
		assert.True(t, ok)
	}

	seen := map[string]model.BacktestReport{}
	for i := 0; i < len(symbols); i++ {
		select {
		case result := <-pool.Results():
			seen[result.Symbol] = result.Report
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for backtest results")
		}
	}

	for _, symbol := range symbols {
		report, ok := seen[symbol]
		assert.True(t, ok, "missing report for %s", symbol)
		assert.Equal(t, symbol, report.Symbol)
		assert.Equal(t, 7, report.Windows)
	}
}

func TestWorkerPool_SurvivesStrategyPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewWorkerPool(1, 2, zap.NewNop())
	pool.Start(ctx)

	boom := strategy.Func(func(window []model.BarRecord, account *sim.Account) {
		panic("index out of range")
	})
	assert.True(t, pool.Submit(Job{
		Symbol:      "601012",
		Bars:        makeBars(3),
		WindowSize:  1,
		Strategy:    boom,
		InitialCash: decimal.NewFromInt(1000000),
	}))

	select {
	case result := <-pool.Results():
		assert.Error(t, result.Err)
		assert.Equal(t, "601012", result.Symbol)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the failed job result")
	}

	// The worker goroutine must still be alive for the next job.
	assert.True(t, pool.Submit(Job{
		Symbol:      "000958",
		Bars:        makeBars(3),
		WindowSize:  1,
		Strategy:    strategy.Func(func([]model.BarRecord, *sim.Account) {}),
		InitialCash: decimal.NewFromInt(1000000),
	}))
	select {
	case result := <-pool.Results():
		assert.NoError(t, result.Err)
		assert.Equal(t, "000958", result.Symbol)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not recover after the panicked job")
	}
}

func TestWorkerPool_DropsWhenQueueFull(t *testing.T) {
	// Never started: nothing drains the queue.
	pool := NewWorkerPool(1, 1, zap.NewNop())

	job := Job{Symbol: "601012", WindowSize: 5, Strategy: strategy.Func(func([]model.BarRecord, *sim.Account) {})}
	assert.True(t, pool.Submit(job))
	assert.False(t, pool.Submit(job))
}
