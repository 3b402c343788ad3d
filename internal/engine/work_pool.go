package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/infrastructure"
	"github.com/SHMoney2021/myquote/internal/model"
	"github.com/SHMoney2021/myquote/internal/sim"
	"github.com/SHMoney2021/myquote/internal/strategy"
)

// Job is one independent backtest: its own bars, strategy and fresh account.
type Job struct {
	Symbol      string
	Bars        []model.BarRecord
	WindowSize  int
	Strategy    strategy.Strategy
	InitialCash decimal.Decimal
}

type Result struct {
	Symbol string
	Report model.BacktestReport
	Err    error
}

// WorkerPool runs queued backtest jobs concurrently. Jobs share nothing, so
// the only coordination is the two channels.
type WorkerPool struct {
	jobQueue    chan Job
	results     chan Result
	workerCount int
	logger      *zap.Logger
}

func NewWorkerPool(workerCount int, bufferSize int, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		jobQueue:    make(chan Job, bufferSize),
		results:     make(chan Result, bufferSize),
		workerCount: workerCount,
		logger:      logger,
	}
}

func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(ctx, i)
	}
	p.logger.Info("started backtest worker pool", zap.Int("workers", p.workerCount))
}

// Submit queues a job, dropping it with a warning when the queue is full.
func (p *WorkerPool) Submit(job Job) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		p.logger.Warn("backtest job queue full, dropping job", zap.String("symbol", job.Symbol))
		return false
	}
}

func (p *WorkerPool) Results() <-chan Result {
	return p.results
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.process(id, job)
		}
	}
}

func (p *WorkerPool) process(workerID int, job Job) {
	// A strategy bug must fail its own job, not take the process down.
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("backtest job panicked",
				zap.Int("worker_id", workerID),
				zap.String("symbol", job.Symbol),
				zap.Any("panic", r),
			)
			p.results <- Result{Symbol: job.Symbol, Err: fmt.Errorf("backtest %s panicked: %v", job.Symbol, r)}
		}
	}()

	account := sim.NewAccount(job.InitialCash)
	tester := NewBacktester(job.Strategy, job.WindowSize, account)
	report := tester.Run(job.Bars)
	report.Symbol = job.Symbol
	infrastructure.BacktestRuns.Inc()

	p.logger.Debug("worker finished backtest",
		zap.Int("worker_id", workerID),
		zap.String("symbol", job.Symbol),
		zap.Int("windows", report.Windows),
	)
	p.results <- Result{Symbol: job.Symbol, Report: report}
}
