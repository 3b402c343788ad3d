package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/engine"
	"github.com/SHMoney2021/myquote/internal/history"
	"github.com/SHMoney2021/myquote/internal/model"
	"github.com/SHMoney2021/myquote/internal/quote"
	"github.com/SHMoney2021/myquote/internal/store"
	"github.com/SHMoney2021/myquote/internal/strategy"
)

type Handler struct {
	router   *quote.Router
	daily    *history.DailySource
	adjusted *history.AdjustedSource
	snapshot *history.SnapshotSource
	bars     *store.BarStore // optional, nil without a DB
	logger   *zap.Logger
}

func NewHandler(router *quote.Router, daily *history.DailySource, adjusted *history.AdjustedSource, snapshot *history.SnapshotSource, bars *store.BarStore, logger *zap.Logger) *Handler {
	return &Handler{
		router:   router,
		daily:    daily,
		adjusted: adjusted,
		snapshot: snapshot,
		bars:     bars,
		logger:   logger,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidCode), errors.Is(err, model.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		var parseErr *model.ParseError
		if errors.As(err, &parseErr) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}

// GetQuote 实时行情，支持 ?codes= 批量与 ?source=sina|tencent
func (h *Handler) GetQuote(c *gin.Context) {
	codes := []string{c.Param("code")}
	if extra := c.Query("codes"); extra != "" {
		codes = strings.Split(extra, ",")
	}
	source := c.DefaultQuery("source", "sina")

	table, err := h.router.StockNow(c.Request.Context(), codes, source)
	if err != nil {
		h.logger.Error("realtime quote failed", zap.Strings("codes", codes), zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	// A partial or empty table is a valid result; absent symbols are absent.
	c.JSON(http.StatusOK, table.Records())
}

// GetDaily 历史日线，?adjust=qfq 切换前复权
func (h *Handler) GetDaily(c *gin.Context) {
	code := c.Param("code")
	start := c.Query("start")
	end := c.Query("end")

	var (
		series *model.BarSeries
		err    error
	)
	if c.Query("adjust") == "qfq" {
		series, err = h.adjusted.Days(c.Request.Context(), code, start, end)
	} else {
		series, err = h.daily.Days(c.Request.Context(), code, start, end)
	}
	if err != nil {
		h.logger.Error("daily history failed", zap.String("code", code), zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, series.Bars())
}

// GetSnapshot 当前快照，?codes= 逗号分隔
func (h *Handler) GetSnapshot(c *gin.Context) {
	codes := strings.Split(c.Query("codes"), ",")
	table, err := h.snapshot.Current(c.Request.Context(), codes)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, table.Records())
}

type backtestRequest struct {
	Code         string                 `json:"code" binding:"required"`
	StartDate    string                 `json:"start_date" binding:"required"`
	EndDate      string                 `json:"end_date" binding:"required"`
	WindowSize   int                    `json:"window_size"`
	StrategyType string                 `json:"strategy_type" binding:"required"`
	Config       map[string]interface{} `json:"config"`
	InitialCash  decimal.Decimal        `json:"initial_cash"`
	Adjust       string                 `json:"adjust"`
}

func (h *Handler) loadBacktestBars(ctx context.Context, req backtestRequest) ([]model.BarRecord, error) {
	if h.bars != nil {
		cached, err := h.bars.LoadBars(ctx, req.Code, req.StartDate, req.EndDate)
		if err != nil {
			h.logger.Warn("bar cache read failed", zap.Error(err))
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	var (
		series *model.BarSeries
		err    error
	)
	if req.Adjust == "qfq" {
		series, err = h.adjusted.Days(ctx, req.Code, req.StartDate, req.EndDate)
	} else {
		series, err = h.daily.Days(ctx, req.Code, req.StartDate, req.EndDate)
	}
	if err != nil {
		return nil, err
	}
	bars := series.Bars()

	if h.bars != nil {
		if err := h.bars.SaveBars(ctx, req.Code, bars); err != nil {
			h.logger.Warn("bar cache write failed", zap.Error(err))
		}
	}
	return bars, nil
}

// RunBacktest 拉取（或读缓存）日线后按滑动窗口回测
func (h *Handler) RunBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WindowSize < 1 {
		req.WindowSize = 1
	}
	if req.InitialCash.LessThanOrEqual(decimal.Zero) {
		req.InitialCash = decimal.NewFromInt(1000000)
	}

	bars, err := h.loadBacktestBars(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("failed to load bars for backtest", zap.Error(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	strat, err := strategy.NewStrategy(req.StrategyType, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool := engine.NewWorkerPool(1, 1, h.logger)
	pool.Start(c.Request.Context())
	pool.Submit(engine.Job{
		Symbol:      req.Code,
		Bars:        bars,
		WindowSize:  req.WindowSize,
		Strategy:    strat,
		InitialCash: req.InitialCash,
	})
	result := <-pool.Results()
	if result.Err != nil {
		h.logger.Error("backtest failed", zap.String("code", req.Code), zap.Error(result.Err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Err.Error()})
		return
	}

	c.JSON(http.StatusOK, result.Report)
}

type batchBacktestRequest struct {
	Codes        []string               `json:"codes" binding:"required"`
	StartDate    string                 `json:"start_date" binding:"required"`
	EndDate      string                 `json:"end_date" binding:"required"`
	WindowSize   int                    `json:"window_size"`
	StrategyType string                 `json:"strategy_type" binding:"required"`
	Config       map[string]interface{} `json:"config"`
	InitialCash  decimal.Decimal        `json:"initial_cash"`
	Adjust       string                 `json:"adjust"`
	Workers      int                    `json:"workers"`
}

// RunBatchBacktest 多只股票同一策略并行回测
func (h *Handler) RunBatchBacktest(c *gin.Context) {
	var req batchBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WindowSize < 1 {
		req.WindowSize = 1
	}
	if req.InitialCash.LessThanOrEqual(decimal.Zero) {
		req.InitialCash = decimal.NewFromInt(1000000)
	}
	workers := req.Workers
	if workers < 1 {
		workers = 4
	}

	pool := engine.NewWorkerPool(workers, len(req.Codes), h.logger)
	pool.Start(c.Request.Context())

	submitted := 0
	for _, code := range req.Codes {
		bars, err := h.loadBacktestBars(c.Request.Context(), backtestRequest{
			Code: code, StartDate: req.StartDate, EndDate: req.EndDate, Adjust: req.Adjust,
		})
		if err != nil {
			h.logger.Error("failed to load bars", zap.String("code", code), zap.Error(err))
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		// one strategy instance per job: strategies may keep state
		strat, err := strategy.NewStrategy(req.StrategyType, req.Config)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if pool.Submit(engine.Job{
			Symbol:      code,
			Bars:        bars,
			WindowSize:  req.WindowSize,
			Strategy:    strat,
			InitialCash: req.InitialCash,
		}) {
			submitted++
		}
	}

	reports := make([]model.BacktestReport, 0, submitted)
	for i := 0; i < submitted; i++ {
		result := <-pool.Results()
		if result.Err != nil {
			h.logger.Error("backtest failed", zap.String("code", result.Symbol), zap.Error(result.Err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": result.Err.Error()})
			return
		}
		reports = append(reports, result.Report)
	}
	c.JSON(http.StatusOK, reports)
}
