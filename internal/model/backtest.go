package model

import (
	"github.com/shopspring/decimal"
)

const (
	OrderBuy  = "buy"
	OrderSell = "sell"
)

// Order 成交流水中的一条记录，只追加，从不修改
type Order struct {
	Date   string          `json:"date"`
	Side   string          `json:"side"` // "buy" or "sell"
	Price  decimal.Decimal `json:"price"`
	Volume int64           `json:"volume"`
}

// AccountStatus 模拟账户的即时快照；Profit 是派生值，读取时重算
type AccountStatus struct {
	InitialCash decimal.Decimal `json:"initial_cash"`
	BuyAmount   decimal.Decimal `json:"buy_amount"`
	SellAmount  decimal.Decimal `json:"sell_amount"`
	Position    int64           `json:"position"`
	MarkPrice   decimal.Decimal `json:"mark_price"`
	MarketValue decimal.Decimal `json:"market_value"`
	Profit      decimal.Decimal `json:"profit"`
	ReturnPct   decimal.Decimal `json:"return_pct"`
}

// BacktestReport 一次回测的结果报告
type BacktestReport struct {
	StrategyName string        `json:"strategy_name"`
	Symbol       string        `json:"symbol,omitempty"`
	WindowSize   int           `json:"window_size"`
	Windows      int           `json:"windows"` // strategy invocation count
	TotalOrders  int           `json:"total_orders"`
	Status       AccountStatus `json:"status"`
	OrderLog     []Order       `json:"order_log"`
}
