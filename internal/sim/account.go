// Package sim is a frictionless brokerage simulator: a ledger of buy/sell
// flows, the current position and a mark price. It enforces no margin, no
// fees and no cash-sufficiency checks; that is a deliberate simplification,
// not an oversight.
package sim

import (
	"github.com/shopspring/decimal"

	"github.com/SHMoney2021/myquote/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Account owns its state exclusively; mutate it only through Buy, Sell,
// SellAll and UpdatePrice. It lives for one backtest run.
type Account struct {
	initialCash decimal.Decimal
	buyAmount   decimal.Decimal
	sellAmount  decimal.Decimal
	position    int64
	markPrice   decimal.Decimal
	profit      decimal.Decimal
	orders      []model.Order
}

func NewAccount(initialCash decimal.Decimal) *Account {
	return &Account{initialCash: initialCash}
}

// Buy increases the position unconditionally; there is no cash check.
func (a *Account) Buy(date string, price decimal.Decimal, volume int64) {
	a.position += volume
	a.buyAmount = a.buyAmount.Add(price.Mul(decimal.NewFromInt(volume)))
	a.orders = append(a.orders, model.Order{Date: date, Side: model.OrderBuy, Price: price, Volume: volume})
}

// Sell is a silent no-op when volume exceeds the position. Callers rely on
// the graceful skip; it must not become an error.
func (a *Account) Sell(date string, price decimal.Decimal, volume int64) {
	if volume > a.position {
		return
	}
	a.position -= volume
	a.sellAmount = a.sellAmount.Add(price.Mul(decimal.NewFromInt(volume)))
	a.orders = append(a.orders, model.Order{Date: date, Side: model.OrderSell, Price: price, Volume: volume})
}

// SellAll liquidates the whole position at price with a single order; no-op
// on an empty position.
func (a *Account) SellAll(date string, price decimal.Decimal) {
	if a.position <= 0 {
		return
	}
	volume := a.position
	a.position = 0
	a.sellAmount = a.sellAmount.Add(price.Mul(decimal.NewFromInt(volume)))
	a.orders = append(a.orders, model.Order{Date: date, Side: model.OrderSell, Price: price, Volume: volume})
}

// UpdatePrice sets the mark price used for unrealized valuation. The order
// log is untouched.
func (a *Account) UpdatePrice(price decimal.Decimal) {
	a.markPrice = price
}

func (a *Account) Position() int64 {
	return a.position
}

// Orders returns a copy of the append-only order log.
func (a *Account) Orders() []model.Order {
	out := make([]model.Order, len(a.orders))
	copy(out, a.orders)
	return out
}

// Status recomputes profit = sellAmount + position*markPrice - buyAmount and
// the return on total buys. Aside from storing the recomputed profit it has
// no side effects.
func (a *Account) Status() model.AccountStatus {
	marketValue := a.markPrice.Mul(decimal.NewFromInt(a.position))
	a.profit = a.sellAmount.Add(marketValue).Sub(a.buyAmount)

	returnPct := decimal.Zero
	if a.buyAmount.IsPositive() {
		returnPct = a.profit.Div(a.buyAmount).Mul(hundred)
	}

	return model.AccountStatus{
		InitialCash: a.initialCash,
		BuyAmount:   a.buyAmount,
		SellAmount:  a.sellAmount,
		Position:    a.position,
		MarkPrice:   a.markPrice,
		MarketValue: marketValue,
		Profit:      a.profit,
		ReturnPct:   returnPct,
	}
}
