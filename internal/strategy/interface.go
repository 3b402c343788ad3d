package strategy

import (
	"github.com/SHMoney2021/myquote/internal/model"
	"github.com/SHMoney2021/myquote/internal/sim"
)

// Strategy is invoked once per window position with a contiguous slice of
// bars in ascending date order and the shared account. The engine never marks
// the account; a strategy that wants Status() to reflect a current price is
// expected to call UpdatePrice itself.
type Strategy interface {
	Name() string
	OnWindow(window []model.BarRecord, account *sim.Account)
}

// Func adapts a plain callback to Strategy.
type Func func(window []model.BarRecord, account *sim.Account)

func (f Func) Name() string { return "func" }

func (f Func) OnWindow(window []model.BarRecord, account *sim.Account) {
	f(window, account)
}
