package strategy

import (
	"fmt"
)

func NewStrategy(strategyType string, config map[string]interface{}) (Strategy, error) {
	switch strategyType {
	case "ma_cross":
		short, ok1 := config["short_period"].(float64)
		long, ok2 := config["long_period"].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid config for ma_cross: need short_period and long_period")
		}
		lot, _ := config["lot"].(float64)
		strat, err := NewMACrossStrategy(int(short), int(long), int64(lot))
		if err != nil {
			return nil, err
		}
		return strat, nil
	default:
		return nil, fmt.Errorf("unknown strategy type: %s", strategyType)
	}
}
