package quote

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/model"
)

// tencentFields 腾讯行情 51 字段声明顺序，unknown1/unknown2 是协议里的空位
var tencentFields = []string{
	"name", "code", "now", "pre_close", "open", "volume", "bid_volume", "ask_volume", "bid1",
	"bid1_volume", "bid2", "bid2_volume", "bid3", "bid3_volume", "bid4", "bid4_volume", "bid5",
	"bid5_volume", "ask1", "ask1_volume", "ask2", "ask2_volume", "ask3", "ask3_volume", "ask4",
	"ask4_volume", "ask5", "ask5_volume", "unknown1", "datetime", "change", "change_pct",
	"high", "low", "price_volume_amount", "vol", "amount", "turnover_rate", "pe", "unknown2",
	"high_2", "low_2", "amplitude", "float_market_cap", "total_market_cap", "pb",
	"limit_up", "limit_down", "volume_ratio", "order_diff", "avg_price",
}

// ~ 开头的字段：股票名、数字、小数(.)、负数(-)、日期时间、及两个空位
var tencentPattern = regexp.MustCompile(strings.Repeat(`~([^~;"]*)`, len(tencentFields)))

type TencentSource struct {
	logger *zap.Logger
	schema *Schema
}

func NewTencentSource(logger *zap.Logger) *TencentSource {
	return &TencentSource{
		logger: logger,
		schema: &Schema{Provider: "tencent", Fields: tencentFields, Pattern: tencentPattern},
	}
}

func (t *TencentSource) Name() string {
	return "tencent"
}

func (t *TencentSource) BuildRequest(symbols []string) string {
	return "http://qt.gtimg.cn/q=" + strings.Join(symbols, ",")
}

// ParseResponse selects 10 of the 51 declared fields for the canonical
// columns. The datetime field already arrives as one combined value.
func (t *TencentSource) ParseResponse(payload string) (*model.QuoteTable, error) {
	records, err := t.schema.Extract(payload)
	if err != nil {
		return nil, err
	}

	table := model.NewQuoteTable()
	for _, rec := range records {
		r := model.QuoteRecord{
			Symbol:    rec["code"],
			Name:      rec["name"],
			Timestamp: rec["datetime"],
		}
		if r.Last, err = t.schema.Number(rec, "now"); err != nil {
			return nil, err
		}
		if r.PrevClose, err = t.schema.Number(rec, "pre_close"); err != nil {
			return nil, err
		}
		if r.Open, err = t.schema.Number(rec, "open"); err != nil {
			return nil, err
		}
		if r.High, err = t.schema.Number(rec, "high"); err != nil {
			return nil, err
		}
		if r.Low, err = t.schema.Number(rec, "low"); err != nil {
			return nil, err
		}
		if r.Volume, err = t.schema.Number(rec, "vol"); err != nil {
			return nil, err
		}
		if r.Turnover, err = t.schema.Number(rec, "amount"); err != nil {
			return nil, err
		}
		table.Add(r)
	}
	return table, nil
}
