package quote

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/model"
)

// sinaFields 新浪行情 32 字段声明顺序
var sinaFields = []string{
	"code", "name", "open", "pre_close", "now", "high", "low", "buy", "sell", "vol", "amount",
	"bid1_volume", "bid1", "bid2_volume", "bid2", "bid3_volume", "bid3", "bid4_volume", "bid4",
	"bid5_volume", "bid5", "ask1_volume", "ask1", "ask2_volume", "ask2", "ask3_volume", "ask3",
	"ask4_volume", "ask4", "ask5_volume", "ask5", "date", "time",
}

// 股票代码(\d)、股票名、数字、小数(.)、日期(-)、时间(:)
var sinaPattern = regexp.MustCompile(`(\d+)="([^,]+),` + strings.Repeat(`([-:.\d]+),`, len(sinaFields)-2))

type SinaSource struct {
	logger *zap.Logger
	schema *Schema
}

func NewSinaSource(logger *zap.Logger) *SinaSource {
	return &SinaSource{
		logger: logger,
		schema: &Schema{Provider: "sina", Fields: sinaFields, Pattern: sinaPattern},
	}
}

func (s *SinaSource) Name() string {
	return "sina"
}

func (s *SinaSource) BuildRequest(symbols []string) string {
	return "http://hq.sinajs.cn/list=" + strings.Join(symbols, ",")
}

// ParseResponse projects the 32-field records down to the canonical columns.
// The trailing date and time fields are concatenated into one timestamp
// (punctuation stripped) and dropped as separate columns.
func (s *SinaSource) ParseResponse(payload string) (*model.QuoteTable, error) {
	records, err := s.schema.Extract(payload)
	if err != nil {
		return nil, err
	}

	table := model.NewQuoteTable()
	for _, rec := range records {
		r := model.QuoteRecord{
			Symbol:    rec["code"],
			Name:      rec["name"],
			Timestamp: combineTimestamp(rec["date"], rec["time"]),
		}
		if r.Last, err = s.schema.Number(rec, "now"); err != nil {
			return nil, err
		}
		if r.PrevClose, err = s.schema.Number(rec, "pre_close"); err != nil {
			return nil, err
		}
		if r.Open, err = s.schema.Number(rec, "open"); err != nil {
			return nil, err
		}
		if r.High, err = s.schema.Number(rec, "high"); err != nil {
			return nil, err
		}
		if r.Low, err = s.schema.Number(rec, "low"); err != nil {
			return nil, err
		}
		if r.Volume, err = s.schema.Number(rec, "vol"); err != nil {
			return nil, err
		}
		if r.Turnover, err = s.schema.Number(rec, "amount"); err != nil {
			return nil, err
		}
		table.Add(r)
	}
	return table, nil
}

// combineTimestamp turns "2021-03-12" + "15:00:00" into "20210312150000".
func combineTimestamp(date, clock string) string {
	date = strings.ReplaceAll(date, "-", "")
	clock = strings.ReplaceAll(clock, ":", "")
	return date + clock
}
