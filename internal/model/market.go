package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// QuoteRecord 代表一只股票某一时刻的实时快照（规范列集）
type QuoteRecord struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Last      decimal.Decimal `json:"last"`
	PrevClose decimal.Decimal `json:"prev_close"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Volume    decimal.Decimal `json:"volume"`
	Turnover  decimal.Decimal `json:"turnover"`
	Timestamp string          `json:"timestamp"`
}

// BarRecord 代表一只股票一个交易日的行情
type BarRecord struct {
	TradeDate string          `json:"trade_date" db:"trade_date"`
	Open      decimal.Decimal `json:"open" db:"open"`
	High      decimal.Decimal `json:"high" db:"high"`
	Low       decimal.Decimal `json:"low" db:"low"`
	Close     decimal.Decimal `json:"close" db:"close"`
	PrevClose decimal.Decimal `json:"prev_close,omitempty" db:"prev_close"` // zero when the provider omits it
	Volume    decimal.Decimal `json:"volume" db:"volume"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
}

// QuoteTable is an ordered collection of QuoteRecord indexed by symbol.
// Providers rebuild a fresh table per response; records are never mutated
// after insertion.
type QuoteTable struct {
	symbols []string
	records map[string]QuoteRecord
}

func NewQuoteTable() *QuoteTable {
	return &QuoteTable{records: make(map[string]QuoteRecord)}
}

// Add inserts a record keyed by its symbol. Re-adding a symbol replaces the
// record without duplicating its position.
func (t *QuoteTable) Add(r QuoteRecord) {
	if _, ok := t.records[r.Symbol]; !ok {
		t.symbols = append(t.symbols, r.Symbol)
	}
	t.records[r.Symbol] = r
}

func (t *QuoteTable) Get(symbol string) (QuoteRecord, bool) {
	r, ok := t.records[symbol]
	return r, ok
}

func (t *QuoteTable) Len() int {
	return len(t.symbols)
}

func (t *QuoteTable) Symbols() []string {
	out := make([]string, len(t.symbols))
	copy(out, t.symbols)
	return out
}

// Records returns the rows in insertion order.
func (t *QuoteTable) Records() []QuoteRecord {
	out := make([]QuoteRecord, 0, len(t.symbols))
	for _, s := range t.symbols {
		out = append(out, t.records[s])
	}
	return out
}

// BarSeries is an ordered collection of BarRecord indexed by trade date,
// ascending. The trade date is the natural key: a duplicate date replaces the
// earlier row.
type BarSeries struct {
	dates []string
	bars  map[string]BarRecord
}

func NewBarSeries(bars []BarRecord) *BarSeries {
	s := &BarSeries{bars: make(map[string]BarRecord, len(bars))}
	for _, b := range bars {
		if _, ok := s.bars[b.TradeDate]; !ok {
			s.dates = append(s.dates, b.TradeDate)
		}
		s.bars[b.TradeDate] = b
	}
	sort.Strings(s.dates)
	return s
}

func (s *BarSeries) Get(date string) (BarRecord, bool) {
	b, ok := s.bars[date]
	return b, ok
}

func (s *BarSeries) Len() int {
	return len(s.dates)
}

func (s *BarSeries) Dates() []string {
	out := make([]string, len(s.dates))
	copy(out, s.dates)
	return out
}

// Bars returns the rows in ascending trade-date order.
func (s *BarSeries) Bars() []BarRecord {
	out := make([]BarRecord, 0, len(s.dates))
	for _, d := range s.dates {
		out = append(out, s.bars[d])
	}
	return out
}
