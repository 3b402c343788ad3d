package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteTable_PreservesInsertionOrder(t *testing.T) {
	table := NewQuoteTable()
	table.Add(QuoteRecord{Symbol: "601012", Name: "隆基股份"})
	table.Add(QuoteRecord{Symbol: "000958", Name: "电投产业"})

	assert.Equal(t, []string{"601012", "000958"}, table.Symbols())
	assert.Equal(t, 2, table.Len())

	rec, ok := table.Get("000958")
	assert.True(t, ok)
	assert.Equal(t, "电投产业", rec.Name)

	_, ok = table.Get("999999")
	assert.False(t, ok)
}

func TestQuoteTable_ReplaceKeepsOrder(t *testing.T) {
	table := NewQuoteTable()
	table.Add(QuoteRecord{Symbol: "601012", Last: decimal.NewFromInt(1)})
	table.Add(QuoteRecord{Symbol: "000958"})
	table.Add(QuoteRecord{Symbol: "601012", Last: decimal.NewFromInt(2)})

	assert.Equal(t, []string{"601012", "000958"}, table.Symbols())
	rec, _ := table.Get("601012")
	assert.True(t, rec.Last.Equal(decimal.NewFromInt(2)))
}

func TestBarSeries_SortsAscending(t *testing.T) {
	series := NewBarSeries([]BarRecord{
		{TradeDate: "20210312"},
		{TradeDate: "20210310"},
		{TradeDate: "20210311"},
	})

	assert.Equal(t, []string{"20210310", "20210311", "20210312"}, series.Dates())
	assert.Equal(t, 3, series.Len())

	bars := series.Bars()
	assert.Equal(t, "20210310", bars[0].TradeDate)
	assert.Equal(t, "20210312", bars[2].TradeDate)
}

func TestBarSeries_DuplicateDateReplaces(t *testing.T) {
	series := NewBarSeries([]BarRecord{
		{TradeDate: "20210310", Close: decimal.NewFromInt(1)},
		{TradeDate: "20210310", Close: decimal.NewFromInt(2)},
	})

	assert.Equal(t, 1, series.Len())
	bar, ok := series.Get("20210310")
	assert.True(t, ok)
	assert.True(t, bar.Close.Equal(decimal.NewFromInt(2)))
}
