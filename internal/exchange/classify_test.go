package exchange

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SHMoney2021/myquote/internal/model"
)

func TestQuoteSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"601012", "sh601012"},
		{"600000", "sh600000"},
		{"510300", "sh510300"},
		{"113009", "sh113009"},
		{"204001", "sh204001"},
		{"900901", "sh900901"},
		{"000958", "sz000958"},
		{"300750", "sz300750"},
		{"002230", "sz002230"},
		{"sh601012", "sh601012"},
		{"sz000958", "sz000958"},
		{"zz000300", "zz000300"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := QuoteSymbol(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuoteSymbol_Idempotent(t *testing.T) {
	first, err := QuoteSymbol("601012")
	assert.NoError(t, err)
	second, err := QuoteSymbol(first)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQuoteSymbol_TooShort(t *testing.T) {
	_, err := QuoteSymbol("958")
	assert.True(t, errors.Is(err, model.ErrInvalidCode))

	_, err = QuoteSymbol("")
	assert.True(t, errors.Is(err, model.ErrInvalidCode))
}

func TestHistorySymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"601012", "601012.SH"},
		{"000958", "000958.SZ"},
		{"300750", "300750.SZ"},
		{"510300", "510300.SH"},
		{"sh601012", "601012.SH"}, // only the last six digits matter
	}
	for _, tt := range tests {
		got, err := HistorySymbol(tt.input)
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}

func TestSnapshotSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"601012", "601012.SH"},
		{"688111", "688111.SH"},
		{"000958", "000958.SZ"},
		{"300750", "300750.SZ"},
	}
	for _, tt := range tests {
		got, err := SnapshotSymbol(tt.input)
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}

func TestSnapshotSymbol_TooShort(t *testing.T) {
	_, err := SnapshotSymbol("68")
	assert.True(t, errors.Is(err, model.ErrInvalidCode))
}
