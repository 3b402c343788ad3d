package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Symbols(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"601012,000958", []string{"601012", "000958"}},
		{"601012, 000958 ", []string{"601012", "000958"}},
		{"601012", []string{"601012"}},
		{"", nil},
		{",,", nil},
	}

	for _, tt := range tests {
		c := Config{WatchSymbols: tt.input}
		assert.Equal(t, tt.expected, c.Symbols())
	}
}
