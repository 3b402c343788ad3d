package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/model"
)

func TestTushareClient_Daily(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tushareRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "daily", req.APIName)
		assert.Equal(t, "601012.SH", req.Params["ts_code"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": map[string]interface{}{
				"fields": []string{"ts_code", "trade_date", "open", "high", "low", "close", "pre_close", "vol", "amount"},
				"items": [][]interface{}{
					{"601012.SH", "20210312", 85.76, 86.33, 82.32, 82.84, 85.9, 43048133, 3576450.923},
				},
			},
		})
	}))
	defer server.Close()

	client := NewTushareClient(server.URL, "test-token", zap.NewNop())
	rows, err := client.Daily(context.Background(), "601012.SH", "20210310", "20210312")
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "601012.SH", rows[0].TSCode)
	assert.Equal(t, "20210312", rows[0].TradeDate)
	assert.True(t, rows[0].Close.Equal(decimal.NewFromFloat(82.84)))
	assert.True(t, rows[0].Vol.Equal(decimal.NewFromInt(43048133)))
}

func TestTushareClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 40001, "msg": "token invalid"})
	}))
	defer server.Close()

	client := NewTushareClient(server.URL, "bad-token", zap.NewNop())
	_, err := client.Daily(context.Background(), "601012.SH", "20210310", "20210312")
	assert.True(t, errors.Is(err, model.ErrUpstreamUnavailable))
}

func TestTushareClient_RaggedRowFailsWhole(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": map[string]interface{}{
				"fields": []string{"ts_code", "trade_date", "open", "high", "low", "close", "pre_close", "vol", "amount"},
				"items": [][]interface{}{
					{"601012.SH", "20210312"},
					{"601012.SH", "20210311", 83.0, 86.0, 82.5, 85.9, 84.0, 40000000, 3400000.0},
				},
			},
		})
	}))
	defer server.Close()

	// One row disagreeing with the declared field list fails the whole call;
	// a partial history is worse than no history.
	client := NewTushareClient(server.URL, "test-token", zap.NewNop())
	_, err := client.Daily(context.Background(), "601012.SH", "20210310", "20210312")
	var parseErr *model.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 9, parseErr.Want)
	assert.Equal(t, 2, parseErr.Got)
}

func TestTushareClient_MalformedCellFailsWhole(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": map[string]interface{}{
				"fields": []string{"ts_code", "trade_date", "open", "high", "low", "close", "pre_close", "vol", "amount"},
				"items": [][]interface{}{
					{"601012.SH", "20210312", 85.76, 86.33, 82.32, "not-a-number", 85.9, 43048133, 3576450.923},
				},
			},
		})
	}))
	defer server.Close()

	client := NewTushareClient(server.URL, "test-token", zap.NewNop())
	_, err := client.Daily(context.Background(), "601012.SH", "20210310", "20210312")
	var parseErr *model.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "close", parseErr.Field)
}

func TestTushareClient_NullCellIsZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0,
			"data": map[string]interface{}{
				"fields": []string{"ts_code", "trade_date", "open", "high", "low", "close", "pre_close", "vol", "amount"},
				"items": [][]interface{}{
					{"601012.SH", "20210312", 85.76, 86.33, 82.32, 82.84, nil, 43048133, 3576450.923},
				},
			},
		})
	}))
	defer server.Close()

	client := NewTushareClient(server.URL, "test-token", zap.NewNop())
	rows, err := client.Daily(context.Background(), "601012.SH", "20210310", "20210312")
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.True(t, rows[0].PreClose.IsZero())
}
