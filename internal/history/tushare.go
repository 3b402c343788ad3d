package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/model"
)

// TushareClient talks to a tushare-pro style JSON endpoint. Every call is a
// POST with {api_name, token, params, fields} and the response carries a
// column list plus row tuples.
type TushareClient struct {
	url    string
	token  string
	client *http.Client
	logger *zap.Logger
}

func NewTushareClient(url, token string, logger *zap.Logger) *TushareClient {
	if url == "" {
		url = "http://api.tushare.pro"
	}
	return &TushareClient{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

type tushareRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

type tushareResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Fields []string        `json:"fields"`
		Items  [][]interface{} `json:"items"`
	} `json:"data"`
}

// call posts one API request and returns rows as field-name keyed maps.
// Cells are strings or json.Number depending on the column.
func (c *TushareClient) call(ctx context.Context, apiName string, params map[string]string, fields string) ([]map[string]interface{}, error) {
	body, err := json.Marshal(tushareRequest{
		APIName: apiName,
		Token:   c.token,
		Params:  params,
		Fields:  fields,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrUpstreamUnavailable, apiName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: http %d", model.ErrUpstreamUnavailable, apiName, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var out tushareResponse
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrUpstreamUnavailable, apiName, err)
	}
	if out.Code != 0 {
		return nil, fmt.Errorf("%w: %s: %s", model.ErrUpstreamUnavailable, apiName, out.Msg)
	}

	rows := make([]map[string]interface{}, 0, len(out.Data.Items))
	for _, item := range out.Data.Items {
		// A row that disagrees with the declared field list poisons the
		// whole response; history is all-or-nothing.
		if len(item) != len(out.Data.Fields) {
			return nil, &model.ParseError{Provider: "tushare", Want: len(out.Data.Fields), Got: len(item)}
		}
		row := make(map[string]interface{}, len(item))
		for i, f := range out.Data.Fields {
			row[f] = item[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellDecimal converts one cell to a decimal. A null or empty cell is an
// absent optional value; anything else that fails to parse fails the call.
func cellDecimal(row map[string]interface{}, field string) (decimal.Decimal, error) {
	switch v := row[field].(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Decimal{}, &model.ParseError{Provider: "tushare", Field: field, Err: err}
		}
		return d, nil
	case string:
		if v == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, &model.ParseError{Provider: "tushare", Field: field, Err: err}
		}
		return d, nil
	default:
		return decimal.Decimal{}, &model.ParseError{Provider: "tushare", Field: field, Err: fmt.Errorf("unsupported cell type %T", v)}
	}
}

func cellString(row map[string]interface{}, field string) string {
	switch v := row[field].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// rowReader collects decimal conversions over one row, keeping the first
// failure so callers can check once per row.
type rowReader struct {
	row map[string]interface{}
	err error
}

func (r *rowReader) dec(field string) decimal.Decimal {
	if r.err != nil {
		return decimal.Decimal{}
	}
	d, err := cellDecimal(r.row, field)
	if err != nil {
		r.err = err
	}
	return d
}

func (c *TushareClient) Daily(ctx context.Context, tsCode, startDate, endDate string) ([]DailyRow, error) {
	rows, err := c.call(ctx, "daily", map[string]string{
		"ts_code":    tsCode,
		"start_date": startDate,
		"end_date":   endDate,
	}, "ts_code,trade_date,open,high,low,close,pre_close,vol,amount")
	if err != nil {
		return nil, err
	}

	out := make([]DailyRow, 0, len(rows))
	for _, row := range rows {
		r := &rowReader{row: row}
		out = append(out, DailyRow{
			TSCode:    cellString(row, "ts_code"),
			TradeDate: cellString(row, "trade_date"),
			Open:      r.dec("open"),
			High:      r.dec("high"),
			Low:       r.dec("low"),
			Close:     r.dec("close"),
			PreClose:  r.dec("pre_close"),
			Vol:       r.dec("vol"),
			Amount:    r.dec("amount"),
		})
		if r.err != nil {
			return nil, r.err
		}
	}
	return out, nil
}

func (c *TushareClient) AdjustedHistory(ctx context.Context, tsCode, freq, startTime, endTime, adjust, adjustRefTime string) ([]AdjustedRow, error) {
	rows, err := c.call(ctx, "pro_bar", map[string]string{
		"ts_code":    tsCode,
		"freq":       freq,
		"start_date": startTime,
		"end_date":   endTime,
		"adj":        adjust,
		"adj_ref":    adjustRefTime,
	}, "ts_code,trade_time,open,high,low,close,vol,amount")
	if err != nil {
		return nil, err
	}

	out := make([]AdjustedRow, 0, len(rows))
	for _, row := range rows {
		r := &rowReader{row: row}
		out = append(out, AdjustedRow{
			TSCode:    cellString(row, "ts_code"),
			TradeTime: cellString(row, "trade_time"),
			Open:      r.dec("open"),
			High:      r.dec("high"),
			Low:       r.dec("low"),
			Close:     r.dec("close"),
			Vol:       r.dec("vol"),
			Amount:    r.dec("amount"),
		})
		if r.err != nil {
			return nil, r.err
		}
	}
	return out, nil
}

func (c *TushareClient) Snapshot(ctx context.Context, tsCodes []string) ([]SnapshotRow, error) {
	rows, err := c.call(ctx, "realtime_quote", map[string]string{
		"ts_code": strings.Join(tsCodes, ","),
	}, "ts_code,name,open,high,low,price,pre_close,vol,amount,time")
	if err != nil {
		return nil, err
	}

	out := make([]SnapshotRow, 0, len(rows))
	for _, row := range rows {
		r := &rowReader{row: row}
		out = append(out, SnapshotRow{
			TSCode:   cellString(row, "ts_code"),
			Name:     cellString(row, "name"),
			Open:     r.dec("open"),
			High:     r.dec("high"),
			Low:      r.dec("low"),
			Price:    r.dec("price"),
			PreClose: r.dec("pre_close"),
			Vol:      r.dec("vol"),
			Amount:   r.dec("amount"),
			Time:     cellString(row, "time"),
		})
		if r.err != nil {
			return nil, r.err
		}
	}
	return out, nil
}
