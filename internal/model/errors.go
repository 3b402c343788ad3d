package model

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the quote and history packages. All four surface to
// the immediate caller unmodified; the core never retries.
var (
	// ErrInvalidCode 股票代码非法
	ErrInvalidCode = errors.New("invalid stock code")
	// ErrInvalidDate 日期必须是 8 位数字串 YYYYMMDD
	ErrInvalidDate = errors.New("invalid trade date")
	// ErrUpstreamUnavailable 上游数据源异常或返回空结果
	ErrUpstreamUnavailable = errors.New("upstream data source unavailable")
)

// ParseError reports a provider payload that does not match its declared
// grammar: a field-count mismatch, or a text field that cannot be converted to
// a number. A record that fails either way is a parse failure, never a partial
// record.
type ParseError struct {
	Provider string
	Field    string // set for a numeric conversion failure
	Want     int    // declared field count, for arity mismatches
	Got      int
	Err      error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: field %q: %v", e.Provider, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: record has %d fields, schema declares %d", e.Provider, e.Got, e.Want)
}

func (e *ParseError) Unwrap() error { return e.Err }
