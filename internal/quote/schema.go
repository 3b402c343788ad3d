package quote

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/SHMoney2021/myquote/internal/model"
)

// Schema declares a provider's fixed positional grammar: an ordered field-name
// list and a regexp whose capture groups line up with it one-to-one. Each
// provider contributes only its descriptor and projection; extraction itself
// is shared.
type Schema struct {
	Provider string
	Fields   []string
	Pattern  *regexp.Regexp
}

// Extract finds every non-overlapping match in the payload and zips the
// captured groups with the declared field names. A group count that does not
// match the declared arity is a parse failure, never a partial record. Zero
// matches yields an empty result: symbols the payload does not carry are
// simply absent.
func (s *Schema) Extract(payload string) ([]map[string]string, error) {
	matches := s.Pattern.FindAllStringSubmatch(payload, -1)
	records := make([]map[string]string, 0, len(matches))
	for _, m := range matches {
		groups := m[1:]
		if len(groups) != len(s.Fields) {
			return nil, &model.ParseError{Provider: s.Provider, Want: len(s.Fields), Got: len(groups)}
		}
		rec := make(map[string]string, len(groups))
		for i, name := range s.Fields {
			rec[name] = groups[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

// Number converts one extracted field to a decimal. An absent or empty value
// fails loudly instead of coercing to zero.
func (s *Schema) Number(rec map[string]string, field string) (decimal.Decimal, error) {
	raw, ok := rec[field]
	if !ok || raw == "" {
		return decimal.Decimal{}, &model.ParseError{Provider: s.Provider, Field: field, Err: fmt.Errorf("value missing")}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, &model.ParseError{Provider: s.Provider, Field: field, Err: err}
	}
	return d, nil
}
