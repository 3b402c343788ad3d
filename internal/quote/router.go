package quote

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/exchange"
	"github.com/SHMoney2021/myquote/internal/infrastructure"
	"github.com/SHMoney2021/myquote/internal/model"
)

// Source is one realtime quote provider: it knows its endpoint shape and its
// payload grammar, nothing else.
type Source interface {
	Name() string
	BuildRequest(symbols []string) string
	ParseResponse(payload string) (*model.QuoteTable, error)
}

// Router selects a realtime source by identifier and drives one batched
// fetch-parse cycle through it. Sources are constructed once and injected;
// there is no process-wide shared session.
type Router struct {
	fetcher Fetcher
	sources map[string]Source
	logger  *zap.Logger
}

func NewRouter(fetcher Fetcher, logger *zap.Logger) *Router {
	sina := NewSinaSource(logger)
	tencent := NewTencentSource(logger)
	return &Router{
		fetcher: fetcher,
		logger:  logger,
		sources: map[string]Source{
			"sina":    sina,
			"tencent": tencent,
			"qq":      tencent,
		},
	}
}

// StockNow fetches realtime quotes for one or more bare or tagged codes.
// Unknown source identifiers fall back to sina. Symbols the provider did not
// answer for are absent from the table; an empty table is a valid result.
func (r *Router) StockNow(ctx context.Context, codes []string, source string) (*model.QuoteTable, error) {
	src, ok := r.sources[strings.ToLower(source)]
	if !ok {
		src = r.sources["sina"]
	}

	symbols := make([]string, 0, len(codes))
	for _, code := range codes {
		symbol, err := exchange.QuoteSymbol(code)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}

	start := time.Now()
	payload, err := r.fetcher.FetchText(ctx, src.BuildRequest(symbols), Headers("", ""))
	infrastructure.FetchLatency.WithLabelValues(src.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	table, err := src.ParseResponse(payload)
	if err != nil {
		infrastructure.ParseFailures.WithLabelValues(src.Name()).Inc()
		return nil, err
	}
	if table.Len() < len(codes) {
		r.logger.Debug("partial quote batch",
			zap.String("source", src.Name()),
			zap.Int("requested", len(codes)),
			zap.Int("returned", table.Len()),
		)
	}
	infrastructure.QuotesFetched.WithLabelValues(src.Name()).Add(float64(table.Len()))
	return table, nil
}
