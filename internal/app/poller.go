package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/model"
)

// quoteFetcher is the slice of Router the poller needs.
type quoteFetcher interface {
	StockNow(ctx context.Context, codes []string, source string) (*model.QuoteTable, error)
}

// Poller periodically pulls realtime quotes for the watch list and publishes
// each record to NATS as quotes.raw.<source>.<symbol>.
type Poller struct {
	quotes   quoteFetcher
	js       nats.JetStreamContext
	symbols  []string
	source   string
	interval time.Duration
	logger   *zap.Logger
}

func NewPoller(quotes quoteFetcher, js nats.JetStreamContext, symbols []string, source string, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		quotes:   quotes,
		js:       js,
		symbols:  symbols,
		source:   source,
		interval: interval,
		logger:   logger,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	table, err := p.quotes.StockNow(ctx, p.symbols, p.source)
	if err != nil {
		p.logger.Error("quote poll failed", zap.Error(err))
		return
	}

	for _, symbol := range table.Symbols() {
		record, _ := table.Get(symbol)
		data, err := json.Marshal(record)
		if err != nil {
			p.logger.Error("failed to marshal quote", zap.Error(err))
			continue
		}
		subject := fmt.Sprintf("quotes.raw.%s.%s", p.source, symbol)
		if _, err := p.js.Publish(subject, data); err != nil {
			p.logger.Error("failed to publish to NATS", zap.String("subject", subject), zap.Error(err))
		}
	}
}
