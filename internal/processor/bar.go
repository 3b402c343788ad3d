package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/model"
)

// BarMessage is a daily bar tagged with its symbol for the wire.
type BarMessage struct {
	Symbol string `json:"symbol"`
	model.BarRecord
}

// BarProcessor folds the realtime quote stream into per-day bars and
// publishes each day once it has rolled over.
type BarProcessor struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	bars   map[string]*BarMessage
	mu     sync.Mutex
}

func NewBarProcessor(js nats.JetStreamContext, logger *zap.Logger) *BarProcessor {
	return &BarProcessor{
		js:     js,
		logger: logger,
		bars:   make(map[string]*BarMessage),
	}
}

func (p *BarProcessor) Run(ctx context.Context) error {
	_, err := p.js.Subscribe("quotes.raw.*.*", func(msg *nats.Msg) {
		var quote model.QuoteRecord
		if err := json.Unmarshal(msg.Data, &quote); err != nil {
			p.logger.Error("failed to unmarshal quote in processor", zap.Error(err))
			return
		}
		p.processQuote(quote)
		msg.Ack()
	}, nats.Durable("bar-processor"), nats.ManualAck())

	if err != nil {
		return err
	}

	go p.flushLoop(ctx)
	p.logger.Info("bar processor started")
	return nil
}

func (p *BarProcessor) processQuote(quote model.QuoteRecord) {
	if len(quote.Timestamp) < 8 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	day := quote.Timestamp[:8]
	key := fmt.Sprintf("%s:%s", quote.Symbol, day)

	bar, ok := p.bars[key]
	if !ok {
		p.bars[key] = &BarMessage{
			Symbol: quote.Symbol,
			BarRecord: model.BarRecord{
				TradeDate: day,
				Open:      quote.Last,
				High:      quote.Last,
				Low:       quote.Last,
				Close:     quote.Last,
				PrevClose: quote.PrevClose,
				Volume:    quote.Volume,
				Amount:    quote.Turnover,
			},
		}
		return
	}

	if quote.Last.GreaterThan(bar.High) {
		bar.High = quote.Last
	}
	if quote.Last.LessThan(bar.Low) {
		bar.Low = quote.Last
	}
	bar.Close = quote.Last
	// provider volume/turnover are cumulative for the day: keep the latest
	bar.Volume = quote.Volume
	bar.Amount = quote.Turnover
}

func (p *BarProcessor) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.flush()
		}
	}
}

func (p *BarProcessor) flush() {
	today := time.Now().Format("20060102")

	p.mu.Lock()
	toFlush := make([]*BarMessage, 0)
	for key, bar := range p.bars {
		// A bar dated before today saw its session end; it is complete.
		if bar.TradeDate < today {
			toFlush = append(toFlush, bar)
			delete(p.bars, key)
		}
	}
	p.mu.Unlock()

	for _, bar := range toFlush {
		subject := fmt.Sprintf("quotes.bar.1d.%s", bar.Symbol)
		data, _ := json.Marshal(bar)
		if _, err := p.js.Publish(subject, data); err != nil {
			p.logger.Error("failed to publish bar", zap.Error(err))
		}
	}
}
