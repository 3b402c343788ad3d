package push

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/internal/infrastructure"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Gateway fans the NATS quote stream out to websocket clients. One NATS
// subscription per topic is shared across clients and dropped when the last
// subscriber leaves.
type Gateway struct {
	logger        *zap.Logger
	js            nats.JetStreamContext
	clients       map[*Client]bool
	subscriptions map[string]map[*Client]bool
	natsSubs      map[string]*nats.Subscription
	mu            sync.RWMutex
}

func NewGateway(js nats.JetStreamContext, logger *zap.Logger) *Gateway {
	return &Gateway{
		logger:        logger,
		js:            js,
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		natsSubs:      make(map[string]*nats.Subscription),
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("failed to upgrade websocket", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}

	g.mu.Lock()
	g.clients[client] = true
	g.mu.Unlock()
	infrastructure.WSConnections.Inc()

	go g.writePump(client)
	g.readPump(client)
}

// subscribeRequest 客户端订阅报文；source 为空时订阅全部行情源
type subscribeRequest struct {
	Action string `json:"action"` // "subscribe", "unsubscribe"
	Symbol string `json:"symbol"`
	Source string `json:"source"`
}

func (r subscribeRequest) topic() string {
	source := r.Source
	if source == "" {
		source = "*"
	}
	return fmt.Sprintf("quotes.raw.%s.%s", source, r.Symbol)
}

func (g *Gateway) readPump(c *Client) {
	defer func() {
		g.mu.Lock()
		delete(g.clients, c)
		for topic, clients := range g.subscriptions {
			delete(clients, c)
			if len(clients) == 0 {
				g.dropTopicLocked(topic)
			}
		}
		g.mu.Unlock()
		infrastructure.WSConnections.Dec()
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var req subscribeRequest
		if err := json.Unmarshal(message, &req); err != nil || req.Symbol == "" {
			continue
		}
		topic := req.topic()

		g.mu.Lock()
		switch req.Action {
		case "subscribe":
			if g.subscriptions[topic] == nil {
				g.subscriptions[topic] = make(map[*Client]bool)
				if err := g.subscribeToNATS(topic); err != nil {
					g.logger.Error("failed to subscribe to NATS", zap.String("topic", topic), zap.Error(err))
				}
			}
			g.subscriptions[topic][c] = true
			g.logger.Info("client subscribed", zap.String("topic", topic))
		case "unsubscribe":
			if clients, ok := g.subscriptions[topic]; ok {
				delete(clients, c)
				if len(clients) == 0 {
					g.dropTopicLocked(topic)
				}
			}
		}
		g.mu.Unlock()
	}
}

// dropTopicLocked unsubscribes the shared NATS subscription; callers hold mu.
func (g *Gateway) dropTopicLocked(topic string) {
	if sub, ok := g.natsSubs[topic]; ok {
		sub.Unsubscribe()
		delete(g.natsSubs, topic)
		g.logger.Info("unsubscribed from NATS as no clients left", zap.String("topic", topic))
	}
	delete(g.subscriptions, topic)
}

func (g *Gateway) writePump(c *Client) {
	defer c.conn.Close()
	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (g *Gateway) subscribeToNATS(topic string) error {
	sub, err := g.js.Subscribe(topic, func(msg *nats.Msg) {
		g.mu.RLock()
		clients := g.subscriptions[topic]
		if clients == nil {
			g.mu.RUnlock()
			return
		}

		for c := range clients {
			select {
			case c.send <- msg.Data:
			default:
				// Do not block, just drop if channel is full
			}
		}
		g.mu.RUnlock()
		msg.Ack()
	}, nats.ManualAck())

	if err != nil {
		return err
	}

	g.natsSubs[topic] = sub
	g.logger.Info("subscribed to NATS topic", zap.String("topic", topic))
	return nil
}
