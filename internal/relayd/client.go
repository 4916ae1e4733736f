package relayd

import (
	"encoding/json"
	"sync"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/gorilla/websocket"
	"github.com/nbd-wtf/go-nostr"
	"github.com/pkg/errors"
)

// client is one websocket connection and its live subscriptions.
type client struct {
	ws  *websocket.Conn
	log log.Logger

	wmu sync.Mutex // serialises writes

	mu   sync.Mutex
	subs map[string]nostr.Filters

	once     sync.Once
	closeErr error
}

func newClient(ws *websocket.Conn, logger log.Logger) *client {
	return &client{
		ws:   ws,
		log:  logger,
		subs: make(map[string]nostr.Filters),
	}
}

func (c *client) subscribe(id string, filters nostr.Filters) {
	c.mu.Lock()
	c.subs[id] = filters
	c.mu.Unlock()
}

func (c *client) unsubscribe(id string) {
	c.mu.Lock()
	delete(c.subs, id)
	c.mu.Unlock()
}

// deliver sends ev once per live subscription it matches.
func (c *client) deliver(ev nostr.Event) {
	c.mu.Lock()
	var ids []string
	for id, filters := range c.subs {
		if filters.Match(&ev) {
			ids = append(ids, id)
		}
	}
	c.mu.Unlock()

	for _, id := range ids {
		subID := id
		c.send(&nostr.EventEnvelope{SubscriptionID: &subID, Event: ev})
	}
}

func (c *client) notice(msg string) {
	n := nostr.NoticeEnvelope(msg)
	c.send(&n)
}

func (c *client) send(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		level.Error(c.log).Log("event", "encode failed", "err", err)
		return
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
		level.Debug(c.log).Log("event", "write failed", "err", err)
	}
}

func (c *client) close() error {
	c.once.Do(func() {
		if err := c.ws.Close(); err != nil {
			c.closeErr = errors.Wrap(err, "relayd: close connection")
		}
	})
	return c.closeErr
}
