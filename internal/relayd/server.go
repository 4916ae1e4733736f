package relayd

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
	"github.com/nbd-wtf/go-nostr"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

// Software identifies the relay in its NIP-11 document.
const Software = "github.com/Permissionless-Software-Foundation/bch-nostr/cmd/relay"

const shutdownGrace = 5 * time.Second

// relayInfo is the NIP-11 information document.
type relayInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	SupportedNIPs []int  `json:"supported_nips"`
	Software      string `json:"software"`
}

// Server is an in-memory NIP-01 relay.
type Server struct {
	log     log.Logger
	store   *memoryStore
	metrics *metrics

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// New returns an empty relay logging to logger (nil discards).
func New(logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{
		log:     logger,
		store:   newMemoryStore(),
		metrics: newMetrics(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler serves websocket clients and the NIP-11 document on "/" and
// Prometheus metrics on "/metrics".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.handler())
	mux.HandleFunc("/", s.serveRoot)
	return cors.Default().Handler(mux)
}

// Len reports how many events the relay holds.
func (s *Server) Len() int { return s.store.len() }

// ListenAndServe serves on addr until ctx is cancelled, then closes every
// open websocket and shuts the listener down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		level.Info(s.log).Log("event", "listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "relayd: listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		var result *multierror.Error
		if err := srv.Shutdown(sctx); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "relayd: shutdown"))
		}
		if err := s.closeClients(); err != nil {
			result = multierror.Append(result, err)
		}
		level.Info(s.log).Log("event", "stopped")
		return result.ErrorOrNil()
	})
	return g.Wait()
}

func (s *Server) serveRoot(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		s.serveWS(w, r)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/nostr+json") {
		w.Header().Set("Content-Type", "application/nostr+json")
		_ = json.NewEncoder(w).Encode(relayInfo{
			Name:          "bch-nostr dev relay",
			Description:   "in-memory relay for bch-nostr development",
			SupportedNIPs: []int{1, 11},
			Software:      Software,
		})
		return
	}
	http.Error(w, "use a nostr client", http.StatusUpgradeRequired)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Warn(s.log).Log("event", "upgrade failed", "err", err)
		return
	}
	c := newClient(ws, log.With(s.log, "conn", uuid.NewString(), "remote", r.RemoteAddr))

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.metrics.connections.Add(1)
	level.Debug(c.log).Log("event", "connected")

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		s.metrics.connections.Add(-1)
		_ = c.close()
		level.Debug(c.log).Log("event", "disconnected")
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				level.Debug(c.log).Log("event", "read failed", "err", err)
			}
			return
		}
		s.handle(c, msg)
	}
}

func (s *Server) handle(c *client, msg []byte) {
	switch env := nostr.ParseMessage(msg).(type) {
	case *nostr.EventEnvelope:
		s.handleEvent(c, env.Event)
	case *nostr.ReqEnvelope:
		s.handleReq(c, env.SubscriptionID, env.Filters)
	case *nostr.CloseEnvelope:
		c.unsubscribe(string(*env))
	default:
		c.notice("unsupported message")
	}
}

// handleEvent verifies, stores and fans out one published event.
func (s *Server) handleEvent(c *client, ev nostr.Event) {
	reply := nostr.OKEnvelope{EventID: ev.ID}

	switch ok, err := ev.CheckSignature(); {
	case ev.GetID() != ev.ID:
		reply.Reason = "invalid: event id does not match content"
	case err != nil || !ok:
		reply.Reason = "invalid: bad signature"
	default:
		reply.OK = true
	}
	if !reply.OK {
		s.metrics.events.With("result", "rejected").Add(1)
		level.Debug(c.log).Log("event", "rejected", "event_id", ev.ID, "reason", reply.Reason)
		c.send(&reply)
		return
	}

	// Storing and fan-out happen under the read lock so a concurrent REQ
	// sees this event either in its replay or live, never both.
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.store.add(ev) {
		reply.Reason = "duplicate: already have this event"
		s.metrics.events.With("result", "duplicate").Add(1)
		c.send(&reply)
		return
	}
	s.metrics.events.With("result", "stored").Add(1)
	level.Debug(c.log).Log("event", "stored", "event_id", ev.ID, "kind", ev.Kind)
	c.send(&reply)

	for other := range s.clients {
		other.deliver(ev)
	}
}

// handleReq replays stored matches, marks the end of stored events and keeps
// the subscription open for live events. Live delivery starts after EOSE.
func (s *Server) handleReq(c *client, id string, filters nostr.Filters) {
	s.metrics.subscriptions.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range s.store.query(filters) {
		subID := id
		c.send(&nostr.EventEnvelope{SubscriptionID: &subID, Event: ev})
	}
	eose := nostr.EOSEEnvelope(id)
	c.send(&eose)
	c.subscribe(id, filters)
}

func (s *Server) closeClients() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result *multierror.Error
	for c := range s.clients {
		if err := c.close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
