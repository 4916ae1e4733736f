package relayd_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/crypto"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/domain"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/relay"
	"github.com/Permissionless-Software-Foundation/bch-nostr/internal/relayd"
)

const testWIF = "L2HJYqrXgsVghD5fXQZY2X4upFuvvnmF9o3cF3s3AuDix3FzbcB1"

func startRelay(t *testing.T) (*relayd.Server, string, string) {
	t.Helper()
	s := relayd.New(nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts.URL, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func signedEvent(t *testing.T, content string) nostr.Event {
	t.Helper()
	kp, err := crypto.DeriveKeyPair(testWIF)
	require.NoError(t, err)
	ev := nostr.Event{
		Kind:      domain.DefaultEventKind,
		CreatedAt: nostr.Now(),
		Tags:      nostr.Tags{},
		Content:   content,
	}
	require.NoError(t, crypto.Signer{}.Sign(&ev, kp.Secret))
	return ev
}

func dial(t *testing.T, url string) domain.RelayConn {
	t.Helper()
	conn, err := relay.NewDialer(nil).Dial(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func nextEvent(t *testing.T, sub domain.RelaySubscription) *nostr.Event {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered")
		return nil
	}
}

func waitEOSE(t *testing.T, sub domain.RelaySubscription) {
	t.Helper()
	select {
	case <-sub.EndOfStoredEvents():
	case <-time.After(5 * time.Second):
		t.Fatal("no EOSE")
	}
}

func TestServer_PublishThenQuery(t *testing.T) {
	s, _, url := startRelay(t)
	conn := dial(t, url)
	ctx := context.Background()

	ev := signedEvent(t, "stored")
	require.NoError(t, conn.Publish(ctx, ev))
	assert.Equal(t, 1, s.Len())

	// Publishing the same event again is accepted but not stored twice.
	require.NoError(t, conn.Publish(ctx, ev))
	assert.Equal(t, 1, s.Len())

	sub, err := conn.Subscribe(ctx, nostr.Filters{{IDs: []string{ev.ID}}})
	require.NoError(t, err)
	defer sub.Close()

	got := nextEvent(t, sub)
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, "stored", got.Content)
	waitEOSE(t, sub)
}

func TestServer_RejectsTamperedEvent(t *testing.T) {
	s, _, url := startRelay(t)
	conn := dial(t, url)

	ev := signedEvent(t, "original")
	ev.Content = "tampered"

	err := conn.Publish(context.Background(), ev)
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestServer_DeliversLiveEvents(t *testing.T) {
	_, _, url := startRelay(t)
	reader := dial(t, url)
	writer := dial(t, url)
	ctx := context.Background()

	sub, err := reader.Subscribe(ctx, nostr.Filters{{Kinds: []int{domain.DefaultEventKind}}})
	require.NoError(t, err)
	defer sub.Close()
	waitEOSE(t, sub)

	ev := signedEvent(t, "live")
	require.NoError(t, writer.Publish(ctx, ev))

	got := nextEvent(t, sub)
	assert.Equal(t, ev.ID, got.ID)
}

func TestServer_ReqDuringPublishesDeliversEachEventOnce(t *testing.T) {
	const total = 40
	_, _, url := startRelay(t)
	writer := dial(t, url)

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	events := make([]nostr.Event, total)
	for i := range events {
		events[i] = signedEvent(t, fmt.Sprintf("burst %d", i))
	}

	published := make(chan error, 1)
	go func() {
		for _, ev := range events {
			if err := writer.Publish(context.Background(), ev); err != nil {
				published <- err
				return
			}
		}
		published <- nil
	}()

	// Subscribe while the burst is in flight.
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`["REQ","burst",{"kinds":[1]}]`)))

	seen := make(map[string]int)
	eose := false
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(10*time.Second)))
	for len(seen) < total {
		_, msg, err := ws.ReadMessage()
		require.NoError(t, err, "got %d of %d events", len(seen), total)
		switch env := nostr.ParseMessage(msg).(type) {
		case *nostr.EventEnvelope:
			seen[env.Event.ID]++
			require.Equal(t, 1, seen[env.Event.ID], "event %s delivered twice", env.Event.ID)
		case *nostr.EOSEEnvelope:
			require.False(t, eose, "second EOSE")
			eose = true
		}
	}
	if !eose {
		// Everything was stored before the REQ, so EOSE follows the replay.
		_, msg, err := ws.ReadMessage()
		require.NoError(t, err)
		_, ok := nostr.ParseMessage(msg).(*nostr.EOSEEnvelope)
		assert.True(t, ok, "want EOSE, got %s", msg)
	}
	require.NoError(t, <-published)
}

func TestServer_EOSEWithoutMatches(t *testing.T) {
	_, _, url := startRelay(t)
	conn := dial(t, url)

	sub, err := conn.Subscribe(context.Background(), nostr.Filters{{IDs: []string{strings.Repeat("ab", 32)}}})
	require.NoError(t, err)
	defer sub.Close()
	waitEOSE(t, sub)
}

func TestServer_MetricsAndInfo(t *testing.T) {
	_, base, url := startRelay(t)
	conn := dial(t, url)
	require.NoError(t, conn.Publish(context.Background(), signedEvent(t, "counted")))

	resp, err := http.Get(base + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `bchnostr_relay_events_received_total{result="stored"} 1`)

	req, err := http.NewRequest(http.MethodGet, base+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/nostr+json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"supported_nips":[1,11]`)
}

func TestServer_ListenAndServeStopsOnCancel(t *testing.T) {
	s := relayd.New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
