package websocket

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

type fakeVersions struct {
	version int64
	err     error
}

func (f *fakeVersions) CatalogVersion(ctx context.Context) (int64, error) {
	return f.version, f.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan []byte, 4)}
	h.clients[c] = true
	return c
}

func TestBroadcastOnlyOnVersionChange(t *testing.T) {
	versions := &fakeVersions{version: 3}
	h := NewHub(versions, quietLogger())
	client := newTestClient(h)
	ctx := context.Background()

	h.broadcastIfChanged(ctx)

	select {
	case raw := <-client.send:
		var msg CatalogUpdate
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != "catalog_update" || msg.Version != 3 {
			t.Errorf("message = %+v", msg)
		}
	default:
		t.Fatal("no broadcast on first version read")
	}

	// Same version again: silence.
	h.broadcastIfChanged(ctx)
	select {
	case raw := <-client.send:
		t.Errorf("unchanged version broadcast %s", raw)
	default:
	}

	versions.version = 4
	h.broadcastIfChanged(ctx)
	if len(client.send) != 1 {
		t.Errorf("changed version sent %d messages, want 1", len(client.send))
	}
}

func TestBroadcastSkipsSlowClients(t *testing.T) {
	versions := &fakeVersions{version: 1}
	h := NewHub(versions, quietLogger())
	slow := &Client{hub: h, send: make(chan []byte)} // unbuffered, nobody reading
	h.clients[slow] = true
	fast := newTestClient(h)

	h.broadcastIfChanged(context.Background())

	if len(fast.send) != 1 {
		t.Errorf("fast client got %d messages, want 1", len(fast.send))
	}
	// The slow client is skipped rather than blocking the broadcast; reaching
	// this point at all is the assertion.
}

func TestVersionReadErrorKeepsLastVersion(t *testing.T) {
	versions := &fakeVersions{version: 5}
	h := NewHub(versions, quietLogger())
	client := newTestClient(h)
	ctx := context.Background()

	h.broadcastIfChanged(ctx)
	<-client.send

	versions.err = context.DeadlineExceeded
	h.broadcastIfChanged(ctx)
	if len(client.send) != 0 {
		t.Error("broadcast happened despite a version read error")
	}

	// Recovery: the next successful read with a new version broadcasts.
	versions.err = nil
	versions.version = 6
	h.broadcastIfChanged(ctx)
	if len(client.send) != 1 {
		t.Errorf("recovery sent %d messages, want 1", len(client.send))
	}
}

func TestSendCurrentVersionGreetsNewClient(t *testing.T) {
	h := NewHub(&fakeVersions{version: 9}, quietLogger())
	client := newTestClient(h)

	h.sendCurrentVersion(context.Background(), client)

	var msg CatalogUpdate
	if err := json.Unmarshal(<-client.send, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Version != 9 {
		t.Errorf("version = %d, want 9", msg.Version)
	}
	if h.lastVersion != 9 {
		t.Errorf("lastVersion = %d, want 9", h.lastVersion)
	}
}
