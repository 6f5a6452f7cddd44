// Package sse streams book change notifications to HTTP clients as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Book event kinds.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
	KindChanged = "changed"
)

// ListUpdated tells clients to reload the whole list.
const ListUpdated = "list.updated"

const (
	defaultListThrottle = 2 * time.Second
	defaultKeepAlive    = 30 * time.Second
	clientBuffer        = 64
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often idle streams receive a comment line.
// Zero or negative disables keepalives.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) {
		b.keepAlive = d
	}
}

// change is a book mutation; id is 0 for bulk deletes and for writes made
// by other processes.
type change struct {
	kind string
	id   int64
}

// Broker fans events out to subscribed clients.
//
// All client bookkeeping happens on one goroutine; the exported methods only
// talk to it over channels.
type Broker struct {
	listThrottle time.Duration
	keepAlive    time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan change
	countCh       chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. list.updated goes out at most once per
// listThrottle; changes inside a window produce one trailing event when the
// window ends.
func NewBroker(listThrottle time.Duration, opts ...Option) *Broker {
	if listThrottle <= 0 {
		listThrottle = defaultListThrottle
	}
	b := &Broker{
		listThrottle:  listThrottle,
		keepAlive:     defaultKeepAlive,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan change, 256),
		countCh:       make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.loop()
	return b
}

// hub is the state owned by the broker goroutine.
type hub struct {
	clients  map[chan []byte]struct{}
	seq      uint64
	lastList time.Time
	pending  bool
}

// send frames event with the next sequence id and offers it to every client.
// Slow clients whose buffer is full miss the event.
func (h *hub) send(event Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return
	}
	h.seq++
	frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", h.seq, event.Type, payload))
	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

func (b *Broker) loop() {
	defer close(b.stopped)

	h := &hub{clients: make(map[chan []byte]struct{})}
	trailing := time.NewTimer(time.Hour)
	trailing.Stop()
	defer trailing.Stop()

	listUpdated := func(now time.Time) {
		h.lastList = now
		h.pending = false
		h.send(Event{Type: ListUpdated, Data: map[string]string{}})
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range h.clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			h.clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}

		case resp := <-b.countCh:
			resp <- len(h.clients)

		case event := <-b.publishCh:
			h.send(event)

		case c := <-b.changeCh:
			switch c.kind {
			case KindCreated, KindUpdated, KindDeleted:
				if c.id != 0 {
					h.send(Event{Type: "book." + c.kind, Data: map[string]int64{"id": c.id}})
				}
			}
			now := time.Now()
			wait := b.listThrottle - now.Sub(h.lastList)
			switch {
			case wait <= 0:
				listUpdated(now)
			case !h.pending:
				h.pending = true
				trailing.Reset(wait)
			}

		case now := <-trailing.C:
			if h.pending {
				listUpdated(now)
			}
		}
	}
}

// Close stops the broker and closes every client channel. Safe to call twice.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed by
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.countCh <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an arbitrary event to all clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishBookEvent publishes book.<kind> for id followed by a throttled
// list.updated. An id of 0 publishes only list.updated.
func (b *Broker) PublishBookEvent(kind string, id int64) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- change{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// PublishListChanged reports that the store changed without knowing which
// book, e.g. after a write from another process.
func (b *Broker) PublishListChanged() {
	b.PublishBookEvent(KindChanged, 0)
}

// ServeHTTP streams events to one client until it disconnects or the broker
// closes (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		case frame, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
