package book

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOpen   EventType = "open"
	EventCancel EventType = "cancel"
	EventTrade  EventType = "trade"
	EventReject EventType = "reject"
)

// BookEvent describes one state change observed by the Sequencer. Sequence is
// contiguous per sequencer and is used by downstream consumers (AggregatedBook)
// for ordering and gap detection. Reject events consume a sequence number but
// do not change book state.
type BookEvent struct {
	Sequence uint64          `json:"seq"`
	Type     EventType       `json:"type"`
	Side     Side            `json:"side,omitempty"` // order side; unset for trade events
	OrderID  OrderID         `json:"order_id,omitempty"`
	Price    decimal.Decimal `json:"price,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`

	// Trade fields, only set for EventTrade.
	BuyOrderID  OrderID         `json:"buy_order_id,omitempty"`
	SellOrderID OrderID         `json:"sell_order_id,omitempty"`
	BuyPrice    decimal.Decimal `json:"buy_price,omitempty"`
	SellPrice   decimal.Decimal `json:"sell_price,omitempty"`

	// Reason is only set for EventReject.
	Reason string `json:"reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

var bookEventPool = sync.Pool{
	New: func() interface{} {
		return new(BookEvent)
	},
}

func acquireBookEvent() *BookEvent {
	return bookEventPool.Get().(*BookEvent)
}

func releaseBookEvent(ev *BookEvent) {
	// Reset to zero values. For decimal.Decimal the zero value represents 0,
	// which is valid.
	*ev = BookEvent{}
	bookEventPool.Put(ev)
}

// EventPublisher receives BookEvents from the Sequencer.
//
// IMPORTANT: implementations must either process events synchronously before
// returning, or clone the BookEvent data before returning. The caller recycles
// BookEvent objects to a sync.Pool after Publish returns, so any asynchronous
// processing must work with cloned data.
type EventPublisher interface {
	Publish(...*BookEvent)
}

// MemoryEventPublisher stores events in memory, useful for testing.
type MemoryEventPublisher struct {
	mu     sync.RWMutex
	events []*BookEvent
}

func NewMemoryEventPublisher() *MemoryEventPublisher {
	return &MemoryEventPublisher{
		events: make([]*BookEvent, 0),
	}
}

// Publish appends cloned events to the in-memory slice.
func (m *MemoryEventPublisher) Publish(events ...*BookEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		cpy := new(BookEvent)
		*cpy = *ev
		m.events = append(m.events, cpy)
	}
}

// Count returns the number of events stored.
func (m *MemoryEventPublisher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Get returns the event at the specified index.
func (m *MemoryEventPublisher) Get(index int) *BookEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.events[index]
}

// Events returns a copy of all events stored.
func (m *MemoryEventPublisher) Events() []*BookEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*BookEvent, len(m.events))
	copy(events, m.events)
	return events
}

// DiscardEventPublisher drops all events, useful for benchmarking.
type DiscardEventPublisher struct {
}

func NewDiscardEventPublisher() *DiscardEventPublisher {
	return &DiscardEventPublisher{}
}

// Publish does nothing.
func (p *DiscardEventPublisher) Publish(events ...*BookEvent) {
}
