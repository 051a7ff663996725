// Package stream fan-outs voucher debit events to live dashboard clients.
package stream

import (
	"context"
	"sync"
	"time"

	"streetpoints.org/internal/ledger"
)

// DebitEvent is the payload pushed to subscribers whenever points move.
type DebitEvent struct {
	TransactionID string    `json:"transactionId"`
	BeneficiaryQR string    `json:"homelessQrCode"`
	StoreQR       string    `json:"storeQrCode"`
	ItemName      string    `json:"productName,omitempty"`
	Amount        int64     `json:"amount"`
	NewBalance    int64     `json:"newBalance"`
	Timestamp     time.Time `json:"timestamp"`
}

// FromTransaction builds the event for a completed debit.
func FromTransaction(tx ledger.Transaction, newBalance int64) DebitEvent {
	return DebitEvent{
		TransactionID: tx.ID,
		BeneficiaryQR: tx.BeneficiaryQR,
		StoreQR:       tx.StoreQR,
		ItemName:      tx.ItemName,
		Amount:        tx.Amount,
		NewBalance:    newBalance,
		Timestamp:     tx.CreatedAt,
	}
}

// Stream fan-outs debit events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan DebitEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan DebitEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan DebitEvent {
	ch := make(chan DebitEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt DebitEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
