// Package testhelpers holds fixtures shared by package tests.
package testhelpers

import (
	"context"
	"sync"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
)

// Broadcaster records every delivery instead of sending it.
type Broadcaster struct {
	mu         sync.Mutex
	deliveries []realtime.Delivery
}

// Broadcast records d.
func (b *Broadcaster) Broadcast(_ context.Context, d realtime.Delivery) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliveries = append(b.deliveries, d)
	return nil
}

// ByKind returns the recorded deliveries of kind in order.
func (b *Broadcaster) ByKind(kind realtime.EventKind) []realtime.Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []realtime.Delivery
	for _, d := range b.deliveries {
		if d.Event.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Count returns how many deliveries of kind were recorded.
func (b *Broadcaster) Count(kind realtime.EventKind) int {
	return len(b.ByKind(kind))
}

// Total returns how many deliveries were recorded.
func (b *Broadcaster) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.deliveries)
}
