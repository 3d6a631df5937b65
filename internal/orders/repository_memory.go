package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// MemoryRepository keeps orders in process. It backs STORE_DRIVER=memory and
// tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
}

// NewMemoryRepository returns a MemoryRepository seeded with list.
func NewMemoryRepository(list ...Order) *MemoryRepository {
	r := &MemoryRepository{orders: make(map[string]Order, len(list))}
	for _, o := range list {
		r.orders[o.OrderID] = o
	}
	return r
}

func (r *MemoryRepository) List(_ context.Context) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, orderID string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[orderID]
	if !ok {
		return Order{}, fmt.Errorf("order %s: %w", orderID, httpx.ErrNotFound)
	}
	return o, nil
}

func (r *MemoryRepository) Insert(_ context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.OrderID]; ok {
		return fmt.Errorf("order %s: %w", o.OrderID, httpx.ErrDuplicate)
	}
	r.orders[o.OrderID] = o
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.OrderID]; !ok {
		return fmt.Errorf("order %s: %w", o.OrderID, httpx.ErrNotFound)
	}
	r.orders[o.OrderID] = o
	return nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, ids []string, status Status, payment PaymentStatus, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		o, ok := r.orders[id]
		if !ok {
			continue
		}
		o.Status, o.PaymentStatus, o.UpdatedAt = status, payment, at
		r.orders[id] = o
		n++
	}
	return n, nil
}

func (r *MemoryRepository) Delete(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.orders[id]; ok {
			delete(r.orders, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.orders))
	r.orders = make(map[string]Order)
	return n, nil
}
