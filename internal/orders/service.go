package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/homebite/orderdesk/internal/platform/cache"
	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// ChangeNotifier is told about every committed mutation.
type ChangeNotifier interface {
	OrdersChanged(ctx context.Context, reason string) error
}

// Service implements the order use cases on top of a Repository.
type Service struct {
	repo      Repository
	cache     *cache.Versioned
	validator *Validator
	logger    *slog.Logger
	notifier  ChangeNotifier
	group     singleflight.Group
	now       func() time.Time
}

// NewService constructs a Service. cache may be nil.
func NewService(repo Repository, c *cache.Versioned, v *Validator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: c, validator: v, logger: logger, now: time.Now}
}

// SetNotifier registers a mutation listener.
func (s *Service) SetNotifier(n ChangeNotifier) {
	s.notifier = n
}

// Validator exposes the record validator used on every write.
func (s *Service) Validator() *Validator { return s.validator }

// Repository exposes the underlying store for batch writers.
func (s *Service) Repository() Repository { return s.repo }

// List returns every order, canonicalized. Concurrent loads share one store
// read and the result is cached until the next mutation.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	key, err := s.cache.BuildKey(ctx, "list")
	if err != nil {
		s.logger.Warn("order cache version", slog.Any("error", err))
		return s.Snapshot(ctx)
	}
	// The shared load outlives any single caller; each caller still stops
	// waiting when its own ctx ends.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		var out []Order
		err := s.cache.FetchJSON(shared, key, &out, func(ctx context.Context) (any, error) {
			return s.Snapshot(ctx)
		})
		return out, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]Order)), nil
	}
}

// Snapshot reads the store directly, bypassing the cache.
func (s *Service) Snapshot(ctx context.Context) ([]Order, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		Canonicalize(&list[i])
	}
	if list == nil {
		list = []Order{}
	}
	return list, nil
}

// Query runs the filter/sort engine over the full order set.
func (s *Service) Query(ctx context.Context, f Filter, sort Sort) ([]Order, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(all, f, sort), nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, orderID string) (Order, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	Canonicalize(&o)
	return o, nil
}

// NextID previews the ID a new order dated date would receive.
func (s *Service) NextID(ctx context.Context, date time.Time) (string, error) {
	all, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return NextOrderID(date, all), nil
}

// Create validates and stores a new order. Without a supplied ID one is
// generated from the global maximum and advanced on every collision.
func (s *Service) Create(ctx context.Context, p Payload) (Order, error) {
	o, _, err := p.ToOrder()
	if err != nil {
		return Order{}, err
	}
	now := s.now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	if o.OrderID != "" {
		if err := s.validator.Check(o); err != nil {
			return Order{}, err
		}
		if err := s.repo.Insert(ctx, o); err != nil {
			return Order{}, err
		}
		s.changed(ctx, "create")
		return o, nil
	}

	o.OrderID = FormatOrderID(o.Date.Time, 1)
	if err := s.validator.Check(o); err != nil {
		return Order{}, err
	}
	o, err = s.insertWithGeneratedID(ctx, o)
	if err != nil {
		return Order{}, err
	}
	s.changed(ctx, "create")
	return o, nil
}

func (s *Service) insertWithGeneratedID(ctx context.Context, o Order) (Order, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return Order{}, err
	}
	seq := MaxSequence(all) + 1
	for attempt := 1; attempt <= MaxIDAttempts; attempt++ {
		o.OrderID = FormatOrderID(o.Date.Time, seq)
		err := s.repo.Insert(ctx, o)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, httpx.ErrDuplicate) {
			return Order{}, err
		}
		seq++
	}
	return Order{}, &GenerationError{Attempts: MaxIDAttempts, LastID: o.OrderID}
}

// Update writes the carried fields onto the stored order. Changing the date
// re-derives the billing period unless the payload sets it explicitly. A new
// orderId re-keys the order and fails with httpx.ErrDuplicate when taken.
func (s *Service) Update(ctx context.Context, orderID string, p Payload) (Order, error) {
	current, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	Canonicalize(&current)

	next := current
	touched, err := p.ApplyTo(&next)
	if err != nil {
		return Order{}, err
	}
	rekey := next.OrderID != current.OrderID
	if _, ok := SequenceOf(next.OrderID); rekey && !ok {
		return Order{}, &ValidationError{Fields: FieldErrors{"orderId": "must end with a 6-digit sequence"}}
	}
	hasBilling := slices.Contains(touched, "billingMonth") || slices.Contains(touched, "billingYear")
	if slices.Contains(touched, "date") && !hasBilling && !next.Date.Equal(current.Date.Time) {
		next.BillingMonth, next.BillingYear = 0, 0
	}
	ApplyBillingPeriod(&next)

	priceTouched := slices.Contains(touched, "quantity") || slices.Contains(touched, "unitPrice")
	if priceTouched && !slices.Contains(touched, "total") {
		next.Total = ComputeTotal(next.Quantity, next.UnitPrice)
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.validator.Check(next); err != nil {
		return Order{}, err
	}
	if rekey {
		if err := s.rekey(ctx, current.OrderID, next); err != nil {
			return Order{}, err
		}
		s.changed(ctx, "rekey")
		return next, nil
	}
	if err := s.repo.Update(ctx, next); err != nil {
		return Order{}, err
	}
	s.changed(ctx, "update")
	return next, nil
}

// rekey stores next under its new ID and drops the old record. The unique
// index rejects a taken ID before anything is removed.
func (s *Service) rekey(ctx context.Context, oldID string, next Order) error {
	if err := s.repo.Insert(ctx, next); err != nil {
		return err
	}
	if _, err := s.repo.Delete(ctx, []string{oldID}); err != nil {
		if _, undoErr := s.repo.Delete(context.WithoutCancel(ctx), []string{next.OrderID}); undoErr != nil {
			s.logger.Error("undo order rekey", slog.String("order", next.OrderID), slog.Any("error", undoErr))
		}
		return fmt.Errorf("remove %s after rekey: %w", oldID, err)
	}
	return nil
}

// SetStatus changes one order's status and payment status together.
func (s *Service) SetStatus(ctx context.Context, orderID, status string) (Order, error) {
	if _, err := s.BulkSetStatus(ctx, []string{orderID}, status); err != nil {
		return Order{}, err
	}
	return s.Get(ctx, orderID)
}

// BulkSetStatus applies one status to many orders in a single write.
func (s *Service) BulkSetStatus(ctx context.Context, ids []string, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no order ids", httpx.ErrValidation)
	}
	st, ps, err := NormalizeStatus(status)
	if err != nil {
		return 0, &ValidationError{Fields: FieldErrors{"status": ErrInvalidStatus.Error()}}
	}
	n, err := s.repo.UpdateStatus(ctx, ids, st, ps, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("orders %v: %w", ids, httpx.ErrNotFound)
	}
	s.changed(ctx, "status")
	return n, nil
}

// Delete removes one order permanently.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	n, err := s.repo.Delete(ctx, []string{orderID})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("order %s: %w", orderID, httpx.ErrNotFound)
	}
	s.changed(ctx, "delete")
	return nil
}

// BulkDelete removes the listed orders and reports how many existed.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no order ids", httpx.ErrValidation)
	}
	n, err := s.repo.Delete(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.changed(ctx, "delete")
	return n, nil
}

// DeleteAll empties the order store.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.changed(ctx, "delete_all")
	return n, nil
}

// Invalidate drops every cached order view. Batch writers call it once after
// writing through the repository.
func (s *Service) Invalidate(ctx context.Context, reason string) {
	s.changed(ctx, reason)
}

func (s *Service) changed(ctx context.Context, reason string) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Error("bump order cache", slog.String("reason", reason), slog.Any("error", err))
	}
	if s.notifier != nil {
		if err := s.notifier.OrdersChanged(ctx, reason); err != nil {
			s.logger.Warn("notify order change", slog.String("reason", reason), slog.Any("error", err))
		}
	}
}
