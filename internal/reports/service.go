package reports

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/platform/cache"
)

// OrderSource runs the order filter engine.
type OrderSource interface {
	Query(ctx context.Context, f orders.Filter, s orders.Sort) ([]orders.Order, error)
}

// SettingsSource supplies the current profit percentages.
type SettingsSource interface {
	ProfitOptions(ctx context.Context) (ProfitOptions, error)
}

// Service computes reports over filtered orders and caches the results until
// orders or settings change.
type Service struct {
	orders   OrderSource
	settings SettingsSource
	cache    *cache.Versioned
	logger   *slog.Logger
}

// NewService constructs a Service. settings and c may be nil.
func NewService(src OrderSource, settings SettingsSource, c *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orders: src, settings: settings, cache: c, logger: logger}
}

// Request selects the orders a report covers.
type Request struct {
	Filter orders.Filter
	Sort   orders.Sort
	// Query is the canonical encoding of the selection, used as cache key.
	Query string
}

// ParseRequest reads the order filter query parameters.
func ParseRequest(q url.Values) (Request, error) {
	f, s, err := orders.ParseQuery(q)
	if err != nil {
		return Request{}, err
	}
	return Request{Filter: f, Sort: s, Query: q.Encode()}, nil
}

func (s *Service) profitOptions(ctx context.Context) ProfitOptions {
	if s.settings == nil {
		return DefaultProfitOptions
	}
	opts, err := s.settings.ProfitOptions(ctx)
	if err != nil {
		s.logger.Warn("load profit settings", slog.Any("error", err))
		return DefaultProfitOptions
	}
	return opts
}

func fetch[T any](ctx context.Context, s *Service, kind string, req Request, build func([]orders.Order, ProfitOptions) T) (T, error) {
	compute := func(ctx context.Context) (T, error) {
		var zero T
		list, err := s.orders.Query(ctx, req.Filter, req.Sort)
		if err != nil {
			return zero, err
		}
		return build(list, s.profitOptions(ctx)), nil
	}
	key, err := s.cache.BuildKey(ctx, kind, req.Query)
	if err != nil {
		s.logger.Warn("report cache version", slog.Any("error", err))
		return compute(ctx)
	}
	var out T
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return compute(ctx)
	})
	return out, err
}

// Summary totals the selected orders.
func (s *Service) Summary(ctx context.Context, req Request) (Summary, error) {
	return fetch(ctx, s, "summary", req, Summarize)
}

// Monthly groups the selected orders by billing period.
func (s *Service) Monthly(ctx context.Context, req Request) (Report, error) {
	return fetch(ctx, s, "monthly", req, Monthly)
}

// Daily groups the selected orders by order date.
func (s *Service) Daily(ctx context.Context, req Request) (Report, error) {
	return fetch(ctx, s, "daily", req, Daily)
}

// Invalidate drops every cached report.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Warm computes the unfiltered reports so the next dashboard load is a cache hit.
func (s *Service) Warm(ctx context.Context) error {
	req := Request{Sort: orders.DefaultSort}
	if _, err := s.Summary(ctx, req); err != nil {
		return err
	}
	if _, err := s.Monthly(ctx, req); err != nil {
		return err
	}
	_, err := s.Daily(ctx, req)
	return err
}
