package reports

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/platform/cache"
)

type stubOrders struct {
	list  []orders.Order
	calls int
}

func (s *stubOrders) Query(_ context.Context, f orders.Filter, sort orders.Sort) ([]orders.Order, error) {
	s.calls++
	return orders.Apply(s.list, f, sort), nil
}

type stubSettings struct {
	opts ProfitOptions
	err  error
}

func (s stubSettings) ProfitOptions(context.Context) (ProfitOptions, error) {
	return s.opts, s.err
}

func newCachedService(t *testing.T, src OrderSource, settings SettingsSource) *Service {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(src, settings, cache.NewVersioned(client, "reports", time.Minute), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestServiceCachesUntilInvalidated(t *testing.T) {
	src := &stubOrders{list: sampleOrders()}
	svc := newCachedService(t, src, nil)
	ctx := context.Background()

	req, err := ParseRequest(url.Values{})
	require.NoError(t, err)

	first, err := svc.Summary(ctx, req)
	require.NoError(t, err)
	second, err := svc.Summary(ctx, req)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, src.calls)

	src.list = src.list[:1]
	require.NoError(t, svc.Invalidate(ctx))
	third, err := svc.Summary(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 2, src.calls)
	require.Equal(t, 1, third.TotalOrders)
}

func TestServiceKeysByFilter(t *testing.T) {
	src := &stubOrders{list: sampleOrders()}
	svc := newCachedService(t, src, nil)
	ctx := context.Background()

	lunch, err := ParseRequest(url.Values{"mode": {"Lunch"}})
	require.NoError(t, err)
	all, err := ParseRequest(url.Values{})
	require.NoError(t, err)

	a, err := svc.Monthly(ctx, lunch)
	require.NoError(t, err)
	b, err := svc.Monthly(ctx, all)
	require.NoError(t, err)
	require.Equal(t, 540.0, a.Revenue)
	require.Equal(t, 840.0, b.Revenue)
	require.Equal(t, 2, src.calls)
}

func TestServiceUsesSettingsWithFallback(t *testing.T) {
	src := &stubOrders{list: sampleOrders()}
	ctx := context.Background()
	req := Request{Sort: orders.DefaultSort}

	svc := NewService(src, stubSettings{opts: ProfitOptions{ExpensePercentage: 50, TargetProfitMargin: 40}}, nil, nil)
	s, err := svc.Summary(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 445.0, s.Profit.Profit)
	require.Equal(t, 356.0, s.Profit.TargetProfit)

	svc = NewService(src, stubSettings{err: errors.New("db down")}, nil, nil)
	s, err = svc.Summary(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 267.0, s.Profit.Profit)
}

func TestParseRequestRejectsBadFilters(t *testing.T) {
	_, err := ParseRequest(url.Values{"month": {"13"}})
	require.Error(t, err)
}

func TestWarmPopulatesUnfilteredReports(t *testing.T) {
	src := &stubOrders{list: sampleOrders()}
	svc := newCachedService(t, src, nil)
	ctx := context.Background()

	require.NoError(t, svc.Warm(ctx))
	require.Equal(t, 3, src.calls)

	req, err := ParseRequest(url.Values{})
	require.NoError(t, err)
	_, err = svc.Daily(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 3, src.calls)
}
