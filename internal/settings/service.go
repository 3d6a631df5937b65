package settings

import (
	"context"
	"log/slog"
	"strings"

	"github.com/homebite/orderdesk/internal/docstore"
	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/reports"
	"github.com/homebite/orderdesk/internal/shared"
)

// ChangeNotifier is told after settings are saved.
type ChangeNotifier interface {
	SettingsChanged(ctx context.Context) error
}

// Service reads and replaces the settings document.
type Service struct {
	doc      *docstore.Document[Settings]
	logger   *slog.Logger
	notifier ChangeNotifier
}

// NewService constructs a Service.
func NewService(store docstore.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		doc:    docstore.NewDocument(store, DocumentKey, Defaults),
		logger: logger,
	}
}

// SetNotifier registers n for save notifications.
func (s *Service) SetNotifier(n ChangeNotifier) {
	s.notifier = n
}

// Get returns the stored settings or the defaults.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	return s.doc.Get(ctx)
}

// ProfitOptions implements reports.SettingsSource.
func (s *Service) ProfitOptions(ctx context.Context) (reports.ProfitOptions, error) {
	cur, err := s.Get(ctx)
	if err != nil {
		return reports.ProfitOptions{}, err
	}
	return cur.Profit(), nil
}

// Replace validates and stores next.
func (s *Service) Replace(ctx context.Context, next Settings) (Settings, error) {
	next.BusinessName = strings.TrimSpace(next.BusinessName)
	next.Email = strings.TrimSpace(next.Email)
	next.Phone = strings.TrimSpace(next.Phone)
	next.Currency = strings.ToUpper(strings.TrimSpace(next.Currency))
	modes := make([]string, 0, len(next.DeliveryModes))
	seen := map[string]bool{}
	for _, m := range next.DeliveryModes {
		m = orders.NormalizeMode(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		modes = append(modes, m)
	}
	next.DeliveryModes = modes

	if err := shared.ValidateStruct(next); err != nil {
		return Settings{}, err
	}
	if err := s.doc.Put(ctx, next); err != nil {
		return Settings{}, err
	}
	s.logger.Info("settings saved",
		slog.Float64("expense_pct", next.ExpensePercentage),
		slog.Float64("target_margin", next.TargetProfitMargin))
	if s.notifier != nil {
		if err := s.notifier.SettingsChanged(ctx); err != nil {
			s.logger.Warn("notify settings change", slog.Any("error", err))
		}
	}
	return next, nil
}
