package menu

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/homebite/orderdesk/internal/docstore"
	"github.com/homebite/orderdesk/internal/shared"
)

// DocumentKey is where the menu is stored.
const DocumentKey = "menu"

type menuDoc struct {
	Categories []Category `json:"categories" validate:"dive"`
}

// Service reads and replaces the menu document.
type Service struct {
	doc    *docstore.Document[[]Category]
	logger *slog.Logger
}

// NewService constructs a Service over store.
func NewService(store docstore.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		doc:    docstore.NewDocument(store, DocumentKey, func() []Category { return []Category{} }),
		logger: logger,
	}
}

// Categories returns the stored menu.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	cats, err := s.doc.Get(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []Category{}
	}
	return cats, nil
}

// Items returns the menu as a flat item list.
func (s *Service) Items(ctx context.Context) ([]Item, error) {
	cats, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return Flatten(cats), nil
}

// Replace stores cats. Categories repeated by ID or name are merged and
// missing IDs are generated.
func (s *Service) Replace(ctx context.Context, cats []Category) ([]Category, error) {
	return s.save(ctx, Reconstruct(cats, Flatten(cats)))
}

// ReplaceItems regroups a flat item list under the stored categories.
func (s *Service) ReplaceItems(ctx context.Context, items []Item) ([]Category, error) {
	current, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, Reconstruct(current, items))
}

func (s *Service) save(ctx context.Context, cats []Category) ([]Category, error) {
	for i := range cats {
		c := &cats[i]
		c.Category = strings.TrimSpace(c.Category)
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		for j := range c.Items {
			it := &c.Items[j]
			it.Name = strings.TrimSpace(it.Name)
			it.Category = c.Category
			if it.ID == "" {
				it.ID = uuid.NewString()
			}
		}
	}
	if err := shared.ValidateStruct(menuDoc{Categories: cats}); err != nil {
		return nil, err
	}
	if err := s.doc.Put(ctx, cats); err != nil {
		return nil, err
	}
	s.logger.Info("menu saved", slog.Int("categories", len(cats)), slog.Int("items", len(Flatten(cats))))
	return cats, nil
}
