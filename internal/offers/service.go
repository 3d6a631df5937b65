package offers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homebite/orderdesk/internal/docstore"
	"github.com/homebite/orderdesk/internal/shared"
)

// DocumentKey is where offers are stored.
const DocumentKey = "offers"

type offersDoc struct {
	Offers []Offer `json:"offers" validate:"dive"`
}

// Service reads and replaces the offers document.
type Service struct {
	doc    *docstore.Document[[]Offer]
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service. loc is the business time zone that
// decides which day "today" is.
func NewService(store docstore.Store, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		doc:    docstore.NewDocument(store, DocumentKey, func() []Offer { return []Offer{} }),
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// List returns every stored offer.
func (s *Service) List(ctx context.Context) ([]Offer, error) {
	list, err := s.doc.Get(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Offer{}
	}
	return list, nil
}

// Active returns the offers running today.
func (s *Service) Active(ctx context.Context) ([]PublicOffer, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return ActiveOffers(list, s.today()), nil
}

func (s *Service) today() time.Time {
	n := s.now().In(s.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Replace validates and stores list, generating missing IDs.
func (s *Service) Replace(ctx context.Context, list []Offer) ([]Offer, error) {
	if list == nil {
		list = []Offer{}
	}
	fields := map[string]string{}
	for i := range list {
		o := &list[i]
		o.Title = strings.TrimSpace(o.Title)
		o.Code = strings.TrimSpace(o.Code)
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		if o.StartDate.Valid() && o.EndDate.Valid() && o.EndDate.Before(o.StartDate.Time) {
			fields[fmt.Sprintf("offers[%d].endDate", i)] = "must not be before startDate"
		}
	}
	if err := shared.ValidateStruct(offersDoc{Offers: list}); err != nil {
		fe, ok := err.(*shared.FieldsError)
		if !ok {
			return nil, err
		}
		for k, v := range fe.Fields {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		return nil, &shared.FieldsError{Fields: fields}
	}
	if err := s.doc.Put(ctx, list); err != nil {
		return nil, err
	}
	s.logger.Info("offers saved", slog.Int("count", len(list)))
	return list, nil
}
