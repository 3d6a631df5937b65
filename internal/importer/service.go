package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homebite/orderdesk/internal/orders"
	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// OrderStore is the part of the order service the importer writes through.
type OrderStore interface {
	Snapshot(ctx context.Context) ([]orders.Order, error)
	Repository() orders.Repository
	Validator() *orders.Validator
	Invalidate(ctx context.Context, reason string)
}

// Archiver keeps a copy of every uploaded file.
type Archiver interface {
	Put(ctx context.Context, name string, body []byte, contentType string) (string, error)
}

// Recorder receives import outcome counts.
type Recorder interface {
	RecordImport(kind string, s Summary)
}

// Upload is a raw uploaded file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Summary is the authoritative import result. Imported + Updated + Skipped +
// Failed always equals Total.
type Summary struct {
	BatchID    string   `json:"batchId"`
	Imported   int      `json:"imported"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Total      int      `json:"total"`
	Errors     []string `json:"errors"`
	ArchiveKey string   `json:"archiveKey,omitempty"`
}

// Service reconciles uploaded sheets against the order store.
type Service struct {
	store    OrderStore
	archiver Archiver
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service. archiver and recorder may be nil.
func NewService(store OrderStore, archiver Archiver, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, archiver: archiver, recorder: recorder, logger: logger, now: time.Now}
}

// Preview parses an upload without writing anything.
func (s *Service) Preview(u Upload) (Preview, error) {
	sheet, err := Parse(u.Filename, u.ContentType, u.Data)
	if err != nil {
		return Preview{}, err
	}
	return BuildPreview(sheet), nil
}

// batch tracks what the store holds while rows are applied.
type batch struct {
	byID map[string]orders.Order
	seen map[string]bool
	seq  int
}

func dupKey(o orders.Order) string {
	if !o.Date.Valid() {
		return ""
	}
	addr := strings.Join(strings.Fields(strings.ToLower(o.DeliveryAddress)), " ")
	return o.Date.String() + "|" + addr
}

func (b *batch) remember(o orders.Order) {
	b.byID[o.OrderID] = o
	if k := dupKey(o); k != "" {
		b.seen[k] = true
	}
	if n, ok := orders.SequenceOf(o.OrderID); ok && n > b.seq {
		b.seq = n
	}
}

// Import parses the upload and applies every row. Invalid rows are counted
// as failed with a reason; they never abort the batch. When ctx ends mid-batch
// the partial summary is returned together with the context error.
func (s *Service) Import(ctx context.Context, u Upload, opts Options) (Summary, error) {
	sheet, err := Parse(u.Filename, u.ContentType, u.Data)
	if err != nil {
		return Summary{}, err
	}
	if missing := MissingColumns(sheet.Headers); len(missing) > 0 {
		return Summary{}, &ColumnError{Missing: missing}
	}
	existing, err := s.store.Snapshot(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load orders: %w", err)
	}

	b := &batch{byID: make(map[string]orders.Order, len(existing)), seen: map[string]bool{}}
	for _, o := range existing {
		b.remember(o)
	}

	sum := Summary{BatchID: uuid.NewString(), Total: len(sheet.Rows), Errors: []string{}}
	cols := ResolveColumns(sheet.Headers)
	var interrupted error
	for _, row := range sheet.Rows {
		if err := ctx.Err(); err != nil {
			interrupted = err
			break
		}
		outcome, err := s.applyRow(ctx, b, cols, row, opts)
		switch {
		case err != nil:
			sum.Failed++
			sum.Errors = append(sum.Errors, fmt.Sprintf("Row %d: %v", row.Line, err))
		case outcome == rowImported:
			sum.Imported++
		case outcome == rowUpdated:
			sum.Updated++
		default:
			sum.Skipped++
		}
	}

	// Rows already written must be visible even when the request went away.
	finish := context.WithoutCancel(ctx)
	if sum.Imported+sum.Updated > 0 {
		s.store.Invalidate(finish, "import")
	}
	sum.ArchiveKey = s.archive(finish, sum.BatchID, u)
	if s.recorder != nil {
		s.recorder.RecordImport(kindName(u), sum)
	}
	attrs := []any{
		slog.String("batch", sum.BatchID),
		slog.String("file", u.Filename),
		slog.Int("imported", sum.Imported),
		slog.Int("updated", sum.Updated),
		slog.Int("skipped", sum.Skipped),
		slog.Int("failed", sum.Failed),
	}
	if interrupted != nil {
		s.logger.Warn("import interrupted", append(attrs, slog.Any("error", interrupted))...)
		return sum, fmt.Errorf("import %s interrupted: %w", sum.BatchID, interrupted)
	}
	s.logger.Info("orders imported", attrs...)
	return sum, nil
}

type rowOutcome int

const (
	rowSkipped rowOutcome = iota
	rowImported
	rowUpdated
)

func (s *Service) applyRow(ctx context.Context, b *batch, cols ColumnMap, row Row, opts Options) (rowOutcome, error) {
	p, cellErr := cols.Payload(row)
	if p.OrderID != nil {
		if current, ok := b.byID[*p.OrderID]; ok {
			if !opts.UpdateExisting {
				return rowSkipped, nil
			}
			return s.updateRow(ctx, b, current, p, cellErr)
		}
	}

	o, _, err := p.ToOrder()
	if err := orders.MergeFieldErrors(cellErr, err); err != nil {
		return rowSkipped, err
	}
	now := s.now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	generate := o.OrderID == ""
	if generate {
		if opts.SkipDuplicates && b.seen[dupKey(o)] {
			return rowSkipped, nil
		}
		o.OrderID = orders.FormatOrderID(o.Date.Time, b.seq+1)
	}
	if err := s.store.Validator().Check(o); err != nil {
		return rowSkipped, err
	}

	repo := s.store.Repository()
	if !generate {
		if err := repo.Insert(ctx, o); err != nil {
			return rowSkipped, err
		}
		b.remember(o)
		return rowImported, nil
	}
	for attempt := 1; attempt <= orders.MaxIDAttempts; attempt++ {
		o.OrderID = orders.FormatOrderID(o.Date.Time, b.seq+attempt)
		err := repo.Insert(ctx, o)
		if err == nil {
			b.remember(o)
			return rowImported, nil
		}
		if !errors.Is(err, httpx.ErrDuplicate) {
			return rowSkipped, err
		}
	}
	return rowSkipped, &orders.GenerationError{Attempts: orders.MaxIDAttempts, LastID: o.OrderID}
}

func (s *Service) updateRow(ctx context.Context, b *batch, current orders.Order, p orders.Payload, cellErr error) (rowOutcome, error) {
	next := current
	touched, err := p.ApplyTo(&next)
	if err := orders.MergeFieldErrors(cellErr, err); err != nil {
		return rowSkipped, err
	}
	hasBilling := slices.Contains(touched, "billingMonth") || slices.Contains(touched, "billingYear")
	if !hasBilling && !next.Date.Equal(current.Date.Time) {
		next.BillingMonth, next.BillingYear = 0, 0
	}
	orders.ApplyBillingPeriod(&next)
	if !slices.Contains(touched, "total") {
		next.Total = orders.ComputeTotal(next.Quantity, next.UnitPrice)
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.store.Validator().Check(next); err != nil {
		return rowSkipped, err
	}
	if err := s.store.Repository().Update(ctx, next); err != nil {
		return rowSkipped, err
	}
	b.remember(next)
	return rowUpdated, nil
}

func (s *Service) archive(ctx context.Context, batchID string, u Upload) string {
	if s.archiver == nil {
		return ""
	}
	now := s.now().UTC()
	name := path.Join("imports", now.Format("2006/01"), batchID+"-"+path.Base(u.Filename))
	key, err := s.archiver.Put(ctx, name, u.Data, u.ContentType)
	if err != nil {
		s.logger.Warn("archive import file", slog.String("batch", batchID), slog.Any("error", err))
		return ""
	}
	return key
}

func kindName(u Upload) string {
	switch DetectKind(u.Filename, u.ContentType) {
	case KindCSV:
		return "csv"
	case KindXLSX:
		return "xlsx"
	case KindXLS:
		return "xls"
	default:
		return "unknown"
	}
}
