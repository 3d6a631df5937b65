package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homebite/orderdesk/internal/platform/db"
	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// Repository persists orders keyed by their order ID.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, orderID string) (Order, error)
	// Insert fails with httpx.ErrDuplicate when the order ID is taken.
	Insert(ctx context.Context, o Order) error
	// Update replaces the stored order with the same ID.
	Update(ctx context.Context, o Order) error
	UpdateStatus(ctx context.Context, ids []string, status Status, payment PaymentStatus, at time.Time) (int64, error)
	Delete(ctx context.Context, ids []string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type pgRepository struct {
	db dbtx
}

// NewPostgresRepository returns a Repository over the orders table.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{db: pool}
}

const orderColumns = `order_id, order_date, delivery_address, quantity, unit_price, total, mode,
status, payment_status, payment_mode, billing_month, billing_year, customer_name, phone,
created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o       Order
		date    *time.Time
		status  string
		payment string
		mode    string
	)
	err := row.Scan(&o.OrderID, &date, &o.DeliveryAddress, &o.Quantity, &o.UnitPrice, &o.Total, &o.Mode,
		&status, &payment, &mode, &o.BillingMonth, &o.BillingYear, &o.CustomerName, &o.Phone,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if date != nil {
		o.Date = NewDate(*date)
	}
	o.Status = Status(status)
	o.PaymentStatus = PaymentStatus(payment)
	o.PaymentMode = PaymentMode(mode)
	return o, nil
}

func (r *pgRepository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pgRepository) Get(ctx context.Context, orderID string) (Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("order %s: %w", orderID, httpx.ErrNotFound)
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func dateArg(d Date) *time.Time {
	if !d.Valid() {
		return nil
	}
	t := d.Time
	return &t
}

func (r *pgRepository) Insert(ctx context.Context, o Order) error {
	_, err := r.db.Exec(ctx, `INSERT INTO orders (`+orderColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		o.OrderID, dateArg(o.Date), o.DeliveryAddress, o.Quantity, o.UnitPrice, o.Total, o.Mode,
		string(o.Status), string(o.PaymentStatus), string(o.PaymentMode), o.BillingMonth, o.BillingYear,
		o.CustomerName, o.Phone, o.CreatedAt, o.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("order %s: %w", o.OrderID, httpx.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *pgRepository) Update(ctx context.Context, o Order) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET order_date = $2, delivery_address = $3, quantity = $4,
unit_price = $5, total = $6, mode = $7, status = $8, payment_status = $9, payment_mode = $10,
billing_month = $11, billing_year = $12, customer_name = $13, phone = $14, updated_at = $15
WHERE order_id = $1`,
		o.OrderID, dateArg(o.Date), o.DeliveryAddress, o.Quantity, o.UnitPrice, o.Total, o.Mode,
		string(o.Status), string(o.PaymentStatus), string(o.PaymentMode), o.BillingMonth, o.BillingYear,
		o.CustomerName, o.Phone, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", o.OrderID, httpx.ErrNotFound)
	}
	return nil
}

func (r *pgRepository) UpdateStatus(ctx context.Context, ids []string, status Status, payment PaymentStatus, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $2, payment_status = $3, updated_at = $4
WHERE order_id = ANY($1)`, ids, string(status), string(payment), at)
	if err != nil {
		return 0, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgRepository) Delete(ctx context.Context, ids []string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete orders: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, fmt.Errorf("delete all orders: %w", err)
	}
	return tag.RowsAffected(), nil
}
