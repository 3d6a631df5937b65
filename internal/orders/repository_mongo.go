package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// storedOrder is the document shape on read. It tolerates the legacy field
// names and dates stored as strings.
type storedOrder struct {
	OrderID         string        `bson:"orderId"`
	Date            bson.RawValue `bson:"date,omitempty"`
	DeliveryAddress string        `bson:"deliveryAddress,omitempty"`
	CustomerAddress string        `bson:"customerAddress,omitempty"`
	Address         string        `bson:"address,omitempty"`
	Quantity        int           `bson:"quantity"`
	UnitPrice       float64       `bson:"unitPrice"`
	Total           *float64      `bson:"total,omitempty"`
	TotalAmount     *float64      `bson:"totalAmount,omitempty"`
	Mode            string        `bson:"mode"`
	Status          string        `bson:"status"`
	PaymentStatus   string        `bson:"paymentStatus"`
	PaymentMode     string        `bson:"paymentMode"`
	BillingMonth    int           `bson:"billingMonth,omitempty"`
	BillingYear     int           `bson:"billingYear,omitempty"`
	CustomerName    string        `bson:"customerName,omitempty"`
	Phone           string        `bson:"phone,omitempty"`
	CreatedAt       time.Time     `bson:"createdAt,omitempty"`
	UpdatedAt       time.Time     `bson:"updatedAt,omitempty"`
}

func (d storedOrder) toOrder() Order {
	o := Order{
		OrderID:         d.OrderID,
		DeliveryAddress: d.DeliveryAddress,
		Quantity:        d.Quantity,
		UnitPrice:       d.UnitPrice,
		Mode:            d.Mode,
		Status:          Status(d.Status),
		PaymentStatus:   PaymentStatus(d.PaymentStatus),
		PaymentMode:     PaymentMode(d.PaymentMode),
		BillingMonth:    d.BillingMonth,
		BillingYear:     d.BillingYear,
		CustomerName:    d.CustomerName,
		Phone:           d.Phone,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if o.DeliveryAddress == "" {
		o.DeliveryAddress = d.CustomerAddress
	}
	if o.DeliveryAddress == "" {
		o.DeliveryAddress = d.Address
	}
	switch {
	case d.Total != nil:
		o.Total = *d.Total
	case d.TotalAmount != nil:
		o.Total = *d.TotalAmount
	}
	o.Date = decodeDate(d.Date)
	return o
}

func decodeDate(rv bson.RawValue) Date {
	if ms, ok := rv.DateTimeOK(); ok {
		return NewDate(time.UnixMilli(ms))
	}
	if s, ok := rv.StringValueOK(); ok {
		if t, ok := ParseDateString(s); ok {
			return Date{Time: t}
		}
	}
	return Date{}
}

// writtenOrder is the canonical document shape.
type writtenOrder struct {
	OrderID         string     `bson:"orderId"`
	Date            *time.Time `bson:"date"`
	DeliveryAddress string     `bson:"deliveryAddress"`
	Quantity        int        `bson:"quantity"`
	UnitPrice       float64    `bson:"unitPrice"`
	Total           float64    `bson:"total"`
	Mode            string     `bson:"mode"`
	Status          string     `bson:"status"`
	PaymentStatus   string     `bson:"paymentStatus"`
	PaymentMode     string     `bson:"paymentMode"`
	BillingMonth    int        `bson:"billingMonth,omitempty"`
	BillingYear     int        `bson:"billingYear,omitempty"`
	CustomerName    string     `bson:"customerName,omitempty"`
	Phone           string     `bson:"phone,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt"`
}

func toWritten(o Order) writtenOrder {
	return writtenOrder{
		OrderID:         o.OrderID,
		Date:            dateArg(o.Date),
		DeliveryAddress: o.DeliveryAddress,
		Quantity:        o.Quantity,
		UnitPrice:       o.UnitPrice,
		Total:           o.Total,
		Mode:            o.Mode,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMode:     string(o.PaymentMode),
		BillingMonth:    o.BillingMonth,
		BillingYear:     o.BillingYear,
		CustomerName:    o.CustomerName,
		Phone:           o.Phone,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository returns a Repository over the orders collection.
func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{coll: database.Collection("orders")}
}

// EnsureIndexes creates the unique order ID index that arbitrates ID races.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection("orders").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("orderId_unique"),
		},
		{
			Keys:    bson.D{{Key: "billingYear", Value: 1}, {Key: "billingMonth", Value: 1}},
			Options: options.Index().SetName("billing_period"),
		},
	})
	if err != nil {
		return fmt.Errorf("ensure order indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) List(ctx context.Context) ([]Order, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	var out []Order
	for cur.Next(ctx) {
		var doc storedOrder
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		out = append(out, doc.toOrder())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mongoRepository) Get(ctx context.Context, orderID string) (Order, error) {
	var doc storedOrder
	err := r.coll.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Order{}, fmt.Errorf("order %s: %w", orderID, httpx.ErrNotFound)
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return doc.toOrder(), nil
}

func (r *mongoRepository) Insert(ctx context.Context, o Order) error {
	_, err := r.coll.InsertOne(ctx, toWritten(o))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("order %s: %w", o.OrderID, httpx.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// Update replaces the whole document, which also drops legacy alias fields.
func (r *mongoRepository) Update(ctx context.Context, o Order) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"orderId": o.OrderID}, toWritten(o))
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order %s: %w", o.OrderID, httpx.ErrNotFound)
	}
	return nil
}

func (r *mongoRepository) UpdateStatus(ctx context.Context, ids []string, status Status, payment PaymentStatus, at time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"orderId": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"status": string(status), "paymentStatus": string(payment), "updatedAt": at}},
	)
	if err != nil {
		return 0, fmt.Errorf("update order status: %w", err)
	}
	return res.MatchedCount, nil
}

func (r *mongoRepository) Delete(ctx context.Context, ids []string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"orderId": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete orders: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("delete all orders: %w", err)
	}
	return res.DeletedCount, nil
}
