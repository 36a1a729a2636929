package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrdersCollection is the collection orders are stored in.
const OrdersCollection = "orders"

// orderDocument is the stored shape of an order. Amounts are kept as
// decimal strings so no precision is lost.
type orderDocument struct {
	ID           string              `bson:"_id"`
	SessionID    string              `bson:"session_id"`
	CustomerName string              `bson:"customer_name"`
	Email        string              `bson:"email"`
	Address      string              `bson:"address"`
	City         string              `bson:"city"`
	PostalCode   string              `bson:"postal_code"`
	Items        []orderItemDocument `bson:"items"`
	Subtotal     int64               `bson:"subtotal"`
	Tax          string              `bson:"tax"`
	Total        string              `bson:"total"`
	CardLast4    string              `bson:"card_last4"`
	Status       string              `bson:"status"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at"`
}

type orderItemDocument struct {
	ProductID string `bson:"product_id"`
	Title     string `bson:"title"`
	Quantity  int    `bson:"quantity"`
	Price     int64  `bson:"price"`
}

func toOrderDocument(o *models.Order) orderDocument {
	items := make([]orderItemDocument, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemDocument(it)
	}
	return orderDocument{
		ID:           o.ID,
		SessionID:    o.SessionID,
		CustomerName: o.CustomerName,
		Email:        o.Email,
		Address:      o.Shipping.Address,
		City:         o.Shipping.City,
		PostalCode:   o.Shipping.PostalCode,
		Items:        items,
		Subtotal:     o.Subtotal,
		Tax:          o.Tax.String(),
		Total:        o.Total.String(),
		CardLast4:    o.CardLast4,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (d orderDocument) toModel() (models.Order, error) {
	tax, err := decimal.NewFromString(d.Tax)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s tax: %w", d.ID, err)
	}
	total, err := decimal.NewFromString(d.Total)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s total: %w", d.ID, err)
	}
	items := make([]models.OrderItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = models.OrderItem(it)
	}
	return models.Order{
		ID:           d.ID,
		SessionID:    d.SessionID,
		CustomerName: d.CustomerName,
		Email:        d.Email,
		Shipping: models.ShippingAddress{
			Address:    d.Address,
			City:       d.City,
			PostalCode: d.PostalCode,
		},
		Items:     items,
		Subtotal:  d.Subtotal,
		Tax:       tax,
		Total:     total,
		CardLast4: d.CardLast4,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// MongoOrderRepository is a MongoDB implementation of OrderRepository.
type MongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		coll: db.Collection(OrdersCollection),
	}
}

// GetAll retrieves all orders, newest first.
func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	orders := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// GetByID retrieves an order by its ID.
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var doc orderDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	order, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Create inserts a new order document.
func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	order.UpdatedAt = order.CreatedAt

	if _, err := r.coll.InsertOne(ctx, toOrderDocument(order)); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
