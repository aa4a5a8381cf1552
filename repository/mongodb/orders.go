package mongodb

import (
	"context"
	"fmt"
	"time"

	"blockflow/database"
	"blockflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderDoc struct {
	ID           int64                `bson:"_id"`
	OrderDate    time.Time            `bson:"orderDate"`
	ProductID    int64                `bson:"productId"`
	Quantity     int                  `bson:"quantity"`
	TotalAmount  primitive.Decimal128 `bson:"totalAmount"`
	CustomerName string               `bson:"customerName"`
	Status       models.OrderStatus   `bson:"status"`
	UserID       int64                `bson:"userId"`
}

func newOrderDoc(o *models.Order) (orderDoc, error) {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return orderDoc{}, err
	}
	return orderDoc{
		ID:           o.ID,
		OrderDate:    o.OrderDate,
		ProductID:    o.ProductID,
		Quantity:     o.Quantity,
		TotalAmount:  total,
		CustomerName: o.CustomerName,
		Status:       o.Status,
		UserID:       o.UserID,
	}, nil
}

func (d orderDoc) order() models.Order {
	return models.Order{
		ID:           d.ID,
		OrderDate:    d.OrderDate,
		ProductID:    d.ProductID,
		Quantity:     d.Quantity,
		TotalAmount:  fromDecimal128(d.TotalAmount),
		CustomerName: d.CustomerName,
		Status:       d.Status,
		UserID:       d.UserID,
	}
}

type OrderStore struct {
	coll *mongo.Collection
	seq  sequences
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{coll: db.Collection(database.OrderCollection), seq: newSequences(db)}
}

func (s *OrderStore) Create(ctx context.Context, o *models.Order) error {
	id, err := s.seq.next(ctx, database.OrderCollection)
	if err != nil {
		return err
	}
	o.ID = id
	doc, err := newOrderDoc(o)
	if err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	var doc orderDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	o := doc.order()
	return &o, nil
}

func (s *OrderStore) List(ctx context.Context, userID int64) ([]models.Order, error) {
	filter := bson.M{}
	if userID != 0 {
		filter["userId"] = userID
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.order())
	}
	return out, nil
}

func (s *OrderStore) Update(ctx context.Context, o *models.Order) error {
	doc, err := newOrderDoc(o)
	if err != nil {
		return err
	}
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": o.ID}, doc)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *OrderStore) Delete(ctx context.Context, id int64) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
