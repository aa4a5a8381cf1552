package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"blockflow/catalog"
	"blockflow/database"
	"blockflow/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// productDoc is the stored form of a product. Money is kept as Decimal128 so
// range filters and price sorts happen on the server.
type productDoc struct {
	ID            int64                `bson:"_id"`
	Name          string               `bson:"name"`
	Description   string               `bson:"description"`
	Category      string               `bson:"category,omitempty"`
	Dimensions    string               `bson:"dimensions"`
	PricePerUnit  primitive.Decimal128 `bson:"pricePerUnit"`
	StockQuantity int                  `bson:"stockQuantity"`
	Weight        primitive.Decimal128 `bson:"weight"`
	ViewCount     int64                `bson:"viewCount"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func newProductDoc(p *models.Product) (productDoc, error) {
	price, err := toDecimal128(p.PricePerUnit)
	if err != nil {
		return productDoc{}, err
	}
	weight, err := toDecimal128(p.Weight)
	if err != nil {
		return productDoc{}, err
	}
	return productDoc{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Dimensions:    p.Dimensions,
		PricePerUnit:  price,
		StockQuantity: p.StockQuantity,
		Weight:        weight,
		ViewCount:     p.ViewCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func (d productDoc) product() models.Product {
	return models.Product{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Category:      d.Category,
		Dimensions:    d.Dimensions,
		PricePerUnit:  fromDecimal128(d.PricePerUnit),
		StockQuantity: d.StockQuantity,
		Weight:        fromDecimal128(d.Weight),
		ViewCount:     d.ViewCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type ProductStore struct {
	coll *mongo.Collection
	seq  sequences
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection(database.ProductCollection), seq: newSequences(db)}
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	id, err := s.seq.next(ctx, database.ProductCollection)
	if err != nil {
		return err
	}
	p.ID = id
	doc, err := newProductDoc(p)
	if err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *ProductStore) Get(ctx context.Context, id int64) (*models.Product, error) {
	var doc productDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	p := doc.product()
	return &p, nil
}

func (s *ProductStore) Update(ctx context.Context, p *models.Product) error {
	doc, err := newProductDoc(p)
	if err != nil {
		return err
	}
	set := bson.M{
		"name":          doc.Name,
		"description":   doc.Description,
		"category":      doc.Category,
		"dimensions":    doc.Dimensions,
		"pricePerUnit":  doc.PricePerUnit,
		"stockQuantity": doc.StockQuantity,
		"weight":        doc.Weight,
		"updatedAt":     doc.UpdatedAt,
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

var sortFields = map[catalog.SortField]string{
	catalog.FieldID:        "_id",
	catalog.FieldName:      "name",
	catalog.FieldPrice:     "pricePerUnit",
	catalog.FieldCreatedAt: "createdAt",
	catalog.FieldViewCount: "viewCount",
}

func productFilter(q catalog.Query) (bson.M, error) {
	minPrice, err := toDecimal128(q.MinPrice)
	if err != nil {
		return nil, err
	}
	maxPrice, err := toDecimal128(q.MaxPrice)
	if err != nil {
		return nil, err
	}
	filter := bson.M{
		"pricePerUnit": bson.M{"$gte": minPrice, "$lte": maxPrice},
	}
	if q.HasCategory() {
		filter["category"] = q.Category
	}
	if q.InStock {
		filter["stockQuantity"] = bson.M{"$gt": 0}
	}
	if q.HasKeyword() {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Keyword), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return filter, nil
}

func productSort(o catalog.Order) bson.D {
	dir := 1
	if o.Desc {
		dir = -1
	}
	field := sortFields[o.Field]
	if field == "" || field == "_id" {
		return bson.D{{Key: "_id", Value: dir}}
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func (s *ProductStore) Find(ctx context.Context, q catalog.Query) ([]models.Product, int64, error) {
	filter, err := productFilter(q)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(productSort(q.Sort))
	if q.Limit > 0 {
		opts.SetSkip(int64(q.Offset)).SetLimit(int64(q.Limit))
	}

	var docs []productDoc
	if q.Limit <= 0 || q.Offset >= 0 {
		cursor, err := s.coll.Find(ctx, filter, opts)
		if err != nil {
			return nil, 0, fmt.Errorf("find products: %w", err)
		}
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, 0, fmt.Errorf("decode products: %w", err)
		}
	}

	items := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.product())
	}

	total := int64(len(items))
	if q.Limit > 0 {
		n, err := s.coll.CountDocuments(ctx, filter)
		if err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
		total = n
	}
	return items, total, nil
}

// IncrementViewCount bumps the counter with a single $inc so concurrent views are never lost.
func (s *ProductStore) IncrementViewCount(ctx context.Context, id int64) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"viewCount": 1})

	var doc struct {
		ViewCount int64 `bson:"viewCount"`
	}
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, notFound(err)
	}
	return doc.ViewCount, nil
}

func (s *ProductStore) Categories(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "category", bson.M{"category": bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *ProductStore) DecrementStock(ctx context.Context, id int64, qty int) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "stockQuantity": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stockQuantity": -qty}},
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return models.ErrInsufficientStock
	}
	return nil
}

func (s *ProductStore) RestoreStock(ctx context.Context, id int64, qty int) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"stockQuantity": qty}})
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
