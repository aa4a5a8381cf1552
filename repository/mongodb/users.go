package mongodb

import (
	"context"
	"fmt"
	"time"

	"blockflow/database"
	"blockflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID        int64       `bson:"_id"`
	Username  string      `bson:"username"`
	Email     string      `bson:"email"`
	Password  string      `bson:"password"`
	FirstName string      `bson:"firstName,omitempty"`
	LastName  string      `bson:"lastName,omitempty"`
	Role      models.Role `bson:"role"`
	Enabled   bool        `bson:"enabled"`
	CreatedAt time.Time   `bson:"createdAt"`
}

func (d userDoc) user() *models.User {
	u := models.User(d)
	return &u
}

type UserStore struct {
	coll *mongo.Collection
	seq  sequences
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(database.UserCollection), seq: newSequences(db)}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	id, err := s.seq.next(ctx, database.UserCollection)
	if err != nil {
		return err
	}
	u.ID = id
	if _, err := s.coll.InsertOne(ctx, userDoc(*u)); err != nil {
		return duplicate(err)
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.user(), nil
}

func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, userDoc(*u))
	if err != nil {
		return duplicate(err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]models.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.user())
	}
	return out, nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}

// Blacklist keeps revoked tokens in blacklist_tokens. A TTL index on expiresAt
// lets the server drop them once they could no longer be used.
type Blacklist struct {
	coll *mongo.Collection
}

func NewBlacklist(db *mongo.Database) *Blacklist {
	return &Blacklist{coll: db.Collection(database.BlacklistCollection)}
}

func (b *Blacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := b.coll.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"token": token, "expiresAt": expiresAt, "createdAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.coll.CountDocuments(ctx, bson.M{"token": token, "expiresAt": bson.M{"$gt": time.Now().UTC()}})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
