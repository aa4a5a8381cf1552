// Package mongodb stores products, users, orders and revoked tokens in MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"blockflow/database"
	"blockflow/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sequences hands out int64 ids per collection from a counters document.
type sequences struct {
	coll *mongo.Collection
}

func newSequences(db *mongo.Database) sequences {
	return sequences{coll: db.Collection(database.CounterCollection)}
}

func (s sequences) next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrConflict
	}
	return err
}
