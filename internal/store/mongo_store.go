package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps each collection in a MongoDB collection of the same name,
// with the document id as a string _id. Transactions need a replica set.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database)}
}

// MongoIndex describes a secondary index created by EnsureIndexes.
type MongoIndex struct {
	Collection string
	Keys       bson.D
	Unique     bool
}

// EnsureIndexes creates the given indexes; existing ones are left alone.
func (s *MongoStore) EnsureIndexes(ctx context.Context, indexes []MongoIndex) error {
	for _, idx := range indexes {
		model := mongo.IndexModel{Keys: idx.Keys}
		if idx.Unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := s.db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return errors.Wrapf(err, "create index on %s", idx.Collection)
		}
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get %s/%s", collection, id)
	}
	doc := bsonDocument(raw)
	return &doc, nil
}

func (s *MongoStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	filter := bson.D{}
	for _, f := range q.Where {
		filter = append(filter, bson.E{Key: f.Field, Value: f.Value})
	}

	findOptions := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Descending {
			dir = -1
		}
		findOptions.SetSort(bson.D{{Key: q.OrderBy, Value: dir}})
	}
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", collection)
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err = cursor.All(ctx, &raws); err != nil {
		return nil, errors.Wrapf(err, "query %s", collection)
	}

	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, bsonDocument(raw))
	}
	return docs, nil
}

func (s *MongoStore) Create(ctx context.Context, collection, id string, fields Fields) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, withID(id, fields))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return errors.Wrapf(err, "create %s/%s", collection, id)
	}
	return nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, withID(id, fields),
		options.Replace().SetUpsert(true))
	return errors.Wrapf(err, "set %s/%s", collection, id)
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields Fields) error {
	return s.updateOne(ctx, collection, id, bson.M{"$set": bson.M(fields)})
}

func (s *MongoStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	return s.updateOne(ctx, collection, id, bson.M{"$inc": bson.M{field: delta}})
}

func (s *MongoStore) updateOne(ctx context.Context, collection, id string, update bson.M) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return errors.Wrapf(err, "update %s/%s", collection, id)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return errors.Wrapf(err, "delete %s/%s", collection, id)
}

// RunTransaction runs fn inside a session transaction. The store itself is
// the Tx: every call made with the session context joins the transaction.
func (s *MongoStore) RunTransaction(ctx context.Context, fn TxFunc) error {
	session, err := s.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

// Close is a no-op: the client belongs to whoever connected it.
func (s *MongoStore) Close() error { return nil }

func withID(id string, fields Fields) bson.M {
	doc := bson.M{"_id": id}
	for k, v := range fields {
		doc[k] = v
	}
	return doc
}

// bsonDocument converts a decoded document, turning BSON dates back into
// time.Time and narrowing int32s so callers see the same types as on write.
func bsonDocument(raw bson.M) Document {
	id, _ := raw["_id"].(string)
	fields := make(Fields, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		switch val := v.(type) {
		case primitive.DateTime:
			fields[k] = val.Time().UTC()
		case int32:
			fields[k] = int64(val)
		default:
			fields[k] = val
		}
	}
	return Document{ID: id, Fields: fields}
}
