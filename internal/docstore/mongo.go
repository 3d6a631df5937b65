package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores each document as {_id: key, body, updatedAt} in the
// documents collection.
type Mongo struct {
	coll *mongo.Collection
}

// NewMongo returns a Store over db.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{coll: db.Collection("documents")}
}

type mongoDoc struct {
	Key       string    `bson:"_id"`
	Body      bson.Raw  `bson:"body"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (m *Mongo) Load(ctx context.Context, key string, dest any) error {
	var doc mongoDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound(key)
	}
	if err != nil {
		return fmt.Errorf("load document %s: %w", key, err)
	}
	raw, err := fromBSON(doc.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (m *Mongo) Save(ctx context.Context, key string, doc any) error {
	body, err := toBSON(doc)
	if err != nil {
		return err
	}
	record := mongoDoc{Key: key, Body: body, UpdatedAt: time.Now().UTC()}
	_, err = m.coll.ReplaceOne(ctx, bson.M{"_id": key}, record, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save document %s: %w", key, err)
	}
	return nil
}

// toBSON goes through JSON so documents keep their json field names.
func toBSON(doc any) (bson.Raw, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out bson.Raw
	if err := bson.UnmarshalExtJSON(wrap(raw), false, &out); err != nil {
		return nil, fmt.Errorf("convert document: %w", err)
	}
	return out, nil
}

func fromBSON(body bson.Raw) ([]byte, error) {
	raw, err := bson.MarshalExtJSON(body, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert document: %w", err)
	}
	var wrapper struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.V, nil
}

// wrap nests raw under "v" so arrays and scalars are valid BSON documents.
func wrap(raw []byte) []byte {
	out := make([]byte, 0, len(raw)+8)
	out = append(out, `{"v":`...)
	out = append(out, raw...)
	return append(out, '}')
}
