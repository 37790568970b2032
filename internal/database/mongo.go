package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

const filesCollection = "files"

// MongoStore keeps FileRecords in the "files" collection.
type MongoStore struct {
	client *mongo.Client
	files  *mongo.Collection
}

// NewMongoStore connects, pings and makes sure the listing index exists.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{
		client: client,
		files:  client.Database(dbName).Collection(filesCollection),
	}
	_, err = s.files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}},
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Insert(ctx context.Context, rec *models.FileRecord) (models.ID, error) {
	doc := newFileDocument(rec)
	res, err := s.files.InsertOne(ctx, doc)
	if err != nil {
		return "", storeErr("insert file", err)
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", storeErr("insert file", fmt.Errorf("unexpected id type %T", res.InsertedID))
	}
	return models.ID(oid.Hex()), nil
}

func (s *MongoStore) FindByID(ctx context.Context, id models.ID, ownerID string) (*models.FileRecord, error) {
	return s.FindOne(ctx, Filter{ID: id, OwnerID: ownerID})
}

func (s *MongoStore) FindPublicOrOwned(ctx context.Context, id models.ID, ownerID string) (*models.FileRecord, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{
		"_id": oid,
		"$or": bson.A{bson.M{"isPublic": true}, bson.M{"userId": ownerID}},
	})
}

func (s *MongoStore) FindOne(ctx context.Context, filter Filter) (*models.FileRecord, error) {
	q := bson.M{}
	if filter.ID != "" {
		oid, ok := objectID(filter.ID)
		if !ok {
			return nil, nil
		}
		q["_id"] = oid
	}
	if filter.OwnerID != "" {
		q["userId"] = filter.OwnerID
	}
	if filter.Kind != "" {
		q["type"] = string(filter.Kind)
	}
	return s.findOne(ctx, q)
}

func (s *MongoStore) findOne(ctx context.Context, q bson.M) (*models.FileRecord, error) {
	var doc fileDocument
	err := s.files.FindOne(ctx, q).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find file", err)
	}
	return doc.record(), nil
}

func (s *MongoStore) List(ctx context.Context, ownerID string, parentID models.ID, page, pageSize int) ([]*models.FileRecord, error) {
	skip, limit, beyond, err := pageWindow(page, pageSize)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		parentID = models.RootID
	}
	q := bson.M{"userId": ownerID, "parentId": string(parentID)}

	var docs []fileDocument
	if !beyond {
		// Natural order is insertion order for a collection without deletes.
		opts := options.Find().SetSkip(int64(skip)).SetLimit(int64(limit))
		cur, err := s.files.Find(ctx, q, opts)
		if err != nil {
			return nil, storeErr("list files", err)
		}
		if err := cur.All(ctx, &docs); err != nil {
			return nil, storeErr("decode files", err)
		}
	}

	if len(docs) == 0 && page > 0 {
		total, err := s.files.CountDocuments(ctx, q)
		if err != nil {
			return nil, storeErr("count files", err)
		}
		if pastEnd(page, 0, total) {
			return nil, models.ErrPageOutOfRange
		}
	}

	out := make([]*models.FileRecord, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].record())
	}
	return out, nil
}

func (s *MongoStore) UpdateField(ctx context.Context, id models.ID, ownerID, field string, value any) (*models.FileRecord, error) {
	if _, err := checkUpdate(field, value); err != nil {
		return nil, err
	}
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var doc fileDocument
	err := s.files.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "userId": ownerID},
		bson.M{"$set": bson.M{field: value}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("update file", err)
	}
	return doc.record(), nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.files.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, storeErr("count files", err)
	}
	return n, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
