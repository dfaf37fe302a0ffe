package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "tasklist/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// TasksCollection matches the collection name used by existing deployments.
const TasksCollection = "tasks"

type taskDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d taskDoc) toDomain() dom.Task {
	return dom.Task{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Completed: d.Completed,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// MongoTaskRepo implements TaskRepo with a MongoDB collection.
type MongoTaskRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoTaskRepo(db *mongo.Database) *MongoTaskRepo {
	return &MongoTaskRepo{
		coll: db.Collection(TasksCollection),
		// BSON dates have millisecond precision.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the createdAt index used for listing.
func (r *MongoTaskRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func (r *MongoTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	doc := taskDoc{
		ID:        primitive.NewObjectID(),
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: r.now(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return dom.Task{}, err
	}
	return doc.toDomain(), nil
}

func (r *MongoTaskRepo) GetByID(ctx context.Context, id string) (dom.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dom.Task{}, dom.ErrNotFound
	}
	var doc taskDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return dom.Task{}, mongoErr(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	list := make([]dom.Task, len(docs))
	for i := range docs {
		list[i] = docs[i].toDomain()
	}
	return list, nil
}

func (r *MongoTaskRepo) Update(ctx context.Context, id string, patch dom.TaskPatch) (dom.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dom.Task{}, dom.ErrNotFound
	}
	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *patch.Completed})
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		return dom.Task{}, mongoErr(err)
	}
	return doc.toDomain(), nil
}

func (r *MongoTaskRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return dom.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return dom.ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepo) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func mongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return dom.ErrNotFound
	}
	return err
}
