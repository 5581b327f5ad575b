package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens and pings a MongoDB connection
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

type document struct {
	Path      string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type changeEvent struct {
	OperationType string    `bson:"operationType"`
	FullDocument  *document `bson:"fullDocument"`
}

// MongoDocuments stores each path as one document holding the JSON value.
// Subscriptions use change streams, which need a replica set; on a
// standalone server only the initial value is delivered.
type MongoDocuments struct {
	coll   *mongo.Collection
	logger logrus.FieldLogger
}

func NewMongoDocuments(client *mongo.Client, database, collection string, logger logrus.FieldLogger) *MongoDocuments {
	return &MongoDocuments{
		coll:   client.Database(database).Collection(collection),
		logger: logger,
	}
}

func (m *MongoDocuments) ReadOnce(ctx context.Context, path string) ([]byte, error) {
	var doc document
	err := m.coll.FindOne(ctx, bson.M{"_id": path}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return []byte(doc.Value), nil
}

func (m *MongoDocuments) Write(ctx context.Context, path string, value []byte) error {
	if value == nil {
		_, err := m.coll.DeleteOne(ctx, bson.M{"_id": path})
		return err
	}
	doc := document{Path: path, Value: string(value), UpdatedAt: time.Now().UTC()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": path}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (m *MongoDocuments) Subscribe(ctx context.Context, path string, onChange func([]byte)) (func(), error) {
	watchCtx, cancel := context.WithCancel(context.Background())

	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: path}}}}}
	stream, err := m.coll.Watch(watchCtx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		m.logger.WithError(err).WithField("path", path).Warn("change stream unavailable, remote updates will not be pushed")
		stream = nil
	}

	initial, err := m.ReadOnce(ctx, path)
	if err != nil {
		cancel()
		if stream != nil {
			stream.Close(context.Background())
		}
		return nil, err
	}
	onChange(initial)

	if stream == nil {
		return cancel, nil
	}

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(watchCtx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				m.logger.WithError(err).Warn("decoding change event")
				continue
			}
			switch {
			case ev.OperationType == "delete":
				onChange(nil)
			case ev.FullDocument != nil:
				onChange([]byte(ev.FullDocument.Value))
			}
		}
		if err := stream.Err(); err != nil && watchCtx.Err() == nil {
			m.logger.WithError(err).WithField("path", path).Error("change stream ended")
		}
	}()
	return cancel, nil
}
