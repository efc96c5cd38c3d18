package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/133matt/ChatServer/internal/models"
)

// mongoMessage is the document shape for the messages collection.
type mongoMessage struct {
	ID          string `bson:"_id"`
	Username    string `bson:"username"`
	Body        string `bson:"body,omitempty"`
	Media       string `bson:"media,omitempty"`
	MediaKind   string `bson:"media_kind,omitempty"`
	Device      string `bson:"device,omitempty"`
	SourceURL   string `bson:"source_url,omitempty"`
	SourceTitle string `bson:"source_title,omitempty"`
	Timestamp   int64  `bson:"ts"`
}

// MongoStore persists messages in a MongoDB collection.
type MongoStore struct {
	client   *mongo.Client
	messages *mongo.Collection
}

// NewMongoStore connects a MongoDB-backed message store and ensures the
// timestamp index exists.
func NewMongoStore(ctx context.Context, mongoURL, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(mongoURL).
		SetMaxPoolSize(20).
		SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	messages := client.Database(dbName).Collection("messages")

	_, err = messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ts", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &MongoStore{client: client, messages: messages}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// Ping checks the MongoDB connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Append inserts the message document.
func (s *MongoStore) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	stored := *msg
	if stored.ID == "" {
		stored.ID = NewID()
	}

	doc := mongoMessage{
		ID:          stored.ID,
		Username:    stored.Username,
		Body:        stored.Text,
		Media:       stored.Media,
		MediaKind:   stored.MediaKind,
		Device:      stored.Device,
		SourceURL:   stored.SourceURL,
		SourceTitle: stored.SourceTitle,
		Timestamp:   stored.Timestamp,
	}

	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return nil, unavailable(err)
	}
	return &stored, nil
}

// List returns the most recent limit messages, oldest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	cursor, err := s.messages.Find(ctx, bson.D{}, options.Find().
		SetSort(bson.D{{Key: "ts", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, unavailable(err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	for cursor.Next(ctx) {
		var doc mongoMessage
		if err := cursor.Decode(&doc); err != nil {
			return nil, unavailable(err)
		}
		messages = append(messages, models.Message{
			ID:          doc.ID,
			Username:    doc.Username,
			Text:        doc.Body,
			Media:       doc.Media,
			MediaKind:   doc.MediaKind,
			Device:      doc.Device,
			SourceURL:   doc.SourceURL,
			SourceTitle: doc.SourceTitle,
			Timestamp:   doc.Timestamp,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, unavailable(err)
	}

	reverse(messages)
	return messages, nil
}

// Delete removes one message by ID.
func (s *MongoStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.messages.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, unavailable(err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteAll removes every message.
func (s *MongoStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.messages.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, unavailable(err)
	}
	return res.DeletedCount, nil
}

// PurgeBefore removes messages older than cutoff.
func (s *MongoStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.messages.DeleteMany(ctx, bson.D{
		{Key: "ts", Value: bson.D{{Key: "$lt", Value: cutoff.UnixMilli()}}},
	})
	if err != nil {
		return 0, unavailable(err)
	}
	return res.DeletedCount, nil
}
