package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ideagauge/internal/model"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

type ConversationRepo interface {
	Create(ctx context.Context, conv *model.Conversation) error
	GetByID(ctx context.Context, id string) (*model.Conversation, error)
	UpdateSchema(ctx context.Context, id string, s model.Schema) error
	ListByClient(ctx context.Context, clientID string) ([]*model.Conversation, error)
}

type conversationRepo struct {
	collection *mongo.Collection
}

func NewConversationRepo(db *mongo.Database) ConversationRepo {
	return &conversationRepo{
		collection: db.Collection("conversations"),
	}
}

func (r *conversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	now := time.Now().UTC()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, conv)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		conv.ID = oid.Hex()
	}
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (*model.Conversation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var conv model.Conversation
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// UpdateSchema replaces the embedded schema wholesale. The schema value is
// superseded, never patched field by field here; merging happens upstream.
func (r *conversationRepo) UpdateSchema(ctx context.Context, id string, s model.Schema) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"schema":    s,
		"updatedAt": time.Now().UTC(),
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *conversationRepo) ListByClient(ctx context.Context, clientID string) ([]*model.Conversation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"clientId": clientID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []*model.Conversation
	if err = cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}
