package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ideagauge/internal/model"
)

type ReportRepo interface {
	Create(ctx context.Context, report *model.EvaluationReport) error
	GetByConversation(ctx context.Context, conversationID string) (*model.EvaluationReport, error)
}

type reportRepo struct {
	collection *mongo.Collection
}

func NewReportRepo(db *mongo.Database) ReportRepo {
	return &reportRepo{
		collection: db.Collection("reports"),
	}
}

func (r *reportRepo) Create(ctx context.Context, report *model.EvaluationReport) error {
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid.Hex()
	}
	return nil
}

// GetByConversation returns the most recent report for a conversation.
func (r *reportRepo) GetByConversation(ctx context.Context, conversationID string) (*model.EvaluationReport, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var report model.EvaluationReport
	err := r.collection.FindOne(ctx, bson.M{"conversationId": conversationID}, opts).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
