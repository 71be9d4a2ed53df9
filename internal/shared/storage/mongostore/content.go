package mongostore

import (
	"context"
	"time"

	"moderation-admin/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ContentStore
// ============================================================================

func (s *Store) CreateContent(ctx context.Context, content *model.Content) error {
	return insertOne(ctx, s.col(ColContents), content)
}

func (s *Store) GetContentByID(ctx context.Context, id string) (*model.Content, error) {
	return findOne[model.Content](ctx, s.col(ColContents), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListContentByStatus(ctx context.Context, status model.ContentStatus) ([]*model.Content, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Content](ctx, s.col(ColContents),
		bson.D{{Key: "status", Value: status}}, opts)
}

func (s *Store) ListContentByCreator(ctx context.Context, userID string) ([]*model.Content, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Content](ctx, s.col(ColContents),
		bson.D{{Key: "created_by", Value: userID}}, opts)
}

func (s *Store) SetContentFeedback(ctx context.Context, id, feedback string, status model.ContentStatus) (*model.Content, error) {
	fields := bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: time.Now()},
	}
	// 空反馈表示仅变更状态，保留已有反馈
	if feedback != "" {
		fields = append(fields, bson.E{Key: "feedback", Value: feedback})
	}
	return findOneAndUpdate[model.Content](ctx, s.col(ColContents), id, fields)
}
