package mongostore

import (
	"context"

	"moderation-admin/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// LogStore — 只追加，无更新/删除操作
// ============================================================================

func (s *Store) CreateLogEntry(ctx context.Context, entry *model.LogEntry) error {
	return insertOne(ctx, s.col(ColLogs), entry)
}

func (s *Store) ListLogEntries(ctx context.Context) ([]*model.LogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.LogEntry](ctx, s.col(ColLogs), bson.D{}, opts)
}
