package mongostore

import (
	"context"
	"time"

	"moderation-admin/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) GetUserByRefreshToken(ctx context.Context, token string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "refresh_token", Value: token}})
}

func (s *Store) SetUserRefreshToken(ctx context.Context, id string, token *string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "refresh_token", Value: token},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) UpdateUserStatus(ctx context.Context, id string, status model.UserStatus) (*model.User, error) {
	return findOneAndUpdate[model.User](ctx, s.col(ColUsers), id, bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColUsers), id)
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, opts)
}

func (s *Store) GetUserSummaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error) {
	result := make(map[string]*model.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	users, err := findMany[model.User](ctx, s.col(ColUsers),
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u.Summary()
	}
	return result, nil
}
