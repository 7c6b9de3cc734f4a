package moderation

import (
	"context"
	"time"

	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	usersCollection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	usersCollection := db.Collection("users")

	usersCollection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "muteExpiresAt", Value: 1}},
	})

	return &UserRepository{usersCollection: usersCollection}
}

// SetMute overwrites the user's mute state. Deactivated users can still be muted.
func (r *UserRepository) SetMute(ctx context.Context, userID primitive.ObjectID, mute MuteRecord) error {
	result, err := r.usersCollection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"mutedReason":    mute.MutedReason,
			"mutedByAdminId": mute.MutedByAdminID,
			"muteExpiresAt":  mute.MuteExpiresAt,
			"updatedAt":      time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

// ListMuted returns users whose mute expires after now
func (r *UserRepository) ListMuted(ctx context.Context, now time.Time, sort MutedSort, skip, limit int) ([]MutedUser, int64, error) {
	filter := bson.M{"muteExpiresAt": bson.M{"$gt": now}}

	var sortOrder bson.D
	switch sort {
	case MutedSortName:
		sortOrder = bson.D{{Key: "username", Value: 1}, {Key: "_id", Value: 1}}
	default: // expiry
		sortOrder = bson.D{{Key: "muteExpiresAt", Value: 1}, {Key: "_id", Value: 1}}
	}

	opts := options.Find().
		SetSort(sortOrder).
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{
			"username":       1,
			"displayName":    1,
			"mutedReason":    1,
			"mutedByAdminId": 1,
			"muteExpiresAt":  1,
		})

	cursor, err := r.usersCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	users := []MutedUser{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	total, err := r.usersCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
