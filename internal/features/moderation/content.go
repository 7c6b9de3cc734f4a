package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xyz-asif/partsflip/internal/pkg/logger"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// contentDoc is the subset of fields shared by comments, listings, images
// and products
type contentDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Title      string             `bson:"title"`
	Body       string             `bson:"body"`
	ImageURL   string             `bson:"imageUrl"`
	PublicID   string             `bson:"publicId"`
	AuthorID   primitive.ObjectID `bson:"authorId"`
	AuthorName string             `bson:"authorName"`
	Price      float64            `bson:"price"`
	Tags       []string           `bson:"tags"`
}

type userDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Username    string             `bson:"username"`
	DisplayName string             `bson:"displayName"`
	Bio         string             `bson:"bio"`
	AvatarURL   string             `bson:"avatarUrl"`
}

// ContentRepository resolves and soft deletes reported content across the
// marketplace collections
type ContentRepository struct {
	collections map[ItemType]*mongo.Collection
	assets      AssetDestroyer
}

// NewContentRepository builds the repository. assets may be nil when image
// hosting is not configured.
func NewContentRepository(db *mongo.Database, assets AssetDestroyer) *ContentRepository {
	return &ContentRepository{
		collections: map[ItemType]*mongo.Collection{
			ItemComment: db.Collection("comments"),
			ItemListing: db.Collection("listings"),
			ItemImage:   db.Collection("images"),
			ItemProduct: db.Collection("products"),
			ItemUser:    db.Collection("users"),
		},
		assets: assets,
	}
}

func (r *ContentRepository) collection(itemType ItemType) (*mongo.Collection, error) {
	coll, ok := r.collections[itemType]
	if !ok {
		return nil, apperrors.Validation("unsupported item type %q", itemType)
	}
	return coll, nil
}

// Get returns the live item, or NotFound if it is missing or soft deleted
func (r *ContentRepository) Get(ctx context.Context, itemType ItemType, id primitive.ObjectID) (*Item, error) {
	coll, err := r.collection(itemType)
	if err != nil {
		return nil, err
	}

	res := coll.FindOne(ctx, bson.M{"_id": id, "deletedAt": nil})

	if itemType == ItemUser {
		var doc userDoc
		if err := res.Decode(&doc); err != nil {
			return nil, notFoundOr(err, itemType)
		}
		name := doc.DisplayName
		if name == "" {
			name = doc.Username
		}
		return &Item{
			ID:         doc.ID,
			Type:       ItemUser,
			Title:      name,
			Body:       doc.Bio,
			ImageURL:   doc.AvatarURL,
			AuthorID:   doc.ID,
			AuthorName: doc.Username,
		}, nil
	}

	var doc contentDoc
	if err := res.Decode(&doc); err != nil {
		return nil, notFoundOr(err, itemType)
	}
	return &Item{
		ID:         doc.ID,
		Type:       itemType,
		Title:      doc.Title,
		Body:       doc.Body,
		ImageURL:   doc.ImageURL,
		PublicID:   doc.PublicID,
		AuthorID:   doc.AuthorID,
		AuthorName: doc.AuthorName,
		Price:      doc.Price,
		Tags:       doc.Tags,
	}, nil
}

// Delete soft deletes the item. Deleting a user deactivates the account.
// Images also lose their hosted asset; a failure there is logged, the
// marketplace copy is already gone.
func (r *ContentRepository) Delete(ctx context.Context, itemType ItemType, id primitive.ObjectID) error {
	coll, err := r.collection(itemType)
	if err != nil {
		return err
	}

	var publicID string
	if itemType == ItemImage && r.assets != nil {
		var doc contentDoc
		if err := coll.FindOne(ctx, bson.M{"_id": id, "deletedAt": nil}).Decode(&doc); err != nil {
			return notFoundOr(err, itemType)
		}
		publicID = doc.PublicID
	}

	now := time.Now()
	result, err := coll.UpdateOne(
		ctx,
		bson.M{"_id": id, "deletedAt": nil},
		bson.M{"$set": bson.M{"deletedAt": now, "updatedAt": now}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("%s not found", itemType)
	}

	if publicID != "" {
		if err := r.assets.Delete(ctx, publicID, "image"); err != nil {
			logger.Warn("Failed to delete hosted image %s: %v", publicID, err)
		}
	}
	return nil
}

func notFoundOr(err error, itemType ItemType) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NotFound("%s not found", itemType)
	}
	return fmt.Errorf("load %s: %w", itemType, err)
}
