package safety

import (
	"context"
	"errors"
	"time"

	"github.com/xyz-asif/partsflip/internal/features/moderation"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository struct {
	reportsCollection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		reportsCollection: db.Collection("reports"),
	}
}

// File stores a new report, or folds it into the open report for the same
// item. aggregated is true when an existing report absorbed it.
func (r *Repository) File(ctx context.Context, report *moderation.Report) (aggregated bool, err error) {
	now := time.Now().UTC()
	open := bson.M{"$in": moderation.OpenStatuses()}

	var existing moderation.Report
	err = r.reportsCollection.FindOneAndUpdate(
		ctx,
		bson.M{
			"reportedItemType": report.ReportedItemType,
			"reportedItemId":   report.ReportedItemID,
			"status":           open,
			"reporterIds":      bson.M{"$ne": report.ReporterID},
		},
		bson.M{
			"$inc":      bson.M{"reportCount": 1},
			"$addToSet": bson.M{"reporterIds": report.ReporterID},
			"$set":      bson.M{"updatedAt": now},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&existing)
	if err == nil {
		*report = existing
		return true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}

	count, err := r.reportsCollection.CountDocuments(ctx, bson.M{
		"reportedItemType": report.ReportedItemType,
		"reportedItemId":   report.ReportedItemID,
		"status":           open,
		"reporterIds":      report.ReporterID,
	})
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, apperrors.Conflict("you have already reported this %s", report.ReportedItemType)
	}

	report.ID = primitive.NewObjectID()
	report.ReporterIDs = []primitive.ObjectID{report.ReporterID}
	report.Status = moderation.StatusOpen
	report.ReportCount = 1
	report.CreatedAt = now
	report.UpdatedAt = now

	if _, err := r.reportsCollection.InsertOne(ctx, report); err != nil {
		return false, err
	}
	return false, nil
}
