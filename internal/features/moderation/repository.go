package moderation

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepository struct {
	reportsCollection *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	reportsCollection := db.Collection("reports")

	// Create indexes
	reportsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "reportedItemType", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "updatedAt", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "associatedTags", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "reportedItemType", Value: 1},
				{Key: "reportedItemId", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	})

	return &ReportRepository{reportsCollection: reportsCollection}
}

func reportSortOrder(sort ReportSort) bson.D {
	switch sort {
	case SortResolved:
		return bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}}
	case SortMostReported:
		return bson.D{{Key: "reportCount", Value: -1}, {Key: "_id", Value: -1}}
	default: // newest
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}

// FindByID retrieves a report by ID
func (r *ReportRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Report, error) {
	var report Report
	err := r.reportsCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("report not found")
		}
		return nil, err
	}
	return &report, nil
}

// List returns one page of reports and the total matching the query
func (r *ReportRepository) List(ctx context.Context, q ReportQuery) ([]Report, int64, error) {
	filter := bson.M{"status": bson.M{"$in": q.Statuses}}
	if q.ContentType != "" {
		filter["reportedItemType"] = q.ContentType
	}
	if len(q.AnyTags) > 0 {
		filter["associatedTags"] = bson.M{"$in": q.AnyTags}
	}

	opts := options.Find().
		SetSort(reportSortOrder(q.Sort)).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))

	cursor, err := r.reportsCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	reports := []Report{}
	if err = cursor.All(ctx, &reports); err != nil {
		return nil, 0, err
	}

	total, err := r.reportsCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

// unclaimed matches reports with no claim or an abandoned one
func unclaimed(staleBefore time.Time) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"pendingAction": nil},
		bson.M{"pendingAction.claimedAt": bson.M{"$lt": staleBefore}},
	}}
}

// claimableFilter matches a non-terminal report nobody holds a live claim on
func claimableFilter(id primitive.ObjectID, staleBefore time.Time) bson.M {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": OpenStatuses()},
	}
	for k, v := range unclaimed(staleBefore) {
		filter[k] = v
	}
	return filter
}

// claimOwnerFilter matches a report only while token still holds its claim
func claimOwnerFilter(id primitive.ObjectID, token string) bson.M {
	return bson.M{"_id": id, "pendingAction.token": token}
}

// resolveUpdate writes the new status and drops any claim
func resolveUpdate(upd StatusUpdate) bson.M {
	return bson.M{
		"$set":   resolutionSet(upd),
		"$unset": bson.M{"pendingAction": ""},
	}
}

func resolutionSet(upd StatusUpdate) bson.M {
	set := bson.M{
		"status":            upd.Status,
		"adminActionReason": upd.Reason,
		"resolvedByAdminId": upd.AdminID,
		"actionTaken":       upd.Action,
		"updatedAt":         upd.At,
	}
	if upd.MuteDurationDays > 0 {
		set["muteDurationDays"] = upd.MuteDurationDays
	}
	return set
}

// ApplyStatus is the compare-and-set for status-only actions
func (r *ReportRepository) ApplyStatus(ctx context.Context, id primitive.ObjectID, upd StatusUpdate, staleBefore time.Time) (*Report, error) {
	return r.findOneAndUpdate(ctx, id, claimableFilter(id, staleBefore), resolveUpdate(upd))
}

// Claim sets pendingAction on a non-terminal, unclaimed report
func (r *ReportRepository) Claim(ctx context.Context, id primitive.ObjectID, claim Claim, staleBefore time.Time) (*Report, error) {
	update := bson.M{"$set": bson.M{"pendingAction": claim}}
	return r.findOneAndUpdate(ctx, id, claimableFilter(id, staleBefore), update)
}

// CompleteClaim finalizes a multi-step action owned by token
func (r *ReportRepository) CompleteClaim(ctx context.Context, id primitive.ObjectID, token string, upd StatusUpdate) (*Report, error) {
	return r.findOneAndUpdate(ctx, id, claimOwnerFilter(id, token), resolveUpdate(upd))
}

// ReleaseClaim drops the claim without changing the report
func (r *ReportRepository) ReleaseClaim(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := r.reportsCollection.UpdateOne(
		ctx,
		claimOwnerFilter(id, token),
		bson.M{"$unset": bson.M{"pendingAction": ""}},
	)
	return err
}

// findOneAndUpdate runs a conditional update. A miss is NotFound when the
// report does not exist and Conflict otherwise.
func (r *ReportRepository) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, filter, update bson.M) (*Report, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var report Report
	err := r.reportsCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&report)
	if err == nil {
		return &report, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	count, err := r.reportsCollection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperrors.NotFound("report not found")
	}
	return nil, apperrors.Conflict("report was already resolved or is being handled by another admin")
}
