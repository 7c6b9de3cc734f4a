package safety

import (
	"strings"

	"github.com/xyz-asif/partsflip/internal/features/moderation"
	"github.com/xyz-asif/partsflip/internal/pkg/validator"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	minReasonLength = 5
	maxReasonLength = 1000
)

// ValidateCreateReportRequest trims the request and returns the parsed item
func ValidateCreateReportRequest(req *CreateReportRequest) (moderation.ItemType, primitive.ObjectID, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	itemType := moderation.ItemType(strings.ToLower(strings.TrimSpace(req.ItemType)))

	if !itemType.Valid() {
		return "", primitive.NilObjectID, apperrors.Validation("itemType must be one of: comment, listing, image, user, product")
	}

	itemID, err := primitive.ObjectIDFromHex(req.ItemID)
	if err != nil {
		return "", primitive.NilObjectID, apperrors.Validation("itemId is not a valid id")
	}

	if !validator.LengthBetween(req.Reason, minReasonLength, maxReasonLength) {
		return "", primitive.NilObjectID, apperrors.Validation("reason must be between %d and %d characters", minReasonLength, maxReasonLength)
	}

	return itemType, itemID, nil
}
