package moderation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportStore persists reports. Every write is a conditional update on the
// stored document, so concurrent admins on separate instances cannot both
// transition the same report.
type ReportStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*Report, error)
	List(ctx context.Context, q ReportQuery) ([]Report, int64, error)

	// ApplyStatus writes upd if the report is non-terminal and holds no claim
	// newer than staleBefore.
	ApplyStatus(ctx context.Context, id primitive.ObjectID, upd StatusUpdate, staleBefore time.Time) (*Report, error)

	// Claim reserves a non-terminal report for a multi-step action.
	Claim(ctx context.Context, id primitive.ObjectID, claim Claim, staleBefore time.Time) (*Report, error)
	// CompleteClaim writes upd and clears the claim if token still owns it.
	CompleteClaim(ctx context.Context, id primitive.ObjectID, token string, upd StatusUpdate) (*Report, error)
	ReleaseClaim(ctx context.Context, id primitive.ObjectID, token string) error
}

// ContentStore reads and removes reported content. Both methods return a
// NotFound error when the item does not resolve.
type ContentStore interface {
	Get(ctx context.Context, itemType ItemType, id primitive.ObjectID) (*Item, error)
	Delete(ctx context.Context, itemType ItemType, id primitive.ObjectID) error
}

// UserStore holds the mute state of users
type UserStore interface {
	SetMute(ctx context.Context, userID primitive.ObjectID, mute MuteRecord) error
	ListMuted(ctx context.Context, now time.Time, sort MutedSort, skip, limit int) ([]MutedUser, int64, error)
}

// AssetDestroyer removes hosted media for deleted images
type AssetDestroyer interface {
	Delete(ctx context.Context, publicID string, resourceType string) error
}
