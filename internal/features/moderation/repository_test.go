package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestClaimableFilter(t *testing.T) {
	id := primitive.NewObjectID()
	stale := testNow.Add(-time.Minute)

	assert.Equal(t, bson.M{
		"_id":    id,
		"status": bson.M{"$in": []Status{StatusOpen, StatusUnderReview}},
		"$or": bson.A{
			bson.M{"pendingAction": nil},
			bson.M{"pendingAction.claimedAt": bson.M{"$lt": stale}},
		},
	}, claimableFilter(id, stale))
}

func TestClaimOwnerFilter(t *testing.T) {
	id := primitive.NewObjectID()
	assert.Equal(t, bson.M{"_id": id, "pendingAction.token": "tok-1"}, claimOwnerFilter(id, "tok-1"))
}

func TestResolveUpdate(t *testing.T) {
	admin := primitive.NewObjectID()
	upd := StatusUpdate{
		Status:  StatusResolvedActionTaken,
		Reason:  "spam",
		AdminID: admin,
		Action:  ActionDeleteItem,
		At:      testNow,
	}

	got := resolveUpdate(upd)
	assert.Equal(t, bson.M{"pendingAction": ""}, got["$unset"])
	assert.Equal(t, bson.M{
		"status":            StatusResolvedActionTaken,
		"adminActionReason": "spam",
		"resolvedByAdminId": admin,
		"actionTaken":       ActionDeleteItem,
		"updatedAt":         testNow,
	}, got["$set"])

	upd.MuteDurationDays = 7
	set, ok := resolveUpdate(upd)["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, 7, set["muteDurationDays"])
}

// The in-memory fakes must accept exactly what the Mongo filters accept.
func TestFakeMatchesClaimableFilter(t *testing.T) {
	stale := testNow.Add(-time.Minute)
	inFilter := map[Status]bool{}
	for _, s := range claimableFilter(primitive.NewObjectID(), stale)["status"].(bson.M)["$in"].([]Status) {
		inFilter[s] = true
	}

	for _, s := range append(OpenStatuses(), PastStatuses()...) {
		r := &Report{Status: s}
		assert.Equal(t, inFilter[s], fakeUnclaimed(r, stale), "status %s", s)
	}

	tests := []struct {
		name      string
		claimedAt time.Time
		want      bool
	}{
		{"older than cutoff", stale.Add(-time.Second), true},
		{"at cutoff", stale, false},
		{"newer than cutoff", stale.Add(time.Second), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Report{Status: StatusOpen, PendingAction: &Claim{Token: "t", ClaimedAt: tt.claimedAt}}
			// $lt is strict
			assert.Equal(t, tt.want, fakeUnclaimed(r, stale))
		})
	}
}
