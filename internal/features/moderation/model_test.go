package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	for _, s := range OpenStatuses() {
		assert.True(t, s.Valid())
		assert.False(t, s.IsTerminal(), s)
	}
	for _, s := range PastStatuses() {
		assert.True(t, s.Valid())
		assert.True(t, s.IsTerminal(), s)
	}
	assert.False(t, Status("ignored").Valid())
	assert.False(t, Status("").IsTerminal())
}

func TestReportLabel(t *testing.T) {
	tests := []struct {
		status Status
		action ActionType
		want   string
	}{
		{StatusOpen, "", "open"},
		{StatusUnderReview, ActionDeleteItem, "under_review"},
		{StatusDismissed, ActionDismiss, LabelIgnored},
		{StatusDismissed, ActionChangeStatus, LabelIgnored},
		{StatusResolvedActionTaken, ActionDeleteItem, LabelResolvedDeleted},
		{StatusResolvedActionTaken, ActionDeleteItemMuteUser, LabelResolvedDeletedMuted},
		{StatusResolvedActionTaken, ActionChangeStatus, "resolved_action_taken"},
		{StatusResolvedNoAction, ActionChangeStatus, "resolved_no_action"},
	}
	for _, tt := range tests {
		r := Report{Status: tt.status, ActionTaken: tt.action}
		assert.Equal(t, tt.want, r.Label(), "%s/%s", tt.status, tt.action)
	}
}

func TestAdminCanModerate(t *testing.T) {
	assert.True(t, Admin{Tags: []string{"*"}}.CanModerate(nil))
	assert.True(t, Admin{Tags: []string{"engine", "brakes"}}.CanModerate([]string{"brakes"}))
	assert.False(t, Admin{Tags: []string{"engine"}}.CanModerate([]string{"brakes"}))
	assert.False(t, Admin{Tags: []string{"engine"}}.CanModerate(nil))
	assert.False(t, Admin{}.CanModerate([]string{"brakes"}))
}

func TestItemTypeAndAction(t *testing.T) {
	for _, it := range []ItemType{ItemComment, ItemListing, ItemImage, ItemUser, ItemProduct} {
		assert.True(t, it.Valid())
	}
	assert.False(t, ItemType("blog").Valid())

	assert.True(t, ActionDeleteItem.DeletesContent())
	assert.True(t, ActionDeleteItemMuteUser.DeletesContent())
	assert.False(t, ActionDismiss.DeletesContent())
	assert.False(t, ActionChangeStatus.DeletesContent())
	assert.False(t, ActionType("ban").Valid())
}

func TestItemSnapshot(t *testing.T) {
	item := Item{Title: "Brake pads", Body: "OEM", ImageURL: "https://img", AuthorName: "seller", Price: 42.5, PublicID: "pf/1"}
	snap := item.Snapshot()
	assert.Equal(t, Snapshot{Title: "Brake pads", Body: "OEM", ImageURL: "https://img", AuthorName: "seller", Price: 42.5}, snap)
}
