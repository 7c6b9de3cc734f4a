package moderation

import (
	"time"

	"github.com/xyz-asif/partsflip/internal/pkg/jwt"
	"github.com/xyz-asif/partsflip/internal/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemType is the kind of content a report points at
type ItemType string

const (
	ItemComment ItemType = "comment"
	ItemListing ItemType = "listing"
	ItemImage   ItemType = "image"
	ItemUser    ItemType = "user"
	ItemProduct ItemType = "product"
)

var itemTypes = []ItemType{ItemComment, ItemListing, ItemImage, ItemUser, ItemProduct}

// Valid reports whether t is one of the known item types
func (t ItemType) Valid() bool {
	for _, known := range itemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Status of a report
type Status string

const (
	StatusOpen                Status = "open"
	StatusUnderReview         Status = "under_review"
	StatusResolvedActionTaken Status = "resolved_action_taken"
	StatusResolvedNoAction    Status = "resolved_no_action"
	StatusDismissed           Status = "dismissed"
)

// Valid reports whether s is one of the five stored statuses
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusUnderReview, StatusResolvedActionTaken, StatusResolvedNoAction, StatusDismissed:
		return true
	}
	return false
}

// IsTerminal reports whether no further admin action is permitted
func (s Status) IsTerminal() bool {
	switch s {
	case StatusResolvedActionTaken, StatusResolvedNoAction, StatusDismissed:
		return true
	}
	return false
}

// OpenStatuses are the statuses of the review queue
func OpenStatuses() []Status {
	return []Status{StatusOpen, StatusUnderReview}
}

// PastStatuses are the terminal statuses
func PastStatuses() []Status {
	return []Status{StatusResolvedActionTaken, StatusResolvedNoAction, StatusDismissed}
}

// ChangeStatusTargets are the statuses an admin may set directly
func ChangeStatusTargets() []Status {
	return []Status{StatusUnderReview, StatusResolvedActionTaken, StatusResolvedNoAction, StatusDismissed}
}

// ActionType is the closed set of moderation actions
type ActionType string

const (
	ActionDismiss            ActionType = "dismiss"
	ActionDeleteItem         ActionType = "delete_item"
	ActionDeleteItemMuteUser ActionType = "delete_item_mute_user"
	ActionChangeStatus       ActionType = "change_status"
)

// Valid reports whether a is a known action
func (a ActionType) Valid() bool {
	switch a {
	case ActionDismiss, ActionDeleteItem, ActionDeleteItemMuteUser, ActionChangeStatus:
		return true
	}
	return false
}

// DeletesContent reports whether the action removes the reported item
func (a ActionType) DeletesContent() bool {
	return a == ActionDeleteItem || a == ActionDeleteItemMuteUser
}

// Allowed mute durations in days
const (
	MinMuteDays = 1
	MaxMuteDays = 30
)

// Status labels shown in the past reports view
const (
	LabelIgnored              = "ignored"
	LabelResolvedDeleted      = "resolved_deleted"
	LabelResolvedDeletedMuted = "resolved_deleted_muted"
)

// Snapshot is the copy of the reported item taken when the report was filed
type Snapshot struct {
	Title      string             `bson:"title,omitempty" json:"title,omitempty"`
	Body       string             `bson:"body,omitempty" json:"body,omitempty"`
	ImageURL   string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	AuthorID   primitive.ObjectID `bson:"authorId,omitempty" json:"authorId,omitempty"`
	AuthorName string             `bson:"authorName,omitempty" json:"authorName,omitempty"`
	Price      float64            `bson:"price,omitempty" json:"price,omitempty"`
}

// Claim marks a delete action in flight. A claim older than the configured
// TTL is treated as abandoned.
type Claim struct {
	Token     string             `bson:"token" json:"-"`
	AdminID   primitive.ObjectID `bson:"adminId" json:"adminId"`
	Action    ActionType         `bson:"action" json:"action"`
	ClaimedAt time.Time          `bson:"claimedAt" json:"claimedAt"`
}

// Report is a user's complaint about a content item
type Report struct {
	ID                   primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ReportedItemType     ItemType             `bson:"reportedItemType" json:"reportedItemType"`
	ReportedItemID       primitive.ObjectID   `bson:"reportedItemId" json:"reportedItemId"`
	ReportedItemSnapshot Snapshot             `bson:"reportedItemSnapshot" json:"reportedItemSnapshot"`
	ReporterID           primitive.ObjectID   `bson:"reporterId" json:"reporterId"`
	ReporterIDs          []primitive.ObjectID `bson:"reporterIds" json:"-"`
	Reason               string               `bson:"reason" json:"reason"`
	AssociatedTags       []string             `bson:"associatedTags" json:"associatedTags"`
	Status               Status               `bson:"status" json:"status"`
	ReportCount          int                  `bson:"reportCount" json:"reportCount"`
	AdminActionReason    string               `bson:"adminActionReason,omitempty" json:"adminActionReason,omitempty"`
	ResolvedByAdminID    *primitive.ObjectID  `bson:"resolvedByAdminId,omitempty" json:"resolvedByAdminId,omitempty"`
	MuteDurationDays     int                  `bson:"muteDurationDays,omitempty" json:"muteDurationDays,omitempty"`
	ActionTaken          ActionType           `bson:"actionTaken,omitempty" json:"actionTaken,omitempty"`
	PendingAction        *Claim               `bson:"pendingAction,omitempty" json:"pendingAction,omitempty"`
	CreatedAt            time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Label projects the stored status onto the label used by the past view
func (r *Report) Label() string {
	switch r.Status {
	case StatusDismissed:
		return LabelIgnored
	case StatusResolvedActionTaken:
		switch r.ActionTaken {
		case ActionDeleteItem:
			return LabelResolvedDeleted
		case ActionDeleteItemMuteUser:
			return LabelResolvedDeletedMuted
		}
	}
	return string(r.Status)
}

// Item is the live projection of reported content
type Item struct {
	ID         primitive.ObjectID `json:"id"`
	Type       ItemType           `json:"type"`
	Title      string             `json:"title,omitempty"`
	Body       string             `json:"body,omitempty"`
	ImageURL   string             `json:"imageUrl,omitempty"`
	PublicID   string             `json:"-"`
	AuthorID   primitive.ObjectID `json:"authorId,omitempty"`
	AuthorName string             `json:"authorName,omitempty"`
	Price      float64            `json:"price,omitempty"`
	Tags       []string           `json:"tags,omitempty"`
}

// HasAuthor reports whether the item can be traced back to a user
func (i *Item) HasAuthor() bool {
	return !i.AuthorID.IsZero()
}

// Snapshot copies the salient fields for a new report
func (i *Item) Snapshot() Snapshot {
	return Snapshot{
		Title:      i.Title,
		Body:       i.Body,
		ImageURL:   i.ImageURL,
		AuthorID:   i.AuthorID,
		AuthorName: i.AuthorName,
		Price:      i.Price,
	}
}

// ReportView is a report together with its live item. ReportedItem is nil when
// the item no longer resolves; callers fall back to ReportedItemSnapshot.
type ReportView struct {
	Report
	ReportedItem *Item `json:"reportedItem"`
	StatusLabel  string `json:"statusLabel"`
}

// Live reports whether the reported item still exists
func (v *ReportView) Live() bool {
	return v.ReportedItem != nil
}

// DisplayTitle prefers the live title and falls back to the snapshot
func (v *ReportView) DisplayTitle() string {
	if v.ReportedItem != nil && v.ReportedItem.Title != "" {
		return v.ReportedItem.Title
	}
	if v.ReportedItemSnapshot.Title != "" {
		return v.ReportedItemSnapshot.Title
	}
	if v.ReportedItem != nil {
		return v.ReportedItem.Body
	}
	return v.ReportedItemSnapshot.Body
}

func newReportView(r Report, item *Item) ReportView {
	return ReportView{Report: r, ReportedItem: item, StatusLabel: r.Label()}
}

// MuteRecord is the mute state stored on a user
type MuteRecord struct {
	MutedReason    string             `bson:"mutedReason" json:"mutedReason"`
	MutedByAdminID primitive.ObjectID `bson:"mutedByAdminId" json:"mutedByAdminId"`
	MuteExpiresAt  time.Time          `bson:"muteExpiresAt" json:"muteExpiresAt"`
}

// MutedUser is a user with an active mute
type MutedUser struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Username       string             `bson:"username" json:"username"`
	DisplayName    string             `bson:"displayName,omitempty" json:"displayName,omitempty"`
	MutedReason    string             `bson:"mutedReason" json:"mutedReason"`
	MutedByAdminID primitive.ObjectID `bson:"mutedByAdminId" json:"mutedByAdminId"`
	MuteExpiresAt  time.Time          `bson:"muteExpiresAt" json:"muteExpiresAt"`
}

// Admin is the principal performing moderation
type Admin struct {
	ID   primitive.ObjectID
	Tags []string
}

// IsSuper reports whether the admin may moderate every tag
func (a Admin) IsSuper() bool {
	for _, t := range a.Tags {
		if t == jwt.WildcardTag {
			return true
		}
	}
	return false
}

// CanModerate reports whether the admin's tag scope intersects reportTags.
// Untagged reports are reserved for super admins.
func (a Admin) CanModerate(reportTags []string) bool {
	if a.IsSuper() {
		return true
	}
	for _, have := range a.Tags {
		for _, want := range reportTags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Scope selects the review queue or the past reports
type Scope string

const (
	ScopeOpen Scope = "open"
	ScopePast Scope = "past"
)

// Statuses returns the statuses a scope covers
func (s Scope) Statuses() []Status {
	if s == ScopePast {
		return PastStatuses()
	}
	return OpenStatuses()
}

// Valid reports whether s is a known scope
func (s Scope) Valid() bool {
	return s == ScopeOpen || s == ScopePast
}

// ReportSort orders report listings. Every sort breaks ties on _id.
type ReportSort string

const (
	SortNewest       ReportSort = "newest"
	SortResolved     ReportSort = "resolved"
	SortMostReported ReportSort = "most_reported"
)

// MutedSort orders the muted users listing
type MutedSort string

const (
	MutedSortExpiry MutedSort = "expiry"
	MutedSortName   MutedSort = "name"
)

// ReportFilter selects reports for ListReports
type ReportFilter struct {
	Scope       Scope
	Status      Status
	ContentType ItemType
	Tag         string
}

// ReportQuery is what the store needs to run a listing
type ReportQuery struct {
	Statuses    []Status
	ContentType ItemType
	// AnyTags restricts to reports whose tags intersect it; empty means unrestricted.
	AnyTags []string
	Sort    ReportSort
	Skip    int
	Limit   int
}

// ReportPage is one page of reports
type ReportPage struct {
	Items      []ReportView          `json:"reports"`
	Pagination pagination.Pagination `json:"pagination"`
}

// MutedUserPage is one page of muted users
type MutedUserPage struct {
	MutedUsers []MutedUser           `json:"mutedUsers"`
	Pagination pagination.Pagination `json:"pagination"`
}

// ActionRequest is the input of Executor.Apply
type ActionRequest struct {
	ReportID         primitive.ObjectID
	Action           ActionType
	TargetStatus     Status
	Reason           string
	MuteDurationDays int
	Admin            Admin
}

// StatusUpdate is written to a report by a successful action
type StatusUpdate struct {
	Status           Status
	Reason           string
	AdminID          primitive.ObjectID
	Action           ActionType
	MuteDurationDays int
	At               time.Time
}

// Request bodies

type UpdateStatusRequest struct {
	Status     Status `json:"status" binding:"required" example:"resolved_no_action"`
	AdminNotes string `json:"adminNotes" example:"Reviewed, no violation"`
}

type ActionReasonRequest struct {
	AdminReason string `json:"adminReason" example:"confirmed spam"`
}

type MuteActionRequest struct {
	AdminReason      string `json:"adminReason" example:"scam listing"`
	MuteDurationDays int    `json:"muteDurationDays" example:"7"`
}

type ReportListQuery struct {
	Status      string `form:"status,default=open"`
	ExactStatus string `form:"exactStatus"`
	ContentType string `form:"contentType"`
	Tag         string `form:"tag"`
	SortBy      string `form:"sortBy"`
	Page        int    `form:"page,default=1"`
	Limit       int    `form:"limit,default=10"`
}

type MutedUsersQuery struct {
	SortBy string `form:"sortBy,default=expiry"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=10"`
}
