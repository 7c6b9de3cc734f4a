package moderation

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeReports mirrors the conditional updates of ReportRepository
type fakeReports struct {
	mu      sync.Mutex
	reports map[primitive.ObjectID]*Report
	listErr error
}

func newFakeReports(reports ...*Report) *fakeReports {
	f := &fakeReports{reports: make(map[primitive.ObjectID]*Report)}
	for _, r := range reports {
		f.reports[r.ID] = r
	}
	return f
}

func (f *fakeReports) get(id primitive.ObjectID) Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.reports[id]
}

func (f *fakeReports) FindByID(_ context.Context, id primitive.ObjectID) (*Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return nil, apperrors.NotFound("report not found")
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReports) List(_ context.Context, q ReportQuery) ([]Report, int64, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []Report
	for _, r := range f.reports {
		if !containsStatus(q.Statuses, r.Status) {
			continue
		}
		if q.ContentType != "" && r.ReportedItemType != q.ContentType {
			continue
		}
		if len(q.AnyTags) > 0 && !intersects(q.AnyTags, r.AssociatedTags) {
			continue
		}
		matched = append(matched, *r)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch q.Sort {
		case SortResolved:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
		case SortMostReported:
			if a.ReportCount != b.ReportCount {
				return a.ReportCount > b.ReportCount
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID.Hex() > b.ID.Hex()
	})

	total := int64(len(matched))
	if q.Skip >= len(matched) {
		return []Report{}, total, nil
	}
	end := q.Skip + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[q.Skip:end], total, nil
}

func (f *fakeReports) conditional(id primitive.ObjectID, match func(*Report) bool, apply func(*Report)) (*Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return nil, apperrors.NotFound("report not found")
	}
	if !match(r) {
		return nil, apperrors.Conflict("report was already resolved or is being handled by another admin")
	}
	apply(r)
	cp := *r
	return &cp, nil
}

func fakeUnclaimed(r *Report, staleBefore time.Time) bool {
	return !r.Status.IsTerminal() && (r.PendingAction == nil || r.PendingAction.ClaimedAt.Before(staleBefore))
}

func fakeResolve(r *Report, upd StatusUpdate) {
	admin := upd.AdminID
	r.Status = upd.Status
	r.AdminActionReason = upd.Reason
	r.ResolvedByAdminID = &admin
	r.ActionTaken = upd.Action
	r.UpdatedAt = upd.At
	if upd.MuteDurationDays > 0 {
		r.MuteDurationDays = upd.MuteDurationDays
	}
	r.PendingAction = nil
}

func (f *fakeReports) ApplyStatus(_ context.Context, id primitive.ObjectID, upd StatusUpdate, staleBefore time.Time) (*Report, error) {
	return f.conditional(id,
		func(r *Report) bool { return fakeUnclaimed(r, staleBefore) },
		func(r *Report) { fakeResolve(r, upd) })
}

func (f *fakeReports) Claim(_ context.Context, id primitive.ObjectID, claim Claim, staleBefore time.Time) (*Report, error) {
	return f.conditional(id,
		func(r *Report) bool { return fakeUnclaimed(r, staleBefore) },
		func(r *Report) { c := claim; r.PendingAction = &c })
}

func (f *fakeReports) CompleteClaim(_ context.Context, id primitive.ObjectID, token string, upd StatusUpdate) (*Report, error) {
	return f.conditional(id,
		func(r *Report) bool { return r.PendingAction != nil && r.PendingAction.Token == token },
		func(r *Report) { fakeResolve(r, upd) })
}

func (f *fakeReports) ReleaseClaim(_ context.Context, id primitive.ObjectID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reports[id]; ok && r.PendingAction != nil && r.PendingAction.Token == token {
		r.PendingAction = nil
	}
	return nil
}

type fakeContent struct {
	mu          sync.Mutex
	items       map[primitive.ObjectID]*Item
	deleted     map[primitive.ObjectID]bool
	deleteCalls int
	deleteErr   error
	getErr      error
}

func newFakeContent(items ...*Item) *fakeContent {
	f := &fakeContent{
		items:   make(map[primitive.ObjectID]*Item),
		deleted: make(map[primitive.ObjectID]bool),
	}
	for _, it := range items {
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeContent) Get(_ context.Context, itemType ItemType, id primitive.ObjectID) (*Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	it, ok := f.items[id]
	if !ok || f.deleted[id] || it.Type != itemType {
		return nil, apperrors.NotFound("%s not found", itemType)
	}
	cp := *it
	return &cp, nil
}

func (f *fakeContent) Delete(_ context.Context, itemType ItemType, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	it, ok := f.items[id]
	if !ok || f.deleted[id] || it.Type != itemType {
		return apperrors.NotFound("%s not found", itemType)
	}
	f.deleted[id] = true
	return nil
}

func (f *fakeContent) isDeleted(id primitive.ObjectID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleted[id]
}

type fakeUsers struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]*MutedUser
	muteCalls int
	// failMutes makes the first n SetMute calls fail
	failMutes int
}

func newFakeUsers(users ...*MutedUser) *fakeUsers {
	f := &fakeUsers{users: make(map[primitive.ObjectID]*MutedUser)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) SetMute(_ context.Context, userID primitive.ObjectID, mute MuteRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muteCalls++
	if f.failMutes > 0 {
		f.failMutes--
		return context.DeadlineExceeded
	}
	u, ok := f.users[userID]
	if !ok {
		return apperrors.NotFound("user not found")
	}
	u.MutedReason = mute.MutedReason
	u.MutedByAdminID = mute.MutedByAdminID
	u.MuteExpiresAt = mute.MuteExpiresAt
	return nil
}

func (f *fakeUsers) ListMuted(_ context.Context, now time.Time, sortBy MutedSort, skip, limit int) ([]MutedUser, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var muted []MutedUser
	for _, u := range f.users {
		if u.MuteExpiresAt.After(now) {
			muted = append(muted, *u)
		}
	}
	sort.Slice(muted, func(i, j int) bool {
		if sortBy == MutedSortName {
			return muted[i].Username < muted[j].Username
		}
		return muted[i].MuteExpiresAt.Before(muted[j].MuteExpiresAt)
	})

	total := int64(len(muted))
	if skip >= len(muted) {
		return []MutedUser{}, total, nil
	}
	end := skip + limit
	if end > len(muted) {
		end = len(muted)
	}
	return muted[skip:end], total, nil
}

func (f *fakeUsers) get(id primitive.ObjectID) MutedUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.users[id]
}

func containsStatus(statuses []Status, s Status) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
