package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xyz-asif/partsflip/internal/features/moderation"
	"github.com/xyz-asif/partsflip/internal/pkg/pagination"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeBackend struct {
	mu       sync.Mutex
	page     *moderation.ReportPage
	listErr  error
	applyErr error
	applied  []Action
	// release, when set, blocks Apply until closed
	release chan struct{}
	entered chan struct{}
}

func (b *fakeBackend) ListReports(_ context.Context, q Query) (*moderation.ReportPage, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	cp := *b.page
	cp.Items = append([]moderation.ReportView(nil), b.page.Items...)
	return &cp, nil
}

func (b *fakeBackend) Apply(_ context.Context, a Action) (*moderation.Report, error) {
	if b.entered != nil {
		b.entered <- struct{}{}
	}
	if b.release != nil {
		<-b.release
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applied = append(b.applied, a)
	if b.applyErr != nil {
		return nil, b.applyErr
	}

	status := moderation.StatusResolvedActionTaken
	switch a.Type {
	case moderation.ActionDismiss:
		status = moderation.StatusDismissed
	case moderation.ActionChangeStatus:
		status = a.TargetStatus
	}
	return &moderation.Report{ID: a.ReportID, Status: status, AdminActionReason: a.Reason, ActionTaken: a.Type}, nil
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.applied)
}

func openPage(n int) *moderation.ReportPage {
	items := make([]moderation.ReportView, n)
	for i := range items {
		items[i] = moderation.ReportView{Report: moderation.Report{
			ID:               primitive.NewObjectID(),
			ReportedItemType: moderation.ItemComment,
			Status:           moderation.StatusOpen,
			CreatedAt:        time.Now(),
		}}
	}
	return &moderation.ReportPage{Items: items, Pagination: pagination.New(1, 10, int64(n))}
}

func loadedSession(t *testing.T, b *fakeBackend) *Session {
	t.Helper()
	s := NewSession(b, 1, 30)
	require.NoError(t, s.Load(context.Background(), Query{Scope: moderation.ScopeOpen}))
	require.Equal(t, Browsing, s.State())
	return s
}

func TestSession_SuccessRemovesReport(t *testing.T) {
	b := &fakeBackend{page: openPage(3)}
	s := loadedSession(t, b)
	target := s.Reports()[1]

	require.NoError(t, s.Select(target.ID, moderation.ActionDeleteItem, ""))
	assert.Equal(t, ActionSelected, s.State())

	report, err := s.Confirm(context.Background(), "  confirmed spam ", 0)
	require.NoError(t, err)
	assert.Equal(t, moderation.StatusResolvedActionTaken, report.Status)

	assert.Equal(t, Browsing, s.State())
	_, open := s.Selected()
	assert.False(t, open)
	assert.Len(t, s.Reports(), 2)
	for _, r := range s.Reports() {
		assert.NotEqual(t, target.ID, r.ID)
	}
	assert.Equal(t, int64(2), s.Pagination().Total)
	require.Len(t, b.applied, 1)
	assert.Equal(t, "confirmed spam", b.applied[0].Reason)
}

func TestSession_UnderReviewStaysInQueue(t *testing.T) {
	b := &fakeBackend{page: openPage(2)}
	s := loadedSession(t, b)
	target := s.Reports()[0]

	require.NoError(t, s.Select(target.ID, moderation.ActionChangeStatus, moderation.StatusUnderReview))
	_, err := s.Confirm(context.Background(), "escalating", 0)
	require.NoError(t, err)

	reports := s.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, moderation.StatusUnderReview, reports[0].Status)
}

func TestSession_FailureKeepsDialogOpen(t *testing.T) {
	conflict := apperrors.Conflict("report has already been resolved")
	b := &fakeBackend{page: openPage(1), applyErr: conflict}
	s := loadedSession(t, b)
	target := s.Reports()[0]

	require.NoError(t, s.Select(target.ID, moderation.ActionDeleteItemMuteUser, ""))
	_, err := s.Confirm(context.Background(), "scam listing", 7)
	require.ErrorIs(t, err, apperrors.ErrConflict)

	assert.Equal(t, ActionSelected, s.State())
	assert.Equal(t, conflict, s.Err())
	sel, open := s.Selected()
	require.True(t, open)
	assert.Equal(t, "scam listing", sel.Reason)
	assert.Equal(t, 7, sel.MuteDurationDays)
	assert.Len(t, s.Reports(), 1)

	// retry after the backend recovers
	b.applyErr = nil
	_, err = s.Confirm(context.Background(), sel.Reason, sel.MuteDurationDays)
	require.NoError(t, err)
	assert.Equal(t, Browsing, s.State())
	assert.Empty(t, s.Reports())
}

func TestSession_BlankReasonNeverReachesBackend(t *testing.T) {
	b := &fakeBackend{page: openPage(1)}
	s := loadedSession(t, b)

	require.NoError(t, s.Select(s.Reports()[0].ID, moderation.ActionDismiss, ""))
	_, err := s.Confirm(context.Background(), "   ", 0)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, ActionSelected, s.State())
	assert.Zero(t, b.calls())

	_, err = s.Confirm(context.Background(), "ok", 0)
	require.NoError(t, err)
}

func TestSession_MuteDurationCheckedLocally(t *testing.T) {
	b := &fakeBackend{page: openPage(1)}
	s := loadedSession(t, b)

	require.NoError(t, s.Select(s.Reports()[0].ID, moderation.ActionDeleteItemMuteUser, ""))
	for _, days := range []int{0, 31} {
		_, err := s.Confirm(context.Background(), "abuse", days)
		require.ErrorIs(t, err, apperrors.ErrValidation)
	}
	assert.Zero(t, b.calls())
}

func TestSession_CancelMakesNoCall(t *testing.T) {
	b := &fakeBackend{page: openPage(2)}
	s := loadedSession(t, b)

	require.NoError(t, s.Select(s.Reports()[0].ID, moderation.ActionDismiss, ""))
	require.NoError(t, s.Cancel())
	assert.Equal(t, Browsing, s.State())
	assert.Zero(t, b.calls())
	assert.Len(t, s.Reports(), 2)

	assert.ErrorIs(t, s.Cancel(), ErrInvalidTransition)
}

func TestSession_InvalidTransitions(t *testing.T) {
	b := &fakeBackend{page: openPage(2)}
	s := loadedSession(t, b)

	_, err := s.Confirm(context.Background(), "reason", 0)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.ErrorIs(t, s.Select(primitive.NewObjectID(), moderation.ActionDismiss, ""), ErrUnknownReport)
	assert.ErrorIs(t, s.Select(s.Reports()[0].ID, "ban", ""), apperrors.ErrValidation)

	require.NoError(t, s.Select(s.Reports()[0].ID, moderation.ActionDismiss, ""))
	assert.ErrorIs(t, s.Select(s.Reports()[1].ID, moderation.ActionDismiss, ""), ErrInvalidTransition)
	assert.ErrorIs(t, s.Load(context.Background(), Query{}), ErrInvalidTransition)
}

func TestSession_OneSubmissionAtATime(t *testing.T) {
	b := &fakeBackend{
		page:    openPage(2),
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	s := loadedSession(t, b)
	require.NoError(t, s.Select(s.Reports()[0].ID, moderation.ActionDismiss, ""))

	done := make(chan error, 1)
	go func() {
		_, err := s.Confirm(context.Background(), "duplicate", 0)
		done <- err
	}()
	<-b.entered

	assert.Equal(t, Submitting, s.State())
	_, err := s.Confirm(context.Background(), "duplicate", 0)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, s.Cancel(), ErrBusy)
	assert.ErrorIs(t, s.Select(s.Reports()[1].ID, moderation.ActionDismiss, ""), ErrBusy)
	assert.ErrorIs(t, s.Load(context.Background(), Query{}), ErrBusy)

	close(b.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, b.calls())
	assert.Equal(t, Browsing, s.State())
}

func TestSession_LoadError(t *testing.T) {
	b := &fakeBackend{page: openPage(1)}
	s := loadedSession(t, b)

	b.listErr = apperrors.Authorization("you are not permitted to moderate tag %q", "engine")
	err := s.Load(context.Background(), Query{Tag: "engine"})
	require.ErrorIs(t, err, apperrors.ErrAuthorization)
	assert.Equal(t, Browsing, s.State())
	assert.Len(t, s.Reports(), 1)
	assert.Equal(t, err, s.Err())
}
