package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/xyz-asif/partsflip/internal/pkg/pagination"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// maxLiveLookups bounds concurrent live item lookups per page
const maxLiveLookups = 8

// QueryService serves the review queue, past reports and muted users
type QueryService struct {
	reports ReportStore
	content ContentStore
	users   UserStore
	now     func() time.Time
}

func NewQueryService(reports ReportStore, content ContentStore, users UserStore) *QueryService {
	return &QueryService{
		reports: reports,
		content: content,
		users:   users,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ListReports returns one page of reports visible to admin, each with its
// live item resolved
func (s *QueryService) ListReports(ctx context.Context, admin Admin, filter ReportFilter, sort ReportSort, page, limit int) (*ReportPage, error) {
	sort, err := ValidateReportFilter(&filter, sort)
	if err != nil {
		return nil, err
	}

	tags, err := scopeTags(admin, filter.Tag)
	if err != nil {
		return nil, err
	}

	statuses := filter.Scope.Statuses()
	if filter.Status != "" {
		statuses = []Status{filter.Status}
	}

	page, limit = pagination.Normalize(page, limit)
	reports, total, err := s.reports.List(ctx, ReportQuery{
		Statuses:    statuses,
		ContentType: filter.ContentType,
		AnyTags:     tags,
		Sort:        sort,
		Skip:        pagination.Offset(page, limit),
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}

	items, err := s.resolveLive(ctx, reports)
	if err != nil {
		return nil, err
	}

	return &ReportPage{
		Items:      items,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// GetReport returns a single report with its live item
func (s *QueryService) GetReport(ctx context.Context, admin Admin, id primitive.ObjectID) (*ReportView, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin.CanModerate(report.AssociatedTags) {
		return nil, apperrors.Authorization("you are not permitted to view reports with these tags")
	}

	item, err := s.liveItem(ctx, report)
	if err != nil {
		return nil, err
	}
	view := newReportView(*report, item)
	return &view, nil
}

// ListMutedUsers returns users whose mute has not yet expired
func (s *QueryService) ListMutedUsers(ctx context.Context, sort MutedSort, page, limit int) (*MutedUserPage, error) {
	sort, err := ValidateMutedSort(sort)
	if err != nil {
		return nil, err
	}

	page, limit = pagination.Normalize(page, limit)
	users, total, err := s.users.ListMuted(ctx, s.now(), sort, pagination.Offset(page, limit), limit)
	if err != nil {
		return nil, err
	}

	return &MutedUserPage{
		MutedUsers: users,
		Pagination: pagination.New(page, limit, total),
	}, nil
}

// scopeTags intersects the admin's tags with the optional tag filter.
// A nil result means no tag restriction.
func scopeTags(admin Admin, tag string) ([]string, error) {
	if tag != "" {
		if !admin.CanModerate([]string{tag}) {
			return nil, apperrors.Authorization("you are not permitted to moderate tag %q", tag)
		}
		return []string{tag}, nil
	}
	if admin.IsSuper() {
		return nil, nil
	}
	if len(admin.Tags) == 0 {
		return nil, apperrors.Authorization("you are not assigned any moderation tags")
	}
	return admin.Tags, nil
}

func (s *QueryService) resolveLive(ctx context.Context, reports []Report) ([]ReportView, error) {
	views := make([]ReportView, len(reports))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLiveLookups)
	for i := range reports {
		g.Go(func() error {
			item, err := s.liveItem(gctx, &reports[i])
			if err != nil {
				return err
			}
			views[i] = newReportView(reports[i], item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

func (s *QueryService) liveItem(ctx context.Context, report *Report) (*Item, error) {
	item, err := s.content.Get(ctx, report.ReportedItemType, report.ReportedItemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}
