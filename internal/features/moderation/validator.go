package moderation

import (
	"strings"

	"github.com/xyz-asif/partsflip/internal/pkg/validator"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
)

const maxAdminReasonLength = 1000

// ValidateActionRequest trims the reason and checks everything that can be
// checked without loading the report
func ValidateActionRequest(req *ActionRequest, minMuteDays, maxMuteDays int) error {
	req.Reason = strings.TrimSpace(req.Reason)

	if req.ReportID.IsZero() {
		return apperrors.Validation("report id is required")
	}

	if !req.Action.Valid() {
		return apperrors.Validation("unknown action %q", req.Action)
	}

	if validator.IsBlank(req.Reason) {
		return apperrors.Validation("reason is required")
	}

	if !validator.LengthBetween(req.Reason, 1, maxAdminReasonLength) {
		return apperrors.Validation("reason must be %d characters or less", maxAdminReasonLength)
	}

	switch req.Action {
	case ActionDeleteItemMuteUser:
		if !validator.InRange(req.MuteDurationDays, minMuteDays, maxMuteDays) {
			return apperrors.Validation("muteDurationDays must be between %d and %d", minMuteDays, maxMuteDays)
		}
	case ActionChangeStatus:
		if !isChangeStatusTarget(req.TargetStatus) {
			return apperrors.Validation("status must be one of: under_review, resolved_action_taken, resolved_no_action, dismissed")
		}
	}

	return nil
}

func isChangeStatusTarget(s Status) bool {
	for _, target := range ChangeStatusTargets() {
		if s == target {
			return true
		}
	}
	return false
}

// ValidateReportFilter checks a listing filter and resolves the default sort
func ValidateReportFilter(filter *ReportFilter, sort ReportSort) (ReportSort, error) {
	if filter.Scope == "" {
		filter.Scope = ScopeOpen
	}
	if !filter.Scope.Valid() {
		return "", apperrors.Validation("status must be 'open' or 'past'")
	}

	if filter.Status != "" {
		if !filter.Status.Valid() || filter.Status.IsTerminal() != (filter.Scope == ScopePast) {
			return "", apperrors.Validation("status %q is not part of the %s reports", filter.Status, filter.Scope)
		}
	}

	if filter.ContentType != "" && !filter.ContentType.Valid() {
		return "", apperrors.Validation("contentType must be one of: comment, listing, image, user, product")
	}

	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))

	switch sort {
	case "":
		if filter.Scope == ScopePast {
			return SortResolved, nil
		}
		return SortNewest, nil
	case SortNewest, SortMostReported:
		return sort, nil
	case SortResolved:
		// updatedAt moves while the open queue is being worked
		if filter.Scope == ScopeOpen {
			return "", apperrors.Validation("sortBy 'resolved' is only available for past reports")
		}
		return sort, nil
	default:
		return "", apperrors.Validation("sortBy must be: newest, resolved, or most_reported")
	}
}

// ValidateMutedSort resolves the default muted users sort
func ValidateMutedSort(sort MutedSort) (MutedSort, error) {
	switch sort {
	case "":
		return MutedSortExpiry, nil
	case MutedSortExpiry, MutedSortName:
		return sort, nil
	default:
		return "", apperrors.Validation("sortBy must be 'expiry' or 'name'")
	}
}
