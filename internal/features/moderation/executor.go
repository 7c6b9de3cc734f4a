package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/xyz-asif/partsflip/internal/config"
	"github.com/xyz-asif/partsflip/internal/metrics"
	"github.com/xyz-asif/partsflip/internal/pkg/logger"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExecutorConfig bounds the executor's inputs and retry behaviour
type ExecutorConfig struct {
	MinMuteDays       int
	MaxMuteDays       int
	MuteRetryAttempts int
	MuteRetryDelay    time.Duration
	ClaimTTL          time.Duration
}

// ExecutorConfigFrom reads the moderation settings from the app config
func ExecutorConfigFrom(cfg *config.Config) ExecutorConfig {
	return ExecutorConfig{
		MinMuteDays:       cfg.MinMuteDays,
		MaxMuteDays:       cfg.MaxMuteDays,
		MuteRetryAttempts: cfg.MuteRetryAttempts,
		MuteRetryDelay:    cfg.MuteRetryDelay,
		ClaimTTL:          cfg.ClaimTTL,
	}
}

// Executor applies moderation actions to reports
type Executor struct {
	reports ReportStore
	content ContentStore
	users   UserStore
	cfg     ExecutorConfig
	now     func() time.Time
}

func NewExecutor(reports ReportStore, content ContentStore, users UserStore, cfg ExecutorConfig) *Executor {
	if cfg.MinMuteDays < MinMuteDays || cfg.MinMuteDays > MaxMuteDays {
		cfg.MinMuteDays = MinMuteDays
	}
	if cfg.MaxMuteDays > MaxMuteDays || cfg.MaxMuteDays < cfg.MinMuteDays {
		cfg.MaxMuteDays = MaxMuteDays
	}
	if cfg.MuteRetryAttempts < 1 {
		cfg.MuteRetryAttempts = 1
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = 2 * time.Minute
	}
	return &Executor{
		reports: reports,
		content: content,
		users:   users,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Apply validates and executes one moderation action. On any error the
// report is left in the state it had before the call, except when the
// content was deleted but the author could not be muted: the report is then
// moved to under_review and a Dependency error is returned.
func (e *Executor) Apply(ctx context.Context, req ActionRequest) (*Report, error) {
	report, err := e.apply(ctx, &req)

	outcome := "success"
	if err != nil {
		outcome = outcomeLabel(err)
	}
	action := string(req.Action)
	if !req.Action.Valid() {
		action = "unknown"
	}
	metrics.ModerationActionsTotal.WithLabelValues(action, outcome).Inc()

	log := logger.Get()
	if err != nil {
		log.Warn().
			Str("reportId", req.ReportID.Hex()).
			Str("action", string(req.Action)).
			Str("adminId", req.Admin.ID.Hex()).
			Str("outcome", outcome).
			Err(err).
			Msg("moderation action failed")
		return nil, err
	}

	log.Info().
		Str("reportId", report.ID.Hex()).
		Str("action", string(req.Action)).
		Str("adminId", req.Admin.ID.Hex()).
		Str("status", string(report.Status)).
		Int("muteDurationDays", report.MuteDurationDays).
		Msg("moderation action applied")
	return report, nil
}

func (e *Executor) apply(ctx context.Context, req *ActionRequest) (*Report, error) {
	if req.ReportID.IsZero() {
		return nil, apperrors.Validation("report id is required")
	}

	report, err := e.reports.FindByID(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}

	if report.Status.IsTerminal() {
		return nil, apperrors.Conflict("report has already been resolved (%s)", report.Status)
	}

	if err := ValidateActionRequest(req, e.cfg.MinMuteDays, e.cfg.MaxMuteDays); err != nil {
		return nil, err
	}

	if !req.Admin.CanModerate(report.AssociatedTags) {
		return nil, apperrors.Authorization("you are not permitted to moderate reports with these tags")
	}

	if req.Action.DeletesContent() {
		return e.applyDelete(ctx, req, report)
	}

	now := e.now()
	upd := StatusUpdate{
		Reason:  req.Reason,
		AdminID: req.Admin.ID,
		Action:  req.Action,
		At:      now,
	}
	switch req.Action {
	case ActionDismiss:
		upd.Status = StatusDismissed
	case ActionChangeStatus:
		upd.Status = req.TargetStatus
	}

	return e.reports.ApplyStatus(ctx, report.ID, upd, now.Add(-e.cfg.ClaimTTL))
}

func (e *Executor) applyDelete(ctx context.Context, req *ActionRequest, report *Report) (*Report, error) {
	item, err := e.content.Get(ctx, report.ReportedItemType, report.ReportedItemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("reported %s no longer exists; dismiss the report instead", report.ReportedItemType)
		}
		return nil, apperrors.Dependency(err, "could not load reported %s", report.ReportedItemType)
	}

	if req.Action == ActionDeleteItemMuteUser && !item.HasAuthor() {
		return nil, apperrors.Validation("reported %s has no author to mute", report.ReportedItemType)
	}

	now := e.now()
	claim := Claim{
		Token:     uuid.NewString(),
		AdminID:   req.Admin.ID,
		Action:    req.Action,
		ClaimedAt: now,
	}
	if _, err := e.reports.Claim(ctx, report.ID, claim, now.Add(-e.cfg.ClaimTTL)); err != nil {
		return nil, err
	}

	// Past the claim the action no longer follows the caller, but it must give
	// up well before the claim goes stale and another admin can take over.
	detached := context.WithoutCancel(ctx)
	work, cancel := context.WithTimeout(detached, e.cfg.ClaimTTL/2)
	defer cancel()

	if err := e.content.Delete(work, report.ReportedItemType, report.ReportedItemID); err != nil {
		e.release(detached, report, claim.Token)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("reported %s no longer exists; dismiss the report instead", report.ReportedItemType)
		}
		return nil, apperrors.Dependency(err, "could not delete reported %s", report.ReportedItemType)
	}

	upd := StatusUpdate{
		Status:  StatusResolvedActionTaken,
		Reason:  req.Reason,
		AdminID: req.Admin.ID,
		Action:  req.Action,
		At:      e.now(),
	}

	if req.Action == ActionDeleteItemMuteUser {
		mute := MuteRecord{
			MutedReason:    req.Reason,
			MutedByAdminID: req.Admin.ID,
			MuteExpiresAt:  upd.At.Add(time.Duration(req.MuteDurationDays) * 24 * time.Hour),
		}
		if err := e.muteWithRetry(work, item.AuthorID, mute); err != nil {
			partial := StatusUpdate{
				Status:  StatusUnderReview,
				Reason:  req.Reason,
				AdminID: req.Admin.ID,
				Action:  ActionDeleteItem,
				At:      e.now(),
			}
			if _, cerr := e.complete(detached, report.ID, claim.Token, partial); cerr != nil {
				logger.Error("Failed to record partial moderation of report %s: %v", report.ID.Hex(), cerr)
			}
			return nil, apperrors.Dependency(err, "%s was deleted but its author could not be muted; report left under review", report.ReportedItemType)
		}
		upd.MuteDurationDays = req.MuteDurationDays
	}

	return e.complete(detached, report.ID, claim.Token, upd)
}

// complete finalizes a claim within the time the claim has left
func (e *Executor) complete(ctx context.Context, id primitive.ObjectID, token string, upd StatusUpdate) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ClaimTTL/4)
	defer cancel()
	return e.reports.CompleteClaim(ctx, id, token, upd)
}

// muteWithRetry writes the mute a bounded number of times. A missing user
// is not retried.
func (e *Executor) muteWithRetry(ctx context.Context, userID primitive.ObjectID, mute MuteRecord) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := e.users.SetMute(ctx, userID, mute)
		if errors.Is(err, apperrors.ErrNotFound) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(e.cfg.MuteRetryDelay)),
		backoff.WithMaxTries(uint(e.cfg.MuteRetryAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.MuteWriteRetriesTotal.Inc()
			logger.Warn("Mute write for user %s failed, retrying in %s: %v", userID.Hex(), next, err)
		}),
	)
	return err
}

func (e *Executor) release(ctx context.Context, report *Report, token string) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ClaimTTL/4)
	defer cancel()
	if err := e.reports.ReleaseClaim(ctx, report.ID, token); err != nil {
		logger.Error("Failed to release claim on report %s: %v", report.ID.Hex(), err)
	}
}

func outcomeLabel(err error) string {
	switch kind := apperrors.KindOf(err); {
	case errors.Is(kind, apperrors.ErrValidation):
		return "validation"
	case errors.Is(kind, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(kind, apperrors.ErrConflict):
		return "conflict"
	case errors.Is(kind, apperrors.ErrAuthorization):
		return "forbidden"
	case errors.Is(kind, apperrors.ErrDependency):
		return "dependency"
	default:
		return "error"
	}
}
