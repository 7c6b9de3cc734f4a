package safety

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/partsflip/internal/features/moderation"
	"github.com/xyz-asif/partsflip/internal/metrics"
	"github.com/xyz-asif/partsflip/internal/middleware"
	"github.com/xyz-asif/partsflip/internal/pkg/logger"
	"github.com/xyz-asif/partsflip/internal/pkg/response"
	"github.com/xyz-asif/partsflip/internal/pkg/validator"
	apperrors "github.com/xyz-asif/partsflip/pkg/errors"
)

// ReportFiler persists new reports
type ReportFiler interface {
	File(ctx context.Context, report *moderation.Report) (aggregated bool, err error)
}

type Handler struct {
	reports ReportFiler
	content moderation.ContentStore
}

func NewHandler(reports ReportFiler, content moderation.ContentStore) *Handler {
	return &Handler{
		reports: reports,
		content: content,
	}
}

// CreateReport files a report against a comment, listing, image, user or product
// @Summary Report content or user
// @Description Captures a snapshot of the item so moderation can proceed after it is deleted. Repeat reports of an item with an open report are aggregated.
// @Tags safety
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReportRequest true "Report details"
// @Success 201 {object} response.SuccessResponse{data=CreateReportResponse}
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /reports [post]
func (h *Handler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request", "INVALID_JSON")
		return
	}

	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return
	}

	itemType, itemID, err := ValidateCreateReportRequest(&req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	item, err := h.content.Get(c.Request.Context(), itemType, itemID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	if item.AuthorID == principal.UserID {
		response.FromError(c, apperrors.Validation("you cannot report your own %s", itemType))
		return
	}

	report := &moderation.Report{
		ReportedItemType:     itemType,
		ReportedItemID:       itemID,
		ReportedItemSnapshot: item.Snapshot(),
		ReporterID:           principal.UserID,
		Reason:               req.Reason,
		AssociatedTags:       validator.NormalizeTags(item.Tags),
	}

	aggregated, err := h.reports.File(c.Request.Context(), report)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.ErrInternal {
			logger.Error("Failed to file report on %s %s: %v", itemType, itemID.Hex(), err)
		}
		response.FromError(c, err)
		return
	}

	metrics.ReportsFiledTotal.WithLabelValues(string(itemType), strconv.FormatBool(aggregated)).Inc()

	response.Created(c, CreateReportResponse{
		ReportID:    report.ID.Hex(),
		ReportCount: report.ReportCount,
		Aggregated:  aggregated,
	})
}
