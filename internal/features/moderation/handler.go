package moderation

import (
	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/partsflip/internal/middleware"
	"github.com/xyz-asif/partsflip/internal/pkg/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	executor *Executor
	queries  *QueryService
}

func NewHandler(executor *Executor, queries *QueryService) *Handler {
	return &Handler{
		executor: executor,
		queries:  queries,
	}
}

func adminFrom(c *gin.Context) (Admin, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return Admin{}, false
	}
	return Admin{ID: p.UserID, Tags: p.Tags}, true
}

func reportIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid report ID", "INVALID_ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// ListReports returns the review queue or past reports
// @Summary List reports
// @Description Paginated reports filtered by open/past status, content type and tag
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param status query string false "open or past" default(open)
// @Param exactStatus query string false "Exact status within the scope"
// @Param contentType query string false "comment, listing, image, user or product"
// @Param tag query string false "Restrict to one permitted tag"
// @Param sortBy query string false "newest, resolved or most_reported"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.SuccessResponse{data=ReportPage}
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/reports [get]
func (h *Handler) ListReports(c *gin.Context) {
	admin, ok := adminFrom(c)
	if !ok {
		return
	}

	var query ReportListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	filter := ReportFilter{
		Scope:       Scope(query.Status),
		Status:      Status(query.ExactStatus),
		ContentType: ItemType(query.ContentType),
		Tag:         query.Tag,
	}

	page, err := h.queries.ListReports(c.Request.Context(), admin, filter, ReportSort(query.SortBy), query.Page, query.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, page)
}

// GetReport returns one report with its live item
// @Summary Get report
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.SuccessResponse{data=ReportView}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /admin/reports/{id} [get]
func (h *Handler) GetReport(c *gin.Context) {
	admin, ok := adminFrom(c)
	if !ok {
		return
	}
	id, ok := reportIDParam(c)
	if !ok {
		return
	}

	view, err := h.queries.GetReport(c.Request.Context(), admin, id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, view)
}

// UpdateReportStatus sets a report's status directly
// @Summary Update report status
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body UpdateStatusRequest true "Target status and notes"
// @Success 200 {object} response.SuccessResponse{data=Report}
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/reports/{id}/status [patch]
func (h *Handler) UpdateReportStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", "INVALID_JSON")
		return
	}

	h.apply(c, func(r *ActionRequest) {
		r.Action = ActionChangeStatus
		r.TargetStatus = req.Status
		r.Reason = req.AdminNotes
	})
}

// DismissReport closes a report without touching the content
// @Summary Dismiss report
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body ActionReasonRequest true "Reason"
// @Success 200 {object} response.SuccessResponse{data=Report}
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /admin/reports/{id}/dismiss [post]
func (h *Handler) DismissReport(c *gin.Context) {
	var req ActionReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", "INVALID_JSON")
		return
	}

	h.apply(c, func(r *ActionRequest) {
		r.Action = ActionDismiss
		r.Reason = req.AdminReason
	})
}

// DeleteItem deletes the reported content and resolves the report
// @Summary Delete reported item
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body ActionReasonRequest true "Reason"
// @Success 200 {object} response.SuccessResponse{data=Report}
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /admin/reports/{id}/delete-item [post]
func (h *Handler) DeleteItem(c *gin.Context) {
	var req ActionReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", "INVALID_JSON")
		return
	}

	h.apply(c, func(r *ActionRequest) {
		r.Action = ActionDeleteItem
		r.Reason = req.AdminReason
	})
}

// DeleteItemMuteUser deletes the reported content and mutes its author
// @Summary Delete reported item and mute author
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body MuteActionRequest true "Reason and mute duration"
// @Success 200 {object} response.SuccessResponse{data=Report}
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /admin/reports/{id}/delete-item-mute-user [post]
func (h *Handler) DeleteItemMuteUser(c *gin.Context) {
	var req MuteActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body", "INVALID_JSON")
		return
	}

	h.apply(c, func(r *ActionRequest) {
		r.Action = ActionDeleteItemMuteUser
		r.Reason = req.AdminReason
		r.MuteDurationDays = req.MuteDurationDays
	})
}

// ListMutedUsers returns users with an active mute
// @Summary List muted users
// @Tags moderation
// @Produce json
// @Security BearerAuth
// @Param sortBy query string false "expiry or name" default(expiry)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.SuccessResponse{data=MutedUserPage}
// @Router /admin/muted-users [get]
func (h *Handler) ListMutedUsers(c *gin.Context) {
	var query MutedUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	page, err := h.queries.ListMutedUsers(c.Request.Context(), MutedSort(query.SortBy), query.Page, query.Limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, page)
}

func (h *Handler) apply(c *gin.Context, build func(*ActionRequest)) {
	admin, ok := adminFrom(c)
	if !ok {
		return
	}
	id, ok := reportIDParam(c)
	if !ok {
		return
	}

	req := ActionRequest{ReportID: id, Admin: admin}
	build(&req)

	report, err := h.executor.Apply(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, report)
}
