package controller

import (
	"time"

	"wellbeing_backend/internal/service"
	"wellbeing_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RetentionController struct {
	RetentionService *service.RetentionService
}

func NewRetentionController(retentionService *service.RetentionService) *RetentionController {
	return &RetentionController{RetentionService: retentionService}
}

// PurgeRequest optionally overrides the reference date, mainly for
// backfilling a missed run.
// swagger:model PurgeRequest
type PurgeRequest struct {
	CurrentDate *string `json:"currentDate"`
}

// Purge godoc
// @Summary Purge graduated students
// @Description Removes every student whose graduation date lies before the reference date, one atomic unit per student
// @Tags retention
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.PurgeReport}
// @Failure 403 {object} util.Response
// @Router /api/retention/purge [post]
func (c *RetentionController) Purge(ctx *gin.Context) {
	var req PurgeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && ctx.Request.ContentLength > 0 {
		util.BadRequest(ctx, err.Error())
		return
	}

	currentDate := time.Now()
	if req.CurrentDate != nil {
		parsed, err := util.ParseDate("retention.current_date", *req.CurrentDate)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		currentDate = parsed
	}

	report, err := c.RetentionService.PurgeGraduated(ctx.Request.Context(), currentDate)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
