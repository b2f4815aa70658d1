package controller

import (
	"skillsim_backend/internal/service"
	"skillsim_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CompetencyController struct {
	CompetencyService *service.CompetencyService
	SessionService    *service.SessionService
}

func NewCompetencyController(competencyService *service.CompetencyService, sessionService *service.SessionService) *CompetencyController {
	return &CompetencyController{
		CompetencyService: competencyService,
		SessionService:    sessionService,
	}
}

// GetSummary godoc
// @Summary 能力总览
// @Description 按能力聚合近期得分，含趋势和连续练习天数
// @Tags 能力
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.CompetencySummary}
// @Router /api/competencies/summary [get]
func (c *CompetencyController) GetSummary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.CompetencyService.GetSummary(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// ListSessionScores godoc
// @Summary 会话能力得分
// @Tags 能力
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/sessions/{id}/competencies [get]
func (c *CompetencyController) ListSessionScores(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if _, err := c.SessionService.GetSession(id, claims.UserID); err != nil {
		respondDomainError(ctx, err)
		return
	}

	scores, err := c.CompetencyService.ListSessionScores(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"scores": scores})
}
