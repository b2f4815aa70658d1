package controller

import (
	"skillsim_backend/internal/service"
	"skillsim_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// GetComparison godoc
// @Summary 历史成绩对比
// @Description 与同场景历史最好成绩逐项对比；没有历史时返回空列表
// @Tags 报告
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 409 {object} util.Response "会话未完成"
// @Router /api/sessions/{id}/comparison [get]
func (c *ReportController) GetComparison(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	metrics, err := c.ReportService.GetComparison(id, claims.UserID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"metrics": metrics})
}

// GetRecommendations godoc
// @Summary 辅导建议
// @Description 根据薄弱能力推荐练习场景或学习资源
// @Tags 报告
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 409 {object} util.Response "会话未完成"
// @Router /api/sessions/{id}/recommendations [get]
func (c *ReportController) GetRecommendations(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	recommendations, err := c.ReportService.GetRecommendations(id, claims.UserID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"recommendations": recommendations})
}

// GetSummary godoc
// @Summary 会话总结
// @Description 读取或生成会话的文字总结
// @Tags 报告
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Param regenerate query bool false "强制重新生成"
// @Success 200 {object} util.Response{data=object}
// @Failure 409 {object} util.Response "会话未完成"
// @Router /api/sessions/{id}/summary [get]
func (c *ReportController) GetSummary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	regenerate := ctx.Query("regenerate") == "true"
	summary, err := c.ReportService.GetSummary(ctx.Request.Context(), id, claims.UserID, regenerate)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"summary": summary})
}

// ExportReport godoc
// @Summary 导出执行报告
// @Description 汇总会话成绩、对比和建议，写入对象存储并返回下载地址
// @Tags 报告
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 409 {object} util.Response "会话未完成"
// @Router /api/sessions/{id}/export [post]
func (c *ReportController) ExportReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	url, err := c.ReportService.ExportReport(ctx.Request.Context(), id, claims.UserID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}
