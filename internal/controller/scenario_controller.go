package controller

import (
	"skillsim_backend/internal/service"
	"skillsim_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ScenarioController struct {
	ScenarioService *service.ScenarioService
}

func NewScenarioController(scenarioService *service.ScenarioService) *ScenarioController {
	return &ScenarioController{ScenarioService: scenarioService}
}

// ListScenarios godoc
// @Summary 场景列表
// @Description 分页获取已发布的训练场景，可按类别过滤
// @Tags 场景
// @Produce json
// @Security ApiKeyAuth
// @Param category query string false "场景类别"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object}
// @Router /api/scenarios [get]
func (c *ScenarioController) ListScenarios(ctx *gin.Context) {
	category := ctx.Query("category")
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	scenarios, total, err := c.ScenarioService.ListScenarios(category, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"scenarios": scenarios,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// GetScenario godoc
// @Summary 场景详情
// @Tags 场景
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "场景ID"
// @Success 200 {object} util.Response{data=model.Scenario}
// @Failure 404 {object} util.Response "场景不存在"
// @Router /api/scenarios/{id} [get]
func (c *ScenarioController) GetScenario(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	scenario, err := c.ScenarioService.GetScenario(id)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, scenario)
}

// CreateScenario godoc
// @Summary 创建场景
// @Description 教练创建新的训练场景
// @Tags 场景
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ScenarioRequest true "场景信息"
// @Success 201 {object} util.Response{data=model.Scenario}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/coach/scenarios [post]
func (c *ScenarioController) CreateScenario(ctx *gin.Context) {
	var req service.ScenarioRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	scenario, err := c.ScenarioService.CreateScenario(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, scenario)
}

// UpdateScenario godoc
// @Summary 更新场景
// @Tags 场景
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "场景ID"
// @Param body body service.ScenarioRequest true "场景信息"
// @Success 200 {object} util.Response{data=model.Scenario}
// @Failure 404 {object} util.Response "场景不存在"
// @Router /api/coach/scenarios/{id} [put]
func (c *ScenarioController) UpdateScenario(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req service.ScenarioRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	scenario, err := c.ScenarioService.UpdateScenario(id, req)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, scenario)
}
