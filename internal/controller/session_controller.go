package controller

import (
	"skillsim_backend/internal/model"
	"skillsim_backend/internal/service"
	"skillsim_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// StartSessionRequest 开始训练会话的请求体
type StartSessionRequest struct {
	ScenarioID uint `json:"scenarioId" binding:"required"`
}

// StartSession godoc
// @Summary 开始训练会话
// @Description 为指定场景创建会话；同一场景已有进行中的会话时直接返回它
// @Tags 会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body StartSessionRequest true "场景"
// @Success 201 {object} util.Response{data=model.TrainingSession}
// @Failure 404 {object} util.Response "场景不存在"
// @Router /api/sessions [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.StartSession(claims.UserID, req.ScenarioID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// GetSession godoc
// @Summary 会话详情
// @Tags 会话
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=model.TrainingSession}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	session, err := c.SessionService.GetSession(id, claims.UserID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// ListSessions godoc
// @Summary 会话列表
// @Description 分页获取当前用户的历史会话
// @Tags 会话
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=object}
// @Router /api/sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	sessions, total, err := c.SessionService.ListSessions(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"sessions": sessions,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// RecordTurn godoc
// @Summary 记录对话轮次
// @Description 追加一条对话轮次并返回评估触发判定
// @Tags 会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Param body body service.TurnRequest true "轮次内容"
// @Success 200 {object} util.Response{data=object}
// @Failure 409 {object} util.Response "会话状态不允许或并发冲突"
// @Router /api/sessions/{id}/turns [post]
func (c *SessionController) RecordTurn(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req service.TurnRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	turn, verdict, err := c.SessionService.RecordTurn(ctx.Request.Context(), id, claims.UserID, req)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"turn":       turn,
		"assessment": verdict,
	})
}

// PauseSession godoc
// @Summary 暂停会话
// @Tags 会话
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=model.TrainingSession}
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/sessions/{id}/pause [post]
func (c *SessionController) PauseSession(ctx *gin.Context) {
	c.transition(ctx, c.SessionService.PauseSession)
}

// ResumeSession godoc
// @Summary 恢复会话
// @Tags 会话
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=model.TrainingSession}
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/sessions/{id}/resume [post]
func (c *SessionController) ResumeSession(ctx *gin.Context) {
	c.transition(ctx, c.SessionService.ResumeSession)
}

// AbandonSession godoc
// @Summary 放弃会话
// @Tags 会话
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=model.TrainingSession}
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/sessions/{id}/abandon [post]
func (c *SessionController) AbandonSession(ctx *gin.Context) {
	c.transition(ctx, c.SessionService.AbandonSession)
}

func (c *SessionController) transition(ctx *gin.Context, fn func(sessionID, userID uint) (*model.TrainingSession, error)) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	session, err := fn(id, claims.UserID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// CompleteSession godoc
// @Summary 完成会话
// @Description 结束会话并写入总分、能力分与经验值
// @Tags 会话
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Param body body service.CompleteSessionRequest true "评分结果"
// @Success 200 {object} util.Response{data=model.TrainingSession}
// @Failure 409 {object} util.Response "状态不允许"
// @Router /api/sessions/{id}/complete [post]
func (c *SessionController) CompleteSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req service.CompleteSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.CompleteSession(id, claims.UserID, req)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// GetTranscript godoc
// @Summary 会话完整记录
// @Description 按轮次顺序返回会话的全部对话
// @Tags 会话
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/sessions/{id}/transcript [get]
func (c *SessionController) GetTranscript(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	turns, err := c.SessionService.GetTranscript(id, claims.UserID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"turns": turns})
}
