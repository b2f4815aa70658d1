package controller

import (
	"skillsim_backend/internal/service"
	"skillsim_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
	SessionService    *service.SessionService
}

func NewAssessmentController(assessmentService *service.AssessmentService, sessionService *service.SessionService) *AssessmentController {
	return &AssessmentController{
		AssessmentService: assessmentService,
		SessionService:    sessionService,
	}
}

// RequestAssessment godoc
// @Summary 主动请求评估
// @Description 跳过触发策略，立即为进行中的会话出一道题
// @Tags 评估
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=service.StudentQuestion}
// @Failure 404 {object} util.Response "无可用题目"
// @Failure 409 {object} util.Response "会话未在进行中"
// @Router /api/sessions/{id}/assessment [post]
func (c *AssessmentController) RequestAssessment(ctx *gin.Context) {
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
	if !session.IsActive() {
		util.Conflict(ctx, "session is not active")
		return
	}

	question, err := c.AssessmentService.GetImmediateAssessment(ctx.Request.Context(), session)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// SubmitAnswerRequest 学员提交答案
type SubmitAnswerRequest struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

// SubmitAnswer godoc
// @Summary 提交评估答案
// @Description 答案自动判分；重复提交同一题会覆盖前一次
// @Tags 评估
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Param body body SubmitAnswerRequest true "答案"
// @Success 200 {object} util.Response{data=model.SessionAssessmentAnswer}
// @Failure 404 {object} util.Response "题目不存在或不属于该场景"
// @Router /api/sessions/{id}/answers [post]
func (c *AssessmentController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.SessionService.GetSession(id, claims.UserID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}

	answer, err := c.AssessmentService.SubmitAnswer(session, req.QuestionID, req.Answer)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

// ListAnswers godoc
// @Summary 会话评估记录
// @Tags 评估
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/sessions/{id}/answers [get]
func (c *AssessmentController) ListAnswers(ctx *gin.Context) {
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

	answers, err := c.AssessmentService.ListAnswers(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"answers": answers})
}

// CreateQuestion godoc
// @Summary 创建题库题目
// @Description 教练为场景维护静态题库
// @Tags 评估
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.AssessmentQuestionRequest true "题目"
// @Success 201 {object} util.Response{data=model.AssessmentQuestion}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/coach/questions [post]
func (c *AssessmentController) CreateQuestion(ctx *gin.Context) {
	var req service.AssessmentQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.AssessmentService.CreateQuestion(req)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// ListQuestions godoc
// @Summary 场景题库
// @Tags 评估
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "场景ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/coach/scenarios/{id}/questions [get]
func (c *AssessmentController) ListQuestions(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	questions, err := c.AssessmentService.ListQuestions(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"questions": questions})
}
