package controller

import (
	"errors"
	"skillsim_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseUintParam 解析路径参数，失败时返回 0
func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// respondDomainError 把领域错误映射为 HTTP 状态码
func respondDomainError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrScenarioNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrInvalidState),
		errors.Is(err, util.ErrSessionNotActive):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrTurnConflict):
		util.Conflict(ctx, "concurrent turn submission, please retry")
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
