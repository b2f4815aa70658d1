package util

import "errors"

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrSessionNotFound      = errors.New("session not found")
	ErrScenarioNotFound     = errors.New("scenario not found")
	ErrQuestionNotFound     = errors.New("assessment question not found")
	ErrInvalidState         = errors.New("operation not allowed in current session state")
	ErrSessionNotActive     = errors.New("session is not active")
	ErrGeneratorUnavailable = errors.New("question generator unavailable")
	ErrTurnConflict         = errors.New("turn number conflict")
)
