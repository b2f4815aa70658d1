package service

import (
	"context"
	"encoding/json"
	"errors"
	"skillsim_backend/internal/model"
	"skillsim_backend/internal/repository"
	"skillsim_backend/internal/util"
	"skillsim_backend/pkg/logger"
	"skillsim_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionService 会话状态机：所有会话状态变更都从这里走
type SessionService struct {
	SessionRepo  *repository.SessionRepository
	TurnRepo     *repository.TurnRepository
	ScenarioRepo *repository.ScenarioRepository
	ProgressRepo *repository.ProgressRepository
	UserRepo     *repository.UserRepository
	Assessment   *AssessmentService
	Competency   *CompetencyService
}

func NewSessionService(
	sessionRepo *repository.SessionRepository,
	turnRepo *repository.TurnRepository,
	scenarioRepo *repository.ScenarioRepository,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
	assessment *AssessmentService,
	competency *CompetencyService,
) *SessionService {
	return &SessionService{
		SessionRepo:  sessionRepo,
		TurnRepo:     turnRepo,
		ScenarioRepo: scenarioRepo,
		ProgressRepo: progressRepo,
		UserRepo:     userRepo,
		Assessment:   assessment,
		Competency:   competency,
	}
}

// StartSession 幂等开始：该 (用户, 场景) 已有进行中的会话时原样返回，不建重复会话
func (s *SessionService) StartSession(userID, scenarioID uint) (*model.TrainingSession, error) {
	scenario, err := s.ScenarioRepo.FindByID(scenarioID)
	if err != nil || !scenario.Published {
		return nil, util.ErrScenarioNotFound
	}

	existing, err := s.SessionRepo.FindActiveByUserAndScenario(userID, scenarioID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session := &model.TrainingSession{
		UserID:     userID,
		ScenarioID: scenarioID,
		Status:     model.SessionInProgress,
		StartedAt:  time.Now(),
	}
	if err := s.SessionRepo.Create(session); err != nil {
		return nil, err
	}

	if err := s.ProgressRepo.Touch(userID, scenarioID); err != nil {
		logger.Log.Warn("failed to update scenario progress on session start",
			zap.Uint("userId", userID), zap.Uint("scenarioId", scenarioID), zap.Error(err))
	}

	return session, nil
}

// GetSession 按归属读取；他人的会话一律 NotFound
func (s *SessionService) GetSession(sessionID, userID uint) (*model.TrainingSession, error) {
	session, err := s.SessionRepo.FindByIDAndUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *SessionService) ListSessions(userID uint, page, limit int) ([]model.TrainingSession, int64, error) {
	return s.SessionRepo.ListByUser(userID, page, limit)
}

// TurnRequest 单轮发言请求
type TurnRequest struct {
	Speaker model.TurnSpeaker  `json:"speaker" binding:"required"`
	Message string             `json:"message" binding:"required"`
	Metrics *model.TurnMetrics `json:"metrics"`
}

// RecordTurn 追加一轮发言并返回触发判定。
// 轮号由账本按 count+1 赋值，唯一索引加一次重试保证无空洞不重复
func (s *SessionService) RecordTurn(ctx context.Context, sessionID, userID uint, req TurnRequest) (*model.SessionTurn, *TriggerVerdict, error) {
	session, err := s.GetSession(sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != model.SessionInProgress {
		return nil, nil, util.ErrInvalidState
	}

	switch req.Speaker {
	case model.SpeakerUser, model.SpeakerCoach, model.SpeakerClient:
	default:
		return nil, nil, util.ErrInvalidState
	}

	turn := &model.SessionTurn{
		SessionID: sessionID,
		Speaker:   req.Speaker,
		Message:   req.Message,
	}
	if req.Metrics != nil {
		turn.Metrics, _ = json.Marshal(req.Metrics)
	}

	if err := s.TurnRepo.Append(turn); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, util.ErrTurnConflict
		}
		return nil, nil, err
	}

	session.CurrentTurn = turn.TurnNumber
	session.TotalTurns = turn.TurnNumber
	if req.Metrics != nil {
		session.Sentiment = req.Metrics.Sentiment
		session.Pacing = req.Metrics.Pacing
		session.Clarity = req.Metrics.Clarity
	}
	if err := s.SessionRepo.Update(session); err != nil {
		return nil, nil, err
	}

	verdict, err := s.Assessment.CheckTrigger(ctx, session)
	if err != nil {
		// 触发判定失败不影响已写入的轮次
		logger.Log.Error("assessment trigger check failed",
			zap.Uint("sessionId", sessionID), zap.Error(err))
		verdict = &TriggerVerdict{Trigger: false, Reason: "trigger check unavailable"}
	}

	return turn, verdict, nil
}

func (s *SessionService) PauseSession(sessionID, userID uint) (*model.TrainingSession, error) {
	return s.transition(sessionID, userID, model.SessionPaused)
}

func (s *SessionService) ResumeSession(sessionID, userID uint) (*model.TrainingSession, error) {
	return s.transition(sessionID, userID, model.SessionInProgress)
}

func (s *SessionService) AbandonSession(sessionID, userID uint) (*model.TrainingSession, error) {
	return s.transition(sessionID, userID, model.SessionAbandoned)
}

func (s *SessionService) transition(sessionID, userID uint, to model.SessionStatus) (*model.TrainingSession, error) {
	session, err := s.GetSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.CanTransition(to) {
		return nil, util.ErrInvalidState
	}
	session.Status = to
	if err := s.SessionRepo.Update(session); err != nil {
		return nil, err
	}
	return session, nil
}

// CompetencyScoreInput 完成请求里携带的单个能力评分
type CompetencyScoreInput struct {
	Name         string             `json:"name" binding:"required"`
	Score        int                `json:"score" binding:"min=0,max=100"`
	Feedback     string             `json:"feedback"`
	FeedbackType model.FeedbackType `json:"feedbackType"`
}

// CompleteSessionRequest 完成会话请求
type CompleteSessionRequest struct {
	OverallScore     int                    `json:"overallScore" binding:"min=0,max=100"`
	XPEarned         int                    `json:"xpEarned" binding:"min=0"`
	CompetencyScores []CompetencyScoreInput `json:"competencyScores"`
}

// CompleteSession 仅 in_progress / paused 可完成；CompletedAt 只在此处设置一次。
// 完成后做场景最好成绩汇总、能力得分落库、经验值入账
func (s *SessionService) CompleteSession(sessionID, userID uint, req CompleteSessionRequest) (*model.TrainingSession, error) {
	session, err := s.GetSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.CanTransition(model.SessionCompleted) {
		return nil, util.ErrInvalidState
	}

	now := time.Now()
	score := req.OverallScore
	session.Status = model.SessionCompleted
	session.CompletedAt = &now
	session.OverallScore = &score
	session.XPEarned = req.XPEarned
	if err := s.SessionRepo.Update(session); err != nil {
		return nil, err
	}

	if err := s.ProgressRepo.RecordCompletion(userID, session.ScenarioID, score); err != nil {
		logger.Log.Error("failed to record scenario completion rollup",
			zap.Uint("sessionId", sessionID), zap.Error(err))
	}

	if err := s.Competency.PersistSessionScores(session, req.CompetencyScores); err != nil {
		logger.Log.Error("failed to persist competency scores",
			zap.Uint("sessionId", sessionID), zap.Error(err))
	}

	if req.XPEarned > 0 {
		if err := s.UserRepo.CreditXP(userID, req.XPEarned); err != nil {
			logger.Log.Warn("failed to credit xp", zap.Uint("userId", userID), zap.Error(err))
		}
	}

	s.Competency.InvalidateSummary(userID)
	monitoring.SessionsCompleted.Inc()

	return session, nil
}

// GetTranscript 会话全量转写，轮号升序
func (s *SessionService) GetTranscript(sessionID, userID uint) ([]model.SessionTurn, error) {
	if _, err := s.GetSession(sessionID, userID); err != nil {
		return nil, err
	}
	return s.TurnRepo.ListBySession(sessionID)
}

// AbandonStaleSessions 把长时间无更新的进行中会话置为放弃，后台定时任务调用
func (s *SessionService) AbandonStaleSessions(maxIdle time.Duration) (int, error) {
	stale, err := s.SessionRepo.ListStaleInProgress(time.Now().Add(-maxIdle))
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for i := range stale {
		if !stale[i].CanTransition(model.SessionAbandoned) {
			continue
		}
		stale[i].Status = model.SessionAbandoned
		if err := s.SessionRepo.Update(&stale[i]); err != nil {
			logger.Log.Error("failed to abandon stale session",
				zap.Uint("sessionId", stale[i].ID), zap.Error(err))
			continue
		}
		abandoned++
	}
	return abandoned, nil
}
