package service

import (
	"context"
	"encoding/json"
	"errors"
	"skillsim_backend/internal/config"
	"skillsim_backend/internal/model"
	"skillsim_backend/internal/repository"
	"skillsim_backend/internal/util"
	"skillsim_backend/pkg/logger"
	"skillsim_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TriggerInput 触发判定的全部输入，便于替换策略与单测
type TriggerInput struct {
	TurnCount     int
	Elapsed       time.Duration
	AnsweredCount int
	Config        config.EngineConfig
}

// TriggerPolicy 可插拔的"自然决策点"判定函数
type TriggerPolicy func(TriggerInput) (bool, string)

// DefaultTriggerPolicy 默认策略：轮数到达下限、每 N 轮最多一次、
// 会话时长达标、且未超出单会话答题上限
func DefaultTriggerPolicy(in TriggerInput) (bool, string) {
	cfg := in.Config
	if in.AnsweredCount >= cfg.MaxAssessments {
		return false, "assessment limit reached for this session"
	}
	if in.TurnCount < cfg.TriggerMinTurns {
		return false, "not enough turns yet"
	}
	if in.Elapsed < cfg.TriggerMinElapsed() {
		return false, "session too young"
	}
	if in.TurnCount%cfg.TriggerEveryTurns != 0 {
		return false, "between checkpoints"
	}
	return true, "natural decision point reached"
}

// StudentOption 学员可见的选项（不含正确标记）
type StudentOption struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// StudentQuestion 学员可见的题目视图，隐藏参考答案和正确选项
type StudentQuestion struct {
	ID           uint               `json:"id"`
	QuestionType model.QuestionType `json:"questionType"`
	Prompt       string             `json:"prompt"`
	Options      []StudentOption    `json:"options,omitempty"`
	OrderIndex   int                `json:"orderIndex"`
	Source       string             `json:"source"`
}

// TriggerVerdict 触发判定结果，Question 仅在 Trigger 为 true 时非空
type TriggerVerdict struct {
	Trigger  bool             `json:"trigger"`
	Reason   string           `json:"reason"`
	Question *StudentQuestion `json:"question,omitempty"`
}

type AssessmentService struct {
	Repo         *repository.AssessmentRepository
	TurnRepo     *repository.TurnRepository
	ScenarioRepo *repository.ScenarioRepository
	Generator    *GeneratorService

	mu     sync.RWMutex
	engine config.EngineConfig
	policy TriggerPolicy
}

func NewAssessmentService(
	repo *repository.AssessmentRepository,
	turnRepo *repository.TurnRepository,
	scenarioRepo *repository.ScenarioRepository,
	generator *GeneratorService,
	engine config.EngineConfig,
) *AssessmentService {
	return &AssessmentService{
		Repo:         repo,
		TurnRepo:     turnRepo,
		ScenarioRepo: scenarioRepo,
		Generator:    generator,
		engine:       engine,
		policy:       DefaultTriggerPolicy,
	}
}

// SetPolicy 替换触发策略（测试和实验用）
func (s *AssessmentService) SetPolicy(p TriggerPolicy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
}

// UpdateEngineConfig 配置热更新入口
func (s *AssessmentService) UpdateEngineConfig(engine config.EngineConfig) {
	s.mu.Lock()
	s.engine = engine
	s.mu.Unlock()
}

func (s *AssessmentService) snapshot() (config.EngineConfig, TriggerPolicy) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine, s.policy
}

// CheckTrigger 判断会话是否到达自然决策点；到达则动态优先选一道未答的题。
// 题库耗尽且生成失败时返回 trigger:false，绝不向对话报错
func (s *AssessmentService) CheckTrigger(ctx context.Context, session *model.TrainingSession) (*TriggerVerdict, error) {
	engine, policy := s.snapshot()

	answeredIDs, err := s.Repo.AnsweredQuestionIDs(session.ID)
	if err != nil {
		return nil, err
	}

	ok, reason := policy(TriggerInput{
		TurnCount:     session.CurrentTurn,
		Elapsed:       time.Since(session.StartedAt),
		AnsweredCount: len(answeredIDs),
		Config:        engine,
	})
	if !ok {
		return &TriggerVerdict{Trigger: false, Reason: reason}, nil
	}

	question, source := s.selectQuestion(ctx, session, answeredIDs)
	if question == nil {
		return &TriggerVerdict{Trigger: false, Reason: "no unanswered questions available"}, nil
	}

	monitoring.AssessmentTriggers.WithLabelValues(source).Inc()
	return &TriggerVerdict{
		Trigger:  true,
		Reason:   reason,
		Question: toStudentQuestion(question),
	}, nil
}

// GetImmediateAssessment 跳过决策点判定，直接给一道题（动态优先、静态兜底）。
// 已答过的题永远不会再次出现
func (s *AssessmentService) GetImmediateAssessment(ctx context.Context, session *model.TrainingSession) (*StudentQuestion, error) {
	answeredIDs, err := s.Repo.AnsweredQuestionIDs(session.ID)
	if err != nil {
		return nil, err
	}

	question, source := s.selectQuestion(ctx, session, answeredIDs)
	if question == nil {
		return nil, util.ErrQuestionNotFound
	}

	monitoring.AssessmentTriggers.WithLabelValues(source).Inc()
	return toStudentQuestion(question), nil
}

// selectQuestion 动态生成优先，失败或超时静默降级到静态题库
func (s *AssessmentService) selectQuestion(ctx context.Context, session *model.TrainingSession, answeredIDs []uint) (*model.AssessmentQuestion, string) {
	scenario, err := s.ScenarioRepo.FindByID(session.ScenarioID)
	if err != nil {
		logger.Log.Error("failed to load scenario for question selection",
			zap.Uint("scenarioId", session.ScenarioID), zap.Error(err))
		return nil, ""
	}

	turns, err := s.TurnRepo.LastTurns(session.ID, 10)
	if err != nil {
		turns = nil
	}

	outcome := s.Generator.GenerateQuestion(ctx, scenario, turns)
	if !outcome.Fallback {
		if err := s.Repo.CreateQuestion(outcome.Question); err != nil {
			logger.Log.Warn("failed to persist generated question, falling back to static bank",
				zap.Error(err))
		} else {
			return outcome.Question, "generated"
		}
	} else {
		logger.Log.Debug("dynamic generation fell back to static bank",
			zap.Uint("sessionId", session.ID), zap.String("reason", outcome.Reason))
	}

	q, err := s.Repo.FirstUnansweredQuestion(session.ScenarioID, answeredIDs)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Error("failed to query static question bank", zap.Error(err))
		}
		return nil, ""
	}
	return q, "static"
}

// SubmitAnswer 评分并以幂等 upsert 落库；重复提交覆盖旧作答
func (s *AssessmentService) SubmitAnswer(session *model.TrainingSession, questionID uint, submitted string) (*model.SessionAssessmentAnswer, error) {
	question, err := s.Repo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	if question.ScenarioID != session.ScenarioID {
		return nil, util.ErrQuestionNotFound
	}

	result := GradeAnswer(question, submitted)

	answer := &model.SessionAssessmentAnswer{
		SessionID:       session.ID,
		AssessmentID:    question.ID,
		SubmittedAnswer: submitted,
		IsCorrect:       result.IsCorrect,
		Score:           result.Score,
		Feedback:        result.Feedback,
		AnsweredAt:      time.Now(),
	}
	if err := s.Repo.UpsertAnswer(answer); err != nil {
		return nil, err
	}

	monitoring.AnswersGraded.WithLabelValues(string(question.QuestionType)).Inc()
	return answer, nil
}

func (s *AssessmentService) ListAnswers(sessionID uint) ([]model.SessionAssessmentAnswer, error) {
	return s.Repo.ListAnswersBySession(sessionID)
}

// AssessmentQuestionRequest 题库管理请求（教练端）
type AssessmentQuestionRequest struct {
	ScenarioID      uint                 `json:"scenarioId" binding:"required"`
	QuestionType    model.QuestionType   `json:"questionType" binding:"required"`
	Prompt          string               `json:"prompt" binding:"required"`
	Options         []model.AnswerOption `json:"options"`
	ReferenceAnswer string               `json:"referenceAnswer"`
	Explanation     string               `json:"explanation"`
	OrderIndex      int                  `json:"orderIndex"`
}

func (s *AssessmentService) CreateQuestion(req AssessmentQuestionRequest) (*model.AssessmentQuestion, error) {
	var options json.RawMessage
	if len(req.Options) > 0 {
		options, _ = json.Marshal(req.Options)
	}

	q := &model.AssessmentQuestion{
		ScenarioID:      req.ScenarioID,
		QuestionType:    req.QuestionType,
		Prompt:          req.Prompt,
		Options:         options,
		ReferenceAnswer: req.ReferenceAnswer,
		Explanation:     req.Explanation,
		OrderIndex:      req.OrderIndex,
		Source:          model.SourceStatic,
	}
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) ListQuestions(scenarioID uint) ([]model.AssessmentQuestion, error) {
	return s.Repo.ListQuestionsByScenario(scenarioID)
}

func toStudentQuestion(q *model.AssessmentQuestion) *StudentQuestion {
	sq := &StudentQuestion{
		ID:           q.ID,
		QuestionType: q.QuestionType,
		Prompt:       q.Prompt,
		OrderIndex:   q.OrderIndex,
		Source:       string(q.Source),
	}
	if opts, err := q.OptionList(); err == nil {
		for _, o := range opts {
			sq.Options = append(sq.Options, StudentOption{Label: o.Label, Text: o.Text})
		}
	}
	return sq
}
