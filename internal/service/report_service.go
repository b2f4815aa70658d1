package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"skillsim_backend/internal/config"
	"skillsim_backend/internal/model"
	"skillsim_backend/internal/repository"
	"skillsim_backend/internal/util"
	"skillsim_backend/pkg/logger"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MetricDirection string

const (
	DirectionIncrease MetricDirection = "increase"
	DirectionDecrease MetricDirection = "decrease"
	DirectionStable   MetricDirection = "stable"
)

// ComparisonMetric 当前会话与历史最好成绩的一项对比
type ComparisonMetric struct {
	Name      string          `json:"name"`
	Current   int             `json:"current"`
	Previous  int             `json:"previous"`
	Delta     int             `json:"delta"` // 绝对差值
	Direction MetricDirection `json:"direction"`
}

// Recommendation 一条辅导建议
type Recommendation struct {
	Action        string `json:"action"` // practice_scenario | view_resource | practice_more
	Competency    string `json:"competency,omitempty"`
	Score         int    `json:"score,omitempty"`
	ScenarioID    uint   `json:"scenarioId,omitempty"`
	ScenarioTitle string `json:"scenarioTitle,omitempty"`
	Message       string `json:"message"`
}

type ReportService struct {
	SessionRepo    *repository.SessionRepository
	CompetencyRepo *repository.CompetencyRepository
	ScenarioRepo   *repository.ScenarioRepository
	TurnRepo       *repository.TurnRepository
	Generator      *GeneratorService
	Storage        *StorageService
	Engine         config.EngineConfig
}

func NewReportService(
	sessionRepo *repository.SessionRepository,
	competencyRepo *repository.CompetencyRepository,
	scenarioRepo *repository.ScenarioRepository,
	turnRepo *repository.TurnRepository,
	generator *GeneratorService,
	storage *StorageService,
	engine config.EngineConfig,
) *ReportService {
	return &ReportService{
		SessionRepo:    sessionRepo,
		CompetencyRepo: competencyRepo,
		ScenarioRepo:   scenarioRepo,
		TurnRepo:       turnRepo,
		Generator:      generator,
		Storage:        storage,
		Engine:         engine,
	}
}

func (s *ReportService) ownedCompletedSession(sessionID, userID uint) (*model.TrainingSession, error) {
	session, err := s.SessionRepo.FindByIDAndUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status != model.SessionCompleted || session.OverallScore == nil {
		return nil, util.ErrInvalidState
	}
	return session, nil
}

// GetComparison 与同场景历史最好成绩对比。没有历史会话时返回空列表而非错误；
// 整体分永远在列，能力项只保留分差不为零的
func (s *ReportService) GetComparison(sessionID, userID uint) ([]ComparisonMetric, error) {
	session, err := s.ownedCompletedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	previous, err := s.SessionRepo.FindPreviousBest(userID, session.ScenarioID, session.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []ComparisonMetric{}, nil
		}
		return nil, err
	}

	metrics := []ComparisonMetric{
		buildMetric("Overall Score", *session.OverallScore, *previous.OverallScore),
	}

	currentScores, err := s.CompetencyRepo.ListBySession(session.ID)
	if err != nil {
		return nil, err
	}
	previousScores, err := s.CompetencyRepo.ListBySession(previous.ID)
	if err != nil {
		return nil, err
	}

	currentByName := make(map[string]int, len(currentScores))
	for _, cs := range currentScores {
		currentByName[cs.CompetencyName] = cs.Score
	}
	previousByName := make(map[string]int, len(previousScores))
	for _, ps := range previousScores {
		previousByName[ps.CompetencyName] = ps.Score
	}

	names := make([]string, 0, len(currentByName)+len(previousByName))
	seen := make(map[string]bool)
	for name := range currentByName {
		names = append(names, name)
		seen[name] = true
	}
	for name := range previousByName {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		cur := currentByName[name]
		prev := previousByName[name]
		if cur == prev {
			// 无变化的能力项不进对比
			continue
		}
		metrics = append(metrics, buildMetric(name, cur, prev))
	}

	return metrics, nil
}

func buildMetric(name string, current, previous int) ComparisonMetric {
	m := ComparisonMetric{Name: name, Current: current, Previous: previous}
	switch {
	case current > previous:
		m.Delta = current - previous
		m.Direction = DirectionIncrease
	case current < previous:
		m.Delta = previous - current
		m.Direction = DirectionDecrease
	default:
		m.Direction = DirectionStable
	}
	return m
}

// GetRecommendations 取低于阈值的至多 3 个最低分能力给补救建议：
// 有共享标签的场景推练习，否则推资源；都不触发但整体分偏低时给一条通用建议
func (s *ReportService) GetRecommendations(sessionID, userID uint) ([]Recommendation, error) {
	session, err := s.ownedCompletedSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	scores, err := s.CompetencyRepo.ListBySession(session.ID)
	if err != nil {
		return nil, err
	}

	weak := make([]model.CompetencyScore, 0, len(scores))
	for _, cs := range scores {
		if cs.Score < s.Engine.RecommendThreshold {
			weak = append(weak, cs)
		}
	}
	sort.Slice(weak, func(i, j int) bool { return weak[i].Score < weak[j].Score })
	if len(weak) > 3 {
		weak = weak[:3]
	}

	if len(weak) == 0 {
		if *session.OverallScore < s.Engine.RecommendOverallFloor {
			return []Recommendation{{
				Action:  "practice_more",
				Message: "Your overall score has room to grow. Schedule another practice session this week.",
			}}, nil
		}
		return []Recommendation{}, nil
	}

	scenarios, err := s.ScenarioRepo.ListPublished()
	if err != nil {
		return nil, err
	}

	recommendations := make([]Recommendation, 0, len(weak))
	for _, cs := range weak {
		rec := Recommendation{
			Competency: cs.CompetencyName,
			Score:      cs.Score,
		}
		if match := matchScenarioByTag(scenarios, cs.CompetencyName, session.ScenarioID); match != nil {
			rec.Action = "practice_scenario"
			rec.ScenarioID = match.ID
			rec.ScenarioTitle = match.Title
			rec.Message = fmt.Sprintf("Practice %q with the %q scenario.", cs.CompetencyName, match.Title)
		} else {
			rec.Action = "view_resource"
			rec.Message = fmt.Sprintf("Review the learning resources for %q.", cs.CompetencyName)
		}
		recommendations = append(recommendations, rec)
	}

	return recommendations, nil
}

// matchScenarioByTag 找一个与能力名共享标签的其它场景
func matchScenarioByTag(scenarios []model.Scenario, competency string, excludeID uint) *model.Scenario {
	needle := strings.ToLower(strings.TrimSpace(competency))
	for i := range scenarios {
		if scenarios[i].ID == excludeID {
			continue
		}
		for _, tag := range scenarios[i].TagList() {
			if strings.ToLower(strings.TrimSpace(tag)) == needle {
				return &scenarios[i]
			}
		}
	}
	return nil
}

// GetSummary 读取或生成会话总结；协作方失败时给确定性的降级文本
func (s *ReportService) GetSummary(ctx context.Context, sessionID, userID uint, regenerate bool) (string, error) {
	session, err := s.ownedCompletedSession(sessionID, userID)
	if err != nil {
		return "", err
	}
	if session.Summary != "" && !regenerate {
		return session.Summary, nil
	}

	scenario, err := s.ScenarioRepo.FindByID(session.ScenarioID)
	if err != nil {
		return "", err
	}
	turns, err := s.TurnRepo.ListBySession(session.ID)
	if err != nil {
		return "", err
	}

	summary, err := s.Generator.SummarizeSession(ctx, scenario, turns)
	if err != nil {
		logger.Log.Debug("summary generation fell back to deterministic text",
			zap.Uint("sessionId", session.ID), zap.Error(err))
		summary = fallbackSummary(session, scenario, len(turns))
	}

	session.Summary = summary
	if err := s.SessionRepo.Update(session); err != nil {
		return "", err
	}
	return summary, nil
}

func fallbackSummary(session *model.TrainingSession, scenario *model.Scenario, turnCount int) string {
	return fmt.Sprintf(
		"Completed the %q scenario in %d turns with an overall score of %d.",
		scenario.Title, turnCount, *session.OverallScore,
	)
}

// ExecutiveReport 导出的执行报告结构
type ExecutiveReport struct {
	SessionID        uint                    `json:"sessionId"`
	ScenarioTitle    string                  `json:"scenarioTitle"`
	CompletedAt      *time.Time              `json:"completedAt"`
	OverallScore     int                     `json:"overallScore"`
	XPEarned         int                     `json:"xpEarned"`
	Summary          string                  `json:"summary,omitempty"`
	CompetencyScores []model.CompetencyScore `json:"competencyScores"`
	Comparison       []ComparisonMetric      `json:"comparison"`
	Recommendations  []Recommendation        `json:"recommendations"`
	GeneratedAt      time.Time               `json:"generatedAt"`
}

// ExportReport 汇总报告并写入对象存储，返回可下载地址
func (s *ReportService) ExportReport(ctx context.Context, sessionID, userID uint) (string, error) {
	session, err := s.ownedCompletedSession(sessionID, userID)
	if err != nil {
		return "", err
	}
	scenario, err := s.ScenarioRepo.FindByID(session.ScenarioID)
	if err != nil {
		return "", err
	}

	comparison, err := s.GetComparison(sessionID, userID)
	if err != nil {
		return "", err
	}
	recommendations, err := s.GetRecommendations(sessionID, userID)
	if err != nil {
		return "", err
	}
	scores, err := s.CompetencyRepo.ListBySession(session.ID)
	if err != nil {
		return "", err
	}

	report := ExecutiveReport{
		SessionID:        session.ID,
		ScenarioTitle:    scenario.Title,
		CompletedAt:      session.CompletedAt,
		OverallScore:     *session.OverallScore,
		XPEarned:         session.XPEarned,
		Summary:          session.Summary,
		CompetencyScores: scores,
		Comparison:       comparison,
		Recommendations:  recommendations,
		GeneratedAt:      time.Now(),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("reports/user_%d/session_%d_%s.json", userID, session.ID, model.GenerateUUID())
	return s.Storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json")
}
