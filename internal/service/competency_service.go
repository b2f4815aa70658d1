package service

import (
	"context"
	"encoding/json"
	"fmt"
	"skillsim_backend/internal/config"
	"skillsim_backend/internal/model"
	"skillsim_backend/internal/repository"
	"skillsim_backend/pkg/logger"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
	TrendNone      Trend = "" // 没有足够历史数据
)

// CompetencyAggregate 窗口内单个能力的汇总视图
type CompetencyAggregate struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"` // 窗口内平均分
	Trend      Trend   `json:"trend,omitempty"`
	DataPoints int     `json:"dataPoints"`
}

// CompetencySummary 用户能力概览：窗口均分、趋势和连续练习天数
type CompetencySummary struct {
	WindowDays   int                   `json:"windowDays"`
	Competencies []CompetencyAggregate `json:"competencies"`
	StreakDays   int                   `json:"streakDays"`
	GeneratedAt  time.Time             `json:"generatedAt"`
}

type CompetencyService struct {
	Repo        *repository.CompetencyRepository
	SessionRepo *repository.SessionRepository
	Redis       *redis.Client
	Engine      config.EngineConfig
}

func NewCompetencyService(
	repo *repository.CompetencyRepository,
	sessionRepo *repository.SessionRepository,
	rdb *redis.Client,
	engine config.EngineConfig,
) *CompetencyService {
	return &CompetencyService{
		Repo:        repo,
		SessionRepo: sessionRepo,
		Redis:       rdb,
		Engine:      engine,
	}
}

// PersistSessionScores 会话完成时落库能力得分，冗余 UserID/CompletedAt 供窗口查询
func (s *CompetencyService) PersistSessionScores(session *model.TrainingSession, inputs []CompetencyScoreInput) error {
	if len(inputs) == 0 {
		return nil
	}
	completedAt := time.Now()
	if session.CompletedAt != nil {
		completedAt = *session.CompletedAt
	}

	scores := make([]model.CompetencyScore, 0, len(inputs))
	for _, in := range inputs {
		ft := in.FeedbackType
		if ft == "" {
			ft = feedbackTypeForScore(in.Score)
		}
		scores = append(scores, model.CompetencyScore{
			SessionID:      session.ID,
			UserID:         session.UserID,
			CompetencyName: in.Name,
			Score:          in.Score,
			Feedback:       in.Feedback,
			FeedbackType:   ft,
			CompletedAt:    completedAt,
		})
	}
	return s.Repo.CreateBatch(scores)
}

func feedbackTypeForScore(score int) model.FeedbackType {
	switch {
	case score >= 75:
		return model.FeedbackPositive
	case score >= 50:
		return model.FeedbackNeutral
	default:
		return model.FeedbackNegative
	}
}

func (s *CompetencyService) summaryCacheKey(userID uint) string {
	return fmt.Sprintf("competency:summary:%d", userID)
}

// GetSummary 用户能力概览，redis 短缓存，完成会话时失效
func (s *CompetencyService) GetSummary(ctx context.Context, userID uint) (*CompetencySummary, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, s.summaryCacheKey(userID)).Result()
		if err == nil {
			var summary CompetencySummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	now := time.Now()
	since := now.AddDate(0, 0, -s.Engine.TrendWindowDays)

	rows, err := s.Repo.ListByUserSince(userID, since)
	if err != nil {
		return nil, err
	}

	completions, err := s.SessionRepo.CompletionTimes(userID)
	if err != nil {
		return nil, err
	}

	summary := &CompetencySummary{
		WindowDays:   s.Engine.TrendWindowDays,
		Competencies: AggregateCompetencies(rows, now, s.Engine.TrendWindowDays),
		StreakDays:   PracticeStreak(completions, now),
		GeneratedAt:  now,
	}

	if s.Redis != nil {
		if data, err := json.Marshal(summary); err == nil {
			ttl := time.Duration(s.Engine.SummaryCacheSeconds) * time.Second
			if err := s.Redis.Set(ctx, s.summaryCacheKey(userID), data, ttl).Err(); err != nil {
				logger.Log.Debug("failed to cache competency summary", zap.Error(err))
			}
		}
	}

	return summary, nil
}

// InvalidateSummary 完成会话后清掉缓存的概览
func (s *CompetencyService) InvalidateSummary(userID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), s.summaryCacheKey(userID)).Err(); err != nil {
		logger.Log.Debug("failed to invalidate competency summary cache", zap.Error(err))
	}
}

func (s *CompetencyService) ListSessionScores(sessionID uint) ([]model.CompetencyScore, error) {
	return s.Repo.ListBySession(sessionID)
}

// AggregateCompetencies 把窗口内得分按能力名聚合成均分，并分类趋势：
// 窗口对半切分，两半都有数据时 recent−older 超过 ±3 判升/降，否则持平；
// 任一半没有数据则不给趋势
func AggregateCompetencies(rows []model.CompetencyScore, now time.Time, windowDays int) []CompetencyAggregate {
	type bucket struct {
		total, count           int
		recentSum, recentCount int
		olderSum, olderCount   int
	}

	split := now.AddDate(0, 0, -windowDays/2)
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		b, ok := buckets[row.CompetencyName]
		if !ok {
			b = &bucket{}
			buckets[row.CompetencyName] = b
		}
		b.total += row.Score
		b.count++
		if row.CompletedAt.After(split) {
			b.recentSum += row.Score
			b.recentCount++
		} else {
			b.olderSum += row.Score
			b.olderCount++
		}
	}

	aggregates := make([]CompetencyAggregate, 0, len(buckets))
	for name, b := range buckets {
		agg := CompetencyAggregate{
			Name:       name,
			Score:      float64(b.total) / float64(b.count),
			DataPoints: b.count,
		}
		if b.recentCount > 0 && b.olderCount > 0 {
			recentAvg := float64(b.recentSum) / float64(b.recentCount)
			olderAvg := float64(b.olderSum) / float64(b.olderCount)
			delta := recentAvg - olderAvg
			switch {
			case delta > 3:
				agg.Trend = TrendImproving
			case delta < -3:
				agg.Trend = TrendDeclining
			default:
				agg.Trend = TrendStable
			}
		}
		aggregates = append(aggregates, agg)
	}

	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].Name < aggregates[j].Name
	})
	return aggregates
}

// PracticeStreak 连续练习天数：取完成时间的去重日历日集合，
// 最近一天必须是今天或昨天才开始计，从那天往回数到出现断档为止
func PracticeStreak(completions []time.Time, now time.Time) int {
	if len(completions) == 0 {
		return 0
	}

	days := make(map[string]bool, len(completions))
	var latest time.Time
	for _, t := range completions {
		day := t.Format("2006-01-02")
		days[day] = true
		d, _ := time.ParseInLocation("2006-01-02", day, now.Location())
		if d.After(latest) {
			latest = d
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	if !latest.Equal(today) && !latest.Equal(yesterday) {
		return 0
	}

	streak := 0
	for d := latest; days[d.Format("2006-01-02")]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}
