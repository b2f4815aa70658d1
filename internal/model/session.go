package model

import "time"

type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionPaused     SessionStatus = "paused"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// TrainingSession 一次场景训练会话
// swagger:model TrainingSession
type TrainingSession struct {
	BaseModel
	UserID       uint          `gorm:"index;not null" json:"userId"`
	ScenarioID   uint          `gorm:"index;not null" json:"scenarioId"`
	Scenario     *Scenario     `gorm:"foreignKey:ScenarioID" json:"scenario,omitempty"`
	Status       SessionStatus `gorm:"size:20;not null;default:'not_started'" json:"status"`
	StartedAt    time.Time     `json:"startedAt"`
	CompletedAt  *time.Time    `json:"completedAt,omitempty"`
	CurrentTurn  int           `gorm:"default:0" json:"currentTurn"`
	TotalTurns   int           `gorm:"default:0" json:"totalTurns"`
	OverallScore *int          `json:"overallScore,omitempty"`
	XPEarned     int           `gorm:"default:0" json:"xpEarned"`
	Summary      string        `gorm:"type:text" json:"summary"`

	// 最近一次实时指标快照
	Sentiment float64 `json:"sentiment"`
	Pacing    float64 `json:"pacing"`
	Clarity   float64 `json:"clarity"`
}

func (TrainingSession) TableName() string {
	return "training_sessions"
}

// CanTransition 校验会话状态迁移：整体单向前进，仅 in_progress ⇄ paused 可往返
func (s *TrainingSession) CanTransition(to SessionStatus) bool {
	switch s.Status {
	case SessionNotStarted:
		return to == SessionInProgress
	case SessionInProgress:
		return to == SessionPaused || to == SessionCompleted || to == SessionAbandoned
	case SessionPaused:
		return to == SessionInProgress || to == SessionCompleted || to == SessionAbandoned
	default:
		// completed / abandoned 为终态
		return false
	}
}

// IsActive 会话是否仍可记录对话轮
func (s *TrainingSession) IsActive() bool {
	return s.Status == SessionInProgress || s.Status == SessionPaused
}
