package model

import "time"

type FeedbackType string

const (
	FeedbackPositive FeedbackType = "positive"
	FeedbackNeutral  FeedbackType = "neutral"
	FeedbackNegative FeedbackType = "negative"
)

// CompetencyScore 一次已完成会话中某个能力维度的得分，评分后只读。
// UserID 与 CompletedAt 为冗余字段，免去趋势窗口查询时的三表联结
// swagger:model CompetencyScore
type CompetencyScore struct {
	BaseModel
	SessionID      uint         `gorm:"index;not null" json:"sessionId"`
	UserID         uint         `gorm:"index;not null" json:"userId"`
	CompetencyName string       `gorm:"size:100;not null;index" json:"competencyName"`
	Score          int          `gorm:"not null" json:"score"` // 0-100
	Feedback       string       `gorm:"type:text" json:"feedback"`
	FeedbackType   FeedbackType `gorm:"size:20;default:'neutral'" json:"feedbackType"`
	CompletedAt    time.Time    `gorm:"index" json:"completedAt"`
}

func (CompetencyScore) TableName() string {
	return "competency_scores"
}
