package model

import "time"

// SessionAssessmentAnswer 学员在一次会话中对一道题的作答。
// (session_id, assessment_id) 唯一索引保证重复提交走更新而非新增
// swagger:model SessionAssessmentAnswer
type SessionAssessmentAnswer struct {
	BaseModel
	SessionID       uint      `gorm:"not null;uniqueIndex:uniq_session_assessment,priority:1" json:"sessionId"`
	AssessmentID    uint      `gorm:"not null;uniqueIndex:uniq_session_assessment,priority:2" json:"assessmentId"`
	SubmittedAnswer string    `gorm:"type:text" json:"submittedAnswer"`
	IsCorrect       bool      `json:"isCorrect"`
	Score           int       `gorm:"default:0" json:"score"` // 0-100
	Feedback        string    `gorm:"type:text" json:"feedback"`
	AnsweredAt      time.Time `json:"answeredAt"`
}

func (SessionAssessmentAnswer) TableName() string {
	return "session_assessment_answers"
}
