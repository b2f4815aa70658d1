package model

import "encoding/json"

type TurnSpeaker string

const (
	SpeakerUser   TurnSpeaker = "user"
	SpeakerCoach  TurnSpeaker = "ai_coach"
	SpeakerClient TurnSpeaker = "client"
)

// SessionTurn 会话中的一条发言，写入后不可修改
// (session_id, turn_number) 唯一索引保证并发提交下轮号连续不重复
// swagger:model SessionTurn
type SessionTurn struct {
	BaseModel
	SessionID  uint            `gorm:"not null;uniqueIndex:uniq_session_turn,priority:1" json:"sessionId"`
	TurnNumber int             `gorm:"not null;uniqueIndex:uniq_session_turn,priority:2" json:"turnNumber"`
	Speaker    TurnSpeaker     `gorm:"size:20;not null" json:"speaker"`
	Message    string          `gorm:"type:text;not null" json:"message"`
	Metrics    json.RawMessage `gorm:"type:json" json:"metrics,omitempty"` // JSON: TurnMetrics
}

func (SessionTurn) TableName() string {
	return "session_turns"
}

// TurnMetrics 单轮实时指标快照
type TurnMetrics struct {
	Sentiment float64 `json:"sentiment"`
	Pacing    float64 `json:"pacing"`
	Clarity   float64 `json:"clarity"`
}
