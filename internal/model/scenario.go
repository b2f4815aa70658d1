package model

import "encoding/json"

// Scenario 一套软技能训练场景（模拟对话剧本）
// swagger:model Scenario
type Scenario struct {
	BaseModel
	Title           string          `gorm:"size:255;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	Category        string          `gorm:"size:50;index" json:"category"` // negotiation, feedback, leadership ...
	Difficulty      string          `gorm:"size:20;default:'beginner'" json:"difficulty"`
	CounterpartRole string          `gorm:"size:100" json:"counterpartRole"` // 模拟对话中扮演的对方角色
	Tags            json.RawMessage `gorm:"type:json" json:"tags"`           // JSON: []string，用于能力与补救建议匹配
	Published       bool            `json:"published"` // 零值即草稿，发布与否由请求决定
}

func (Scenario) TableName() string {
	return "scenarios"
}

// TagList 解析场景标签，解析失败时返回空列表
func (s *Scenario) TagList() []string {
	if len(s.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(s.Tags, &tags); err != nil {
		return nil
	}
	return tags
}
