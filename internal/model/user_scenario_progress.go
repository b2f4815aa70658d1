package model

import "time"

type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// UserScenarioProgress 用户在某个场景上的最好成绩与尝试次数汇总
// swagger:model UserScenarioProgress
type UserScenarioProgress struct {
	BaseModel
	UserID        uint           `gorm:"not null;uniqueIndex:uniq_user_scenario,priority:1" json:"userId"`
	ScenarioID    uint           `gorm:"not null;uniqueIndex:uniq_user_scenario,priority:2" json:"scenarioId"`
	Status        ProgressStatus `gorm:"size:20;default:'in_progress'" json:"status"`
	BestScore     int            `gorm:"default:0" json:"bestScore"`
	Attempts      int            `gorm:"default:0" json:"attempts"`
	LastAttemptAt time.Time      `json:"lastAttemptAt"`
}

func (UserScenarioProgress) TableName() string {
	return "user_scenario_progress"
}
