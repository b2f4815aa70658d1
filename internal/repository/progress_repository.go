package repository

import (
	"errors"
	"skillsim_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserAndScenario(userID, scenarioID uint) (*model.UserScenarioProgress, error) {
	var p model.UserScenarioProgress
	err := r.DB.Where("user_id = ? AND scenario_id = ?", userID, scenarioID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Touch 开始新会话时把进度置为进行中，没有记录则创建
func (r *ProgressRepository) Touch(userID, scenarioID uint) error {
	p, err := r.FindByUserAndScenario(userID, scenarioID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return r.DB.Create(&model.UserScenarioProgress{
			UserID:        userID,
			ScenarioID:    scenarioID,
			Status:        model.ProgressInProgress,
			LastAttemptAt: time.Now(),
		}).Error
	}
	p.Status = model.ProgressInProgress
	p.LastAttemptAt = time.Now()
	return r.DB.Save(p).Error
}

// RecordCompletion 会话完成后的汇总：尝试数加一，最好成绩取历史最大值
func (r *ProgressRepository) RecordCompletion(userID, scenarioID uint, score int) error {
	p, err := r.FindByUserAndScenario(userID, scenarioID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return r.DB.Create(&model.UserScenarioProgress{
			UserID:        userID,
			ScenarioID:    scenarioID,
			Status:        model.ProgressCompleted,
			BestScore:     score,
			Attempts:      1,
			LastAttemptAt: time.Now(),
		}).Error
	}

	p.Status = model.ProgressCompleted
	p.Attempts++
	if score > p.BestScore {
		p.BestScore = score
	}
	p.LastAttemptAt = time.Now()
	return r.DB.Save(p).Error
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.UserScenarioProgress, error) {
	var ps []model.UserScenarioProgress
	err := r.DB.Where("user_id = ?", userID).Order("last_attempt_at desc").Find(&ps).Error
	return ps, err
}
