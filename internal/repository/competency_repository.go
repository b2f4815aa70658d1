package repository

import (
	"skillsim_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CompetencyRepository struct {
	DB *gorm.DB
}

func NewCompetencyRepository(db *gorm.DB) *CompetencyRepository {
	return &CompetencyRepository{DB: db}
}

func (r *CompetencyRepository) CreateBatch(scores []model.CompetencyScore) error {
	if len(scores) == 0 {
		return nil
	}
	return r.DB.Create(&scores).Error
}

func (r *CompetencyRepository) ListBySession(sessionID uint) ([]model.CompetencyScore, error) {
	var scores []model.CompetencyScore
	err := r.DB.Where("session_id = ?", sessionID).
		Order("competency_name asc").Find(&scores).Error
	return scores, err
}

// ListByUserSince 滚动窗口内的全部能力得分
func (r *CompetencyRepository) ListByUserSince(userID uint, since time.Time) ([]model.CompetencyScore, error) {
	var scores []model.CompetencyScore
	err := r.DB.Where("user_id = ? AND completed_at >= ?", userID, since).
		Order("completed_at asc").Find(&scores).Error
	return scores, err
}
