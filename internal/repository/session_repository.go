package repository

import (
	"skillsim_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(s *model.TrainingSession) error {
	return r.DB.Create(s).Error
}

func (r *SessionRepository) Update(s *model.TrainingSession) error {
	return r.DB.Save(s).Error
}

func (r *SessionRepository) FindByID(id uint) (*model.TrainingSession, error) {
	var s model.TrainingSession
	err := r.DB.First(&s, id).Error
	return &s, err
}

// FindByIDAndUser 按归属查找，跨用户访问一律按不存在处理
func (r *SessionRepository) FindByIDAndUser(id, userID uint) (*model.TrainingSession, error) {
	var s model.TrainingSession
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindActiveByUserAndScenario 查找某用户在某场景上进行中的会话（幂等开始用）
func (r *SessionRepository) FindActiveByUserAndScenario(userID, scenarioID uint) (*model.TrainingSession, error) {
	var s model.TrainingSession
	err := r.DB.Where("user_id = ? AND scenario_id = ? AND status = ?",
		userID, scenarioID, model.SessionInProgress).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) ListByUser(userID uint, page, limit int) ([]model.TrainingSession, int64, error) {
	var ss []model.TrainingSession
	var total int64
	query := r.DB.Model(&model.TrainingSession{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Scenario").Order("created_at desc").Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

// FindPreviousBest 同场景下除当前会话外得分最高的已完成会话，没有则返回 gorm.ErrRecordNotFound
func (r *SessionRepository) FindPreviousBest(userID, scenarioID, excludeSessionID uint) (*model.TrainingSession, error) {
	var s model.TrainingSession
	err := r.DB.Where(
		"user_id = ? AND scenario_id = ? AND id <> ? AND status = ? AND overall_score IS NOT NULL",
		userID, scenarioID, excludeSessionID, model.SessionCompleted,
	).Order("overall_score desc, completed_at desc").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CompletionTimes 用户全部已完成会话的完成时间，连续打卡天数由此计算
func (r *SessionRepository) CompletionTimes(userID uint) ([]time.Time, error) {
	var times []time.Time
	err := r.DB.Model(&model.TrainingSession{}).
		Where("user_id = ? AND status = ? AND completed_at IS NOT NULL", userID, model.SessionCompleted).
		Order("completed_at desc").
		Pluck("completed_at", &times).Error
	return times, err
}

// ListStaleInProgress 找出超过 cutoff 无任何更新的进行中会话
// 主动暂停的会话不在清扫范围内，恢复与否由用户决定
func (r *SessionRepository) ListStaleInProgress(cutoff time.Time) ([]model.TrainingSession, error) {
	var ss []model.TrainingSession
	err := r.DB.Where("status = ? AND updated_at < ?", model.SessionInProgress, cutoff).
		Find(&ss).Error
	return ss, err
}
