package repository

import (
	"skillsim_backend/internal/model"

	"gorm.io/gorm"
)

type ScenarioRepository struct {
	DB *gorm.DB
}

func NewScenarioRepository(db *gorm.DB) *ScenarioRepository {
	return &ScenarioRepository{DB: db}
}

func (r *ScenarioRepository) Create(s *model.Scenario) error {
	return r.DB.Create(s).Error
}

func (r *ScenarioRepository) Update(s *model.Scenario) error {
	return r.DB.Save(s).Error
}

func (r *ScenarioRepository) FindByID(id uint) (*model.Scenario, error) {
	var s model.Scenario
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *ScenarioRepository) List(category string, page, limit int) ([]model.Scenario, int64, error) {
	var ss []model.Scenario
	var total int64
	query := r.DB.Model(&model.Scenario{}).Where("published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

// ListPublished 返回全部已发布场景，补救建议匹配在内存中按标签完成
func (r *ScenarioRepository) ListPublished() ([]model.Scenario, error) {
	var ss []model.Scenario
	err := r.DB.Where("published = ?", true).Order("created_at asc").Find(&ss).Error
	return ss, err
}
