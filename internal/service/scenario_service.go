package service

import (
	"encoding/json"
	"errors"
	"skillsim_backend/internal/model"
	"skillsim_backend/internal/repository"
	"skillsim_backend/internal/util"

	"gorm.io/gorm"
)

type ScenarioService struct {
	Repo *repository.ScenarioRepository
}

func NewScenarioService(repo *repository.ScenarioRepository) *ScenarioService {
	return &ScenarioService{Repo: repo}
}

// ScenarioRequest 教练创建/更新场景的请求体
type ScenarioRequest struct {
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description" binding:"required"`
	Category        string   `json:"category" binding:"required"`
	Difficulty      string   `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	CounterpartRole string   `json:"counterpartRole" binding:"required"`
	Tags            []string `json:"tags"`
	Published       bool     `json:"published"`
}

func (s *ScenarioService) CreateScenario(req ScenarioRequest) (*model.Scenario, error) {
	scenario := &model.Scenario{}
	if err := applyScenarioRequest(scenario, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(scenario); err != nil {
		return nil, err
	}
	return scenario, nil
}

func (s *ScenarioService) UpdateScenario(id uint, req ScenarioRequest) (*model.Scenario, error) {
	scenario, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrScenarioNotFound
		}
		return nil, err
	}
	if err := applyScenarioRequest(scenario, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(scenario); err != nil {
		return nil, err
	}
	return scenario, nil
}

func applyScenarioRequest(scenario *model.Scenario, req ScenarioRequest) error {
	tags, err := json.Marshal(req.Tags)
	if err != nil {
		return err
	}
	scenario.Title = req.Title
	scenario.Description = req.Description
	scenario.Category = req.Category
	scenario.Difficulty = req.Difficulty
	scenario.CounterpartRole = req.CounterpartRole
	scenario.Tags = tags
	scenario.Published = req.Published
	return nil
}

func (s *ScenarioService) GetScenario(id uint) (*model.Scenario, error) {
	scenario, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrScenarioNotFound
		}
		return nil, err
	}
	return scenario, nil
}

func (s *ScenarioService) ListScenarios(category string, page, limit int) ([]model.Scenario, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Repo.List(category, page, limit)
}
