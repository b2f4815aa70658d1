package repository

import (
	"errors"
	"skillsim_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) CreateQuestion(q *model.AssessmentQuestion) error {
	return r.DB.Create(q).Error
}

func (r *AssessmentRepository) FindQuestionByID(id uint) (*model.AssessmentQuestion, error) {
	var q model.AssessmentQuestion
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *AssessmentRepository) ListQuestionsByScenario(scenarioID uint) ([]model.AssessmentQuestion, error) {
	var qs []model.AssessmentQuestion
	err := r.DB.Where("scenario_id = ?", scenarioID).
		Order("order_index asc, created_at asc").Find(&qs).Error
	return qs, err
}

// FirstUnansweredQuestion 静态题库里下一道未答的题：order_index 升序、再按创建时间
func (r *AssessmentRepository) FirstUnansweredQuestion(scenarioID uint, answeredIDs []uint) (*model.AssessmentQuestion, error) {
	var q model.AssessmentQuestion
	query := r.DB.Where("scenario_id = ? AND source = ?", scenarioID, model.SourceStatic)
	if len(answeredIDs) > 0 {
		query = query.Where("id NOT IN ?", answeredIDs)
	}
	err := query.Order("order_index asc, created_at asc").First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// AnsweredQuestionIDs 会话已作答的题目 id 集合
func (r *AssessmentRepository) AnsweredQuestionIDs(sessionID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.SessionAssessmentAnswer{}).
		Where("session_id = ?", sessionID).
		Pluck("assessment_id", &ids).Error
	return ids, err
}

func (r *AssessmentRepository) CountAnswersBySession(sessionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.SessionAssessmentAnswer{}).
		Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

func (r *AssessmentRepository) ListAnswersBySession(sessionID uint) ([]model.SessionAssessmentAnswer, error) {
	var answers []model.SessionAssessmentAnswer
	err := r.DB.Where("session_id = ?", sessionID).
		Order("answered_at asc").Find(&answers).Error
	return answers, err
}

// UpsertAnswer 同一 (session, assessment) 只保留一行：已存在则覆盖作答与评分。
// 并发下两边同时走到插入分支时，唯一索引让后者退回更新
func (r *AssessmentRepository) UpsertAnswer(answer *model.SessionAssessmentAnswer) error {
	var existing model.SessionAssessmentAnswer
	err := r.DB.Where("session_id = ? AND assessment_id = ?",
		answer.SessionID, answer.AssessmentID).First(&existing).Error

	if err == nil {
		return r.overwriteAnswer(&existing, answer)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := r.DB.Create(answer).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		// 并发插入输了竞争，改走更新
		if err := r.DB.Where("session_id = ? AND assessment_id = ?",
			answer.SessionID, answer.AssessmentID).First(&existing).Error; err != nil {
			return err
		}
		return r.overwriteAnswer(&existing, answer)
	}
	return nil
}

func (r *AssessmentRepository) overwriteAnswer(existing, answer *model.SessionAssessmentAnswer) error {
	existing.SubmittedAnswer = answer.SubmittedAnswer
	existing.IsCorrect = answer.IsCorrect
	existing.Score = answer.Score
	existing.Feedback = answer.Feedback
	existing.AnsweredAt = time.Now()
	if err := r.DB.Save(existing).Error; err != nil {
		return err
	}
	*answer = *existing
	return nil
}
