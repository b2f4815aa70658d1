package repository

import (
	"errors"
	"skillsim_backend/internal/model"

	"gorm.io/gorm"
)

type TurnRepository struct {
	DB *gorm.DB
}

func NewTurnRepository(db *gorm.DB) *TurnRepository {
	return &TurnRepository{DB: db}
}

// Append 在一个事务里数轮数、赋轮号并落库。两个并发提交可能算出同一个轮号，
// 由 (session_id, turn_number) 唯一索引兜底：撞号时重算一次再插，仍失败才向上报错
func (r *TurnRepository) Append(turn *model.SessionTurn) error {
	err := r.insertWithNextNumber(turn)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	turn.ID = 0
	if err := r.insertWithNextNumber(turn); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return gorm.ErrDuplicatedKey
		}
		return err
	}
	return nil
}

func (r *TurnRepository) insertWithNextNumber(turn *model.SessionTurn) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.SessionTurn{}).
			Where("session_id = ?", turn.SessionID).
			Count(&count).Error; err != nil {
			return err
		}
		turn.TurnNumber = int(count) + 1
		return tx.Create(turn).Error
	})
}

// ListBySession 全量转写，轮号升序
func (r *TurnRepository) ListBySession(sessionID uint) ([]model.SessionTurn, error) {
	var turns []model.SessionTurn
	err := r.DB.Where("session_id = ?", sessionID).
		Order("turn_number asc").Find(&turns).Error
	return turns, err
}

func (r *TurnRepository) CountBySession(sessionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.SessionTurn{}).
		Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

// LastTurns 最近 n 轮，轮号升序返回，动态出题的上下文用
func (r *TurnRepository) LastTurns(sessionID uint, n int) ([]model.SessionTurn, error) {
	var turns []model.SessionTurn
	err := r.DB.Where("session_id = ?", sessionID).
		Order("turn_number desc").Limit(n).Find(&turns).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
