package repository

import (
	"skillsim_backend/internal/model"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Scenario{},
		&model.TrainingSession{},
		&model.SessionTurn{},
		&model.AssessmentQuestion{},
		&model.SessionAssessmentAnswer{},
		&model.CompetencyScore{},
		&model.UserScenarioProgress{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
