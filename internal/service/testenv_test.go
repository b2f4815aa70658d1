package service

import (
	"encoding/json"
	"skillsim_backend/internal/config"
	"skillsim_backend/internal/model"
	"skillsim_backend/internal/repository"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv 全量服务装配，sqlite 内存库、无 redis、无出题协作方
type testEnv struct {
	db         *gorm.DB
	sessions   *SessionService
	assessment *AssessmentService
	competency *CompetencyService
	report     *ReportService
	scenarios  *repository.ScenarioRepository
	users      *repository.UserRepository
}

func newTestEnv(t *testing.T) *testEnv {
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

	engine := engineDefaults()

	userRepo := repository.NewUserRepository(db)
	scenarioRepo := repository.NewScenarioRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	turnRepo := repository.NewTurnRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	competencyRepo := repository.NewCompetencyRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	generator := NewGeneratorService(config.GeneratorConfig{})
	storage := &StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}}}

	assessment := NewAssessmentService(assessmentRepo, turnRepo, scenarioRepo, generator, engine)
	competency := NewCompetencyService(competencyRepo, sessionRepo, nil, engine)
	sessions := NewSessionService(sessionRepo, turnRepo, scenarioRepo, progressRepo, userRepo, assessment, competency)
	report := NewReportService(sessionRepo, competencyRepo, scenarioRepo, turnRepo, generator, storage, engine)

	return &testEnv{
		db:         db,
		sessions:   sessions,
		assessment: assessment,
		competency: competency,
		report:     report,
		scenarios:  scenarioRepo,
		users:      userRepo,
	}
}

func (e *testEnv) seedUser(t *testing.T) *model.User {
	t.Helper()
	user := &model.User{Name: "Dana", Email: "dana@example.com", Password: "x", Role: model.Learner}
	if err := e.users.Create(user); err != nil {
		t.Fatal(err)
	}
	return user
}

func (e *testEnv) seedScenario(t *testing.T, title string, tags []string) *model.Scenario {
	t.Helper()
	raw, _ := json.Marshal(tags)
	scenario := &model.Scenario{
		Title:           title,
		Description:     "desc",
		Category:        "feedback",
		Difficulty:      "intermediate",
		CounterpartRole: "Colleague",
		Tags:            raw,
		Published:       true,
	}
	if err := e.scenarios.Create(scenario); err != nil {
		t.Fatal(err)
	}
	return scenario
}
