package repository

import (
	"testing"
	"time"

	"skillsim_backend/internal/model"
)

func seedSession(t *testing.T, repo *SessionRepository, status model.SessionStatus, updatedAt time.Time) *model.TrainingSession {
	t.Helper()
	s := &model.TrainingSession{
		UserID:     1,
		ScenarioID: 1,
		Status:     status,
		StartedAt:  updatedAt,
	}
	if err := repo.DB.Create(s).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	// 绕过 gorm 的自动时间戳，直接写入陈旧的 updated_at
	if err := repo.DB.Model(s).UpdateColumn("updated_at", updatedAt).Error; err != nil {
		t.Fatalf("backdate session: %v", err)
	}
	return s
}

func TestListStaleInProgressSkipsPaused(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)

	old := time.Now().Add(-48 * time.Hour)
	stale := seedSession(t, repo, model.SessionInProgress, old)
	seedSession(t, repo, model.SessionPaused, old)
	seedSession(t, repo, model.SessionInProgress, time.Now())
	seedSession(t, repo, model.SessionCompleted, old)

	got, err := repo.ListStaleInProgress(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("list stale: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("stale sessions = %d, want 1", len(got))
	}
	if got[0].ID != stale.ID {
		t.Fatalf("stale session = %d, want %d", got[0].ID, stale.ID)
	}
	if got[0].Status != model.SessionInProgress {
		t.Fatalf("status = %q, want %q", got[0].Status, model.SessionInProgress)
	}
}
