package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from SessionStatus
		to   SessionStatus
		want bool
	}{
		{SessionNotStarted, SessionInProgress, true},
		{SessionNotStarted, SessionCompleted, false},
		{SessionNotStarted, SessionAbandoned, false},

		{SessionInProgress, SessionPaused, true},
		{SessionInProgress, SessionCompleted, true},
		{SessionInProgress, SessionAbandoned, true},
		{SessionInProgress, SessionNotStarted, false},

		{SessionPaused, SessionInProgress, true},
		{SessionPaused, SessionCompleted, true},
		{SessionPaused, SessionAbandoned, true},
		{SessionPaused, SessionNotStarted, false},

		// 终态不可再迁移
		{SessionCompleted, SessionInProgress, false},
		{SessionCompleted, SessionAbandoned, false},
		{SessionAbandoned, SessionInProgress, false},
		{SessionAbandoned, SessionCompleted, false},
	}

	for _, tt := range tests {
		s := &TrainingSession{Status: tt.from}
		if got := s.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsActive(t *testing.T) {
	active := []SessionStatus{SessionInProgress, SessionPaused}
	inactive := []SessionStatus{SessionNotStarted, SessionCompleted, SessionAbandoned}

	for _, st := range active {
		if s := (&TrainingSession{Status: st}); !s.IsActive() {
			t.Errorf("%s should be active", st)
		}
	}
	for _, st := range inactive {
		if s := (&TrainingSession{Status: st}); s.IsActive() {
			t.Errorf("%s should not be active", st)
		}
	}
}
