package service

import (
	"skillsim_backend/internal/model"
	"testing"
	"time"
)

func scoreAt(name string, score int, completedAt time.Time) model.CompetencyScore {
	return model.CompetencyScore{
		CompetencyName: name,
		Score:          score,
		CompletedAt:    completedAt,
	}
}

func TestAggregateCompetenciesTrendImproving(t *testing.T) {
	now := time.Now()
	rows := []model.CompetencyScore{
		// 前半窗口
		scoreAt("Empathy", 60, now.AddDate(0, 0, -20)),
		scoreAt("Empathy", 62, now.AddDate(0, 0, -18)),
		scoreAt("Empathy", 61, now.AddDate(0, 0, -16)),
		// 后半窗口
		scoreAt("Empathy", 70, now.AddDate(0, 0, -10)),
		scoreAt("Empathy", 72, now.AddDate(0, 0, -5)),
		scoreAt("Empathy", 71, now.AddDate(0, 0, -1)),
	}

	aggs := AggregateCompetencies(rows, now, 30)
	if len(aggs) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(aggs))
	}
	if aggs[0].Trend != TrendImproving {
		t.Errorf("trend = %q, want %q", aggs[0].Trend, TrendImproving)
	}
	if aggs[0].DataPoints != 6 {
		t.Errorf("data points = %d, want 6", aggs[0].DataPoints)
	}
}

func TestAggregateCompetenciesTrendDeclining(t *testing.T) {
	now := time.Now()
	rows := []model.CompetencyScore{
		scoreAt("Clarity", 70, now.AddDate(0, 0, -20)),
		scoreAt("Clarity", 72, now.AddDate(0, 0, -18)),
		scoreAt("Clarity", 60, now.AddDate(0, 0, -10)),
		scoreAt("Clarity", 62, now.AddDate(0, 0, -2)),
	}

	aggs := AggregateCompetencies(rows, now, 30)
	if aggs[0].Trend != TrendDeclining {
		t.Errorf("trend = %q, want %q", aggs[0].Trend, TrendDeclining)
	}
}

func TestAggregateCompetenciesTrendStableWithinDeadband(t *testing.T) {
	now := time.Now()
	rows := []model.CompetencyScore{
		scoreAt("Assertiveness", 65, now.AddDate(0, 0, -20)),
		scoreAt("Assertiveness", 66, now.AddDate(0, 0, -18)),
		scoreAt("Assertiveness", 66, now.AddDate(0, 0, -10)),
		scoreAt("Assertiveness", 65, now.AddDate(0, 0, -2)),
	}

	aggs := AggregateCompetencies(rows, now, 30)
	if aggs[0].Trend != TrendStable {
		t.Errorf("trend = %q, want %q", aggs[0].Trend, TrendStable)
	}
}

// 只有后半窗口有数据时不能下趋势结论
func TestAggregateCompetenciesNoTrendWithoutBothHalves(t *testing.T) {
	now := time.Now()
	rows := []model.CompetencyScore{
		scoreAt("Negotiation", 80, now.AddDate(0, 0, -3)),
		scoreAt("Negotiation", 85, now.AddDate(0, 0, -1)),
	}

	aggs := AggregateCompetencies(rows, now, 30)
	if aggs[0].Trend != "" {
		t.Errorf("trend = %q, want empty", aggs[0].Trend)
	}
}

func TestAggregateCompetenciesSortedByName(t *testing.T) {
	now := time.Now()
	rows := []model.CompetencyScore{
		scoreAt("Zeal", 80, now.AddDate(0, 0, -1)),
		scoreAt("Active Listening", 70, now.AddDate(0, 0, -1)),
		scoreAt("Empathy", 75, now.AddDate(0, 0, -1)),
	}

	aggs := AggregateCompetencies(rows, now, 30)
	if len(aggs) != 3 {
		t.Fatalf("expected 3 aggregates, got %d", len(aggs))
	}
	for i, want := range []string{"Active Listening", "Empathy", "Zeal"} {
		if aggs[i].Name != want {
			t.Errorf("aggs[%d].Name = %q, want %q", i, aggs[i].Name, want)
		}
	}
}

func TestPracticeStreak(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	day := func(offset int, hour int) time.Time {
		return now.AddDate(0, 0, offset).Truncate(24 * time.Hour).Add(time.Duration(hour) * time.Hour)
	}

	tests := []struct {
		name        string
		completions []time.Time
		want        int
	}{
		{"no completions", nil, 0},
		{"single today", []time.Time{day(0, 9)}, 1},
		{"three consecutive ending today", []time.Time{day(-2, 10), day(-1, 11), day(0, 9)}, 3},
		{"latest yesterday still counts", []time.Time{day(-2, 8), day(-1, 20)}, 2},
		{"gap breaks streak", []time.Time{day(-4, 9), day(-3, 9), day(-1, 9), day(0, 9)}, 2},
		{"stale streak resets to zero", []time.Time{day(-5, 9), day(-4, 9), day(-3, 9)}, 0},
		{"multiple sessions same day count once", []time.Time{day(0, 8), day(0, 12), day(0, 18)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PracticeStreak(tt.completions, now); got != tt.want {
				t.Errorf("PracticeStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFeedbackTypeForScore(t *testing.T) {
	tests := []struct {
		score int
		want  model.FeedbackType
	}{
		{90, model.FeedbackPositive},
		{75, model.FeedbackPositive},
		{74, model.FeedbackNeutral},
		{50, model.FeedbackNeutral},
		{49, model.FeedbackNegative},
		{0, model.FeedbackNegative},
	}
	for _, tt := range tests {
		if got := feedbackTypeForScore(tt.score); got != tt.want {
			t.Errorf("feedbackTypeForScore(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
