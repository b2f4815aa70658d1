package service

import (
	"testing"
	"time"
)

func completeWith(t *testing.T, env *testEnv, userID, scenarioID uint, req CompleteSessionRequest) uint {
	t.Helper()
	session, err := env.sessions.StartSession(userID, scenarioID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.sessions.CompleteSession(session.ID, userID, req); err != nil {
		t.Fatal(err)
	}
	return session.ID
}

func TestComparisonEmptyWithoutPriorSession(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)

	sessionID := completeWith(t, env, user.ID, scenario.ID, CompleteSessionRequest{OverallScore: 70})

	metrics, err := env.report.GetComparison(sessionID, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(metrics) != 0 {
		t.Errorf("expected empty comparison, got %+v", metrics)
	}
}

func TestComparisonAgainstPreviousBest(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)

	// 历史两次：对比对象应取分数更高的那次
	completeWith(t, env, user.ID, scenario.ID, CompleteSessionRequest{
		OverallScore: 60,
		CompetencyScores: []CompetencyScoreInput{
			{Name: "Empathy", Score: 55},
		},
	})
	completeWith(t, env, user.ID, scenario.ID, CompleteSessionRequest{
		OverallScore: 75,
		CompetencyScores: []CompetencyScoreInput{
			{Name: "Empathy", Score: 70},
			{Name: "Clarity", Score: 80},
		},
	})

	current := completeWith(t, env, user.ID, scenario.ID, CompleteSessionRequest{
		OverallScore: 82,
		CompetencyScores: []CompetencyScoreInput{
			{Name: "Empathy", Score: 78},
			{Name: "Clarity", Score: 80}, // 与历史持平，应被隐藏
		},
	})

	metrics, err := env.report.GetComparison(current, user.ID)
	if err != nil {
		t.Fatal(err)
	}

	if len(metrics) == 0 || metrics[0].Name != "Overall Score" {
		t.Fatalf("overall score must lead the list: %+v", metrics)
	}
	overall := metrics[0]
	if overall.Current != 82 || overall.Previous != 75 || overall.Delta != 7 || overall.Direction != DirectionIncrease {
		t.Errorf("overall metric wrong: %+v", overall)
	}

	byName := make(map[string]ComparisonMetric)
	for _, m := range metrics[1:] {
		byName[m.Name] = m
	}
	if _, ok := byName["Clarity"]; ok {
		t.Error("unchanged competency should be suppressed")
	}
	empathy, ok := byName["Empathy"]
	if !ok {
		t.Fatal("Empathy comparison missing")
	}
	if empathy.Current != 78 || empathy.Previous != 70 || empathy.Direction != DirectionIncrease {
		t.Errorf("empathy metric wrong: %+v", empathy)
	}
}

func TestRecommendationsWeakCompetencies(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", []string{"empathy"})
	practice := env.seedScenario(t, "Empathy Drills", []string{"Empathy", "listening"})

	sessionID := completeWith(t, env, user.ID, scenario.ID, CompleteSessionRequest{
		OverallScore: 72,
		CompetencyScores: []CompetencyScoreInput{
			{Name: "Empathy", Score: 55},
			{Name: "Clarity", Score: 62},
			{Name: "Assertiveness", Score: 90},
		},
	})

	recs, err := env.report.GetRecommendations(sessionID, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %+v", recs)
	}

	// 最低分在前
	if recs[0].Competency != "Empathy" || recs[1].Competency != "Clarity" {
		t.Errorf("recommendations not sorted by score: %+v", recs)
	}
	// 标签匹配（大小写不敏感）指向练习场景
	if recs[0].Action != "practice_scenario" || recs[0].ScenarioID != practice.ID {
		t.Errorf("empathy should map to practice scenario: %+v", recs[0])
	}
	// 无标签匹配的退回资源建议
	if recs[1].Action != "view_resource" {
		t.Errorf("clarity should map to view_resource: %+v", recs[1])
	}
}

func TestRecommendationsOverallFallback(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)

	sessionID := completeWith(t, env, user.ID, scenario.ID, CompleteSessionRequest{
		OverallScore: 68,
		CompetencyScores: []CompetencyScoreInput{
			{Name: "Empathy", Score: 80},
		},
	})

	recs, err := env.report.GetRecommendations(sessionID, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Action != "practice_more" {
		t.Errorf("expected single practice_more recommendation, got %+v", recs)
	}
}

func TestRecommendationsNoneWhenStrong(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)

	sessionID := completeWith(t, env, user.ID, scenario.ID, CompleteSessionRequest{
		OverallScore: 90,
		CompetencyScores: []CompetencyScoreInput{
			{Name: "Empathy", Score: 85},
		},
	})

	recs, err := env.report.GetRecommendations(sessionID, user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no recommendations, got %+v", recs)
	}
}

func TestReportRequiresCompletedSession(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)
	session, _ := env.sessions.StartSession(user.ID, scenario.ID)

	if _, err := env.report.GetComparison(session.ID, user.ID); err == nil {
		t.Error("comparison on unfinished session should fail")
	}
	if _, err := env.report.GetRecommendations(session.ID, user.ID); err == nil {
		t.Error("recommendations on unfinished session should fail")
	}
}

func TestSummaryFallsBackWithoutGenerator(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)
	sessionID := completeWith(t, env, user.ID, scenario.ID, CompleteSessionRequest{OverallScore: 77})

	summary, err := env.report.GetSummary(t.Context(), sessionID, user.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if summary == "" {
		t.Fatal("fallback summary must not be empty")
	}

	// 第二次读取走缓存的 Summary 字段
	again, err := env.report.GetSummary(t.Context(), sessionID, user.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if again != summary {
		t.Errorf("cached summary changed: %q != %q", again, summary)
	}
}

func TestPracticeStreakEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)
	completeWith(t, env, user.ID, scenario.ID, CompleteSessionRequest{OverallScore: 70})

	summary, err := env.competency.GetSummary(t.Context(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.StreakDays != 1 {
		t.Errorf("streak = %d, want 1", summary.StreakDays)
	}
	if summary.GeneratedAt.After(time.Now()) {
		t.Error("generated timestamp in the future")
	}
}
