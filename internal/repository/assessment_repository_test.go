package repository

import (
	"skillsim_backend/internal/model"
	"testing"
)

func staticQuestion(scenarioID uint, order int) *model.AssessmentQuestion {
	return &model.AssessmentQuestion{
		ScenarioID:      scenarioID,
		QuestionType:    model.ShortAnswer,
		Prompt:          "prompt",
		ReferenceAnswer: "answer",
		OrderIndex:      order,
		Source:          model.SourceStatic,
	}
}

func TestUpsertAnswerKeepsSingleRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssessmentRepository(db)

	first := &model.SessionAssessmentAnswer{
		SessionID:       1,
		AssessmentID:    10,
		SubmittedAnswer: "first try",
		Score:           50,
	}
	if err := repo.UpsertAnswer(first); err != nil {
		t.Fatal(err)
	}

	second := &model.SessionAssessmentAnswer{
		SessionID:       1,
		AssessmentID:    10,
		SubmittedAnswer: "second try",
		IsCorrect:       true,
		Score:           100,
	}
	if err := repo.UpsertAnswer(second); err != nil {
		t.Fatal(err)
	}

	count, err := repo.CountAnswersBySession(1)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("answer rows = %d, want 1", count)
	}

	answers, err := repo.ListAnswersBySession(1)
	if err != nil {
		t.Fatal(err)
	}
	if answers[0].SubmittedAnswer != "second try" || answers[0].Score != 100 {
		t.Errorf("resubmission did not overwrite: %+v", answers[0])
	}
	if second.ID != first.ID {
		t.Errorf("upsert should reuse row id %d, got %d", first.ID, second.ID)
	}
}

func TestFirstUnansweredQuestionSkipsAnsweredAndGenerated(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssessmentRepository(db)

	q1 := staticQuestion(5, 1)
	q2 := staticQuestion(5, 2)
	generated := staticQuestion(5, 999)
	generated.Source = model.SourceGenerated
	for _, q := range []*model.AssessmentQuestion{q1, q2, generated} {
		if err := repo.CreateQuestion(q); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.FirstUnansweredQuestion(5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != q1.ID {
		t.Errorf("first question = %d, want %d", got.ID, q1.ID)
	}

	got, err = repo.FirstUnansweredQuestion(5, []uint{q1.ID})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != q2.ID {
		t.Errorf("next question = %d, want %d", got.ID, q2.ID)
	}

	// 动态生成的题不在候选里，两道静态题都答完后就该没题了
	if _, err := repo.FirstUnansweredQuestion(5, []uint{q1.ID, q2.ID}); err == nil {
		t.Error("expected no unanswered static question left")
	}
}

func TestAnsweredQuestionIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssessmentRepository(db)

	for _, qid := range []uint{3, 8} {
		answer := &model.SessionAssessmentAnswer{SessionID: 2, AssessmentID: qid}
		if err := repo.UpsertAnswer(answer); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := repo.AnsweredQuestionIDs(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
}
