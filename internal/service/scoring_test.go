package service

import (
	"encoding/json"
	"skillsim_backend/internal/model"
	"testing"
)

func mcQuestion(t *testing.T) *model.AssessmentQuestion {
	t.Helper()
	opts, err := json.Marshal([]model.AnswerOption{
		{Label: "A", Text: "Interrupt and correct them", IsCorrect: false},
		{Label: "B", Text: "Paraphrase what you heard", IsCorrect: true},
		{Label: "C", Text: "Change the subject", IsCorrect: false},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &model.AssessmentQuestion{
		QuestionType: model.MultipleChoice,
		Prompt:       "How do you show you were listening?",
		Options:      opts,
	}
}

func TestGradeMultipleChoice(t *testing.T) {
	q := mcQuestion(t)

	tests := []struct {
		name      string
		submitted string
		wantScore int
		wantOK    bool
	}{
		{"correct label", "B", 100, true},
		{"correct label lowercase", " b ", 100, true},
		{"correct full text", "paraphrase what you heard", 100, true},
		{"wrong label", "A", 0, false},
		{"garbage", "not an option", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeAnswer(q, tt.submitted)
			if got.Score != tt.wantScore || got.IsCorrect != tt.wantOK {
				t.Errorf("GradeAnswer(%q) = score %d correct %v, want %d %v",
					tt.submitted, got.Score, got.IsCorrect, tt.wantScore, tt.wantOK)
			}
			if got.Feedback == "" {
				t.Error("feedback must never be empty")
			}
		})
	}
}

func TestGradeMultipleChoiceWrongAnswerNamesCorrectOption(t *testing.T) {
	q := mcQuestion(t)
	got := GradeAnswer(q, "A")
	want := "Not quite. The correct answer is: Paraphrase what you heard"
	if got.Feedback != want {
		t.Errorf("feedback = %q, want %q", got.Feedback, want)
	}
}

func TestGradeTrueFalse(t *testing.T) {
	q := &model.AssessmentQuestion{
		QuestionType:    model.TrueFalse,
		ReferenceAnswer: "true",
	}

	if got := GradeAnswer(q, "TRUE"); !got.IsCorrect || got.Score != 100 {
		t.Errorf("case-insensitive match failed: %+v", got)
	}
	if got := GradeAnswer(q, "false"); got.IsCorrect || got.Score != 0 {
		t.Errorf("wrong answer should score 0: %+v", got)
	}
}

func TestGradeShortAnswerPartialCreditFloor(t *testing.T) {
	q := &model.AssessmentQuestion{
		QuestionType:    model.ShortAnswer,
		ReferenceAnswer: "ask them to summarize",
	}

	if got := GradeAnswer(q, "Ask them to summarize "); !got.IsCorrect || got.Score != 100 {
		t.Errorf("exact match after normalization should score 100: %+v", got)
	}

	// 简答题永远不给零分
	got := GradeAnswer(q, "something else entirely")
	if got.IsCorrect {
		t.Error("non-matching answer must not be marked correct")
	}
	if got.Score != 50 {
		t.Errorf("partial credit floor = %d, want 50", got.Score)
	}
}

func TestGradeAnswerAppendsExplanation(t *testing.T) {
	q := &model.AssessmentQuestion{
		QuestionType:    model.TrueFalse,
		ReferenceAnswer: "false",
		Explanation:     "Behavior can change, character judgments cannot.",
	}
	got := GradeAnswer(q, "false")
	want := "Correct! Behavior can change, character judgments cannot."
	if got.Feedback != want {
		t.Errorf("feedback = %q, want %q", got.Feedback, want)
	}
}

func TestGradeAnswerUnknownType(t *testing.T) {
	q := &model.AssessmentQuestion{QuestionType: "essay"}
	got := GradeAnswer(q, "anything")
	if got.IsCorrect || got.Score != 0 {
		t.Errorf("unknown type should score 0: %+v", got)
	}
}
