package service

import (
	"context"
	"errors"
	"skillsim_backend/internal/model"
	"skillsim_backend/internal/util"
	"testing"
)

func seedBank(t *testing.T, env *testEnv, scenarioID uint) []*model.AssessmentQuestion {
	t.Helper()
	reqs := []AssessmentQuestionRequest{
		{
			ScenarioID:      scenarioID,
			QuestionType:    model.TrueFalse,
			Prompt:          "Listening means waiting for your turn to speak.",
			ReferenceAnswer: "false",
			OrderIndex:      1,
		},
		{
			ScenarioID:      scenarioID,
			QuestionType:    model.ShortAnswer,
			Prompt:          "Name the first step of giving feedback.",
			ReferenceAnswer: "describe the behavior",
			OrderIndex:      2,
		},
	}
	questions := make([]*model.AssessmentQuestion, 0, len(reqs))
	for _, req := range reqs {
		q, err := env.assessment.CreateQuestion(req)
		if err != nil {
			t.Fatal(err)
		}
		questions = append(questions, q)
	}
	return questions
}

func TestImmediateAssessmentWalksBankInOrder(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)
	questions := seedBank(t, env, scenario.ID)
	session, _ := env.sessions.StartSession(user.ID, scenario.ID)

	first, err := env.assessment.GetImmediateAssessment(context.Background(), session)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != questions[0].ID {
		t.Fatalf("first question = %d, want %d", first.ID, questions[0].ID)
	}

	// 已答过的题不再出现
	if _, err := env.assessment.SubmitAnswer(session, first.ID, "false"); err != nil {
		t.Fatal(err)
	}
	second, err := env.assessment.GetImmediateAssessment(context.Background(), session)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != questions[1].ID {
		t.Fatalf("second question = %d, want %d", second.ID, questions[1].ID)
	}

	// 题库耗尽
	if _, err := env.assessment.SubmitAnswer(session, second.ID, "whatever"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.assessment.GetImmediateAssessment(context.Background(), session); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestSubmitAnswerGradesAndPersists(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)
	questions := seedBank(t, env, scenario.ID)
	session, _ := env.sessions.StartSession(user.ID, scenario.ID)

	answer, err := env.assessment.SubmitAnswer(session, questions[0].ID, "False")
	if err != nil {
		t.Fatal(err)
	}
	if !answer.IsCorrect || answer.Score != 100 {
		t.Errorf("grading wrong: %+v", answer)
	}

	// 重复提交覆盖而非新增
	resubmit, err := env.assessment.SubmitAnswer(session, questions[0].ID, "true")
	if err != nil {
		t.Fatal(err)
	}
	if resubmit.IsCorrect || resubmit.Score != 0 {
		t.Errorf("resubmission grading wrong: %+v", resubmit)
	}

	answers, err := env.assessment.ListAnswers(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(answers) != 1 {
		t.Fatalf("answer rows = %d, want 1", len(answers))
	}
	if answers[0].SubmittedAnswer != "true" {
		t.Errorf("stored answer = %q, want latest submission", answers[0].SubmittedAnswer)
	}
}

func TestSubmitAnswerRejectsForeignQuestion(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)
	other := env.seedScenario(t, "Negotiation Basics", nil)
	foreign := seedBank(t, env, other.ID)
	session, _ := env.sessions.StartSession(user.ID, scenario.ID)

	if _, err := env.assessment.SubmitAnswer(session, foreign[0].ID, "false"); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
	if _, err := env.assessment.SubmitAnswer(session, 9999, "false"); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("unknown id: err = %v, want ErrQuestionNotFound", err)
	}
}

func TestCheckTriggerServesQuestionAtCheckpoint(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)
	seedBank(t, env, scenario.ID)
	session, _ := env.sessions.StartSession(user.ID, scenario.ID)

	// 放宽时长限制，让轮数条件主导
	env.assessment.SetPolicy(func(in TriggerInput) (bool, string) {
		if in.TurnCount >= 2 {
			return true, "test checkpoint"
		}
		return false, "warming up"
	})

	session.CurrentTurn = 1
	session.TotalTurns = 1
	verdict, err := env.assessment.CheckTrigger(context.Background(), session)
	if err != nil {
		t.Fatal(err)
	}
	if verdict.Trigger {
		t.Fatalf("should not trigger yet: %+v", verdict)
	}

	session.CurrentTurn = 2
	session.TotalTurns = 2
	verdict, err = env.assessment.CheckTrigger(context.Background(), session)
	if err != nil {
		t.Fatal(err)
	}
	if !verdict.Trigger || verdict.Question == nil {
		t.Fatalf("expected a question at checkpoint: %+v", verdict)
	}
	if verdict.Question.Source != string(model.SourceStatic) {
		t.Errorf("question source = %q, want static", verdict.Question.Source)
	}
}

func TestCheckTriggerDegradesWhenBankEmpty(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t)
	scenario := env.seedScenario(t, "Feedback Basics", nil)
	session, _ := env.sessions.StartSession(user.ID, scenario.ID)

	env.assessment.SetPolicy(func(TriggerInput) (bool, string) { return true, "always" })

	verdict, err := env.assessment.CheckTrigger(context.Background(), session)
	if err != nil {
		t.Fatal(err)
	}
	// 对话不中断：没题就不触发，而不是报错
	if verdict.Trigger {
		t.Errorf("empty bank must not trigger: %+v", verdict)
	}
}
