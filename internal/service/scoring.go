package service

import (
	"fmt"
	"skillsim_backend/internal/model"
	"strings"
)

// GradeResult 单题评分结果
type GradeResult struct {
	IsCorrect bool   `json:"isCorrect"`
	Score     int    `json:"score"` // 0-100
	Feedback  string `json:"feedback"`
}

// GradeAnswer 纯函数评分：只依赖题目定义和提交内容。
// 简答题刻意不打零分，非完全匹配给 50 分部分分
func GradeAnswer(q *model.AssessmentQuestion, submitted string) GradeResult {
	switch q.QuestionType {
	case model.MultipleChoice:
		return gradeMultipleChoice(q, submitted)
	case model.TrueFalse:
		return gradeTrueFalse(q, submitted)
	case model.ShortAnswer:
		return gradeShortAnswer(q, submitted)
	default:
		return GradeResult{
			IsCorrect: false,
			Score:     0,
			Feedback:  fmt.Sprintf("Unsupported question type: %s", q.QuestionType),
		}
	}
}

func gradeMultipleChoice(q *model.AssessmentQuestion, submitted string) GradeResult {
	opts, err := q.OptionList()
	if err != nil || len(opts) == 0 {
		return GradeResult{Feedback: "This question has no answer options."}
	}

	var correct *model.AnswerOption
	for i := range opts {
		if opts[i].IsCorrect {
			correct = &opts[i]
			break
		}
	}
	if correct == nil {
		return GradeResult{Feedback: "This question has no correct option configured."}
	}

	normalized := normalizeAnswer(submitted)
	matched := normalized == normalizeAnswer(correct.Label) || normalized == normalizeAnswer(correct.Text)

	if matched {
		return GradeResult{
			IsCorrect: true,
			Score:     100,
			Feedback:  withExplanation("Correct!", q.Explanation),
		}
	}
	return GradeResult{
		IsCorrect: false,
		Score:     0,
		Feedback:  withExplanation(fmt.Sprintf("Not quite. The correct answer is: %s", correct.Text), q.Explanation),
	}
}

func gradeTrueFalse(q *model.AssessmentQuestion, submitted string) GradeResult {
	if normalizeAnswer(submitted) == normalizeAnswer(q.ReferenceAnswer) {
		return GradeResult{
			IsCorrect: true,
			Score:     100,
			Feedback:  withExplanation("Correct!", q.Explanation),
		}
	}
	return GradeResult{
		IsCorrect: false,
		Score:     0,
		Feedback:  withExplanation(fmt.Sprintf("Incorrect. The correct answer is: %s", q.ReferenceAnswer), q.Explanation),
	}
}

func gradeShortAnswer(q *model.AssessmentQuestion, submitted string) GradeResult {
	if normalizeAnswer(submitted) == normalizeAnswer(q.ReferenceAnswer) {
		return GradeResult{
			IsCorrect: true,
			Score:     100,
			Feedback:  withExplanation("Correct!", q.Explanation),
		}
	}
	// 简答题的部分分地板：不完全匹配也给 50，不打零分
	return GradeResult{
		IsCorrect: false,
		Score:     50,
		Feedback:  withExplanation("Close, but not quite. A model answer: "+q.ReferenceAnswer, q.Explanation),
	}
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func withExplanation(feedback, explanation string) string {
	if explanation == "" {
		return feedback
	}
	return feedback + " " + explanation
}
