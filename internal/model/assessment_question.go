package model

import "encoding/json"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

type QuestionSource string

const (
	SourceStatic    QuestionSource = "static"
	SourceGenerated QuestionSource = "generated"
)

// AnswerOption 选择题的一个选项
type AnswerOption struct {
	Label     string `json:"label"` // A/B/C/D
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// AssessmentQuestion 场景级知识检查题。静态题库在建库时种入，
// 动态生成的题以 source=generated 落库，之后与静态题同等对待
// swagger:model AssessmentQuestion
type AssessmentQuestion struct {
	BaseModel
	ScenarioID      uint            `gorm:"index;not null" json:"scenarioId"`
	QuestionType    QuestionType    `gorm:"size:50;not null" json:"questionType"`
	Prompt          string          `gorm:"type:text;not null" json:"prompt"`
	Options         json.RawMessage `gorm:"type:json" json:"options"` // JSON: []AnswerOption
	ReferenceAnswer string          `gorm:"type:text" json:"referenceAnswer,omitempty"`
	Explanation     string          `gorm:"type:text" json:"explanation,omitempty"`
	OrderIndex      int             `gorm:"default:0" json:"orderIndex"`
	Source          QuestionSource  `gorm:"size:20;default:'static'" json:"source"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

// OptionList 解析选项 JSON
func (q *AssessmentQuestion) OptionList() ([]AnswerOption, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var opts []AnswerOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}
