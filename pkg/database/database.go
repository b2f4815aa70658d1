package database

import (
	"encoding/json"
	"fmt"
	"log"
	"skillsim_backend/internal/config"
	"skillsim_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// 轮次和答案的并发写入依赖 gorm.ErrDuplicatedKey 判断
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

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
		return nil, err
	}

	log.Println("Database migration completed")

	seedScenarios(db)

	return db, nil
}

func mustJSON(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

// 默认训练场景与静态题库（为空时插入）
func seedScenarios(db *gorm.DB) {
	var count int64
	db.Model(&model.Scenario{}).Count(&count)
	if count > 0 {
		return
	}

	feedback := &model.Scenario{
		Title:           "Delivering Difficult Feedback",
		Description:     "一位团队成员连续错过交付节点，你需要在一对一沟通中指出问题并帮助对方改进。",
		Category:        "feedback",
		Difficulty:      "intermediate",
		CounterpartRole: "Underperforming Team Member",
		Tags:            mustJSON([]string{"empathy", "clarity", "active listening"}),
		Published:       true,
	}
	db.Create(feedback)

	negotiation := &model.Scenario{
		Title:           "Negotiating a Deadline",
		Description:     "客户要求提前两周交付，你需要在不损害关系的前提下协商一个可行的时间表。",
		Category:        "negotiation",
		Difficulty:      "advanced",
		CounterpartRole: "Demanding Client",
		Tags:            mustJSON([]string{"negotiation", "assertiveness", "clarity"}),
		Published:       true,
	}
	db.Create(negotiation)

	questions := []model.AssessmentQuestion{
		{
			ScenarioID:   feedback.ID,
			QuestionType: model.MultipleChoice,
			Prompt:       "What is the most effective way to open a difficult feedback conversation?",
			Options: mustJSON([]model.AnswerOption{
				{Label: "A", Text: "Start with small talk to delay the issue", IsCorrect: false},
				{Label: "B", Text: "State the specific observed behavior and its impact", IsCorrect: true},
				{Label: "C", Text: "Compare the person to a better-performing colleague", IsCorrect: false},
				{Label: "D", Text: "Send the feedback by email first", IsCorrect: false},
			}),
			Explanation: "行为+影响的开场让对话聚焦事实而不是人。",
			OrderIndex:  1,
			Source:      model.SourceStatic,
		},
		{
			ScenarioID:      feedback.ID,
			QuestionType:    model.TrueFalse,
			Prompt:          "Feedback should focus on the person's character rather than their behavior.",
			ReferenceAnswer: "false",
			Explanation:     "针对行为的反馈可以改进，针对性格的反馈只会引起防御。",
			OrderIndex:      2,
			Source:          model.SourceStatic,
		},
		{
			ScenarioID:      feedback.ID,
			QuestionType:    model.ShortAnswer,
			Prompt:          "Name one technique for confirming the other person understood your feedback.",
			ReferenceAnswer: "ask them to summarize",
			Explanation:     "请对方复述要点是最直接的确认方式。",
			OrderIndex:      3,
			Source:          model.SourceStatic,
		},
		{
			ScenarioID:   negotiation.ID,
			QuestionType: model.MultipleChoice,
			Prompt:       "When a client demands an unrealistic deadline, what should you do first?",
			Options: mustJSON([]model.AnswerOption{
				{Label: "A", Text: "Accept and hope the team can manage", IsCorrect: false},
				{Label: "B", Text: "Refuse outright", IsCorrect: false},
				{Label: "C", Text: "Explore the underlying reason for the date", IsCorrect: true},
				{Label: "D", Text: "Escalate to your manager immediately", IsCorrect: false},
			}),
			Explanation: "了解对方的真实约束才可能找到双赢方案。",
			OrderIndex:  1,
			Source:      model.SourceStatic,
		},
		{
			ScenarioID:      negotiation.ID,
			QuestionType:    model.TrueFalse,
			Prompt:          "Offering alternative options strengthens your position in a negotiation.",
			ReferenceAnswer: "true",
			Explanation:     "备选方案让协商从对抗变成共同解题。",
			OrderIndex:      2,
			Source:          model.SourceStatic,
		},
	}
	for i := range questions {
		db.Create(&questions[i])
	}
}
