package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"skillsim_backend/internal/config"
	"skillsim_backend/internal/model"
	"strings"
	"sync"
)

// GeneratorService 动态出题与会话总结协作方（OpenAI 兼容接口）。
// 协作方被视为慢且可失败的：所有调用都受超时约束，失败走降级，绝不阻断会话
type GeneratorService struct {
	mu     sync.RWMutex
	cfg    config.GeneratorConfig
	client *http.Client
}

func NewGeneratorService(cfg config.GeneratorConfig) *GeneratorService {
	return &GeneratorService{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// UpdateConfig 配置热更新入口
func (s *GeneratorService) UpdateConfig(cfg config.GeneratorConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *GeneratorService) config() config.GeneratorConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// GenerationOutcome 两分支结果：要么拿到题，要么带原因降级。
// 降级不是错误，调用方据此转入静态题库
type GenerationOutcome struct {
	Question *model.AssessmentQuestion
	Fallback bool
	Reason   string
}

func fallback(reason string) GenerationOutcome {
	return GenerationOutcome{Fallback: true, Reason: reason}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// generatedQuestion 协作方返回的题目 JSON 结构
type generatedQuestion struct {
	QuestionType    string               `json:"questionType"`
	Prompt          string               `json:"prompt"`
	Options         []model.AnswerOption `json:"options"`
	ReferenceAnswer string               `json:"referenceAnswer"`
	Explanation     string               `json:"explanation"`
}

// GenerateQuestion 基于最近对话上下文生成一道场景知识检查题
func (s *GeneratorService) GenerateQuestion(ctx context.Context, scenario *model.Scenario, turns []model.SessionTurn) GenerationOutcome {
	cfg := s.config()
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return fallback("generator not configured")
	}

	prompt := buildQuestionPrompt(scenario, turns)
	content, err := s.complete(ctx, cfg, questionSystemPrompt, prompt)
	if err != nil {
		return fallback(err.Error())
	}

	var gen generatedQuestion
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &gen); err != nil {
		return fallback(fmt.Sprintf("unparseable generator output: %v", err))
	}

	q, err := gen.toModel(scenario.ID)
	if err != nil {
		return fallback(err.Error())
	}
	return GenerationOutcome{Question: q}
}

// SummarizeSession 生成会话执行摘要，失败时返回错误由调用方降级
func (s *GeneratorService) SummarizeSession(ctx context.Context, scenario *model.Scenario, turns []model.SessionTurn) (string, error) {
	cfg := s.config()
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return "", fmt.Errorf("generator not configured")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Scenario: %s\nTranscript:\n", scenario.Title)
	for _, t := range turns {
		fmt.Fprintf(&sb, "[%s] %s\n", t.Speaker, t.Message)
	}
	sb.WriteString("\nWrite a concise coaching summary (3-5 sentences) of how the learner performed in this conversation.")

	return s.complete(ctx, cfg, "You are a corporate soft-skills coach writing post-session summaries.", sb.String())
}

const questionSystemPrompt = "You are an assessment author for a corporate soft-skills training platform. " +
	"Reply with a single JSON object only, no prose, with fields: " +
	`questionType ("multiple_choice" | "true_false" | "short_answer"), prompt, ` +
	`options (array of {label, text, isCorrect}, multiple_choice only), referenceAnswer, explanation.`

func buildQuestionPrompt(scenario *model.Scenario, turns []model.SessionTurn) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Training scenario: %s (%s)\n", scenario.Title, scenario.Category)
	if len(turns) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, t := range turns {
			fmt.Fprintf(&sb, "[%s] %s\n", t.Speaker, t.Message)
		}
	}
	sb.WriteString("\nWrite one knowledge-check question grounded in this conversation.")
	return sb.String()
}

func (s *GeneratorService) complete(ctx context.Context, cfg config.GeneratorConfig, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	reqBody := map[string]interface{}{
		"model": cfg.Model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, "POST", cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generator API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("generator API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("generator returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (g *generatedQuestion) toModel(scenarioID uint) (*model.AssessmentQuestion, error) {
	qt := model.QuestionType(g.QuestionType)
	switch qt {
	case model.MultipleChoice:
		hasCorrect := false
		for _, o := range g.Options {
			if o.IsCorrect {
				hasCorrect = true
				break
			}
		}
		if len(g.Options) < 2 || !hasCorrect {
			return nil, fmt.Errorf("generated multiple_choice question missing valid options")
		}
	case model.TrueFalse, model.ShortAnswer:
		if g.ReferenceAnswer == "" {
			return nil, fmt.Errorf("generated %s question missing reference answer", qt)
		}
	default:
		return nil, fmt.Errorf("generated question has unknown type %q", g.QuestionType)
	}
	if strings.TrimSpace(g.Prompt) == "" {
		return nil, fmt.Errorf("generated question missing prompt")
	}

	var options json.RawMessage
	if len(g.Options) > 0 {
		options, _ = json.Marshal(g.Options)
	}

	return &model.AssessmentQuestion{
		ScenarioID:      scenarioID,
		QuestionType:    qt,
		Prompt:          g.Prompt,
		Options:         options,
		ReferenceAnswer: g.ReferenceAnswer,
		Explanation:     g.Explanation,
		OrderIndex:      999, // 排在静态题库之后，不打乱顺序
		Source:          model.SourceGenerated,
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
