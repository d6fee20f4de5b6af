package quizzes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ai-quizzer/quizzer/internal/app/domain/quiz"
	"github.com/ai-quizzer/quizzer/internal/app/metrics"
	"github.com/ai-quizzer/quizzer/internal/config"
	"github.com/ai-quizzer/quizzer/pkg/logger"
)

const maxAIResponseBytes = 1 << 20

// GeminiGenerator produces questions through the Generative Language API in
// JSON mode.
type GeminiGenerator struct {
	client   *http.Client
	apiKey   string
	model    string
	endpoint string
	log      *logger.Logger
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator constructs a generator from the AI configuration.
func NewGeminiGenerator(client *http.Client, cfg config.AIConfig, log *logger.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	if log == nil {
		log = logger.NewDefault("gemini")
	}
	return &GeminiGenerator{
		client:   client,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		log:      log,
	}, nil
}

type geminiQuestion struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Generate asks the model for a JSON array of questions and validates every
// entry before returning it.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) ([]quiz.Question, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": g.prompt(req)}}},
		},
		"generationConfig": map[string]string{
			"response_mime_type": "application/json",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		metrics.ObserveAIRequest("error", time.Since(start))
		return nil, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxAIResponseBytes))
	if err != nil {
		metrics.ObserveAIRequest("error", time.Since(start))
		return nil, fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ObserveAIRequest(fmt.Sprintf("http_%d", resp.StatusCode), time.Since(start))
		return nil, fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}
	metrics.ObserveAIRequest("ok", time.Since(start))

	text := gjson.GetBytes(respBody, "candidates.0.content.parts.0.text")
	if !text.Exists() || text.String() == "" {
		return nil, fmt.Errorf("gemini response missing candidate text")
	}

	var raw []geminiQuestion
	if err := json.Unmarshal([]byte(text.String()), &raw); err != nil {
		return nil, fmt.Errorf("parse gemini questions: %w", err)
	}
	return g.validate(raw, req.TotalQuestions)
}

func (g *GeminiGenerator) prompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d multiple-choice questions for a grade %d quiz on %s.\n",
		req.TotalQuestions, req.Grade, req.Subject)
	fmt.Fprintf(&b, "Difficulty: %s.", req.Difficulty)
	if req.DifficultyHint != "" {
		fmt.Fprintf(&b, " %s", req.DifficultyHint)
	}
	b.WriteString("\nRespond with a JSON array only. Each element must have the keys ")
	b.WriteString(`"text" (string), "options" (array of exactly 4 strings) and "correct_answer" `)
	b.WriteString("(string, one of the options).")
	return b.String()
}

func (g *GeminiGenerator) validate(raw []geminiQuestion, want int) ([]quiz.Question, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("gemini produced no questions")
	}
	if len(raw) > want {
		raw = raw[:want]
	}

	questions := make([]quiz.Question, 0, len(raw))
	for i, q := range raw {
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("question %d: empty text", i)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d: needs at least 2 options", i)
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("question %d: correct answer not among options", i)
		}
		questions = append(questions, quiz.Question{
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	if len(questions) < want {
		g.log.Warnf("gemini produced %d of %d requested questions", len(questions), want)
	}
	return questions, nil
}
