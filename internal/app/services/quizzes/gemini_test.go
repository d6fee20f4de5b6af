package quizzes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ai-quizzer/quizzer/internal/config"
)

func geminiResponse(t *testing.T, questions string) string {
	t.Helper()
	payload := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{
				"parts": []map[string]string{{"text": questions}},
			}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return string(body)
}

func newGeminiForServer(t *testing.T, srv *httptest.Server) *GeminiGenerator {
	t.Helper()
	gen, err := NewGeminiGenerator(srv.Client(), config.AIConfig{
		APIKey:   "test-key",
		Model:    "gemini-2.5-flash-lite",
		Endpoint: srv.URL,
	}, nil)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return gen
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, geminiResponse(t, `[
			{"text":"What is 2 + 2?","options":["3","4","5","6"],"correct_answer":"4"},
			{"text":"What is 3 + 3?","options":["5","6","7","8"],"correct_answer":"6"}
		]`))
	}))
	defer srv.Close()

	gen := newGeminiForServer(t, srv)
	questions, err := gen.Generate(context.Background(), Request{
		Grade: 3, Subject: "Maths", TotalQuestions: 2, Difficulty: "easy",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if gotPath != "/v1beta/models/gemini-2.5-flash-lite:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("unexpected api key %q", gotKey)
	}
	genCfg, _ := gotBody["generationConfig"].(map[string]any)
	if genCfg["response_mime_type"] != "application/json" {
		t.Fatalf("expected JSON mode, got %v", genCfg)
	}

	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].CorrectAnswer != "4" {
		t.Fatalf("unexpected answer %q", questions[0].CorrectAnswer)
	}
}

func TestGeminiTruncatesExtraQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiResponse(t, `[
			{"text":"Q1","options":["a","b"],"correct_answer":"a"},
			{"text":"Q2","options":["a","b"],"correct_answer":"b"},
			{"text":"Q3","options":["a","b"],"correct_answer":"a"}
		]`))
	}))
	defer srv.Close()

	gen := newGeminiForServer(t, srv)
	questions, err := gen.Generate(context.Background(), Request{Grade: 1, Subject: "Maths", TotalQuestions: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(questions))
	}
}

func TestGeminiRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   func(t *testing.T) string
		want   string
	}{
		{"http error", http.StatusInternalServerError,
			func(t *testing.T) string { return "boom" }, "status 500"},
		{"missing candidates", http.StatusOK,
			func(t *testing.T) string { return `{"candidates":[]}` }, "missing candidate text"},
		{"malformed questions", http.StatusOK,
			func(t *testing.T) string { return geminiResponse(t, "not json") }, "parse gemini questions"},
		{"correct answer missing", http.StatusOK,
			func(t *testing.T) string {
				return geminiResponse(t, `[{"text":"Q","options":["a","b"],"correct_answer":"z"}]`)
			}, "correct answer not among options"},
		{"empty array", http.StatusOK,
			func(t *testing.T) string { return geminiResponse(t, `[]`) }, "no questions"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.body(t)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, body)
			}))
			defer srv.Close()

			gen := newGeminiForServer(t, srv)
			_, err := gen.Generate(context.Background(), Request{Grade: 1, Subject: "Maths", TotalQuestions: 1})
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestGeminiRequiresAPIKey(t *testing.T) {
	if _, err := NewGeminiGenerator(nil, config.AIConfig{}, nil); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestGeminiPromptMentionsHint(t *testing.T) {
	gen := &GeminiGenerator{}
	prompt := gen.prompt(Request{
		Grade: 4, Subject: "Science", TotalQuestions: 3,
		Difficulty: "hard", DifficultyHint: "multi-step reasoning",
	})
	for _, want := range []string{"grade 4", "Science", "hard", "multi-step reasoning", "correct_answer"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
