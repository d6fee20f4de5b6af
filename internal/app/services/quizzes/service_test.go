package quizzes

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ai-quizzer/quizzer/internal/app/domain/quiz"
	"github.com/ai-quizzer/quizzer/internal/app/storage/memory"
)

func newTestService() *Service {
	return New(memory.New(), nil, nil)
}

func TestGenerateArithmetic(t *testing.T) {
	svc := newTestService()

	q, err := svc.Generate(context.Background(), Request{
		Grade:          5,
		Subject:        "Maths",
		TotalQuestions: 3,
		MaxScore:       9,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if q.Title != "Maths Quiz - Grade 5" {
		t.Fatalf("unexpected title %q", q.Title)
	}
	if q.Difficulty != "medium" {
		t.Fatalf("expected default difficulty medium, got %q", q.Difficulty)
	}
	if len(q.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(q.Questions))
	}

	// Question i asks for (i+2)+(i+3); the stored correct answer is i+5,
	// which equals the true sum only for i=0.
	first := q.Questions[0]
	if first.Text != "What is 2 + 3?" {
		t.Fatalf("unexpected question text %q", first.Text)
	}
	if len(first.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(first.Options))
	}
	if first.CorrectAnswer != "5" {
		t.Fatalf("expected correct answer 5, got %q", first.CorrectAnswer)
	}
	found := false
	for _, opt := range first.Options {
		if opt == first.CorrectAnswer {
			found = true
		}
	}
	if !found {
		t.Fatalf("correct answer %q not among options %v", first.CorrectAnswer, first.Options)
	}
	if q.Questions[1].CorrectAnswer != "6" || q.Questions[2].CorrectAnswer != "7" {
		t.Fatalf("unexpected answers: %q, %q", q.Questions[1].CorrectAnswer, q.Questions[2].CorrectAnswer)
	}
}

func TestGenerateValidation(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		name string
		req  Request
		want string
	}{
		{"missing subject", Request{Grade: 3, TotalQuestions: 5, MaxScore: 10}, "subject"},
		{"grade too low", Request{Grade: 0, Subject: "Maths", TotalQuestions: 5, MaxScore: 10}, "grade"},
		{"grade too high", Request{Grade: 13, Subject: "Maths", TotalQuestions: 5, MaxScore: 10}, "grade"},
		{"no questions", Request{Grade: 3, Subject: "Maths", TotalQuestions: 0, MaxScore: 10}, "total_questions"},
		{"too many questions", Request{Grade: 3, Subject: "Maths", TotalQuestions: 51, MaxScore: 10}, "total_questions"},
		{"zero max score", Request{Grade: 3, Subject: "Maths", TotalQuestions: 5, MaxScore: 0}, "max_score"},
		{"unknown difficulty", Request{Grade: 3, Subject: "Maths", TotalQuestions: 5, MaxScore: 10, Difficulty: "brutal"}, "difficulty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Generate(context.Background(), tc.req); err == nil {
				t.Fatalf("expected error")
			} else if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestGenerateResolvesDifficultyHint(t *testing.T) {
	svc := newTestService()

	var captured Request
	svc.AttachGenerator(generatorFunc(func(ctx context.Context, req Request) ([]quiz.Question, error) {
		captured = req
		return ArithmeticGenerator{}.Generate(ctx, req)
	}))

	_, err := svc.Generate(context.Background(), Request{
		Grade: 4, Subject: "Science", TotalQuestions: 2, MaxScore: 4, Difficulty: "Hard",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if captured.Difficulty != "hard" {
		t.Fatalf("expected lowercased difficulty, got %q", captured.Difficulty)
	}
	if captured.DifficultyHint == "" {
		t.Fatalf("expected resolved difficulty hint")
	}
}

func TestGenerateFailingGenerator(t *testing.T) {
	svc := newTestService()
	svc.AttachGenerator(generatorFunc(func(ctx context.Context, req Request) ([]quiz.Question, error) {
		return nil, fmt.Errorf("upstream down")
	}))

	if _, err := svc.Generate(context.Background(), Request{
		Grade: 2, Subject: "Maths", TotalQuestions: 1, MaxScore: 1,
	}); err == nil {
		t.Fatalf("expected error from failing generator")
	}
}

func TestGetUsesCache(t *testing.T) {
	svc := newTestService()
	cache := &fakeCache{entries: map[string]quiz.Quiz{}}
	svc.AttachCache(cache)

	created, err := svc.Generate(context.Background(), Request{
		Grade: 6, Subject: "History", TotalQuestions: 1, MaxScore: 5,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, ok := cache.entries[created.ID]; !ok {
		t.Fatalf("expected generated quiz to be cached")
	}

	// A cache hit must not touch the store.
	cache.entries["phantom"] = quiz.Quiz{ID: "phantom", Title: "Cached"}
	got, err := svc.Get(context.Background(), "phantom")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Cached" {
		t.Fatalf("expected cached quiz, got %+v", got)
	}
}

func TestGetMissPopulatesCache(t *testing.T) {
	svc := newTestService()
	created, err := svc.Generate(context.Background(), Request{
		Grade: 6, Subject: "History", TotalQuestions: 1, MaxScore: 5,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	cache := &fakeCache{entries: map[string]quiz.Quiz{}}
	svc.AttachCache(cache)

	if _, err := svc.Get(context.Background(), created.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := cache.entries[created.ID]; !ok {
		t.Fatalf("expected store hit to populate cache")
	}
}

type generatorFunc func(ctx context.Context, req Request) ([]quiz.Question, error)

func (f generatorFunc) Generate(ctx context.Context, req Request) ([]quiz.Question, error) {
	return f(ctx, req)
}

type fakeCache struct {
	entries map[string]quiz.Quiz
}

func (c *fakeCache) GetQuiz(_ context.Context, id string) (quiz.Quiz, bool) {
	q, ok := c.entries[id]
	return q, ok
}

func (c *fakeCache) SetQuiz(_ context.Context, q quiz.Quiz) {
	c.entries[q.ID] = q
}
