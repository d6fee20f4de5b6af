package submissions

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/ai-quizzer/quizzer/internal/app/domain/quiz"
	"github.com/ai-quizzer/quizzer/internal/app/storage/memory"
)

func seedQuiz(t *testing.T, store *memory.Store) quiz.Quiz {
	t.Helper()
	q, err := store.CreateQuiz(context.Background(), quiz.Quiz{
		Title:    "Maths Quiz - Grade 3",
		Subject:  "Maths",
		Grade:    3,
		MaxScore: 10,
		Questions: []quiz.Question{
			{Text: "What is 2 + 3?", Options: []string{"4", "5", "6", "7"}, CorrectAnswer: "5"},
			{Text: "What is 3 + 4?", Options: []string{"5", "6", "7", "8"}, CorrectAnswer: "7"},
			{Text: "What is 4 + 5?", Options: []string{"6", "7", "8", "9"}, CorrectAnswer: "9"},
			{Text: "What is 5 + 6?", Options: []string{"9", "10", "11", "12"}, CorrectAnswer: "11"},
		},
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return q
}

func TestSubmitScoring(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	q := seedQuiz(t, store)

	// Two correct, one wrong, one unanswered.
	answers := map[string]string{
		q.Questions[0].ID: "5",
		q.Questions[1].ID: "6",
		q.Questions[2].ID: "9",
	}

	sub, err := svc.Submit(context.Background(), q.ID, "user-1", answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Correct != 2 || sub.Total != 4 {
		t.Fatalf("expected 2/4 correct, got %d/%d", sub.Correct, sub.Total)
	}
	// 2 of 4 correct at max score 10, integer arithmetic: 2*10/4 = 5.
	if sub.Score != 5 {
		t.Fatalf("expected score 5, got %d", sub.Score)
	}
	if sub.ID == "" || sub.SubmittedAt.IsZero() {
		t.Fatalf("expected persisted submission, got %+v", sub)
	}
}

func TestSubmitAllAndNone(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	q := seedQuiz(t, store)

	all := map[string]string{}
	for _, question := range q.Questions {
		all[question.ID] = question.CorrectAnswer
	}
	sub, err := svc.Submit(context.Background(), q.ID, "user-1", all)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Score != q.MaxScore {
		t.Fatalf("expected full score %d, got %d", q.MaxScore, sub.Score)
	}

	sub, err = svc.Submit(context.Background(), q.ID, "user-1", map[string]string{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Score != 0 || sub.Correct != 0 {
		t.Fatalf("expected zero score, got %+v", sub)
	}
}

func TestSubmitUnknownQuiz(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)

	_, err := svc.Submit(context.Background(), "missing", "user-1", nil)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestSubmitRequiresUser(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	q := seedQuiz(t, store)

	if _, err := svc.Submit(context.Background(), q.ID, "", nil); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	q := seedQuiz(t, store)

	first, err := svc.Submit(context.Background(), q.ID, "user-1", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := svc.Submit(context.Background(), q.ID, "user-1", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), q.ID, "user-2", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	history, err := svc.History(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(history))
	}
	if history[0].ID != second.ID || history[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", history[0].ID, history[1].ID)
	}
}

func TestListForQuiz(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	q := seedQuiz(t, store)
	other := seedQuiz(t, store)

	if _, err := svc.Submit(context.Background(), q.ID, "user-1", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), other.ID, "user-1", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	subs, err := svc.ListForQuiz(context.Background(), q.ID, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 || subs[0].QuizID != q.ID {
		t.Fatalf("expected 1 submission for quiz %s, got %+v", q.ID, subs)
	}

	if _, err := svc.ListForQuiz(context.Background(), "missing", "user-1"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for unknown quiz, got %v", err)
	}
}
