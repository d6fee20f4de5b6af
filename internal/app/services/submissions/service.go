// Package submissions scores and records quiz submissions.
package submissions

import (
	"context"
	"fmt"

	"github.com/ai-quizzer/quizzer/internal/app/domain/submission"
	"github.com/ai-quizzer/quizzer/internal/app/metrics"
	"github.com/ai-quizzer/quizzer/internal/app/storage"
	"github.com/ai-quizzer/quizzer/pkg/logger"
)

// Service scores submitted answers against the stored quiz.
type Service struct {
	quizzes storage.QuizStore
	store   storage.SubmissionStore
	log     *logger.Logger
}

// New constructs a submission service.
func New(quizzes storage.QuizStore, store storage.SubmissionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("submissions")
	}
	return &Service{quizzes: quizzes, store: store, log: log}
}

// Submit scores the answers and persists the result. Answers maps question
// IDs to the chosen option; unanswered questions count as wrong. The score
// scales the fraction of correct answers to the quiz max score using integer
// arithmetic.
func (s *Service) Submit(ctx context.Context, quizID, userID string, answers map[string]string) (submission.Submission, error) {
	if userID == "" {
		return submission.Submission{}, fmt.Errorf("user_id is required")
	}

	q, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return submission.Submission{}, err
	}
	if len(q.Questions) == 0 {
		return submission.Submission{}, fmt.Errorf("quiz %s has no questions", quizID)
	}

	correct := 0
	for _, question := range q.Questions {
		if chosen, ok := answers[question.ID]; ok && chosen == question.CorrectAnswer {
			correct++
		}
	}

	sub := submission.Submission{
		QuizID:  q.ID,
		UserID:  userID,
		Answers: answers,
		Score:   correct * q.MaxScore / len(q.Questions),
		Correct: correct,
		Total:   len(q.Questions),
	}

	created, err := s.store.CreateSubmission(ctx, sub)
	if err != nil {
		return submission.Submission{}, err
	}

	metrics.RecordSubmission()
	s.log.Infof("submission %s scored %d/%d for quiz %s", created.ID, created.Score, q.MaxScore, q.ID)
	return created, nil
}

// History lists the user's submissions, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]submission.Submission, error) {
	return s.store.ListSubmissions(ctx, userID)
}

// ListForQuiz lists the user's submissions for one quiz, newest first.
func (s *Service) ListForQuiz(ctx context.Context, quizID, userID string) ([]submission.Submission, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.store.ListQuizSubmissions(ctx, quizID, userID)
}
