package storage

import (
	"context"
	"time"

	"github.com/ai-quizzer/quizzer/internal/app/domain/quiz"
	"github.com/ai-quizzer/quizzer/internal/app/domain/submission"
	"github.com/ai-quizzer/quizzer/internal/app/domain/user"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
}

// SessionStore persists issued token sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s user.Session) (user.Session, error)
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (user.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// QuizStore persists quizzes together with their questions.
type QuizStore interface {
	CreateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error)
	GetQuiz(ctx context.Context, id string) (quiz.Quiz, error)
	ListQuizzes(ctx context.Context) ([]quiz.Quiz, error)
}

// SubmissionStore persists quiz submissions.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error)
	ListSubmissions(ctx context.Context, userID string) ([]submission.Submission, error)
	ListQuizSubmissions(ctx context.Context, quizID, userID string) ([]submission.Submission, error)
}
