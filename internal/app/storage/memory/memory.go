package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ai-quizzer/quizzer/internal/app/domain/quiz"
	"github.com/ai-quizzer/quizzer/internal/app/domain/submission"
	"github.com/ai-quizzer/quizzer/internal/app/domain/user"
	"github.com/ai-quizzer/quizzer/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local
// development. Absent rows are reported as sql.ErrNoRows so callers branch
// the same way against either backend.
type Store struct {
	mu              sync.RWMutex
	nextID          int64
	users           map[string]user.User
	usersByName     map[string]string
	sessions        map[string]user.Session
	quizzes         map[string]quiz.Quiz
	submissions     map[string]submission.Submission
	submissionsByID []string
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)
var _ storage.QuizStore = (*Store)(nil)
var _ storage.SubmissionStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:      1,
		users:       make(map[string]user.User),
		usersByName: make(map[string]string),
		sessions:    make(map[string]user.Session),
		quizzes:     make(map[string]quiz.Quiz),
		submissions: make(map[string]submission.Submission),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByName[u.Username]; exists {
		return user.User{}, fmt.Errorf("user %s already exists", u.Username)
	}
	if u.ID == "" {
		u.ID = s.nextIDLocked()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, fmt.Errorf("user id %s already exists", u.ID)
	}
	u.CreatedAt = time.Now().UTC()

	s.users[u.ID] = u
	s.usersByName[u.Username] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[username]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return s.users[id], nil
}

// SessionStore implementation -------------------------------------------------

func (s *Store) CreateSession(_ context.Context, sess user.Session) (user.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = s.nextIDLocked()
	}
	sess.CreatedAt = time.Now().UTC()

	s.sessions[sess.TokenHash] = sess
	return sess, nil
}

func (s *Store) GetSessionByTokenHash(_ context.Context, tokenHash string) (user.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[tokenHash]
	if !ok {
		return user.Session{}, sql.ErrNoRows
	}
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[tokenHash]; !ok {
		return sql.ErrNoRows
	}
	delete(s.sessions, tokenHash)
	return nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for hash, sess := range s.sessions {
		if sess.ExpiresAt.Before(before) {
			delete(s.sessions, hash)
			removed++
		}
	}
	return removed, nil
}

// QuizStore implementation ----------------------------------------------------

func (s *Store) CreateQuiz(_ context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = s.nextIDLocked()
	} else if _, exists := s.quizzes[q.ID]; exists {
		return quiz.Quiz{}, fmt.Errorf("quiz %s already exists", q.ID)
	}
	q.CreatedAt = time.Now().UTC()

	questions := make([]quiz.Question, len(q.Questions))
	for i, question := range q.Questions {
		if question.ID == "" {
			question.ID = s.nextIDLocked()
		}
		question.QuizID = q.ID
		question.Options = cloneOptions(question.Options)
		questions[i] = question
	}
	q.Questions = questions

	s.quizzes[q.ID] = q
	return cloneQuiz(q), nil
}

func (s *Store) GetQuiz(_ context.Context, id string) (quiz.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quizzes[id]
	if !ok {
		return quiz.Quiz{}, sql.ErrNoRows
	}
	return cloneQuiz(q), nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]quiz.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]quiz.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		result = append(result, cloneQuiz(q))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// SubmissionStore implementation ----------------------------------------------

func (s *Store) CreateSubmission(_ context.Context, sub submission.Submission) (submission.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == "" {
		sub.ID = s.nextIDLocked()
	}
	sub.SubmittedAt = time.Now().UTC()
	sub.Answers = cloneAnswers(sub.Answers)

	s.submissions[sub.ID] = sub
	s.submissionsByID = append(s.submissionsByID, sub.ID)
	return cloneSubmission(sub), nil
}

func (s *Store) ListSubmissions(_ context.Context, userID string) ([]submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []submission.Submission
	for i := len(s.submissionsByID) - 1; i >= 0; i-- {
		sub := s.submissions[s.submissionsByID[i]]
		if sub.UserID == userID {
			result = append(result, cloneSubmission(sub))
		}
	}
	return result, nil
}

func (s *Store) ListQuizSubmissions(_ context.Context, quizID, userID string) ([]submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []submission.Submission
	for i := len(s.submissionsByID) - 1; i >= 0; i-- {
		sub := s.submissions[s.submissionsByID[i]]
		if sub.QuizID == quizID && sub.UserID == userID {
			result = append(result, cloneSubmission(sub))
		}
	}
	return result, nil
}

// helpers ----------------------------------------------------------------------

func cloneOptions(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneAnswers(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneQuiz(q quiz.Quiz) quiz.Quiz {
	questions := make([]quiz.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = cloneOptions(question.Options)
		questions[i] = question
	}
	q.Questions = questions
	return q
}

func cloneSubmission(sub submission.Submission) submission.Submission {
	sub.Answers = cloneAnswers(sub.Answers)
	return sub
}
