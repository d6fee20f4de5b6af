package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ai-quizzer/quizzer/internal/app/domain/quiz"
	"github.com/ai-quizzer/quizzer/internal/app/domain/submission"
	"github.com/ai-quizzer/quizzer/internal/app/domain/user"
	"github.com/ai-quizzer/quizzer/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SessionStore = (*Store)(nil)
var _ storage.QuizStore = (*Store)(nil)
var _ storage.SubmissionStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.Username == "" {
		return user.User{}, errors.New("username required")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.Username, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM quiz_users
		WHERE id = $1
	`, id)

	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM quiz_users
		WHERE username = $1
	`, username)

	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// --- SessionStore -----------------------------------------------------------

func (s *Store) CreateSession(ctx context.Context, sess user.Session) (user.Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sess.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_sessions (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sess.ID, sess.UserID, sess.TokenHash, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return user.Session{}, err
	}
	return sess, nil
}

func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (user.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM quiz_sessions
		WHERE token_hash = $1
	`, tokenHash)

	var sess user.Session
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.TokenHash, &sess.ExpiresAt, &sess.CreatedAt); err != nil {
		return user.Session{}, err
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM quiz_sessions WHERE token_hash = $1
	`, tokenHash)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM quiz_sessions WHERE expires_at < $1
	`, before)
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// --- QuizStore --------------------------------------------------------------

func (s *Store) CreateQuiz(ctx context.Context, q quiz.Quiz) (quiz.Quiz, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return quiz.Quiz{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quizzes (id, title, subject, grade, difficulty, max_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, q.ID, q.Title, q.Subject, q.Grade, q.Difficulty, q.MaxScore, q.CreatedAt)
	if err != nil {
		return quiz.Quiz{}, err
	}

	for i := range q.Questions {
		question := &q.Questions[i]
		if question.ID == "" {
			question.ID = uuid.NewString()
		}
		question.QuizID = q.ID

		optionsJSON, err := json.Marshal(question.Options)
		if err != nil {
			return quiz.Quiz{}, err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO quiz_questions (id, quiz_id, text, options, correct_answer, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, question.ID, q.ID, question.Text, optionsJSON, question.CorrectAnswer, i)
		if err != nil {
			return quiz.Quiz{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return quiz.Quiz{}, err
	}
	return q, nil
}

func (s *Store) GetQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, subject, grade, difficulty, max_score, created_at
		FROM quizzes
		WHERE id = $1
	`, id)

	var q quiz.Quiz
	if err := row.Scan(&q.ID, &q.Title, &q.Subject, &q.Grade, &q.Difficulty, &q.MaxScore, &q.CreatedAt); err != nil {
		return quiz.Quiz{}, err
	}

	questions, err := s.quizQuestions(ctx, id)
	if err != nil {
		return quiz.Quiz{}, err
	}
	q.Questions = questions
	return q, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]quiz.Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, subject, grade, difficulty, max_score, created_at
		FROM quizzes
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []quiz.Quiz
	for rows.Next() {
		var q quiz.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.Subject, &q.Grade, &q.Difficulty, &q.MaxScore, &q.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		questions, err := s.quizQuestions(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Questions = questions
	}
	return result, nil
}

func (s *Store) quizQuestions(ctx context.Context, quizID string) ([]quiz.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, quiz_id, text, options, correct_answer
		FROM quiz_questions
		WHERE quiz_id = $1
		ORDER BY position
	`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []quiz.Question
	for rows.Next() {
		var (
			question   quiz.Question
			optionsRaw []byte
		)
		if err := rows.Scan(&question.ID, &question.QuizID, &question.Text, &optionsRaw, &question.CorrectAnswer); err != nil {
			return nil, err
		}
		if len(optionsRaw) > 0 {
			_ = json.Unmarshal(optionsRaw, &question.Options)
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

// --- SubmissionStore --------------------------------------------------------

func (s *Store) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	if sub.QuizID == "" || sub.UserID == "" {
		return submission.Submission{}, errors.New("quiz_id and user_id required")
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.SubmittedAt = time.Now().UTC()

	answersJSON, err := json.Marshal(sub.Answers)
	if err != nil {
		return submission.Submission{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quiz_submissions (id, quiz_id, user_id, answers, score, correct, total, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sub.ID, sub.QuizID, sub.UserID, answersJSON, sub.Score, sub.Correct, sub.Total, sub.SubmittedAt)
	if err != nil {
		return submission.Submission{}, err
	}
	return sub, nil
}

func (s *Store) ListSubmissions(ctx context.Context, userID string) ([]submission.Submission, error) {
	return s.listSubmissions(ctx, `
		SELECT id, quiz_id, user_id, answers, score, correct, total, submitted_at
		FROM quiz_submissions
		WHERE user_id = $1
		ORDER BY submitted_at DESC
	`, userID)
}

func (s *Store) ListQuizSubmissions(ctx context.Context, quizID, userID string) ([]submission.Submission, error) {
	return s.listSubmissions(ctx, `
		SELECT id, quiz_id, user_id, answers, score, correct, total, submitted_at
		FROM quiz_submissions
		WHERE quiz_id = $1 AND user_id = $2
		ORDER BY submitted_at DESC
	`, quizID, userID)
}

func (s *Store) listSubmissions(ctx context.Context, query string, args ...any) ([]submission.Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []submission.Submission
	for rows.Next() {
		var (
			sub        submission.Submission
			answersRaw []byte
		)
		if err := rows.Scan(&sub.ID, &sub.QuizID, &sub.UserID, &answersRaw, &sub.Score, &sub.Correct, &sub.Total, &sub.SubmittedAt); err != nil {
			return nil, err
		}
		if len(answersRaw) > 0 {
			_ = json.Unmarshal(answersRaw, &sub.Answers)
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}
