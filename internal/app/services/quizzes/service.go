// Package quizzes manages quiz generation and retrieval.
package quizzes

import (
	"context"
	"fmt"
	"strings"

	"github.com/ai-quizzer/quizzer/internal/app/domain/quiz"
	"github.com/ai-quizzer/quizzer/internal/app/metrics"
	"github.com/ai-quizzer/quizzer/internal/app/storage"
	"github.com/ai-quizzer/quizzer/internal/config"
	"github.com/ai-quizzer/quizzer/pkg/logger"
)

const (
	maxQuestions      = 50
	defaultDifficulty = "medium"
)

// Request describes the quiz to generate.
type Request struct {
	Grade          int
	Subject        string
	TotalQuestions int
	MaxScore       int
	Difficulty     string

	// DifficultyHint is resolved from the presets by the service; generators
	// may use it to steer question style.
	DifficultyHint string
}

// Generator produces the questions for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]quiz.Question, error)
}

// Cache is an optional read-through cache for quiz lookups.
type Cache interface {
	GetQuiz(ctx context.Context, id string) (quiz.Quiz, bool)
	SetQuiz(ctx context.Context, q quiz.Quiz)
}

// Service manages quizzes.
type Service struct {
	store     storage.QuizStore
	presets   *config.Presets
	log       *logger.Logger
	generator Generator
	cache     Cache
}

// New constructs a quiz service. The arithmetic generator is used until
// another one is attached.
func New(store storage.QuizStore, presets *config.Presets, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("quizzes")
	}
	if presets == nil {
		presets = config.DefaultPresets()
	}
	return &Service{store: store, presets: presets, log: log, generator: ArithmeticGenerator{}}
}

// AttachGenerator injects a question generator implementation.
func (s *Service) AttachGenerator(g Generator) {
	if g != nil {
		s.generator = g
	}
}

// AttachCache injects a quiz lookup cache.
func (s *Service) AttachCache(c Cache) {
	s.cache = c
}

// Generate validates the request, produces questions and persists the quiz.
func (s *Service) Generate(ctx context.Context, req Request) (quiz.Quiz, error) {
	if err := s.normalise(&req); err != nil {
		metrics.RecordQuizGeneration("rejected")
		return quiz.Quiz{}, err
	}

	questions, err := s.generator.Generate(ctx, req)
	if err != nil {
		metrics.RecordQuizGeneration("failed")
		return quiz.Quiz{}, fmt.Errorf("generate questions: %w", err)
	}

	created, err := s.store.CreateQuiz(ctx, quiz.Quiz{
		Title:      fmt.Sprintf("%s Quiz - Grade %d", req.Subject, req.Grade),
		Subject:    req.Subject,
		Grade:      req.Grade,
		Difficulty: req.Difficulty,
		MaxScore:   req.MaxScore,
		Questions:  questions,
	})
	if err != nil {
		metrics.RecordQuizGeneration("failed")
		return quiz.Quiz{}, err
	}

	metrics.RecordQuizGeneration("succeeded")
	s.log.Infof("quiz %s generated (%d questions)", created.ID, len(created.Questions))

	if s.cache != nil {
		s.cache.SetQuiz(ctx, created)
	}
	return created, nil
}

// Get retrieves a quiz by identifier, consulting the cache first.
func (s *Service) Get(ctx context.Context, id string) (quiz.Quiz, error) {
	if s.cache != nil {
		if q, ok := s.cache.GetQuiz(ctx, id); ok {
			return q, nil
		}
	}

	q, err := s.store.GetQuiz(ctx, id)
	if err != nil {
		return quiz.Quiz{}, err
	}
	if s.cache != nil {
		s.cache.SetQuiz(ctx, q)
	}
	return q, nil
}

// List returns all quizzes.
func (s *Service) List(ctx context.Context) ([]quiz.Quiz, error) {
	return s.store.ListQuizzes(ctx)
}

func (s *Service) normalise(req *Request) error {
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if req.Grade < 1 || req.Grade > 12 {
		return fmt.Errorf("grade must be between 1 and 12")
	}
	if req.TotalQuestions < 1 || req.TotalQuestions > maxQuestions {
		return fmt.Errorf("total_questions must be between 1 and %d", maxQuestions)
	}
	if req.MaxScore < 1 {
		return fmt.Errorf("max_score must be positive")
	}

	if req.Difficulty == "" {
		req.Difficulty = defaultDifficulty
	}
	req.Difficulty = strings.ToLower(strings.TrimSpace(req.Difficulty))
	if !s.presets.Valid(req.Difficulty) {
		return fmt.Errorf("unknown difficulty %q", req.Difficulty)
	}
	req.DifficultyHint = s.presets.Hint(req.Difficulty)
	return nil
}
