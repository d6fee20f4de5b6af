// Package app wires the domain services together and manages their
// lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"

	"github.com/ai-quizzer/quizzer/internal/app/services/auth"
	"github.com/ai-quizzer/quizzer/internal/app/services/quizzes"
	"github.com/ai-quizzer/quizzer/internal/app/services/submissions"
	"github.com/ai-quizzer/quizzer/internal/app/storage"
	"github.com/ai-quizzer/quizzer/internal/app/storage/memory"
	"github.com/ai-quizzer/quizzer/internal/app/system"
	"github.com/ai-quizzer/quizzer/internal/config"
	"github.com/ai-quizzer/quizzer/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users       storage.UserStore
	Sessions    storage.SessionStore
	Quizzes     storage.QuizStore
	Submissions storage.SubmissionStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Auth        *auth.Service
	Quizzes     *quizzes.Service
	Submissions *submissions.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, cfg *config.Config, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Sessions == nil {
		stores.Sessions = mem
	}
	if stores.Quizzes == nil {
		stores.Quizzes = mem
	}
	if stores.Submissions == nil {
		stores.Submissions = mem
	}

	manager := system.NewManager()

	authSvc := auth.New(stores.Users, stores.Sessions, auth.Config{
		Secret:   []byte(cfg.Auth.Secret),
		TokenTTL: cfg.Auth.TokenTTL(),
		Issuer:   cfg.Auth.Issuer,
	}, log)

	presets := config.LoadPresetsOrDefault()
	quizSvc := quizzes.New(stores.Quizzes, presets, log)

	if cfg.AI.APIKey != "" {
		generator, err := quizzes.NewGeminiGenerator(&http.Client{Timeout: cfg.AI.Timeout()}, cfg.AI, log)
		if err != nil {
			return nil, fmt.Errorf("configure gemini generator: %w", err)
		}
		quizSvc.AttachGenerator(generator)
		log.Infof("gemini question generator enabled (model %s)", cfg.AI.Model)
	} else {
		log.Warn("GEMINI_API_KEY not set; using arithmetic question generator")
	}

	if cfg.Cache.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		quizSvc.AttachCache(quizzes.NewRedisCache(client, cfg.Cache.TTL(), log))
		log.Infof("quiz cache enabled via redis at %s", cfg.Cache.Addr)
	}

	subSvc := submissions.New(stores.Quizzes, stores.Submissions, log)

	for _, name := range []string{"auth", "quizzes", "submissions"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	purger := auth.NewSessionPurger(authSvc, cfg.Cleanup.SessionPurgeSchedule, log)
	if err := manager.Register(purger); err != nil {
		return nil, fmt.Errorf("register %s: %w", purger.Name(), err)
	}

	return &Application{
		manager:     manager,
		log:         log,
		Auth:        authSvc,
		Quizzes:     quizSvc,
		Submissions: subSvc,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
