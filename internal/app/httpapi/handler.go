// Package httpapi exposes the REST surface of the quiz service.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	app "github.com/ai-quizzer/quizzer/internal/app"
	"github.com/ai-quizzer/quizzer/internal/app/domain/quiz"
	"github.com/ai-quizzer/quizzer/internal/app/domain/submission"
	"github.com/ai-quizzer/quizzer/internal/app/metrics"
	"github.com/ai-quizzer/quizzer/internal/app/services/auth"
	"github.com/ai-quizzer/quizzer/internal/app/services/quizzes"
	"github.com/ai-quizzer/quizzer/internal/app/system"
	"github.com/ai-quizzer/quizzer/pkg/logger"
)

// Options tunes the middleware around the API.
type Options struct {
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
	Log            *logger.Logger
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns the fully wired API handler, including middleware.
func NewHandler(application *app.Application, opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)

	protected := r.PathPrefix("/").Subrouter()
	protected.Use(h.authMiddleware)
	protected.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)
	protected.HandleFunc("/protected/example", h.protectedExample).Methods(http.MethodGet)
	protected.HandleFunc("/quiz/generate", h.generateQuiz).Methods(http.MethodPost)
	protected.HandleFunc("/quiz", h.listQuizzes).Methods(http.MethodGet)
	protected.HandleFunc("/quiz/{id}", h.getQuiz).Methods(http.MethodGet)
	protected.HandleFunc("/quiz/{id}/submit", h.submitQuiz).Methods(http.MethodPost)
	protected.HandleFunc("/quiz/{id}/submissions", h.quizSubmissions).Methods(http.MethodGet)
	protected.HandleFunc("/submissions", h.submissionHistory).Methods(http.MethodGet)
	protected.HandleFunc("/system/status", h.systemStatus).Methods(http.MethodGet)

	var wrapped http.Handler = r
	wrapped = rateLimitMiddleware(opts.RateLimit, opts.RateBurst)(wrapped)
	wrapped = corsMiddleware(opts.AllowedOrigins)(wrapped)
	return metrics.InstrumentHandler(wrapped)
}

// --- auth -------------------------------------------------------------------

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := h.app.Auth.Register(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"created_at": u.CreatedAt,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.app.Auth.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, auth.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		_ = h.app.Auth.Logout(r.Context(), token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *handler) protectedExample(w http.ResponseWriter, r *http.Request) {
	username := r.Header.Get(headerUsername)
	writeJSON(w, http.StatusOK, map[string]string{
		"msg": fmt.Sprintf("Hello %s. Token valid.", username),
	})
}

// --- quizzes ----------------------------------------------------------------

type questionView struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
}

type quizView struct {
	QuizID     string         `json:"quiz_id"`
	Title      string         `json:"title"`
	Subject    string         `json:"subject"`
	Grade      int            `json:"grade"`
	Difficulty string         `json:"difficulty"`
	MaxScore   int            `json:"max_score"`
	CreatedAt  time.Time      `json:"created_at"`
	Questions  []questionView `json:"questions"`
}

// viewQuiz renders a quiz. Correct answers are included only in the
// generation response; quiz takers never see them.
func viewQuiz(q quiz.Quiz, withAnswers bool) quizView {
	view := quizView{
		QuizID:     q.ID,
		Title:      q.Title,
		Subject:    q.Subject,
		Grade:      q.Grade,
		Difficulty: q.Difficulty,
		MaxScore:   q.MaxScore,
		CreatedAt:  q.CreatedAt,
		Questions:  make([]questionView, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		qv := questionView{
			ID:      question.ID,
			Text:    question.Text,
			Options: question.Options,
		}
		if withAnswers {
			qv.CorrectAnswer = question.CorrectAnswer
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

func (h *handler) generateQuiz(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Grade          int    `json:"grade"`
		Subject        string `json:"subject"`
		TotalQuestions int    `json:"total_questions"`
		MaxScore       int    `json:"max_score"`
		Difficulty     string `json:"difficulty"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	q, err := h.app.Quizzes.Generate(r.Context(), quizzes.Request{
		Grade:          payload.Grade,
		Subject:        payload.Subject,
		TotalQuestions: payload.TotalQuestions,
		MaxScore:       payload.MaxScore,
		Difficulty:     payload.Difficulty,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewQuiz(q, true))
}

func (h *handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	q, err := h.app.Quizzes.Get(r.Context(), id)
	if err != nil {
		writeError(w, storeErrStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, viewQuiz(q, false))
}

func (h *handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Quizzes.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	views := make([]quizView, 0, len(list))
	for _, q := range list {
		views = append(views, viewQuiz(q, false))
	}
	writeJSON(w, http.StatusOK, views)
}

// --- submissions ------------------------------------------------------------

type submissionView struct {
	ID          string            `json:"id"`
	QuizID      string            `json:"quiz_id"`
	Answers     map[string]string `json:"answers"`
	Score       int               `json:"score"`
	Correct     int               `json:"correct"`
	Total       int               `json:"total"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

func viewSubmission(sub submission.Submission) submissionView {
	return submissionView{
		ID:          sub.ID,
		QuizID:      sub.QuizID,
		Answers:     sub.Answers,
		Score:       sub.Score,
		Correct:     sub.Correct,
		Total:       sub.Total,
		SubmittedAt: sub.SubmittedAt,
	}
}

func (h *handler) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Answers map[string]string `json:"answers"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sub, err := h.app.Submissions.Submit(r.Context(), mux.Vars(r)["id"], r.Header.Get(headerUserID), payload.Answers)
	if err != nil {
		writeError(w, storeErrStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, viewSubmission(sub))
}

func (h *handler) quizSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.app.Submissions.ListForQuiz(r.Context(), mux.Vars(r)["id"], r.Header.Get(headerUserID))
	if err != nil {
		writeError(w, storeErrStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, viewSubmissionList(subs))
}

func (h *handler) submissionHistory(w http.ResponseWriter, r *http.Request) {
	subs, err := h.app.Submissions.History(r.Context(), r.Header.Get(headerUserID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, viewSubmissionList(subs))
}

func viewSubmissionList(subs []submission.Submission) []submissionView {
	views := make([]submissionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, viewSubmission(sub))
	}
	return views
}

// --- operational ------------------------------------------------------------

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "ai-quizzer",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) systemStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := system.CollectProcessStats()
	if err != nil {
		h.log.WithError(err).Warn("collect process stats")
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- helpers ----------------------------------------------------------------

func storeErrStatus(err error) int {
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(r, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
