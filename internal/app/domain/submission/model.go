package submission

import "time"

// Submission records one user's answers to a quiz and the resulting score.
// Answers maps question IDs to the chosen option.
type Submission struct {
	ID          string
	QuizID      string
	UserID      string
	Answers     map[string]string
	Score       int
	Correct     int
	Total       int
	SubmittedAt time.Time
}
