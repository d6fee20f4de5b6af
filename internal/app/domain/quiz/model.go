package quiz

import "time"

// Quiz is a generated set of questions for a grade, subject and difficulty.
type Quiz struct {
	ID         string
	Title      string
	Subject    string
	Grade      int
	Difficulty string
	MaxScore   int
	Questions  []Question
	CreatedAt  time.Time
}

// Question is a single multiple-choice question belonging to a quiz.
type Question struct {
	ID            string
	QuizID        string
	Text          string
	Options       []string
	CorrectAnswer string
}
