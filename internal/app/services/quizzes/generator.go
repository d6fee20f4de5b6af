package quizzes

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ai-quizzer/quizzer/internal/app/domain/quiz"
)

// ArithmeticGenerator produces simple addition questions. It needs no
// external service and is the fallback when no AI generator is configured.
// Question i asks for (i+2)+(i+3); the options are the four consecutive
// integers starting at i+4, of which i+5 is correct.
type ArithmeticGenerator struct{}

var _ Generator = ArithmeticGenerator{}

// Generate builds the requested number of arithmetic questions.
func (ArithmeticGenerator) Generate(_ context.Context, req Request) ([]quiz.Question, error) {
	if req.TotalQuestions < 1 {
		return nil, fmt.Errorf("total_questions must be positive")
	}

	questions := make([]quiz.Question, 0, req.TotalQuestions)
	for i := 0; i < req.TotalQuestions; i++ {
		options := []string{
			strconv.Itoa(i + 4),
			strconv.Itoa(i + 5),
			strconv.Itoa(i + 6),
			strconv.Itoa(i + 7),
		}
		questions = append(questions, quiz.Question{
			Text:          fmt.Sprintf("What is %d + %d?", i+2, i+3),
			Options:       options,
			CorrectAnswer: strconv.Itoa(i + 5),
		})
	}
	return questions, nil
}
