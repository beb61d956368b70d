package cli

import (
	"fmt"
	"strconv"

	"github.com/icymath/guestbook/internal/quiz"
)

// startQuiz generates a new question. Optional args select the mode
// (sum/sub) and level (easy/medium/hard); omitted args keep the previous
// choice.
func (a *App) startQuiz(args []string) {
	for _, arg := range args {
		switch arg {
		case "sum", "sub":
			a.quizMode = quiz.Mode(arg)
		case "easy", "medium", "hard":
			a.quizLevel = quiz.Level(arg)
		default:
			fmt.Fprintln(a.out, "Usage: quiz [sum|sub] [easy|medium|hard]")
			return
		}
	}

	q := quiz.Make(a.rng, a.quizMode, a.quizLevel)
	a.question = &q
	fmt.Fprintf(a.out, "How much is %s? (answer <n>)\n", q.Text)
}

func (a *App) answer(args []string) {
	if a.question == nil {
		fmt.Fprintln(a.out, "No question yet. Type 'quiz' first.")
		return
	}
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: answer <n>")
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(a.out, "Usage: answer <n>")
		return
	}

	q := *a.question
	a.question = nil

	if n == q.Answer {
		points := a.tally.Award()
		fmt.Fprintf(a.out, "Correct! +%d points (streak %d)\n", points, a.tally.Streak)
	} else {
		a.tally.Miss()
		fmt.Fprintf(a.out, "Not quite, %s = %d\n", q.Text, q.Answer)
	}

	// keep the game rolling
	next := quiz.Make(a.rng, a.quizMode, a.quizLevel)
	a.question = &next
	fmt.Fprintf(a.out, "How much is %s?\n", next.Text)
}

func (a *App) score() {
	fmt.Fprintf(a.out, "Score %d | correct %d | wrong %d | streak %d\n",
		a.tally.Score, a.tally.Correct, a.tally.Wrong, a.tally.Streak)
	fmt.Fprintln(a.out, a.tally.Badge())
}

func (a *App) resetScore() {
	a.tally.Reset()
	a.question = nil
	fmt.Fprintln(a.out, "Score reset.")
}
