// Package quiz implements the arithmetic mini-game shown next to the
// guestbook: procedural question generation, scoring with streak bonuses,
// and achievement badges. Everything here is pure and synchronous; the
// guestbook sync core does not depend on this package.
package quiz

import (
	"fmt"
	"math/rand"
)

type Mode string

const (
	ModeSum Mode = "sum"
	ModeSub Mode = "sub"
)

type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// Question is one arithmetic prompt and its expected answer.
type Question struct {
	Text   string
	Answer int
}

type operandRange struct {
	aLo, aHi int
	bLo, bHi int
}

var levelRanges = map[Level]operandRange{
	LevelEasy:   {0, 10, 0, 10},
	LevelMedium: {5, 30, 0, 20},
	LevelHard:   {10, 99, 0, 60},
}

// Make generates one question for the given mode and level. Unknown levels
// fall back to easy. Subtraction operands are swapped when needed so the
// answer is never negative.
func Make(rng *rand.Rand, mode Mode, level Level) Question {
	r, ok := levelRanges[level]
	if !ok {
		r = levelRanges[LevelEasy]
	}
	a := randInt(rng, r.aLo, r.aHi)
	b := randInt(rng, r.bLo, r.bHi)

	if mode == ModeSub {
		if b > a {
			a, b = b, a
		}
		return Question{Text: fmt.Sprintf("%d − %d", a, b), Answer: a - b}
	}
	return Question{Text: fmt.Sprintf("%d + %d", a, b), Answer: a + b}
}

func randInt(rng *rand.Rand, min, max int) int {
	return rng.Intn(max-min+1) + min
}

// Tally tracks score and streak across one play session.
type Tally struct {
	Score   int
	Correct int
	Wrong   int
	Streak  int
}

// Award records a correct answer and returns the points gained: 10 plus the
// streak bonus (+5 from a streak of 3, +10 from a streak of 5).
func (t *Tally) Award() int {
	t.Streak++
	bonus := 0
	switch {
	case t.Streak >= 5:
		bonus = 10
	case t.Streak >= 3:
		bonus = 5
	}
	points := 10 + bonus
	t.Score += points
	t.Correct++
	return points
}

// Miss records a wrong answer: two penalty points (the score never drops
// below zero) and the streak resets.
func (t *Tally) Miss() {
	t.Wrong++
	t.Streak = 0
	t.Score -= 2
	if t.Score < 0 {
		t.Score = 0
	}
}

// Badge returns the achievement title for the current streak.
func (t *Tally) Badge() string {
	switch {
	case t.Streak >= 8:
		return "👑 Rainha dos Números"
	case t.Streak >= 5:
		return "🌟 Estrela do Castelo"
	case t.Streak >= 3:
		return "✨ Magia Ativa"
	default:
		return "❄️ Aprendendo com Alegria"
	}
}

// Reset clears the session back to zero.
func (t *Tally) Reset() {
	*t = Tally{}
}
