package quiz

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMake_OperandRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		level Level
		max   int
	}{
		{LevelEasy, 10 + 10},
		{LevelMedium, 30 + 20},
		{LevelHard, 99 + 60},
	}

	for _, tc := range tests {
		t.Run(string(tc.level), func(t *testing.T) {
			for i := 0; i < 200; i++ {
				q := Make(rng, ModeSum, tc.level)
				require.GreaterOrEqual(t, q.Answer, 0)
				require.LessOrEqual(t, q.Answer, tc.max)
			}
		})
	}
}

func TestMake_SubtractionNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		q := Make(rng, ModeSub, LevelHard)
		require.GreaterOrEqual(t, q.Answer, 0, "question %q", q.Text)
	}
}

func TestMake_UnknownLevelFallsBackToEasy(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		q := Make(rng, ModeSum, Level("bogus"))
		require.LessOrEqual(t, q.Answer, 20)
	}
}

func TestMake_QuestionTextMatchesAnswer(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	q := Make(rng, ModeSum, LevelEasy)
	var a, b int
	_, err := fmt.Sscanf(q.Text, "%d + %d", &a, &b)
	require.NoError(t, err)
	require.Equal(t, a+b, q.Answer)
}

func TestTally_StreakBonuses(t *testing.T) {
	var tally Tally

	// First two correct answers: flat 10 points.
	require.Equal(t, 10, tally.Award())
	require.Equal(t, 10, tally.Award())
	// Third and fourth: +5 streak bonus.
	require.Equal(t, 15, tally.Award())
	require.Equal(t, 15, tally.Award())
	// Fifth and on: +10 bonus.
	require.Equal(t, 20, tally.Award())

	require.Equal(t, 70, tally.Score)
	require.Equal(t, 5, tally.Correct)
	require.Equal(t, 5, tally.Streak)
}

func TestTally_MissResetsStreakAndFloorsScore(t *testing.T) {
	var tally Tally

	tally.Miss()
	require.Equal(t, 0, tally.Score, "score must not go negative")
	require.Equal(t, 1, tally.Wrong)

	tally.Award()
	tally.Award()
	tally.Award()
	require.Equal(t, 3, tally.Streak)

	tally.Miss()
	require.Equal(t, 0, tally.Streak)
	require.Equal(t, 33, tally.Score)
}

func TestTally_Badges(t *testing.T) {
	tests := []struct {
		streak int
		want   string
	}{
		{0, "❄️ Aprendendo com Alegria"},
		{2, "❄️ Aprendendo com Alegria"},
		{3, "✨ Magia Ativa"},
		{5, "🌟 Estrela do Castelo"},
		{8, "👑 Rainha dos Números"},
	}
	for _, tc := range tests {
		tally := Tally{Streak: tc.streak}
		require.Equal(t, tc.want, tally.Badge())
	}
}

func TestTally_Reset(t *testing.T) {
	tally := Tally{Score: 50, Correct: 4, Wrong: 1, Streak: 2}
	tally.Reset()
	require.Equal(t, Tally{}, tally)
}
