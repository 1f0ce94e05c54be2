package metrics

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"threes/board"
)

// Summary aggregates the games of one AI run.
type Summary struct {
	Games        int
	Best         int
	Average      int
	Duration     time.Duration
	Distribution map[int]int // Games per highest tile reached
}

func Summarize(games []GameMetric, duration time.Duration) Summary {
	s := Summary{
		Games:        len(games),
		Duration:     duration,
		Distribution: map[int]int{},
	}
	if len(games) == 0 {
		return s
	}

	scores := lo.Map(games, func(g GameMetric, _ int) int { return g.Score })
	s.Best = lo.Max(scores)
	s.Average = lo.Sum(scores) / len(scores)
	s.Distribution = lo.CountValues(lo.Map(games, func(g GameMetric, _ int) int { return g.MaxTile }))
	return s
}

// Log reports the run the way a player would want to read it: overall
// results first, then how often each score tile was the highest reached.
func (s Summary) Log() {
	log.Info().
		Int("games", s.Games).
		Dur("duration", s.Duration).
		Int("best", s.Best).
		Int("average", s.Average).
		Msg("run complete")

	for _, tile := range board.ScoreRanks {
		n := s.Distribution[tile]
		percent := 0
		if s.Games > 0 {
			percent = n * 100 / s.Games
		}
		log.Info().Msgf("%d: %d -- %d%% of games", tile, n, percent)
	}
}
