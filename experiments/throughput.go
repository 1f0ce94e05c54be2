package experiments

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"threes/board"
	"threes/experiments/metrics"
)

// Throughput times a single search per generated board for every config,
// without playing games. Each board is recorded as a game of one move.
func (r Runner) Throughput(ctx context.Context, name string, configs []metrics.AgentConfig) (string, error) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s throughput experiment...", name)

	for _, config := range configs {
		for i := 0; i < r.games(); i++ {
			seed := r.Seed + uint64(i)
			rng := rand.New(rand.NewSource(seed))
			b := board.Generate(rng)
			next := 1 + rng.Intn(3)

			d, searchMetric, err := r.newSearcher(config, seed).BestMove(ctx, b, next)
			if err != nil {
				return "", fmt.Errorf("agent %d board %d: %w", config.ID, i+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:    count,
				Agent: config.ID,
				GameMetric: metrics.GameMetric{
					Score:    board.FinalScore(b),
					MaxTile:  b.Max(),
					Moves:    1,
					Duration: searchMetric.Duration,
				},
			})
			moveRecords = append(moveRecords, metrics.MoveRecord{
				Game:       count,
				MoveMetric: metrics.MoveMetric{Step: 1, Direction: d.String(), SearchMetric: searchMetric},
			})
		}
		log.Info().Msgf("completed agent %d", config.ID)
	}

	writer, err := metrics.NewWriter(r.Root, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", err
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", err
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return "", err
	}
	return writer.Dir(), nil
}
