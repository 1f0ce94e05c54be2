package experiments

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"threes/engine"
	"threes/eval"
	"threes/experiments/metrics"
	"threes/gamemaster"
	"threes/searcher"
)

const (
	NumGames   = 10 // Per agent config
	TimeBudget = 50 * time.Millisecond
)

// DepthConfigs compares search depths at full parallelism.
func DepthConfigs(duration time.Duration) []metrics.AgentConfig {
	configs := []metrics.AgentConfig{}
	for depth := 1; depth <= 5; depth++ {
		configs = append(configs, metrics.AgentConfig{
			ID:         depth,
			Depth:      depth,
			Goroutines: runtime.NumCPU(),
			Duration:   duration,
		})
	}
	return configs
}

// ParallelConfigs compares goroutine counts at a fixed depth.
func ParallelConfigs(depth int, duration time.Duration) []metrics.AgentConfig {
	configs := []metrics.AgentConfig{}
	for i, goroutines := range []int{1, 2, 4, 8, 16, 32, 64} {
		configs = append(configs, metrics.AgentConfig{
			ID:         i + 1,
			Depth:      depth,
			Goroutines: goroutines,
			Duration:   duration,
		})
	}
	return configs
}

// Runner plays every agent config on the same sequence of seeded games and
// stores the results as CSV under Root.
type Runner struct {
	Root     string
	Games    int
	Seed     uint64
	Evaluate eval.Func
	MaxMoves int
}

// Run returns the directory the records were written to.
func (r Runner) Run(ctx context.Context, name string, configs []metrics.AgentConfig) (string, error) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	for ci, config := range configs {
		log.Info().Msgf("starting agent %d of %d with config=%+v...", ci+1, len(configs), config)

		for i := 0; i < r.games(); i++ {
			gameMetric, moveMetrics, err := r.runGame(ctx, config, r.Seed+uint64(i))
			if err != nil {
				return "", fmt.Errorf("agent %d game %d: %w", config.ID, i+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent:      config.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed agent %d game %d of %d with score: %d", config.ID, i+1, r.games(), gameMetric.Score)
		}
	}

	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(r.Root, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", err
	}
	log.Info().Msg("stored agent configs")
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", err
	}
	log.Info().Msg("stored game records")
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return "", err
	}
	log.Info().Msg("stored move records")

	return writer.Dir(), nil
}

func (r Runner) runGame(ctx context.Context, config metrics.AgentConfig, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	backend := gamemaster.NewLocal(rand.New(rand.NewSource(seed)))
	options := []engine.Option{}
	if r.MaxMoves > 0 {
		options = append(options, engine.WithMaxMoves(r.MaxMoves))
	}
	e := engine.New(backend, r.newSearcher(config, seed), options...)
	return e.RunGame(ctx)
}

func (r Runner) newSearcher(config metrics.AgentConfig, seed uint64) *searcher.Searcher {
	options := []searcher.Option{
		searcher.WithSeed(seed),
		searcher.WithMetrics(),
	}
	if config.Depth > 0 {
		options = append(options, searcher.WithDepth(config.Depth))
	}
	if config.Goroutines > 0 {
		options = append(options, searcher.WithGoroutines(config.Goroutines))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if r.Evaluate != nil {
		options = append(options, searcher.WithEvaluator(r.Evaluate))
	}
	return searcher.New(options...)
}

func (r Runner) games() int {
	if r.Games > 0 {
		return r.Games
	}
	return NumGames
}
