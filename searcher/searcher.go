package searcher

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"threes/board"
	"threes/eval"
	"threes/experiments/metrics"
)

const DefaultDepth = 4

var ErrNoLegalMove = errors.New("no legal move")

type Option func(s *Searcher)

// Searcher picks moves by scoring every move sequence of a fixed depth. A
// Searcher runs one search at a time.
type Searcher struct {
	depth      int
	goroutines int
	duration   time.Duration
	evaluate   eval.Func
	metrics    metrics.Collector
	rng        *rand.Rand
}

func WithDepth(depth int) Option {
	return func(s *Searcher) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

func WithGoroutines(goroutines int) Option {
	return func(s *Searcher) {
		if goroutines > 0 {
			s.goroutines = goroutines
		}
	}
}

// WithDuration bounds the time spent scoring paths. Paths left unscored when
// it runs out are not considered.
func WithDuration(duration time.Duration) Option {
	return func(s *Searcher) {
		if duration > 0 {
			s.duration = duration
		}
	}
}

func WithEvaluator(evaluate eval.Func) Option {
	return func(s *Searcher) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

func WithMetrics() Option {
	return func(s *Searcher) {
		s.metrics = metrics.NewCollector()
	}
}

func WithSeed(seed uint64) Option {
	return func(s *Searcher) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

func New(options ...Option) *Searcher {
	s := &Searcher{ // Default values
		depth:      DefaultDepth,
		goroutines: runtime.NumCPU(),
		evaluate:   eval.Score,
		metrics:    metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(frand.Uint64n(math.MaxUint64)))
	}
	return s
}

func (s *Searcher) Depth() int {
	return s.depth
}

// BestMove returns the first move of the best scoring path whose first move
// changes b. nextTile is the card that will be placed after that move.
func (s *Searcher) BestMove(ctx context.Context, b board.Board, nextTile int) (board.Direction, metrics.SearchMetric, error) {
	if !hasLegalMove(b) {
		return 0, metrics.SearchMetric{}, ErrNoLegalMove
	}

	budget := ctx
	if s.duration > 0 {
		var cancel context.CancelFunc
		budget, cancel = context.WithTimeout(ctx, s.duration)
		defer cancel()
	}

	paths := Enumerate(s.depth)
	s.metrics.Start(s.goroutines, s.depth, len(paths))
	scores, scored := s.scoreAll(budget, b, nextTile, paths)
	if err := ctx.Err(); err != nil {
		return 0, s.metrics.Complete(), err
	}

	candidates := make([]int, 0, len(paths))
	for i := range paths {
		if scored[i] {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i]] > scores[candidates[j]]
	})

	for _, i := range candidates {
		first := paths[i][0]
		if !b.CanMove(first) {
			s.metrics.AddRejected()
			continue
		}
		log.Debug().
			Stringer("direction", first).
			Float64("score", scores[i]).
			Int("scored", len(candidates)).
			Msg("best-move")
		return first, s.metrics.Complete(), nil
	}
	panic("no scored path starts with a legal move")
}

// scoreAll scores paths in parallel. The first path of every first move is
// always scored; the rest are skipped once ctx is done.
func (s *Searcher) scoreAll(ctx context.Context, b board.Board, nextTile int, paths []Path) ([]float64, []bool) {
	scores := make([]float64, len(paths))
	scored := make([]bool, len(paths))
	currMax := b.Max()
	seed := s.rng.Uint64()

	required := firsts(paths)
	order := append([]int{}, required...)
	for i := range paths {
		if i%(len(paths)/len(required)) != 0 {
			order = append(order, i)
		}
	}

	g := errgroup.Group{}
	g.SetLimit(s.goroutines)
	for n, i := range order {
		mandatory := n < len(required)
		if !mandatory && ctx.Err() != nil {
			s.metrics.SetBudgetExceeded()
			break
		}
		g.Go(func() error {
			if !mandatory && ctx.Err() != nil {
				s.metrics.SetBudgetExceeded()
				return nil
			}
			rng := rand.New(rand.NewSource(seed ^ uint64(i+1)*0x9e3779b97f4a7c15))
			scores[i] = s.scorePath(b, paths[i], nextTile, currMax, rng)
			scored[i] = true
			s.metrics.AddScored()
			return nil
		})
	}
	_ = g.Wait()
	return scores, scored
}

// scorePath plays path forward from b and averages the evaluation after each
// step. The known next tile is placed after the first move only; later tiles
// are unknown and left out. The mean is not truncated, so totals that differ
// by less than the depth still rank apart instead of falling back to
// enumeration order.
func (s *Searcher) scorePath(b board.Board, path Path, nextTile, currMax int, rng *rand.Rand) float64 {
	total := 0
	for step, d := range path {
		b = b.Move(d)
		if step == 0 {
			b = b.PlaceCard(d, nextTile, rng)
		}
		total += s.evaluate(b, currMax)
	}
	return float64(total) / float64(len(path))
}

func hasLegalMove(b board.Board) bool {
	for _, d := range board.Directions {
		if b.CanMove(d) {
			return true
		}
	}
	return false
}
