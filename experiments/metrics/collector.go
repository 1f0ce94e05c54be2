package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines     int
	Depth          int
	Duration       time.Duration
	Paths          int // Candidate paths enumerated
	Scored         int // Paths scored before the time budget ran out
	Rejected       int // Best candidates discarded for a no-op first move
	BudgetExceeded bool
}

type MoveMetric struct {
	Step      int
	Direction string
	SearchMetric
}

type GameMetric struct {
	Score     int
	MaxTile   int
	Moves     int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Collector gathers metrics for one search at a time. Its counters may be
// updated from many goroutines during that search.
type Collector interface {
	Start(goroutines, depth, paths int)
	AddScored()
	AddRejected()
	SetBudgetExceeded()
	Complete() SearchMetric
}

type collector struct {
	goroutines     int
	depth          int
	paths          int
	startTime      time.Time
	scored         atomic.Int32
	rejected       atomic.Int32
	budgetExceeded atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(goroutines, depth, paths int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.depth = depth
	m.paths = paths
	m.scored.Store(0)
	m.rejected.Store(0)
	m.budgetExceeded.Store(false)
}

func (m *collector) AddScored() {
	m.scored.Add(1)
}

func (m *collector) AddRejected() {
	m.rejected.Add(1)
}

func (m *collector) SetBudgetExceeded() {
	m.budgetExceeded.Store(true)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:     m.goroutines,
		Depth:          m.depth,
		Duration:       time.Since(m.startTime),
		Paths:          m.paths,
		Scored:         int(m.scored.Load()),
		Rejected:       int(m.rejected.Load()),
		BudgetExceeded: m.budgetExceeded.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, depth, paths int) {}
func (m *dummyCollector) AddScored()                         {}
func (m *dummyCollector) AddRejected()                       {}
func (m *dummyCollector) SetBudgetExceeded()                 {}
func (m *dummyCollector) Complete() SearchMetric             { return SearchMetric{} }
