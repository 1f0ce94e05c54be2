package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts concurrent updates", func(t *testing.T) {
		c := NewCollector()
		c.Start(4, 3, 64)

		var wg sync.WaitGroup
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.AddScored()
			}()
		}
		wg.Wait()
		c.AddRejected()

		got := c.Complete()
		require.Equal(t, 4, got.Goroutines)
		require.Equal(t, 3, got.Depth)
		require.Equal(t, 64, got.Paths)
		require.Equal(t, 64, got.Scored)
		require.Equal(t, 1, got.Rejected)
		require.False(t, got.BudgetExceeded)
	})

	t.Run("start resets counters", func(t *testing.T) {
		c := NewCollector()
		c.Start(1, 1, 4)
		c.AddScored()
		c.SetBudgetExceeded()

		c.Start(1, 1, 4)
		got := c.Complete()
		require.Zero(t, got.Scored)
		require.False(t, got.BudgetExceeded)
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(8, 4, 256)
		c.AddScored()
		require.Equal(t, SearchMetric{}, c.Complete())
	})
}

func TestSummarize(t *testing.T) {
	t.Run("aggregates scores and max tiles", func(t *testing.T) {
		games := []GameMetric{
			{Score: 30, MaxTile: 96},
			{Score: 90, MaxTile: 192},
			{Score: 60, MaxTile: 96},
		}
		s := Summarize(games, time.Second)

		require.Equal(t, 3, s.Games)
		require.Equal(t, 90, s.Best)
		require.Equal(t, 60, s.Average)
		require.Equal(t, map[int]int{96: 2, 192: 1}, s.Distribution)
		require.Equal(t, time.Second, s.Duration)
	})

	t.Run("no games", func(t *testing.T) {
		s := Summarize(nil, 0)
		require.Zero(t, s.Games)
		require.Zero(t, s.Best)
		require.Empty(t, s.Distribution)
	})
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "run")
	require.NoError(t, err)

	require.NoError(t, w.WriteAgentConfigs([]AgentConfig{{ID: 1, Depth: 4, Goroutines: 8, Duration: time.Second}}))
	require.NoError(t, w.WriteGameRecords([]GameRecord{{ID: 1, Agent: 1, GameMetric: GameMetric{Score: 42, MaxTile: 48, Moves: 100}}}))
	require.NoError(t, w.WriteMoveRecords([]MoveRecord{{Game: 1, MoveMetric: MoveMetric{Step: 1, Direction: "up"}}}))

	rows := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
	require.Equal(t, [][]string{{"id", "depth", "goroutines", "duration"}, {"1", "4", "8", "1s"}}, rows)

	rows = readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
	require.Len(t, rows, 2)
	require.Equal(t, []string{"1", "1", "42", "48", "100"}, rows[1][:5])

	rows = readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
	require.Len(t, rows, 2)
	require.Equal(t, "up", rows[1][2])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
