package experiments

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gomoku/config"
	"gomoku/evaluator"
	"gomoku/labels"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	t.Setenv("GOMOKU_SIMULATIONS", "10")
	t.Setenv("GOMOKU_GOROUTINES", "2")
	t.Setenv("GOMOKU_MAX_MOVES", "8")
	t.Setenv("GOMOKU_GAMES", "2")
	t.Setenv("GOMOKU_SEED", "3")
	t.Setenv("GOMOKU_SELECTION", "proportional")
	t.Setenv("GOMOKU_LABELS_PATH", filepath.Join(dir, "labels", "selfplay.jsonl"))
	t.Setenv("GOMOKU_METRICS_DIR", filepath.Join(dir, "metrics"))

	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestRunSelfPlay(t *testing.T) {
	cfg := testConfig(t)

	require.NoError(t, RunSelfPlay(cfg, evaluator.NewRandom(9)))

	records, err := labels.Read(cfg.LabelsPath)
	require.NoError(t, err)
	require.Len(t, records, 16, "two games capped at eight moves each")
	for _, record := range records {
		require.Zero(t, record.Outcome, "Unfinished games are labelled as draws")
	}

	runs, err := filepath.Glob(filepath.Join(cfg.MetricsDir, "selfplay", "*", "move_records.csv"))
	require.NoError(t, err)
	require.Len(t, runs, 1)

	f, err := os.Open(runs[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 17, "header and one row per move")
}

func TestRunThroughputExperiment(t *testing.T) {
	cfg := testConfig(t)
	t.Setenv("GOMOKU_DURATION", "5ms")
	t.Setenv("GOMOKU_GAMES", "1")
	t.Setenv("GOMOKU_MAX_MOVES", "2")
	cfg, err := config.Load("")
	require.NoError(t, err)

	saved := ThroughputGoroutines
	ThroughputGoroutines = []int{1, 2}
	defer func() { ThroughputGoroutines = saved }()

	require.NoError(t, RunThroughputExperiment(cfg, evaluator.NewUniform()))

	runs, err := filepath.Glob(filepath.Join(cfg.MetricsDir, "throughput", "*", "game_records.csv"))
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
