package experiments

import (
	"time"

	"gomoku/config"
	"gomoku/evaluator"
	"gomoku/experiments/metrics"
)

// ThroughputGoroutines are the search widths compared by RunThroughputExperiment.
var ThroughputGoroutines = []int{1, 2, 4, 8, 16}

// RunThroughputExperiment measures simulations per move as the number of
// search goroutines grows. Every agent gets the same wall-clock budget and
// plays against itself so games have similar lengths.
func RunThroughputExperiment(cfg *config.Config, eval evaluator.Evaluator) error {
	duration := cfg.Duration
	if duration <= 0 {
		duration = 100 * time.Millisecond
	}

	configs := make([]metrics.AgentConfig, len(ThroughputGoroutines))
	matchUps := make([][2]metrics.AgentConfig, len(ThroughputGoroutines))
	for i, goroutines := range ThroughputGoroutines {
		configs[i] = metrics.AgentConfig{
			ID:         i + 1,
			Goroutines: goroutines,
			Duration:   duration,
			Cpuct:      cfg.Cpuct,
			Selection:  cfg.Selection.String(),
		}
		matchUps[i] = [2]metrics.AgentConfig{configs[i], configs[i]}
	}

	games := cfg.Games
	if games <= 0 {
		games = 1
	}
	return runExperiment("throughput", cfg, eval, configs, matchUps, games, nil)
}
