package experiments

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"gomoku/config"
	"gomoku/engine"
	"gomoku/evaluator"
	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/labels"
	"gomoku/searcher"
)

// RunSelfPlay plays cfg.Games games of the evaluator against itself, appends
// the finalized labels to cfg.LabelsPath and stores CSV metrics under
// cfg.MetricsDir.
func RunSelfPlay(cfg *config.Config, eval evaluator.Evaluator) error {
	agent := cfg.Agent(1)
	matchUps := [][2]metrics.AgentConfig{{agent, agent}}

	sink, err := labels.NewWriter(cfg.LabelsPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	return runExperiment("selfplay", cfg, eval, []metrics.AgentConfig{agent}, matchUps, cfg.Games, sink)
}

func runExperiment(name string, cfg *config.Config, eval evaluator.Evaluator, configs []metrics.AgentConfig, matchUps [][2]metrics.AgentConfig, numGames int, sink *labels.Writer) error {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchUp := range matchUps {
		config1, config2 := matchUp[0], matchUp[1]

		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), config1, config2)

		for i := 0; i < numGames; i++ {
			log.Info().Msgf("starting matchup %d of %d game %d of %d...", mi+1, len(matchUps), i+1, numGames)

			seed := uint64(count) * 2
			first := createTree(game.PlayerOne, config1, cfg, eval, seed)
			second := createTree(game.PlayerTwo, config2, cfg, eval, seed+1)
			options := []engine.Option{engine.WithMaxMoves(cfg.MaxMoves)}
			if sink != nil {
				options = append(options, engine.WithRecorder(labels.NewRecorder()))
			}
			e := engine.LocalEngine(first, second, options...)

			winner, gameMetric, moveMetrics, err := e.Run()
			if err != nil {
				return fmt.Errorf("game %d failed: %w", count+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}
			if sink != nil {
				if err := sink.Write(e.Records()); err != nil {
					return err
				}
			}

			if winner == "" {
				winner = "none"
			}
			log.Info().Msgf("completed matchup %d of %d game %d with winner: %s", mi+1, len(matchUps), i+1, winner)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	log.Info().Msgf("completed %s experiment", name)
	return writeRecords(name, cfg.MetricsDir, configs, gameRecords, moveRecords)
}

func writeRecords(name, dir string, configs []metrics.AgentConfig, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) error {
	writer, err := metrics.NewWriter(dir, name)
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored move records in %s", writer.Dir())
	return nil
}

func createTree(player game.Player, agent metrics.AgentConfig, cfg *config.Config, eval evaluator.Evaluator, seedOffset uint64) *searcher.Tree {
	options := cfg.AgentOptions(agent, seedOffset, true)
	return searcher.NewTree(player, game.NewBoard(), game.PlayerOne, eval, options...)
}
