package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gomoku/config"
	"gomoku/evaluator"
	"gomoku/experiments"
	"gomoku/game"
	"gomoku/protocol"
	"gomoku/searcher"
)

func main() {
	configPath := flag.String("config", "", "Path to a config file (yaml, json or toml)")
	mode := flag.String("mode", "protocol", "One of protocol, selfplay or throughput")
	flag.Parse()

	// stdout carries protocol responses only
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setLogLevel(cfg.LogLevel)
	log.Debug().Msgf("loaded config: %v", cfg.AllSettings())

	eval, err := newEvaluator(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create evaluator")
	}

	switch *mode {
	case "protocol":
		err = runProtocol(cfg, eval)
	case "selfplay":
		err = experiments.RunSelfPlay(cfg, eval)
	case "throughput":
		err = experiments.RunThroughputExperiment(cfg, eval)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
	log.Info().Msg("bye")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func newEvaluator(cfg *config.Config) (evaluator.Evaluator, error) {
	switch cfg.ModelPath {
	case "":
		log.Info().Msg("no model configured, using uniform priors")
		return evaluator.NewUniform(), nil
	case "random":
		return evaluator.NewRandom(cfg.Seed), nil
	default:
		log.Info().Msgf("loading model %s", cfg.ModelPath)
		return evaluator.LoadONNX(cfg.ModelPath)
	}
}

func runProtocol(cfg *config.Config, eval evaluator.Evaluator) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	newTree := func(player game.Player, board game.Board, toMove game.Player) *searcher.Tree {
		log.Info().Msgf("engine plays as %s", player)
		return searcher.NewTree(player, board, toMove, eval, cfg.SearchOptions(uint64(player), false)...)
	}
	session := protocol.NewSession(commandInput(), os.Stdout, newTree, protocol.WithQueueSize(cfg.QueueSize))
	return session.Run(ctx)
}
