package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"gomoku/experiments/metrics"
	"gomoku/meta"
	"gomoku/searcher"
)

const EnvPrefix = "GOMOKU"

// Keys
const (
	KeySimulations = "simulations"
	KeyDuration    = "duration"
	KeyGoroutines  = "goroutines"
	KeyCpuct       = "cpuct"
	KeySelection   = "selection"
	KeyTemperature = "temperature"
	KeySeed        = "seed"
	KeyModelPath   = "model-path"
	KeyLogLevel    = "log-level"
	KeyQueueSize   = "queue-size"
	KeyLabelsPath  = "labels-path"
	KeyMetricsDir  = "metrics-dir"
	KeyGames       = "games"
	KeyMaxMoves    = "max-moves"
)

type Config struct {
	*viper.Viper

	Simulations int
	Duration    time.Duration
	Goroutines  int
	Cpuct       float64
	Selection   searcher.Selection
	Temperature float64
	Seed        uint64
	ModelPath   string // Empty for the uniform evaluator, "random" for random priors
	LogLevel    string
	QueueSize   int
	LabelsPath  string
	MetricsDir  string
	Games       int
	MaxMoves    int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySimulations, meta.SIMULATIONS)
	v.SetDefault(KeyDuration, time.Duration(0))
	v.SetDefault(KeyGoroutines, meta.GOROUTINES)
	v.SetDefault(KeyCpuct, searcher.DefaultCpuct)
	v.SetDefault(KeySelection, searcher.MaxVisits.String())
	v.SetDefault(KeyTemperature, 1.0)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyModelPath, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyQueueSize, meta.QUEUE_SIZE)
	v.SetDefault(KeyLabelsPath, "labels/selfplay.jsonl")
	v.SetDefault(KeyMetricsDir, "experiments")
	v.SetDefault(KeyGames, 1)
	v.SetDefault(KeyMaxMoves, meta.MAX_MOVES)
}

// Load reads defaults, then the config file at path if path is not empty,
// then GOMOKU_* environment variables (GOMOKU_MODEL_PATH for model-path).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	selection, err := searcher.ParseSelection(v.GetString(KeySelection))
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Viper:       v,
		Simulations: v.GetInt(KeySimulations),
		Duration:    v.GetDuration(KeyDuration),
		Goroutines:  v.GetInt(KeyGoroutines),
		Cpuct:       v.GetFloat64(KeyCpuct),
		Selection:   selection,
		Temperature: v.GetFloat64(KeyTemperature),
		Seed:        v.GetUint64(KeySeed),
		ModelPath:   v.GetString(KeyModelPath),
		LogLevel:    strings.ToLower(v.GetString(KeyLogLevel)),
		QueueSize:   v.GetInt(KeyQueueSize),
		LabelsPath:  v.GetString(KeyLabelsPath),
		MetricsDir:  v.GetString(KeyMetricsDir),
		Games:       v.GetInt(KeyGames),
		MaxMoves:    v.GetInt(KeyMaxMoves),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Simulations <= 0 && c.Duration <= 0 {
		errs = append(errs, errors.New("one of simulations or duration must be positive"))
	}
	if c.Goroutines <= 0 {
		errs = append(errs, fmt.Errorf("goroutines must be positive, got %d", c.Goroutines))
	}
	if c.Cpuct <= 0 {
		errs = append(errs, fmt.Errorf("cpuct must be positive, got %g", c.Cpuct))
	}
	if c.Temperature <= 0 {
		errs = append(errs, fmt.Errorf("temperature must be positive, got %g", c.Temperature))
	}
	if c.Games < 0 {
		errs = append(errs, fmt.Errorf("games must not be negative, got %d", c.Games))
	}
	return errors.Join(errs...)
}

// Agent is the search budget of one player, as the experiments record it.
func (c *Config) Agent(id int) metrics.AgentConfig {
	return metrics.AgentConfig{
		ID:          id,
		Goroutines:  c.Goroutines,
		Duration:    c.Duration,
		Simulations: c.Simulations,
		Cpuct:       c.Cpuct,
		Selection:   c.Selection.String(),
	}
}

// SearchOptions turns the configured search settings into tree options.
func (c *Config) SearchOptions(seedOffset uint64, withMetrics bool) []searcher.Option {
	return c.AgentOptions(c.Agent(0), seedOffset, withMetrics)
}

// AgentOptions builds tree options from agent's budget and the shared
// selection and seed settings. seedOffset keeps the two trees of a self-play
// game from sampling in step.
func (c *Config) AgentOptions(agent metrics.AgentConfig, seedOffset uint64, withMetrics bool) []searcher.Option {
	options := []searcher.Option{
		searcher.WithGoroutines(agent.Goroutines),
		searcher.WithCpuct(agent.Cpuct),
		searcher.WithSelection(c.Selection, c.Temperature),
	}
	if agent.Simulations > 0 {
		options = append(options, searcher.WithSimulations(agent.Simulations))
	}
	if agent.Duration > 0 {
		options = append(options, searcher.WithDuration(agent.Duration))
	}
	if c.Seed != 0 {
		options = append(options, searcher.WithSeed(c.Seed+seedOffset))
	}
	if withMetrics {
		options = append(options, searcher.WithMetrics())
	}
	return options
}
